package loyalty

import (
	"sort"

	"github.com/shopspring/decimal"
)

// UnboundedMaxPoints 最高等級的上限標記（無上限）
const UnboundedMaxPoints = -1

// ===========================
// 等級表資料模型
// ===========================

// Scope 商品 / 分類適用範圍
//
// 兩個集合皆為空代表全車適用；兩者都設定時為「或」關係（任一命中即適用）。
type Scope struct {
	ProductIDs  []ProductID
	CategoryIDs []CategoryID
}

// IsEmpty 是否未設定任何範圍
func (s Scope) IsEmpty() bool {
	return len(s.ProductIDs) == 0 && len(s.CategoryIDs) == 0
}

// RedeemRule 積分兌換規則
type RedeemRule struct {
	Enabled bool

	// PercentOfTotal 兌換金額上限，為折扣前可兌換小計的百分比
	PercentOfTotal decimal.Decimal

	// ValuePerPoint 每點積分可抵扣的金額
	ValuePerPoint decimal.Decimal

	// MinPoints 單次兌換的最低積分數，不足則整筆拒絕
	MinPoints int

	// StackWithPercent 兌換是否可與等級折扣並用。
	// 目前僅保留設定值，計算順序固定為「先折扣、再以折扣前小計計算兌換」。
	StackWithPercent bool

	// Scope 兌換適用範圍（nil 代表全車）
	Scope *Scope
}

// HasScope 是否宣告了兌換範圍
func (r RedeemRule) HasScope() bool {
	return r.Scope != nil && !r.Scope.IsEmpty()
}

// Tier 會員等級
type Tier struct {
	Name        string
	MinPoints   int
	MaxPoints   int // UnboundedMaxPoints 代表無上限，只允許出現在最後一級
	DiscountPct decimal.Decimal
	Redeem      RedeemRule

	// Scope 等級折扣的適用範圍（空代表全車）
	Scope Scope
}

// Contains 積分是否落在此等級區間內
func (t Tier) Contains(points int) bool {
	if points < t.MinPoints {
		return false
	}
	return t.MaxPoints == UnboundedMaxPoints || points <= t.MaxPoints
}

// LoyaltyConfig 會員積分設定（唯讀輸入，核心從不修改）
type LoyaltyConfig struct {
	Tiers []Tier

	// PointsPerUnit 每單位消費金額可獲得的積分
	PointsPerUnit decimal.Decimal

	Enabled           bool
	ApplyCartDiscount bool

	// AwardOnce 為 true 時，訂單完成發放積分受 awarded 旗標保護，
	// 同一訂單的完成事件重複送達也只發放一次。
	AwardOnce bool
}

// ===========================
// 預設等級表
// ===========================

// DefaultConfig 內建預設設定
//
// 外部設定缺失或格式錯誤時一律回退到此等級表。
func DefaultConfig() LoyaltyConfig {
	valuePerPoint := decimal.RequireFromString("0.01")
	redeem := func(percent int64) RedeemRule {
		return RedeemRule{
			Enabled:          true,
			PercentOfTotal:   decimal.NewFromInt(percent),
			ValuePerPoint:    valuePerPoint,
			MinPoints:        100,
			StackWithPercent: true,
		}
	}

	return LoyaltyConfig{
		Tiers: []Tier{
			{Name: "普通会员", MinPoints: 0, MaxPoints: 500, DiscountPct: decimal.Zero},
			{Name: "铜牌会员", MinPoints: 501, MaxPoints: 2000, DiscountPct: decimal.Zero, Redeem: redeem(20)},
			{Name: "银牌会员", MinPoints: 2001, MaxPoints: 6000, DiscountPct: decimal.NewFromInt(10), Redeem: redeem(30)},
			{Name: "金牌会员", MinPoints: 6001, MaxPoints: 15000, DiscountPct: decimal.NewFromInt(15), Redeem: redeem(50)},
			{Name: "钻石会员", MinPoints: 15001, MaxPoints: UnboundedMaxPoints, DiscountPct: decimal.NewFromInt(20), Redeem: redeem(50)},
		},
		PointsPerUnit:     decimal.NewFromInt(1),
		Enabled:           true,
		ApplyCartDiscount: true,
		AwardOnce:         true,
	}
}

// ===========================
// 驗證與正規化
// ===========================

// Validate 驗證設定是否合法
//
// 規則：
// 1. 至少一個等級，PointsPerUnit > 0
// 2. 依 MinPoints 排序後，等級必須無縫、無重疊地切分 [0, ∞)
// 3. UnboundedMaxPoints 只能出現在最後一級，且最後一級必須無上限
// 4. 折扣與兌換參數不能為負數
//
// Validate 不修改接收者，排序在副本上進行。
func (c LoyaltyConfig) Validate() error {
	if len(c.Tiers) == 0 {
		return ErrConfigurationInvalid.WithContext("reason", "no tiers configured")
	}
	if !c.PointsPerUnit.IsPositive() {
		return ErrConfigurationInvalid.WithContext(
			"reason", "points_per_unit must be > 0",
			"points_per_unit", c.PointsPerUnit.String(),
		)
	}

	tiers := sortedTiers(c.Tiers)
	expectedMin := 0
	for i, tier := range tiers {
		last := i == len(tiers)-1

		if tier.MinPoints != expectedMin {
			return ErrConfigurationInvalid.WithContext(
				"reason", "tiers must partition [0, inf) without gaps or overlaps",
				"tier", tier.Name,
				"min_points", tier.MinPoints,
				"expected_min_points", expectedMin,
			)
		}
		if tier.MaxPoints == UnboundedMaxPoints && !last {
			return ErrConfigurationInvalid.WithContext(
				"reason", "only the last tier may be unbounded",
				"tier", tier.Name,
			)
		}
		if last && tier.MaxPoints != UnboundedMaxPoints {
			return ErrConfigurationInvalid.WithContext(
				"reason", "last tier must be unbounded",
				"tier", tier.Name,
			)
		}
		if !last && tier.MaxPoints < tier.MinPoints {
			return ErrConfigurationInvalid.WithContext(
				"reason", "max_points must be >= min_points",
				"tier", tier.Name,
			)
		}
		if tier.DiscountPct.IsNegative() {
			return ErrConfigurationInvalid.WithContext(
				"reason", "discount_pct must be >= 0",
				"tier", tier.Name,
			)
		}
		if err := tier.Redeem.validate(tier.Name); err != nil {
			return err
		}

		expectedMin = tier.MaxPoints + 1
	}

	return nil
}

func (r RedeemRule) validate(tierName string) error {
	if r.PercentOfTotal.IsNegative() || r.ValuePerPoint.IsNegative() || r.MinPoints < 0 {
		return ErrConfigurationInvalid.WithContext(
			"reason", "redeem rule values must be >= 0",
			"tier", tierName,
		)
	}
	return nil
}

// Normalize 返回排序後的有效設定
//
// 設定不合法時返回 DefaultConfig() 與驗證錯誤，調用方記錄後照常使用返回的設定，
// 購物車與結帳流程永遠不會因設定問題而失敗。
func (c LoyaltyConfig) Normalize() (LoyaltyConfig, error) {
	if err := c.Validate(); err != nil {
		return DefaultConfig(), err
	}
	normalized := c
	normalized.Tiers = sortedTiers(c.Tiers)
	return normalized, nil
}

// LowestTier 最低等級（設定為空時取預設等級表的最低級）
func (c LoyaltyConfig) LowestTier() Tier {
	tiers := sortedTiers(c.Tiers)
	if len(tiers) == 0 {
		return DefaultConfig().Tiers[0]
	}
	return tiers[0]
}

func sortedTiers(tiers []Tier) []Tier {
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinPoints < sorted[j].MinPoints
	})
	return sorted
}
