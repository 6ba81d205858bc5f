package loyalty

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale 金額顯示精度（小數位數）
const MoneyScale = 2

// CartLine 購物車商品行（宿主提供的唯讀輸入）
type CartLine struct {
	ProductID   ProductID
	VariationID ProductID // 0 代表非變體商品

	// CategoryIDs 商品行的有效分類；為 nil 時由 CategoryResolver 解析
	CategoryIDs []CategoryID

	LineSubtotal decimal.Decimal
}

// HasVariation 是否為變體商品
func (l CartLine) HasVariation() bool {
	return l.VariationID > 0
}

// FeeKind 費用類型
type FeeKind string

const (
	FeeKindTierDiscount FeeKind = "tier_discount"
	FeeKindRedemption   FeeKind = "points_redemption"
)

// Fee 購物車費用行（負數代表折扣）
type Fee struct {
	Kind   FeeKind
	Label  string
	Amount decimal.Decimal
}

func newTierDiscountFee(tier Tier, amount decimal.Decimal) *Fee {
	return &Fee{
		Kind:   FeeKindTierDiscount,
		Label:  fmt.Sprintf("%s专享折扣 (%s%%)", tier.Name, tier.DiscountPct.String()),
		Amount: amount.Neg(),
	}
}

func newRedemptionFee(points int, amount decimal.Decimal) *Fee {
	return &Fee{
		Kind:   FeeKindRedemption,
		Label:  fmt.Sprintf("积分抵扣 (使用 %d 积分)", points),
		Amount: amount.Neg(),
	}
}

// RedemptionSnapshot 購物車計算出的兌換決定
//
// 保存在會話中直到結帳建立訂單，建立訂單時恰好消費一次。
// 不變條件：RedeemAmount == PointsToUse * ValuePerPoint
type RedemptionSnapshot struct {
	PointsToUse  int
	RedeemAmount decimal.Decimal
}

// ZeroSnapshot 空兌換快照
func ZeroSnapshot() RedemptionSnapshot {
	return RedemptionSnapshot{RedeemAmount: decimal.Zero}
}

// IsEmpty 快照是否不含任何兌換
func (s RedemptionSnapshot) IsEmpty() bool {
	return s.PointsToUse <= 0 || !s.RedeemAmount.IsPositive()
}
