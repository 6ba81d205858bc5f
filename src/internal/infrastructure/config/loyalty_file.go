package config

import (
	"fmt"

	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ===========================
// 會員積分設定檔格式（YAML / JSON）
// ===========================
//
// yaml.v3 可直接解析 JSON，後台匯出的 JSON 設定不需轉換。
// 省略的欄位沿用預設值；省略 tiers 時使用預設等級表。

// decimalValue 以純文字解析數值，避免經過 float64
type decimalValue struct {
	decimal.Decimal
}

// UnmarshalYAML 實現 yaml.Unmarshaler
func (d *decimalValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", node.Line)
	}
	value, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid number %q: %w", node.Line, node.Value, err)
	}
	d.Decimal = value
	return nil
}

type scopeFile struct {
	ProductIDs  []int64 `yaml:"product_ids"`
	CategoryIDs []int64 `yaml:"category_ids"`
}

type redeemFile struct {
	Enabled          bool          `yaml:"enabled"`
	PercentOfTotal   *decimalValue `yaml:"percent_of_total"`
	ValuePerPoint    *decimalValue `yaml:"value_per_point"`
	MinPoints        int           `yaml:"min_points"`
	StackWithPercent *bool         `yaml:"stack_with_percent"`
	Scope            *scopeFile    `yaml:"scope"`
}

type tierFile struct {
	Name      string `yaml:"name"`
	MinPoints int    `yaml:"min_points"`
	// MaxPoints 省略、null 或 -1 代表無上限
	MaxPoints   *int          `yaml:"max_points"`
	DiscountPct *decimalValue `yaml:"discount_pct"`
	Redeem      *redeemFile   `yaml:"redeem"`
	Scope       *scopeFile    `yaml:"scope"`
}

type loyaltyFile struct {
	Enabled           *bool         `yaml:"enabled"`
	ApplyCartDiscount *bool         `yaml:"apply_cart_discount"`
	AwardOnce         *bool         `yaml:"award_once"`
	PointsPerUnit     *decimalValue `yaml:"points_per_unit"`
	Tiers             []tierFile    `yaml:"tiers"`
}

// ParseLoyaltyConfig 解析設定檔內容
//
// 只負責格式轉換；等級表是否切分 [0, ∞) 由 LoyaltyConfig.Validate 判斷。
func ParseLoyaltyConfig(data []byte) (loyalty.LoyaltyConfig, error) {
	var file loyaltyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return loyalty.LoyaltyConfig{}, loyalty.ErrConfigurationInvalid.WithContext(
			"reason", "malformed loyalty config",
			"parse_error", err.Error(),
		)
	}

	config := loyalty.DefaultConfig()
	if file.Enabled != nil {
		config.Enabled = *file.Enabled
	}
	if file.ApplyCartDiscount != nil {
		config.ApplyCartDiscount = *file.ApplyCartDiscount
	}
	if file.AwardOnce != nil {
		config.AwardOnce = *file.AwardOnce
	}
	if file.PointsPerUnit != nil {
		config.PointsPerUnit = file.PointsPerUnit.Decimal
	}

	if len(file.Tiers) > 0 {
		config.Tiers = make([]loyalty.Tier, 0, len(file.Tiers))
		for _, t := range file.Tiers {
			config.Tiers = append(config.Tiers, t.toDomain())
		}
	}

	return config, nil
}

func (t tierFile) toDomain() loyalty.Tier {
	tier := loyalty.Tier{
		Name:        t.Name,
		MinPoints:   t.MinPoints,
		MaxPoints:   loyalty.UnboundedMaxPoints,
		DiscountPct: decimal.Zero,
		Scope:       t.Scope.toDomain(),
	}
	if t.MaxPoints != nil {
		tier.MaxPoints = *t.MaxPoints
	}
	if t.DiscountPct != nil {
		tier.DiscountPct = t.DiscountPct.Decimal
	}
	if t.Redeem != nil {
		tier.Redeem = t.Redeem.toDomain()
	}
	return tier
}

func (r redeemFile) toDomain() loyalty.RedeemRule {
	rule := loyalty.RedeemRule{
		Enabled:          r.Enabled,
		PercentOfTotal:   decimal.Zero,
		ValuePerPoint:    decimal.Zero,
		MinPoints:        r.MinPoints,
		StackWithPercent: true,
	}
	if r.PercentOfTotal != nil {
		rule.PercentOfTotal = r.PercentOfTotal.Decimal
	}
	if r.ValuePerPoint != nil {
		rule.ValuePerPoint = r.ValuePerPoint.Decimal
	}
	if r.StackWithPercent != nil {
		rule.StackWithPercent = *r.StackWithPercent
	}
	if r.Scope != nil {
		scope := r.Scope.toDomain()
		rule.Scope = &scope
	}
	return rule
}

func (s *scopeFile) toDomain() loyalty.Scope {
	if s == nil {
		return loyalty.Scope{}
	}
	scope := loyalty.Scope{}
	for _, id := range s.ProductIDs {
		scope.ProductIDs = append(scope.ProductIDs, loyalty.ProductID(id))
	}
	for _, id := range s.CategoryIDs {
		scope.CategoryIDs = append(scope.CategoryIDs, loyalty.CategoryID(id))
	}
	return scope
}
