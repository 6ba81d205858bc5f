package loyalty

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DiscountResult 等級折扣計算結果
type DiscountResult struct {
	// Fee 為 nil 代表不產生折扣費用行
	Fee              *Fee
	EligibleSubtotal decimal.Decimal
	ScopeFailures    []error
}

// ===========================
// DiscountCalculator 領域服務
// ===========================

// DiscountCalculator 計算全車等級百分比折扣
type DiscountCalculator struct {
	matcher *EligibilityMatcher
}

// NewDiscountCalculator 建構函數
func NewDiscountCalculator(matcher *EligibilityMatcher) *DiscountCalculator {
	return &DiscountCalculator{matcher: matcher}
}

// ComputeDiscountFee 計算等級折扣費用
//
// 業務規則：
// - 功能關閉、未開啟購物車折扣或等級折扣 <= 0 時不產生費用
// - 可折扣小計 = 命中等級範圍的商品行小計總和，<= 0 時不產生費用
// - 折扣金額 = 可折扣小計 × 折扣% / 100，四捨五入到分
// - 四捨五入後為零的折扣不產生費用行
//
// 折扣永遠先於兌換計算；兌換上限以折扣前小計為基準。
func (c *DiscountCalculator) ComputeDiscountFee(lines []CartLine, tier Tier, config LoyaltyConfig) DiscountResult {
	result := DiscountResult{EligibleSubtotal: decimal.Zero}

	if !config.Enabled || !config.ApplyCartDiscount || !tier.DiscountPct.IsPositive() {
		return result
	}

	eligible, failures := c.matcher.EligibleSubtotal(tier.Scope, lines)
	result.EligibleSubtotal = eligible
	result.ScopeFailures = failures
	if !eligible.IsPositive() {
		return result
	}

	amount := eligible.Mul(tier.DiscountPct).Div(hundred).Round(MoneyScale)
	if !amount.IsPositive() {
		return result
	}

	result.Fee = newTierDiscountFee(tier, amount)
	return result
}
