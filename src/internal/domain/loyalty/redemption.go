package loyalty

import (
	"github.com/shopspring/decimal"
)

// RedemptionResult 積分兌換計算結果（含計算明細，供日誌與除錯）
type RedemptionResult struct {
	Snapshot RedemptionSnapshot

	// Fee 為 nil 代表不產生兌換費用行
	Fee *Fee

	PreDiscountSubtotal decimal.Decimal
	CapAmount           decimal.Decimal
	ExchangeableAmount  decimal.Decimal

	// RejectReason 兌換未生效時的原因，生效時為空
	RejectReason  string
	ScopeFailures []error
}

func rejected(reason string) RedemptionResult {
	return RedemptionResult{
		Snapshot:            ZeroSnapshot(),
		PreDiscountSubtotal: decimal.Zero,
		CapAmount:           decimal.Zero,
		ExchangeableAmount:  decimal.Zero,
		RejectReason:        reason,
	}
}

// ===========================
// RedemptionCalculator 領域服務
// ===========================

// RedemptionCalculator 計算受上限約束的兌換積分與金額
type RedemptionCalculator struct {
	matcher *EligibilityMatcher
}

// NewRedemptionCalculator 建構函數
func NewRedemptionCalculator(matcher *EligibilityMatcher) *RedemptionCalculator {
	return &RedemptionCalculator{matcher: matcher}
}

// ComputeRedemption 計算兌換快照
//
// 演算法：
//   1. 折扣前可兌換小計：有兌換範圍時累加命中商品行，否則取購物車折扣前小計
//   2. cap = 小計 × PercentOfTotal / 100
//   3. exchangeable = 用戶積分 × ValuePerPoint
//   4. raw = min(cap, exchangeable)
//   5. points = floor(raw / ValuePerPoint)（向下取整，永不超過上限）
//   6. points < MinPoints → 整筆拒絕
//   7. points = min(points, 用戶積分)
//   8. amount = points × ValuePerPoint（由整數積分重算，積分與金額不漂移）
//   9. amount <= 0 → 拒絕
//
// 任一提前退出都返回零快照。同一購物車與餘額重算必得相同快照。
func (c *RedemptionCalculator) ComputeRedemption(
	lines []CartLine,
	cartSubtotal decimal.Decimal,
	userPoints int,
	tier Tier,
	config LoyaltyConfig,
) RedemptionResult {
	rule := tier.Redeem

	switch {
	case !config.Enabled:
		return rejected("loyalty disabled")
	case !rule.Enabled:
		return rejected("tier has no redeem rule")
	case userPoints <= 0:
		return rejected("no points")
	case !rule.PercentOfTotal.IsPositive():
		return rejected("percent_of_total <= 0")
	case !rule.ValuePerPoint.IsPositive():
		return rejected("value_per_point <= 0")
	}

	// 1. 折扣前可兌換小計
	subtotal := cartSubtotal
	var failures []error
	if rule.HasScope() {
		subtotal, failures = c.matcher.EligibleSubtotal(*rule.Scope, lines)
	}
	if !subtotal.IsPositive() {
		result := rejected("eligible subtotal <= 0")
		result.ScopeFailures = failures
		return result
	}

	// 2-4. 上限與可兌換金額取小者
	capAmount := subtotal.Mul(rule.PercentOfTotal).Div(hundred)
	exchangeable := decimal.NewFromInt(int64(userPoints)).Mul(rule.ValuePerPoint)
	raw := decimal.Min(capAmount, exchangeable)

	result := RedemptionResult{
		Snapshot:            ZeroSnapshot(),
		PreDiscountSubtotal: subtotal,
		CapAmount:           capAmount,
		ExchangeableAmount:  exchangeable,
		ScopeFailures:       failures,
	}

	// 5. 積分數向下取整
	points := int(raw.Div(rule.ValuePerPoint).Floor().IntPart())

	// 6. 未達最低兌換門檻，整筆拒絕
	if points < rule.MinPoints {
		result.RejectReason = "below min_points"
		return result
	}

	// 7. 不超過用戶餘額
	if points > userPoints {
		points = userPoints
	}

	// 8. 由整數積分重算金額
	amount := decimal.NewFromInt(int64(points)).Mul(rule.ValuePerPoint)

	// 9. 金額為零不產生費用
	if points <= 0 || !amount.IsPositive() {
		result.RejectReason = "redeem amount <= 0"
		return result
	}

	result.Snapshot = RedemptionSnapshot{PointsToUse: points, RedeemAmount: amount}
	result.Fee = newRedemptionFee(points, amount)
	return result
}
