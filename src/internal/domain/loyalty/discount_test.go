package loyalty_test

import (
	"testing"

	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiscountCalculator() *loyalty.DiscountCalculator {
	return loyalty.NewDiscountCalculator(loyalty.NewEligibilityMatcher(nil))
}

// Test 1: 6500 積分、小計 100.00 → 金牌会员 15% 折扣 -15.00
func TestDiscountCalculator_GoldTier_Scenario(t *testing.T) {
	// Arrange
	cfg := loyalty.DefaultConfig()
	tier := loyalty.NewTierResolver().Resolve(6500, cfg)
	lines := []loyalty.CartLine{line(1, 0, "100.00")}

	// Act
	result := newDiscountCalculator().ComputeDiscountFee(lines, tier, cfg)

	// Assert
	require.NotNil(t, result.Fee)
	assert.Equal(t, "金牌会员", tier.Name)
	assert.True(t, result.Fee.Amount.Equal(decimal.RequireFromString("-15.00")), result.Fee.Amount.String())
	assert.Contains(t, result.Fee.Label, "金牌会员")
	assert.Contains(t, result.Fee.Label, "15%")
	assert.Equal(t, loyalty.FeeKindTierDiscount, result.Fee.Kind)
}

// Test 2: 折扣為 0 或功能關閉時不產生費用
func TestDiscountCalculator_NoOps(t *testing.T) {
	cfg := loyalty.DefaultConfig()
	lines := []loyalty.CartLine{line(1, 0, "100.00")}
	calc := newDiscountCalculator()

	zeroTier := cfg.Tiers[0]
	assert.Nil(t, calc.ComputeDiscountFee(lines, zeroTier, cfg).Fee, "0% 等級")

	disabled := cfg
	disabled.ApplyCartDiscount = false
	assert.Nil(t, calc.ComputeDiscountFee(lines, cfg.Tiers[3], disabled).Fee, "購物車折扣關閉")

	off := cfg
	off.Enabled = false
	assert.Nil(t, calc.ComputeDiscountFee(lines, cfg.Tiers[3], off).Fee, "功能關閉")

	assert.Nil(t, calc.ComputeDiscountFee(nil, cfg.Tiers[3], cfg).Fee, "空購物車")
}

// Test 3: 只折扣命中範圍的商品行
func TestDiscountCalculator_ScopedTier(t *testing.T) {
	cfg := loyalty.DefaultConfig()
	tier := cfg.Tiers[2]
	tier.Scope = loyalty.Scope{CategoryIDs: []loyalty.CategoryID{7}}
	lines := []loyalty.CartLine{
		line(1, 0, "80.00", 7),
		line(2, 0, "20.00", 8),
	}

	result := newDiscountCalculator().ComputeDiscountFee(lines, tier, cfg)

	require.NotNil(t, result.Fee)
	assert.True(t, result.EligibleSubtotal.Equal(decimal.RequireFromString("80")))
	assert.True(t, result.Fee.Amount.Equal(decimal.RequireFromString("-8")))
}

// Test 4: 四捨五入後為零的折扣不產生費用
func TestDiscountCalculator_RoundsToZero_Suppressed(t *testing.T) {
	cfg := loyalty.DefaultConfig()
	tier := cfg.Tiers[2]
	tier.DiscountPct = decimal.RequireFromString("0.1")

	result := newDiscountCalculator().ComputeDiscountFee([]loyalty.CartLine{line(1, 0, "1.00")}, tier, cfg)

	assert.Nil(t, result.Fee)
}

// Test 5: 折扣金額四捨五入到分
func TestDiscountCalculator_RoundsToCents(t *testing.T) {
	cfg := loyalty.DefaultConfig()
	tier := cfg.Tiers[3]

	result := newDiscountCalculator().ComputeDiscountFee([]loyalty.CartLine{line(1, 0, "33.33")}, tier, cfg)

	require.NotNil(t, result.Fee)
	assert.Equal(t, "-5", result.Fee.Amount.Truncate(0).String())
	assert.True(t, result.Fee.Amount.Equal(decimal.RequireFromString("-5.00")), result.Fee.Amount.String())
}
