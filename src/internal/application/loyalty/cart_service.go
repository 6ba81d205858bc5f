package loyalty

import (
	"errors"

	"go.uber.org/zap"

	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
)

// AccountReader 讀取會員帳戶（LedgerService 實作）
type AccountReader interface {
	CurrentAccount(userID loyalty.UserID) (*loyalty.MemberAccount, error)
}

// CartResult 一次購物車重算的結果
type CartResult struct {
	Balance     int
	Tier        loyalty.Tier
	DiscountFee *loyalty.Fee
	Redemption  loyalty.RedemptionResult
}

// CartService 購物車重算時套用等級折扣與積分兌換
type CartService struct {
	accounts  AccountReader
	snapshots loyalty.SnapshotStore
	config    *configSource
	metrics   Metrics
	logger    *zap.Logger

	resolver   *loyalty.TierResolver
	discounts  *loyalty.DiscountCalculator
	redemption *loyalty.RedemptionCalculator
}

// NewCartService 建構函數
//
// categories 可為 nil，此時只使用商品行自帶的分類。
func NewCartService(
	accounts AccountReader,
	snapshots loyalty.SnapshotStore,
	provider loyalty.ConfigProvider,
	categories loyalty.CategoryResolver,
	metrics Metrics,
	logger *zap.Logger,
) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}

	matcher := loyalty.NewEligibilityMatcher(categories)
	return &CartService{
		accounts:   accounts,
		snapshots:  snapshots,
		config:     newConfigSource(provider, logger, metrics),
		metrics:    metrics,
		logger:     logger,
		resolver:   loyalty.NewTierResolver(),
		discounts:  loyalty.NewDiscountCalculator(matcher),
		redemption: loyalty.NewRedemptionCalculator(matcher),
	}
}

// OnCartRecalculated 購物車重算
//
// 執行流程：
// 1. 訪客或功能關閉：清除會話快照後返回
// 2. 讀取餘額並解析等級
// 3. 先套用等級折扣，再以折扣前小計計算兌換
// 4. 以本次結果覆寫會話快照（不合併）
//
// 任何失敗都降級為「不套用折扣 / 兌換」，不會中斷結帳流程。
func (s *CartService) OnCartRecalculated(cart loyalty.Cart) *CartResult {
	config := s.config.load()
	sessionKey := cart.SessionKey()
	userID := cart.UserID()

	if !userID.IsValid() || !config.Enabled {
		s.snapshots.DeleteSnapshot(sessionKey)
		return &CartResult{
			Tier:       config.LowestTier(),
			Redemption: loyalty.RedemptionResult{Snapshot: loyalty.ZeroSnapshot()},
		}
	}

	balance := s.balanceOf(userID)
	tier := s.resolver.Resolve(balance, config)
	lines := cart.Lines()

	discount := s.discounts.ComputeDiscountFee(lines, tier, config)
	s.logScopeFailures(userID, discount.ScopeFailures)
	if discount.Fee != nil {
		cart.AddFee(discount.Fee.Label, discount.Fee.Amount)
		s.metrics.FeeApplied(discount.Fee.Kind)
	}

	redemption := s.redemption.ComputeRedemption(lines, cart.Subtotal(), balance, tier, config)
	s.logScopeFailures(userID, redemption.ScopeFailures)
	if redemption.Fee != nil {
		cart.AddFee(redemption.Fee.Label, redemption.Fee.Amount)
		s.metrics.FeeApplied(redemption.Fee.Kind)
	} else {
		s.logger.Debug("redemption not applied",
			zap.Int64("user_id", int64(userID)),
			zap.String("reason", redemption.RejectReason),
		)
	}

	s.snapshots.SetSnapshot(sessionKey, redemption.Snapshot)

	return &CartResult{
		Balance:     balance,
		Tier:        tier,
		DiscountFee: discount.Fee,
		Redemption:  redemption,
	}
}

// balanceOf 沒有帳戶的用戶餘額為 0；讀取失敗同樣以 0 計
func (s *CartService) balanceOf(userID loyalty.UserID) int {
	account, err := s.accounts.CurrentAccount(userID)
	if errors.Is(err, loyalty.ErrAccountNotFound) {
		return 0
	}
	if err != nil {
		s.logger.Warn("failed to read points balance, treating as zero",
			zap.Int64("user_id", int64(userID)),
			zap.Error(err),
		)
		return 0
	}
	return account.Balance().Value()
}

func (s *CartService) logScopeFailures(userID loyalty.UserID, failures []error) {
	for _, err := range failures {
		s.logger.Warn("category resolution failed, line treated as not eligible",
			zap.Int64("user_id", int64(userID)),
			zap.Error(err),
		)
	}
}
