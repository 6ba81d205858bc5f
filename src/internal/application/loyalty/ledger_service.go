package loyalty

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
	"github.com/jackyeh168/shop_loyalty/src/internal/domain/shared"
)

// ===========================
// LedgerService
// ===========================

// LedgerDependencies LedgerService 的協作者
//
// Publisher、Metrics、Locks 可為 nil，分別以不發布、不計數、新建鎖取代。
type LedgerDependencies struct {
	Accounts  loyalty.MemberAccountRepository
	Orders    loyalty.OrderRecordRepository
	Ledger    loyalty.LedgerEntryRepository
	Snapshots loyalty.SnapshotStore
	TxManager shared.TransactionManager
	Config    loyalty.ConfigProvider
	Publisher shared.EventPublisher
	Metrics   Metrics
	Locks     *KeyedMutex
	Logger    *zap.Logger
}

// LedgerService 訂單生命週期上的積分帳務
//
// 每筆訂單有兩條獨立的狀態機：
// - 兌換側：PENDING_SNAPSHOT → SNAPSHOT_ATTACHED → DEDUCTED
// - 發放側：NOT_AWARDED → AWARDED（AwardOnce 開啟時）
//
// 並發規則：
// - 先取得用戶鍵鎖，再開啟事務（固定順序，不會死鎖）
// - deducted / awarded 旗標由倉儲的條件更新完成檢查並設置，跨進程同樣成立
type LedgerService struct {
	accounts  loyalty.MemberAccountRepository
	orders    loyalty.OrderRecordRepository
	ledger    loyalty.LedgerEntryRepository
	snapshots loyalty.SnapshotStore
	txManager shared.TransactionManager
	publisher shared.EventPublisher
	metrics   Metrics
	locks     *KeyedMutex
	logger    *zap.Logger

	config     *configSource
	resolver   *loyalty.TierResolver
	calculator *loyalty.PointsCalculationService
}

// NewLedgerService 建構函數
func NewLedgerService(deps LedgerDependencies) *LedgerService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = NopMetrics{}
	}
	locks := deps.Locks
	if locks == nil {
		locks = NewKeyedMutex()
	}

	return &LedgerService{
		accounts:   deps.Accounts,
		orders:     deps.Orders,
		ledger:     deps.Ledger,
		snapshots:  deps.Snapshots,
		txManager:  deps.TxManager,
		publisher:  deps.Publisher,
		metrics:    metrics,
		locks:      locks,
		logger:     logger,
		config:     newConfigSource(deps.Config, logger, metrics),
		resolver:   loyalty.NewTierResolver(),
		calculator: loyalty.NewPointsCalculationService(),
	}
}

// DeductionResult 扣減結果
type DeductionResult struct {
	OrderID loyalty.OrderID
	// Applied 本次調用是否取得扣減權（首次扣減）
	Applied bool
	// Duplicate 訂單已扣減過，本次為冪等跳過
	Duplicate      bool
	DeductedPoints int
	BalanceAfter   int
}

// AwardResult 發放結果
type AwardResult struct {
	OrderID      loyalty.OrderID
	Awarded      bool
	Duplicate    bool
	EarnedPoints int
	BalanceAfter int
	TierLabel    string
	TierChanged  bool
}

// ===========================
// InitializeOnRegistration
// ===========================

// InitializeOnRegistration 新用戶註冊時建立帳戶（餘額 0、最低等級）
//
// 重複調用為 no-op，返回 false。
func (s *LedgerService) InitializeOnRegistration(userID loyalty.UserID) (bool, error) {
	config := s.config.load()

	account, err := loyalty.NewMemberAccount(userID, config.LowestTier())
	if err != nil {
		return false, fmt.Errorf("failed to create member account: %w", err)
	}

	unlock := s.locks.Lock(userLockKey(int64(userID)))
	defer unlock()

	err = s.txManager.InTransaction(func(ctx shared.TransactionContext) error {
		return s.accounts.Save(ctx, account)
	})
	if errors.Is(err, loyalty.ErrAccountAlreadyExists) {
		s.logger.Info("member account already initialized", zap.Int64("user_id", int64(userID)))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to save member account: %w", err)
	}

	s.publish(account.PullEvents())
	return true, nil
}

// ===========================
// AttachSnapshot
// ===========================

// AttachSnapshot 下單時將會話中的兌換快照寫入訂單記錄
//
// 業務規則：
// - 訪客訂單、沒有快照或快照為零時不寫入
// - 寫入成功後刪除會話快照（快照只被消費一次）
// - 記錄已存在時為 no-op
func (s *LedgerService) AttachSnapshot(order loyalty.Order) (bool, error) {
	if !order.UserID.IsValid() {
		return false, nil
	}

	snapshot, ok := s.snapshots.GetSnapshot(order.SessionKey)
	if !ok || snapshot.IsEmpty() {
		s.snapshots.DeleteSnapshot(order.SessionKey)
		return false, nil
	}

	record, err := loyalty.NewOrderRedemptionRecord(order, snapshot)
	if err != nil {
		return false, fmt.Errorf("failed to build order redemption record: %w", err)
	}

	err = s.txManager.InTransaction(func(ctx shared.TransactionContext) error {
		return s.orders.Save(ctx, record)
	})
	if errors.Is(err, loyalty.ErrOrderRecordAlreadyExists) {
		s.logger.Info("redemption snapshot already attached", zap.Int64("order_id", int64(order.ID)))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to save order redemption record: %w", err)
	}

	s.snapshots.DeleteSnapshot(order.SessionKey)
	s.metrics.SnapshotAttached()
	s.logger.Info("redemption snapshot attached",
		zap.Int64("order_id", int64(order.ID)),
		zap.Int64("user_id", int64(order.UserID)),
		zap.Int("points_to_use", snapshot.PointsToUse),
		zap.String("redeem_amount", snapshot.RedeemAmount.String()),
	)
	return true, nil
}

// ===========================
// DeductOnStatusReached
// ===========================

// DeductOnStatusReached 訂單進入 processing / completed 時扣減兌換積分
//
// 執行流程：
// 1. 非觸發狀態直接返回
// 2. 讀取訂單記錄；沒有記錄代表未兌換
// 3. 以條件更新搶佔 deducted 旗標；搶佔失敗代表重複事件，靜默跳過
// 4. 兌換積分為 0 時只設旗標
// 5. 新餘額 = max(0, 餘額 - 兌換積分)，寫入帳戶與流水
//
// 同一訂單調用多次的最終餘額與調用一次相同。
func (s *LedgerService) DeductOnStatusReached(order loyalty.Order, status loyalty.OrderStatus) (*DeductionResult, error) {
	result := &DeductionResult{OrderID: order.ID}
	if !status.TriggersDeduction() || !order.UserID.IsValid() {
		return result, nil
	}

	config := s.config.load()

	unlock := s.locks.Lock(userLockKey(int64(order.UserID)))
	defer unlock()

	var events []shared.DomainEvent
	err := s.txManager.InTransaction(func(ctx shared.TransactionContext) error {
		record, err := s.orders.FindByOrderID(ctx, order.ID)
		if errors.Is(err, loyalty.ErrOrderRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to find order record: %w", err)
		}
		if record.Deducted() {
			result.Duplicate = true
			return nil
		}

		claimed, err := s.orders.ClaimDeduction(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("failed to claim deduction: %w", err)
		}
		if !claimed {
			result.Duplicate = true
			return nil
		}
		result.Applied = true

		if record.RedeemedPoints().IsZero() {
			return nil
		}

		account, err := s.loadForUpdate(ctx, record.UserID(), config)
		if err != nil {
			return err
		}

		deducted := account.DeductRedeemedPoints(record.RedeemedPoints(), order.ID)
		result.DeductedPoints = deducted.Value()
		result.BalanceAfter = account.Balance().Value()

		events, err = s.persist(ctx, account)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Duplicate {
		s.metrics.DuplicateDeduction()
		s.logger.Info("order already deducted, skipping",
			zap.Error(loyalty.ErrAlreadyDeducted),
			zap.Int64("order_id", int64(order.ID)),
		)
		return result, nil
	}

	if result.DeductedPoints > 0 {
		s.metrics.PointsDeducted(result.DeductedPoints)
		s.logger.Info("redeemed points deducted",
			zap.Int64("order_id", int64(order.ID)),
			zap.Int64("user_id", int64(order.UserID)),
			zap.Int("points", result.DeductedPoints),
			zap.Int("balance_after", result.BalanceAfter),
		)
	}
	s.publish(events)
	return result, nil
}

// ===========================
// AwardOnCompletion
// ===========================

// AwardOnCompletion 訂單完成時發放消費積分並重新解析等級
//
// earned = floor(訂單總額 × PointsPerUnit)
// AwardOnce 開啟時先以條件更新搶佔 awarded 旗標，重複的完成事件不會重複發放。
func (s *LedgerService) AwardOnCompletion(order loyalty.Order) (*AwardResult, error) {
	result := &AwardResult{OrderID: order.ID}
	if !order.UserID.IsValid() {
		return result, nil
	}

	config := s.config.load()
	if !config.Enabled {
		return result, nil
	}

	earned := s.calculator.CalculateEarned(order.Total, config.PointsPerUnit)
	result.EarnedPoints = earned.Value()

	unlock := s.locks.Lock(userLockKey(int64(order.UserID)))
	defer unlock()

	var events []shared.DomainEvent
	err := s.txManager.InTransaction(func(ctx shared.TransactionContext) error {
		if config.AwardOnce {
			claimed, err := s.orders.ClaimAward(ctx, order.ID, order.UserID, earned)
			if err != nil {
				return fmt.Errorf("failed to claim award: %w", err)
			}
			if !claimed {
				result.Duplicate = true
				return nil
			}
		}

		account, err := s.loadForUpdate(ctx, order.UserID, config)
		if err != nil {
			return err
		}

		account.AwardPoints(earned, order.ID)
		result.TierChanged = account.RefreshTier(s.resolver.Resolve(account.Balance().Value(), config))
		result.Awarded = !earned.IsZero()
		result.BalanceAfter = account.Balance().Value()
		result.TierLabel = account.TierLabel()

		events, err = s.persist(ctx, account)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Duplicate {
		s.metrics.DuplicateAward()
		s.logger.Info("order already awarded, skipping",
			zap.Error(loyalty.ErrAlreadyAwarded),
			zap.Int64("order_id", int64(order.ID)),
		)
		return result, nil
	}

	if result.Awarded {
		s.metrics.PointsAwarded(result.EarnedPoints)
		s.logger.Info("points awarded",
			zap.Int64("order_id", int64(order.ID)),
			zap.Int64("user_id", int64(order.UserID)),
			zap.Int("points", result.EarnedPoints),
			zap.Int("balance_after", result.BalanceAfter),
			zap.String("tier", result.TierLabel),
		)
	}
	s.publish(events)
	return result, nil
}

// ===========================
// 帳戶讀取
// ===========================

// CurrentAccount 讀取用戶帳戶
//
// 尚未處理舊版餘額的帳戶會在此時完成一次性遷移並寫回。
// 錯誤：ErrAccountNotFound
func (s *LedgerService) CurrentAccount(userID loyalty.UserID) (*loyalty.MemberAccount, error) {
	account, err := s.accounts.FindByUserID(nil, userID)
	if err != nil {
		return nil, err
	}
	if account.LegacyMigrated() {
		return account, nil
	}

	unlock := s.locks.Lock(userLockKey(int64(userID)))
	defer unlock()

	var events []shared.DomainEvent
	err = s.txManager.InTransaction(func(ctx shared.TransactionContext) error {
		account, err = s.accounts.FindByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if account.LegacyMigrated() {
			return nil
		}

		if account.AdoptLegacyBalance() {
			s.logger.Info("legacy balance adopted",
				zap.Int64("user_id", int64(userID)),
				zap.Int("points", account.Balance().Value()),
			)
		}
		events, err = s.persist(ctx, account)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(events)
	return account, nil
}

// loadForUpdate 在事務中讀取帳戶；帳戶不存在時以最低等級建立
// 同時完成舊版餘額遷移
func (s *LedgerService) loadForUpdate(
	ctx shared.TransactionContext,
	userID loyalty.UserID,
	config loyalty.LoyaltyConfig,
) (*loyalty.MemberAccount, error) {
	account, err := s.accounts.FindByUserID(ctx, userID)
	if errors.Is(err, loyalty.ErrAccountNotFound) {
		account, err = loyalty.NewMemberAccount(userID, config.LowestTier())
		if err != nil {
			return nil, fmt.Errorf("failed to create member account: %w", err)
		}
		if err := s.accounts.Save(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to save member account: %w", err)
		}
		return account, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find member account: %w", err)
	}

	account.AdoptLegacyBalance()
	return account, nil
}

// persist 寫回帳戶並追加流水，返回待發布的事件
func (s *LedgerService) persist(ctx shared.TransactionContext, account *loyalty.MemberAccount) ([]shared.DomainEvent, error) {
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update member account: %w", err)
	}

	events := account.PullEvents()
	entries := loyalty.LedgerEntriesFromEvents(events)
	if len(entries) > 0 {
		if err := s.ledger.Append(ctx, entries); err != nil {
			return nil, fmt.Errorf("failed to append ledger entries: %w", err)
		}
	}
	return events, nil
}

// publish 事務提交後發布事件；發布失敗只記錄日誌
func (s *LedgerService) publish(events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.PublishBatch(events); err != nil {
		s.logger.Warn("failed to publish loyalty events", zap.Error(err), zap.Int("count", len(events)))
	}
}
