package loyalty

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
)

// defaultHistoryLimit 狀態查詢附帶的最近流水筆數
const defaultHistoryLimit = 10

// GetMemberStatusQuery 查詢會員積分狀態
type GetMemberStatusQuery struct {
	UserID int64
	// HistoryLimit <= 0 時使用預設筆數
	HistoryLimit int
}

// LedgerEntryView 流水的輸出格式
type LedgerEntryView struct {
	EntryID      string
	OrderID      int64
	Delta        int
	BalanceAfter int
	Reason       string
	CreatedAt    time.Time
}

// GetMemberStatusResult 會員積分狀態
type GetMemberStatusResult struct {
	UserID      int64
	Balance     int
	TierLabel   string
	DiscountPct string

	// HasNextTier 為 false 代表已是最高等級
	HasNextTier      bool
	NextTierLabel    string
	PointsToNextTier int

	RecentEntries []LedgerEntryView
}

// GetMemberStatusUseCase 查詢餘額、等級與下一等級門檻
type GetMemberStatusUseCase struct {
	accounts AccountReader
	ledger   loyalty.LedgerEntryRepository
	config   *configSource
	resolver *loyalty.TierResolver
}

// NewGetMemberStatusUseCase 創建 Use Case 實例
func NewGetMemberStatusUseCase(
	accounts AccountReader,
	ledger loyalty.LedgerEntryRepository,
	provider loyalty.ConfigProvider,
	logger *zap.Logger,
) *GetMemberStatusUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GetMemberStatusUseCase{
		accounts: accounts,
		ledger:   ledger,
		config:   newConfigSource(provider, logger, NopMetrics{}),
		resolver: loyalty.NewTierResolver(),
	}
}

// Execute 執行查詢
//
// 錯誤處理：
// - ErrInvalidUserID: 訪客或無效 ID
// - 帳戶不存在不是錯誤：餘額為 0、等級為最低等級
func (uc *GetMemberStatusUseCase) Execute(query GetMemberStatusQuery) (*GetMemberStatusResult, error) {
	userID := loyalty.UserID(query.UserID)
	if !userID.IsValid() {
		return nil, loyalty.ErrInvalidUserID.WithContext("user_id", query.UserID)
	}

	balance := 0
	account, err := uc.accounts.CurrentAccount(userID)
	switch {
	case errors.Is(err, loyalty.ErrAccountNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to find account: %w", err)
	default:
		balance = account.Balance().Value()
	}

	config := uc.config.load()
	tier := uc.resolver.Resolve(balance, config)

	result := &GetMemberStatusResult{
		UserID:      query.UserID,
		Balance:     balance,
		TierLabel:   tier.Name,
		DiscountPct: tier.DiscountPct.String(),
	}
	if next, ok := uc.resolver.NextTier(balance, config); ok {
		result.HasNextTier = true
		result.NextTierLabel = next.Name
		result.PointsToNextTier = next.MinPoints - balance
	}

	limit := query.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	entries, err := uc.ledger.ListByUserID(nil, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	result.RecentEntries = make([]LedgerEntryView, 0, len(entries))
	for _, entry := range entries {
		result.RecentEntries = append(result.RecentEntries, LedgerEntryView{
			EntryID:      entry.ID.String(),
			OrderID:      int64(entry.OrderID),
			Delta:        entry.Delta,
			BalanceAfter: entry.BalanceAfter,
			Reason:       string(entry.Reason),
			CreatedAt:    entry.CreatedAt,
		})
	}

	return result, nil
}
