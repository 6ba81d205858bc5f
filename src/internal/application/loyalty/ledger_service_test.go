package loyalty

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
	"github.com/jackyeh168/shop_loyalty/src/internal/domain/shared"
)

// ===========================
// LedgerService 測試
// ===========================

func seedAccount(t *testing.T, repo *MockMemberAccountRepository, userID loyalty.UserID, balance int) {
	t.Helper()
	account, err := loyalty.ReconstructMemberAccount(userID, balance, 0, "普通会员", true, time.Now(), time.Now())
	require.NoError(t, err)
	repo.seed(account)
}

func attachOrder(t *testing.T, f *ledgerFixture, order loyalty.Order, points int, amount string) {
	t.Helper()
	f.snapshots.SetSnapshot(order.SessionKey, loyalty.RedemptionSnapshot{
		PointsToUse:  points,
		RedeemAmount: decimal.RequireFromString(amount),
	})
	attached, err := f.service.AttachSnapshot(order)
	require.NoError(t, err)
	require.True(t, attached)
}

func testOrder(id loyalty.OrderID, user loyalty.UserID, total string) loyalty.Order {
	return loyalty.Order{
		ID:         id,
		UserID:     user,
		Total:      decimal.RequireFromString(total),
		SessionKey: "session-" + user.String(),
	}
}

// Test 1: 新用戶註冊建立帳戶，重複調用為 no-op
func TestLedgerService_InitializeOnRegistration_Idempotent(t *testing.T) {
	// Arrange
	f := newLedgerFixture(defaultProvider())

	// Act
	created, err := f.service.InitializeOnRegistration(42)
	require.NoError(t, err)
	again, err := f.service.InitializeOnRegistration(42)

	// Assert
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, again)
	assert.Equal(t, 0, f.accounts.balanceOf(42))
	assert.Equal(t, 2, f.accounts.SaveCallCount)
}

// Test 2: 訪客無法初始化帳戶
func TestLedgerService_InitializeOnRegistration_Guest_ReturnsError(t *testing.T) {
	f := newLedgerFixture(defaultProvider())

	created, err := f.service.InitializeOnRegistration(0)

	assert.False(t, created)
	assert.True(t, errors.Is(err, loyalty.ErrInvalidUserID))
	assert.Equal(t, 0, f.txManager.InTransactionCallCount)
}

// Test 3: 快照寫入訂單後從會話中刪除
func TestLedgerService_AttachSnapshot_ConsumesSnapshot(t *testing.T) {
	f := newLedgerFixture(defaultProvider())
	order := testOrder(100, 42, "40.00")

	attachOrder(t, f, order, 2000, "20.00")

	_, ok := f.snapshots.GetSnapshot(order.SessionKey)
	assert.False(t, ok, "快照只被消費一次")

	row := f.orders.row(100)
	require.NotNil(t, row)
	assert.Equal(t, 2000, row.redeemedPoints)
	assert.False(t, row.deducted)
}

// Test 4: 空快照或沒有快照不寫入記錄
func TestLedgerService_AttachSnapshot_EmptySnapshot_NoOp(t *testing.T) {
	f := newLedgerFixture(defaultProvider())
	order := testOrder(100, 42, "40.00")

	attached, err := f.service.AttachSnapshot(order)
	require.NoError(t, err)
	assert.False(t, attached)

	f.snapshots.SetSnapshot(order.SessionKey, loyalty.ZeroSnapshot())
	attached, err = f.service.AttachSnapshot(order)
	require.NoError(t, err)
	assert.False(t, attached)

	assert.Nil(t, f.orders.row(100))
	assert.Equal(t, 0, f.txManager.InTransactionCallCount)
}

// Test 5: 重複附加快照為 no-op
func TestLedgerService_AttachSnapshot_Duplicate_NoOp(t *testing.T) {
	f := newLedgerFixture(defaultProvider())
	order := testOrder(100, 42, "40.00")
	attachOrder(t, f, order, 2000, "20.00")

	f.snapshots.SetSnapshot(order.SessionKey, loyalty.RedemptionSnapshot{PointsToUse: 500, RedeemAmount: decimal.RequireFromString("5")})
	attached, err := f.service.AttachSnapshot(order)

	require.NoError(t, err)
	assert.False(t, attached)
	assert.Equal(t, 2000, f.orders.row(100).redeemedPoints, "原記錄不被覆寫")
}

// Test 6: 扣減兌換積分（場景：10000 - 2000 = 8000）
func TestLedgerService_DeductOnStatusReached_Success(t *testing.T) {
	f := newLedgerFixture(defaultProvider())
	seedAccount(t, f.accounts, 42, 10000)
	order := testOrder(100, 42, "40.00")
	attachOrder(t, f, order, 2000, "20.00")

	result, err := f.service.DeductOnStatusReached(order, loyalty.OrderStatusProcessing)

	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.False(t, result.Duplicate)
	assert.Equal(t, 2000, result.DeductedPoints)
	assert.Equal(t, 8000, result.BalanceAfter)
	assert.Equal(t, 8000, f.accounts.balanceOf(42))
	assert.True(t, f.orders.row(100).deducted)

	entries := f.ledger.all()
	require.Len(t, entries, 1)
	assert.Equal(t, -2000, entries[0].Delta)
	assert.Equal(t, loyalty.LedgerReasonRedemption, entries[0].Reason)
}

// Test 7: 重複的狀態事件只扣減一次
func TestLedgerService_DeductOnStatusReached_Idempotent(t *testing.T) {
	f := newLedgerFixture(defaultProvider())
	seedAccount(t, f.accounts, 42, 10000)
	order := testOrder(100, 42, "40.00")
	attachOrder(t, f, order, 2000, "20.00")

	_, err := f.service.DeductOnStatusReached(order, loyalty.OrderStatusProcessing)
	require.NoError(t, err)
	second, err := f.service.DeductOnStatusReached(order, loyalty.OrderStatusCompleted)
	require.NoError(t, err)

	assert.True(t, second.Duplicate)
	assert.False(t, second.Applied)
	assert.Equal(t, 8000, f.accounts.balanceOf(42))
	assert.Len(t, f.ledger.all(), 1)
}

// Test 8: 並發送達的同一狀態事件只扣減一次
func TestLedgerService_DeductOnStatusReached_Concurrent(t *testing.T) {
	f := newLedgerFixture(defaultProvider())
	seedAccount(t, f.accounts, 42, 10000)
	order := testOrder(100, 42, "40.00")
	attachOrder(t, f, order, 2000, "20.00")

	var wg sync.WaitGroup
	var mu sync.Mutex
	applied := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.service.DeductOnStatusReached(order, loyalty.OrderStatusProcessing)
			if err == nil && result.Applied {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, applied)
	assert.Equal(t, 8000, f.accounts.balanceOf(42))
}

// Test 9: 餘額不足時扣減在零處截斷
func TestLedgerService_DeductOnStatusReached_FloorsAtZero(t *testing.T) {
	f := newLedgerFixture(defaultProvider())
	seedAccount(t, f.accounts, 42, 300)
	order := testOrder(100, 42, "40.00")
	attachOrder(t, f, order, 2000, "20.00")

	result, err := f.service.DeductOnStatusReached(order, loyalty.OrderStatusCompleted)

	require.NoError(t, err)
	assert.Equal(t, 300, result.DeductedPoints)
	assert.Equal(t, 0, f.accounts.balanceOf(42))
}

// Test 10: 非觸發狀態或沒有兌換記錄不做任何事
func TestLedgerService_DeductOnStatusReached_NoOps(t *testing.T) {
	f := newLedgerFixture(defaultProvider())
	seedAccount(t, f.accounts, 42, 10000)
	order := testOrder(100, 42, "40.00")

	result, err := f.service.DeductOnStatusReached(order, loyalty.OrderStatusProcessing)
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.False(t, result.Duplicate)

	attachOrder(t, f, order, 2000, "20.00")
	for _, status := range []loyalty.OrderStatus{
		loyalty.OrderStatusPending,
		loyalty.OrderStatusOnHold,
		loyalty.OrderStatusCancelled,
		loyalty.OrderStatusRefunded,
		loyalty.OrderStatusFailed,
	} {
		result, err := f.service.DeductOnStatusReached(order, status)
		require.NoError(t, err)
		assert.False(t, result.Applied, string(status))
	}

	assert.Equal(t, 10000, f.accounts.balanceOf(42))
	assert.False(t, f.orders.row(100).deducted)
}

// Test 11: 事務失敗時返回錯誤且不扣減
func TestLedgerService_DeductOnStatusReached_TransactionFails(t *testing.T) {
	f := newLedgerFixture(defaultProvider())
	seedAccount(t, f.accounts, 42, 10000)
	order := testOrder(100, 42, "40.00")
	attachOrder(t, f, order, 2000, "20.00")

	dbError := errors.New("database connection lost")
	f.txManager.ShouldFail = true
	f.txManager.FailError = dbError

	result, err := f.service.DeductOnStatusReached(order, loyalty.OrderStatusProcessing)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, dbError)
	assert.Equal(t, 10000, f.accounts.balanceOf(42))
}

// Test 12: 訂單完成發放 floor(123.45) = 123 積分
func TestLedgerService_AwardOnCompletion_Success(t *testing.T) {
	f := newLedgerFixture(defaultProvider())
	seedAccount(t, f.accounts, 42, 0)

	result, err := f.service.AwardOnCompletion(testOrder(100, 42, "123.45"))

	require.NoError(t, err)
	assert.True(t, result.Awarded)
	assert.Equal(t, 123, result.EarnedPoints)
	assert.Equal(t, 123, f.accounts.balanceOf(42))
	assert.Equal(t, "普通会员", result.TierLabel)
	assert.False(t, result.TierChanged)
}

// Test 13: 發放後等級升級
func TestLedgerService_AwardOnCompletion_TierUpgrade(t *testing.T) {
	f := newLedgerFixture(defaultProvider())
	seedAccount(t, f.accounts, 42, 5900)

	result, err := f.service.AwardOnCompletion(testOrder(100, 42, "200.00"))

	require.NoError(t, err)
	assert.Equal(t, 6100, result.BalanceAfter)
	assert.True(t, result.TierChanged)
	assert.Equal(t, "金牌会员", result.TierLabel)
}

// Test 14: AwardOnce 開啟時重複的完成事件不重複發放
func TestLedgerService_AwardOnCompletion_AwardOnce(t *testing.T) {
	f := newLedgerFixture(defaultProvider())
	seedAccount(t, f.accounts, 42, 0)
	order := testOrder(100, 42, "50.00")

	_, err := f.service.AwardOnCompletion(order)
	require.NoError(t, err)
	second, err := f.service.AwardOnCompletion(order)
	require.NoError(t, err)

	assert.True(t, second.Duplicate)
	assert.Equal(t, 50, f.accounts.balanceOf(42))
	assert.True(t, f.orders.row(100).awarded)
}

// Test 15: AwardOnce 關閉時每次完成事件都發放
func TestLedgerService_AwardOnCompletion_Unguarded(t *testing.T) {
	config := loyalty.DefaultConfig()
	config.AwardOnce = false
	f := newLedgerFixture(staticConfig{config: config})
	seedAccount(t, f.accounts, 42, 0)
	order := testOrder(100, 42, "50.00")

	_, err := f.service.AwardOnCompletion(order)
	require.NoError(t, err)
	_, err = f.service.AwardOnCompletion(order)
	require.NoError(t, err)

	assert.Equal(t, 100, f.accounts.balanceOf(42))
	assert.Nil(t, f.orders.row(100))
}

// Test 16: 沒有帳戶的用戶在發放時建立帳戶
func TestLedgerService_AwardOnCompletion_CreatesMissingAccount(t *testing.T) {
	f := newLedgerFixture(defaultProvider())

	result, err := f.service.AwardOnCompletion(testOrder(100, 42, "10.00"))

	require.NoError(t, err)
	assert.Equal(t, 10, result.BalanceAfter)
	assert.Equal(t, 10, f.accounts.balanceOf(42))
}

// Test 17: 功能關閉或訪客訂單不發放
func TestLedgerService_AwardOnCompletion_DisabledOrGuest(t *testing.T) {
	config := loyalty.DefaultConfig()
	config.Enabled = false
	f := newLedgerFixture(staticConfig{config: config})

	result, err := f.service.AwardOnCompletion(testOrder(100, 42, "10.00"))
	require.NoError(t, err)
	assert.False(t, result.Awarded)

	result, err = f.service.AwardOnCompletion(testOrder(101, 0, "10.00"))
	require.NoError(t, err)
	assert.False(t, result.Awarded)
	assert.Equal(t, 0, f.txManager.InTransactionCallCount)
}

// Test 18: 讀取帳戶時一次性採用舊版餘額並寫入流水
func TestLedgerService_CurrentAccount_MigratesLegacyBalance(t *testing.T) {
	f := newLedgerFixture(defaultProvider())
	legacy, err := loyalty.ReconstructMemberAccount(42, 0, 750, "普通会员", false, time.Now(), time.Now())
	require.NoError(t, err)
	f.accounts.seed(legacy)

	account, err := f.service.CurrentAccount(42)
	require.NoError(t, err)
	assert.Equal(t, 750, account.Balance().Value())

	_, err = f.service.CurrentAccount(42)
	require.NoError(t, err)

	entries := f.ledger.all()
	require.Len(t, entries, 1)
	assert.Equal(t, loyalty.LedgerReasonLegacyMigration, entries[0].Reason)
	assert.Equal(t, 1, f.accounts.UpdateCallCount)
}

// Test 19: 設定讀取失敗時回退到預設等級表
func TestLedgerService_ConfigProviderFails_FallsBackToDefault(t *testing.T) {
	provider := new(MockConfigProvider)
	provider.On("LoadLoyaltyConfig").Return(loyalty.LoyaltyConfig{}, errors.New("option missing"))
	f := newLedgerFixture(provider)
	seedAccount(t, f.accounts, 42, 0)

	result, err := f.service.AwardOnCompletion(testOrder(100, 42, "99.90"))

	require.NoError(t, err)
	assert.Equal(t, 99, result.EarnedPoints)
	provider.AssertExpectations(t)
}

// Test 20: 事務提交後發布事件
func TestLedgerService_PublishesEvents(t *testing.T) {
	publisher := new(MockEventPublisher)
	publisher.On("PublishBatch", mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 2 &&
			events[0].EventType() == loyalty.EventTypePointsAwarded &&
			events[1].EventType() == loyalty.EventTypeTierChanged
	})).Return(nil).Once()

	f := newLedgerFixture(defaultProvider())
	f.service = NewLedgerService(LedgerDependencies{
		Accounts:  f.accounts,
		Orders:    f.orders,
		Ledger:    f.ledger,
		Snapshots: f.snapshots,
		TxManager: f.txManager,
		Config:    defaultProvider(),
		Publisher: publisher,
	})
	seedAccount(t, f.accounts, 42, 400)

	_, err := f.service.AwardOnCompletion(testOrder(100, 42, "200.00"))

	require.NoError(t, err)
	publisher.AssertExpectations(t)
}
