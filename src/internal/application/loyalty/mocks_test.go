package loyalty

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
	"github.com/jackyeh168/shop_loyalty/src/internal/domain/shared"
)

// ===========================
// Mock Repositories（有狀態）
// ===========================

type MockMemberAccountRepository struct {
	mu              sync.Mutex
	accounts        map[loyalty.UserID]*loyalty.MemberAccount
	SaveCallCount   int
	UpdateCallCount int
	FindErr         error
}

func NewMockMemberAccountRepository() *MockMemberAccountRepository {
	return &MockMemberAccountRepository{
		accounts: make(map[loyalty.UserID]*loyalty.MemberAccount),
	}
}

func (m *MockMemberAccountRepository) Save(ctx shared.TransactionContext, account *loyalty.MemberAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCallCount++

	if _, exists := m.accounts[account.UserID()]; exists {
		return loyalty.ErrAccountAlreadyExists
	}
	m.accounts[account.UserID()] = account
	return nil
}

func (m *MockMemberAccountRepository) FindByUserID(ctx shared.TransactionContext, userID loyalty.UserID) (*loyalty.MemberAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FindErr != nil {
		return nil, m.FindErr
	}
	account, exists := m.accounts[userID]
	if !exists {
		return nil, loyalty.ErrAccountNotFound
	}
	return account, nil
}

func (m *MockMemberAccountRepository) Update(ctx shared.TransactionContext, account *loyalty.MemberAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCallCount++

	if _, exists := m.accounts[account.UserID()]; !exists {
		return loyalty.ErrAccountNotFound
	}
	m.accounts[account.UserID()] = account
	return nil
}

// seed 直接放入帳戶（模擬資料庫中已存在）
func (m *MockMemberAccountRepository) seed(account *loyalty.MemberAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.UserID()] = account
}

func (m *MockMemberAccountRepository) balanceOf(userID loyalty.UserID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, ok := m.accounts[userID]; ok {
		return account.Balance().Value()
	}
	return -1
}

type orderRow struct {
	userID         loyalty.UserID
	redeemedPoints int
	redeemedAmount decimal.Decimal
	deducted       bool
	awarded        bool
	awardedPoints  int
}

type MockOrderRecordRepository struct {
	mu     sync.Mutex
	orders map[loyalty.OrderID]*orderRow
}

func NewMockOrderRecordRepository() *MockOrderRecordRepository {
	return &MockOrderRecordRepository{
		orders: make(map[loyalty.OrderID]*orderRow),
	}
}

func (m *MockOrderRecordRepository) Save(ctx shared.TransactionContext, record *loyalty.OrderRedemptionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.orders[record.OrderID()]; exists {
		return loyalty.ErrOrderRecordAlreadyExists
	}
	m.orders[record.OrderID()] = &orderRow{
		userID:         record.UserID(),
		redeemedPoints: record.RedeemedPoints().Value(),
		redeemedAmount: record.RedeemedAmount(),
		deducted:       record.Deducted(),
	}
	return nil
}

func (m *MockOrderRecordRepository) FindByOrderID(ctx shared.TransactionContext, orderID loyalty.OrderID) (*loyalty.OrderRedemptionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, exists := m.orders[orderID]
	if !exists {
		return nil, loyalty.ErrOrderRecordNotFound
	}
	return loyalty.ReconstructOrderRedemptionRecord(
		orderID, row.userID, row.redeemedPoints, row.redeemedAmount,
		row.deducted, row.awarded, row.awardedPoints, time.Time{}, time.Time{},
	)
}

func (m *MockOrderRecordRepository) ClaimDeduction(ctx shared.TransactionContext, orderID loyalty.OrderID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, exists := m.orders[orderID]
	if !exists || row.deducted {
		return false, nil
	}
	row.deducted = true
	return true, nil
}

func (m *MockOrderRecordRepository) ClaimAward(ctx shared.TransactionContext, orderID loyalty.OrderID, userID loyalty.UserID, points loyalty.PointsAmount) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, exists := m.orders[orderID]
	if !exists {
		row = &orderRow{userID: userID, redeemedAmount: decimal.Zero}
		m.orders[orderID] = row
	}
	if row.awarded {
		return false, nil
	}
	row.awarded = true
	row.awardedPoints = points.Value()
	return true, nil
}

func (m *MockOrderRecordRepository) row(orderID loyalty.OrderID) *orderRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[orderID]
}

type MockLedgerEntryRepository struct {
	mu      sync.Mutex
	entries []loyalty.LedgerEntry
}

func NewMockLedgerEntryRepository() *MockLedgerEntryRepository {
	return &MockLedgerEntryRepository{}
}

func (m *MockLedgerEntryRepository) Append(ctx shared.TransactionContext, entries []loyalty.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *MockLedgerEntryRepository) ListByUserID(ctx shared.TransactionContext, userID loyalty.UserID, limit int) ([]loyalty.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]loyalty.LedgerEntry, 0)
	for i := len(m.entries) - 1; i >= 0 && len(result) < limit; i-- {
		if m.entries[i].UserID == userID {
			result = append(result, m.entries[i])
		}
	}
	return result, nil
}

func (m *MockLedgerEntryRepository) all() []loyalty.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]loyalty.LedgerEntry(nil), m.entries...)
}

// ===========================
// Mock SnapshotStore
// ===========================

type MockSnapshotStore struct {
	mu        sync.Mutex
	snapshots map[string]loyalty.RedemptionSnapshot
}

func NewMockSnapshotStore() *MockSnapshotStore {
	return &MockSnapshotStore{snapshots: make(map[string]loyalty.RedemptionSnapshot)}
}

func (m *MockSnapshotStore) GetSnapshot(key string) (loyalty.RedemptionSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot, ok := m.snapshots[key]
	return snapshot, ok
}

func (m *MockSnapshotStore) SetSnapshot(key string, snapshot loyalty.RedemptionSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[key] = snapshot
}

func (m *MockSnapshotStore) DeleteSnapshot(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, key)
}

// ===========================
// Mock TransactionManager
// ===========================

type MockTransactionManager struct {
	mu                     sync.Mutex
	InTransactionCallCount int
	ShouldFail             bool
	FailError              error
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) InTransaction(fn func(ctx shared.TransactionContext) error) error {
	m.mu.Lock()
	m.InTransactionCallCount++
	fail := m.ShouldFail
	m.mu.Unlock()

	if fail {
		return m.FailError
	}

	// mock 不需要真正的事務上下文
	var ctx shared.TransactionContext = nil
	return fn(ctx)
}

// ===========================
// testify mocks
// ===========================

type MockConfigProvider struct {
	mock.Mock
}

func (m *MockConfigProvider) LoadLoyaltyConfig() (loyalty.LoyaltyConfig, error) {
	args := m.Called()
	return args.Get(0).(loyalty.LoyaltyConfig), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event shared.DomainEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(events []shared.DomainEvent) error {
	args := m.Called(events)
	return args.Error(0)
}

type appliedFee struct {
	Label  string
	Amount decimal.Decimal
}

// MockCart 記錄加入的費用行
type MockCart struct {
	sessionKey string
	userID     loyalty.UserID
	lines      []loyalty.CartLine
	fees       []appliedFee
}

func (c *MockCart) SessionKey() string        { return c.sessionKey }
func (c *MockCart) UserID() loyalty.UserID    { return c.userID }
func (c *MockCart) Lines() []loyalty.CartLine { return c.lines }
func (c *MockCart) AddFee(label string, amount decimal.Decimal) {
	c.fees = append(c.fees, appliedFee{Label: label, Amount: amount})
}

func (c *MockCart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.LineSubtotal)
	}
	return total
}

// ===========================
// 測試夾具
// ===========================

type ledgerFixture struct {
	accounts  *MockMemberAccountRepository
	orders    *MockOrderRecordRepository
	ledger    *MockLedgerEntryRepository
	snapshots *MockSnapshotStore
	txManager *MockTransactionManager
	service   *LedgerService
}

func newLedgerFixture(provider loyalty.ConfigProvider) *ledgerFixture {
	f := &ledgerFixture{
		accounts:  NewMockMemberAccountRepository(),
		orders:    NewMockOrderRecordRepository(),
		ledger:    NewMockLedgerEntryRepository(),
		snapshots: NewMockSnapshotStore(),
		txManager: NewMockTransactionManager(),
	}
	f.service = NewLedgerService(LedgerDependencies{
		Accounts:  f.accounts,
		Orders:    f.orders,
		Ledger:    f.ledger,
		Snapshots: f.snapshots,
		TxManager: f.txManager,
		Config:    provider,
	})
	return f
}

// staticConfig 固定返回同一份設定
type staticConfig struct {
	config loyalty.LoyaltyConfig
}

func (s staticConfig) LoadLoyaltyConfig() (loyalty.LoyaltyConfig, error) {
	return s.config, nil
}

func defaultProvider() loyalty.ConfigProvider {
	return staticConfig{config: loyalty.DefaultConfig()}
}
