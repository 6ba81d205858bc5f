package loyalty

import (
	"time"

	"github.com/jackyeh168/shop_loyalty/src/internal/domain/shared"
)

// ===========================
// MemberAccount 聚合根
// ===========================

// MemberAccount 會員積分帳戶聚合根
//
// 業務不變條件：
// - balance >= 0（由 PointsAmount 值對象保證，所有扣減在零處截斷）
// - balance 只能經由 AwardPoints / DeductRedeemedPoints / AdoptLegacyBalance 變更
// - tierLabel 是由 TierResolver 推導的顯示欄位，不參與任何計算
//
// 舊版餘額欄位只在 legacyMigrated 為 false 時讀取一次，之後永不作為真相來源。
type MemberAccount struct {
	userID UserID

	balance   PointsAmount
	tierLabel string

	legacyPoints   int
	legacyMigrated bool

	createdAt time.Time
	updatedAt time.Time

	events []shared.DomainEvent
}

// NewMemberAccount 建立新註冊會員的帳戶
//
// 業務規則：
// - 初始餘額為 0，等級為設定中的最低等級
// - 新帳戶沒有舊版餘額可遷移，直接標記為已遷移
// - 發布 MemberInitialized 事件
func NewMemberAccount(userID UserID, initialTier Tier) (*MemberAccount, error) {
	if !userID.IsValid() {
		return nil, ErrInvalidUserID.WithContext(
			"user_id", int64(userID),
			"reason", "guest users have no points account",
		)
	}

	now := time.Now()
	account := &MemberAccount{
		userID:         userID,
		balance:        PointsAmount{},
		tierLabel:      initialTier.Name,
		legacyMigrated: true,
		createdAt:      now,
		updatedAt:      now,
		events:         make([]shared.DomainEvent, 0),
	}

	account.addEvent(&MemberInitializedEvent{
		eventBase: newEventBase(userID),
		tierLabel: initialTier.Name,
	})

	return account, nil
}

// ReconstructMemberAccount 從持久化存儲重建聚合根（僅供 Repository 使用，不發布事件）
//
// 資料庫中的負數餘額視為資料損壞，在零處截斷而不是拒絕讀取。
func ReconstructMemberAccount(
	userID UserID,
	balance int,
	legacyPoints int,
	tierLabel string,
	legacyMigrated bool,
	createdAt time.Time,
	updatedAt time.Time,
) (*MemberAccount, error) {
	if !userID.IsValid() {
		return nil, ErrInvalidUserID.WithContext(
			"user_id", int64(userID),
			"reason", "invalid user ID in database",
		)
	}

	return &MemberAccount{
		userID:         userID,
		balance:        ClampPointsAmount(balance),
		tierLabel:      tierLabel,
		legacyPoints:   legacyPoints,
		legacyMigrated: legacyMigrated,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
		events:         make([]shared.DomainEvent, 0),
	}, nil
}

// ===========================
// 查詢方法
// ===========================

// UserID 用戶 ID
func (a *MemberAccount) UserID() UserID { return a.userID }

// Balance 當前積分餘額
func (a *MemberAccount) Balance() PointsAmount { return a.balance }

// TierLabel 當前等級名稱
func (a *MemberAccount) TierLabel() string { return a.tierLabel }

// LegacyPoints 舊版積分欄位的值（只供遷移與持久化使用）
func (a *MemberAccount) LegacyPoints() int { return a.legacyPoints }

// LegacyMigrated 舊版餘額是否已處理
func (a *MemberAccount) LegacyMigrated() bool { return a.legacyMigrated }

// CreatedAt 創建時間
func (a *MemberAccount) CreatedAt() time.Time { return a.createdAt }

// UpdatedAt 最後更新時間
func (a *MemberAccount) UpdatedAt() time.Time { return a.updatedAt }

// ===========================
// 事件管理
// ===========================

func (a *MemberAccount) addEvent(event shared.DomainEvent) {
	a.events = append(a.events, event)
}

// PullEvents 獲取所有待發布事件並清空列表
func (a *MemberAccount) PullEvents() []shared.DomainEvent {
	events := a.events
	a.events = make([]shared.DomainEvent, 0)
	return events
}

// ===========================
// 命令方法
// ===========================

// AwardPoints 訂單完成發放積分
//
// 零積分不改變狀態也不發布事件。
func (a *MemberAccount) AwardPoints(amount PointsAmount, orderID OrderID) {
	if amount.IsZero() {
		return
	}

	a.balance = a.balance.Add(amount)
	a.updatedAt = time.Now()

	a.addEvent(&PointsAwardedEvent{
		eventBase:    newEventBase(a.userID),
		orderID:      orderID,
		amount:       amount,
		balanceAfter: a.balance,
	})
}

// DeductRedeemedPoints 扣減訂單兌換使用的積分
//
// 業務規則：
// - 新餘額 = max(0, 餘額 - 兌換積分)
// - 返回實際扣減的積分
func (a *MemberAccount) DeductRedeemedPoints(amount PointsAmount, orderID OrderID) PointsAmount {
	if amount.IsZero() {
		return PointsAmount{}
	}

	before := a.balance
	a.balance = a.balance.SubtractFloored(amount)
	a.updatedAt = time.Now()

	deducted := newPointsAmountUnchecked(before.Value() - a.balance.Value())
	a.addEvent(&PointsDeductedEvent{
		eventBase:    newEventBase(a.userID),
		orderID:      orderID,
		requested:    amount,
		deducted:     deducted,
		balanceAfter: a.balance,
	})

	return deducted
}

// RefreshTier 以 TierResolver 結果更新等級顯示欄位
// 等級有變化時發布 TierChanged 事件並返回 true
func (a *MemberAccount) RefreshTier(tier Tier) bool {
	if tier.Name == a.tierLabel {
		return false
	}

	from := a.tierLabel
	a.tierLabel = tier.Name
	a.updatedAt = time.Now()

	a.addEvent(&TierChangedEvent{
		eventBase: newEventBase(a.userID),
		from:      from,
		to:        tier.Name,
	})
	return true
}

// AdoptLegacyBalance 一次性採用舊版積分欄位
//
// 業務規則：
// - 已遷移過則不做任何事
// - 正式餘額為 0 且舊版積分 > 0 時採用舊版積分
// - 其餘情況只標記為已遷移（正式餘額優先）
func (a *MemberAccount) AdoptLegacyBalance() bool {
	if a.legacyMigrated {
		return false
	}

	a.legacyMigrated = true
	a.updatedAt = time.Now()

	if !a.balance.IsZero() || a.legacyPoints <= 0 {
		return false
	}

	adopted := ClampPointsAmount(a.legacyPoints)
	a.balance = adopted
	a.addEvent(&LegacyBalanceMigratedEvent{
		eventBase:    newEventBase(a.userID),
		adopted:      adopted,
		balanceAfter: a.balance,
	})
	return true
}
