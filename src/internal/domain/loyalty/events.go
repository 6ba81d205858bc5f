package loyalty

import (
	"time"

	"github.com/google/uuid"
)

// 事件類型
const (
	EventTypeMemberInitialized     = "loyalty.member_initialized"
	EventTypePointsAwarded         = "loyalty.points_awarded"
	EventTypePointsDeducted        = "loyalty.points_deducted"
	EventTypeTierChanged           = "loyalty.tier_changed"
	EventTypeLegacyBalanceMigrated = "loyalty.legacy_balance_migrated"
)

// eventBase 所有會員帳戶事件共用的欄位
type eventBase struct {
	eventID    string
	userID     UserID
	occurredAt time.Time
}

func newEventBase(userID UserID) eventBase {
	return eventBase{
		eventID:    uuid.New().String(),
		userID:     userID,
		occurredAt: time.Now(),
	}
}

// EventID 實現 DomainEvent 介面
func (e eventBase) EventID() string { return e.eventID }

// OccurredAt 實現 DomainEvent 介面
func (e eventBase) OccurredAt() time.Time { return e.occurredAt }

// AggregateID 實現 DomainEvent 介面
func (e eventBase) AggregateID() string { return e.userID.String() }

// UserID 用戶 ID
func (e eventBase) UserID() UserID { return e.userID }

// ===========================
// MemberInitialized
// ===========================

// MemberInitializedEvent 會員帳戶初始化事件
type MemberInitializedEvent struct {
	eventBase
	tierLabel string
}

// EventType 實現 DomainEvent 介面
func (e *MemberInitializedEvent) EventType() string { return EventTypeMemberInitialized }

// TierLabel 初始等級
func (e *MemberInitializedEvent) TierLabel() string { return e.tierLabel }

// ===========================
// PointsAwarded
// ===========================

// PointsAwardedEvent 訂單完成發放積分事件
type PointsAwardedEvent struct {
	eventBase
	orderID      OrderID
	amount       PointsAmount
	balanceAfter PointsAmount
}

// EventType 實現 DomainEvent 介面
func (e *PointsAwardedEvent) EventType() string { return EventTypePointsAwarded }

// OrderID 來源訂單
func (e *PointsAwardedEvent) OrderID() OrderID { return e.orderID }

// Amount 發放積分
func (e *PointsAwardedEvent) Amount() PointsAmount { return e.amount }

// BalanceAfter 發放後餘額
func (e *PointsAwardedEvent) BalanceAfter() PointsAmount { return e.balanceAfter }

// ===========================
// PointsDeducted
// ===========================

// PointsDeductedEvent 兌換積分扣減事件
//
// requested 為訂單記錄的兌換積分，deducted 為實際扣減量（餘額不足時在零處截斷）
type PointsDeductedEvent struct {
	eventBase
	orderID      OrderID
	requested    PointsAmount
	deducted     PointsAmount
	balanceAfter PointsAmount
}

// EventType 實現 DomainEvent 介面
func (e *PointsDeductedEvent) EventType() string { return EventTypePointsDeducted }

// OrderID 來源訂單
func (e *PointsDeductedEvent) OrderID() OrderID { return e.orderID }

// Requested 訂單記錄的兌換積分
func (e *PointsDeductedEvent) Requested() PointsAmount { return e.requested }

// Deducted 實際扣減積分
func (e *PointsDeductedEvent) Deducted() PointsAmount { return e.deducted }

// BalanceAfter 扣減後餘額
func (e *PointsDeductedEvent) BalanceAfter() PointsAmount { return e.balanceAfter }

// ===========================
// TierChanged
// ===========================

// TierChangedEvent 會員等級變更事件
type TierChangedEvent struct {
	eventBase
	from string
	to   string
}

// EventType 實現 DomainEvent 介面
func (e *TierChangedEvent) EventType() string { return EventTypeTierChanged }

// From 原等級
func (e *TierChangedEvent) From() string { return e.from }

// To 新等級
func (e *TierChangedEvent) To() string { return e.to }

// ===========================
// LegacyBalanceMigrated
// ===========================

// LegacyBalanceMigratedEvent 舊版餘額欄位一次性遷移事件
type LegacyBalanceMigratedEvent struct {
	eventBase
	adopted      PointsAmount
	balanceAfter PointsAmount
}

// EventType 實現 DomainEvent 介面
func (e *LegacyBalanceMigratedEvent) EventType() string { return EventTypeLegacyBalanceMigrated }

// Adopted 採用的舊版積分
func (e *LegacyBalanceMigratedEvent) Adopted() PointsAmount { return e.adopted }

// BalanceAfter 遷移後餘額
func (e *LegacyBalanceMigratedEvent) BalanceAfter() PointsAmount { return e.balanceAfter }
