package loyalty

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 訂單狀態（由宿主系統分派）
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusOnHold     OrderStatus = "on-hold"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
	OrderStatusFailed     OrderStatus = "failed"
)

// TriggersDeduction 該狀態是否觸發兌換積分扣減
func (s OrderStatus) TriggersDeduction() bool {
	return s == OrderStatusProcessing || s == OrderStatusCompleted
}

// TriggersAward 該狀態是否觸發消費積分發放
func (s OrderStatus) TriggersAward() bool {
	return s == OrderStatusCompleted
}

// Order 宿主訂單的核心所需欄位
type Order struct {
	ID     OrderID
	UserID UserID
	Total  decimal.Decimal

	// SessionKey 下單時的購物車會話鍵，用於取得兌換快照
	SessionKey string
}

// ===========================
// OrderRedemptionRecord
// ===========================

// OrderRedemptionRecord 訂單上的兌換與發放記錄
//
// 狀態機：
// - 兌換側：PENDING_SNAPSHOT → SNAPSHOT_ATTACHED → DEDUCTED（deducted 只設一次，永不重置）
// - 發放側：NOT_AWARDED → AWARDED（僅 AwardOnce 開啟時使用）
// 兩者由不同事件驅動、互不排斥。
//
// 旗標的「檢查並設置」由倉儲的條件更新完成（ClaimDeduction / ClaimAward），
// 此結構只是讀取到的狀態。
type OrderRedemptionRecord struct {
	orderID OrderID
	userID  UserID

	redeemedPoints PointsAmount
	redeemedAmount decimal.Decimal
	deducted       bool

	awarded       bool
	awardedPoints PointsAmount

	createdAt time.Time
	updatedAt time.Time
}

// NewOrderRedemptionRecord 由兌換快照建立訂單記錄（deducted = false）
func NewOrderRedemptionRecord(order Order, snapshot RedemptionSnapshot) (*OrderRedemptionRecord, error) {
	if !order.ID.IsValid() {
		return nil, ErrInvalidOrderID.WithContext("order_id", int64(order.ID))
	}
	if !order.UserID.IsValid() {
		return nil, ErrInvalidUserID.WithContext(
			"order_id", int64(order.ID),
			"user_id", int64(order.UserID),
		)
	}

	points, err := NewPointsAmount(snapshot.PointsToUse)
	if err != nil {
		return nil, err
	}
	amount := snapshot.RedeemAmount
	if amount.IsNegative() {
		return nil, ErrArithmeticGuard.WithContext(
			"order_id", int64(order.ID),
			"redeem_amount", amount.String(),
		)
	}

	now := time.Now()
	return &OrderRedemptionRecord{
		orderID:        order.ID,
		userID:         order.UserID,
		redeemedPoints: points,
		redeemedAmount: amount,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructOrderRedemptionRecord 從持久化存儲重建（僅供 Repository 使用）
func ReconstructOrderRedemptionRecord(
	orderID OrderID,
	userID UserID,
	redeemedPoints int,
	redeemedAmount decimal.Decimal,
	deducted bool,
	awarded bool,
	awardedPoints int,
	createdAt time.Time,
	updatedAt time.Time,
) (*OrderRedemptionRecord, error) {
	if !orderID.IsValid() {
		return nil, ErrInvalidOrderID.WithContext(
			"order_id", int64(orderID),
			"reason", "invalid order ID in database",
		)
	}

	return &OrderRedemptionRecord{
		orderID:        orderID,
		userID:         userID,
		redeemedPoints: ClampPointsAmount(redeemedPoints),
		redeemedAmount: redeemedAmount,
		deducted:       deducted,
		awarded:        awarded,
		awardedPoints:  ClampPointsAmount(awardedPoints),
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

// OrderID 訂單 ID
func (r *OrderRedemptionRecord) OrderID() OrderID { return r.orderID }

// UserID 用戶 ID
func (r *OrderRedemptionRecord) UserID() UserID { return r.userID }

// RedeemedPoints 兌換使用的積分
func (r *OrderRedemptionRecord) RedeemedPoints() PointsAmount { return r.redeemedPoints }

// RedeemedAmount 兌換抵扣的金額
func (r *OrderRedemptionRecord) RedeemedAmount() decimal.Decimal { return r.redeemedAmount }

// Deducted 兌換積分是否已扣減
func (r *OrderRedemptionRecord) Deducted() bool { return r.deducted }

// Awarded 消費積分是否已發放
func (r *OrderRedemptionRecord) Awarded() bool { return r.awarded }

// AwardedPoints 已發放的消費積分
func (r *OrderRedemptionRecord) AwardedPoints() PointsAmount { return r.awardedPoints }

// CreatedAt 創建時間
func (r *OrderRedemptionRecord) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt 最後更新時間
func (r *OrderRedemptionRecord) UpdatedAt() time.Time { return r.updatedAt }
