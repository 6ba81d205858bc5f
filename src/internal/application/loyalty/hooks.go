package loyalty

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
)

// ===========================
// Hooks 宿主生命週期事件入口
// ===========================

// Hooks 將宿主分派的生命週期事件轉給對應的服務
//
// 核心內的任何錯誤（包括 panic）都在此記錄後吞下，
// 最壞情況是「不套用折扣 / 兌換」，不會讓購物車或結帳失敗。
type Hooks struct {
	cart   *CartService
	ledger *LedgerService
	logger *zap.Logger
}

// NewHooks 建構函數
func NewHooks(cart *CartService, ledger *LedgerService, logger *zap.Logger) *Hooks {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hooks{cart: cart, ledger: ledger, logger: logger}
}

// OnUserRegistered 新用戶註冊
func (h *Hooks) OnUserRegistered(userID loyalty.UserID) {
	defer h.recoverPanic("user_registered")

	if _, err := h.ledger.InitializeOnRegistration(userID); err != nil {
		h.logger.Error("failed to initialize member account",
			zap.Int64("user_id", int64(userID)),
			zap.Error(err),
		)
	}
}

// OnCartRecalculated 購物車重算
func (h *Hooks) OnCartRecalculated(cart loyalty.Cart) {
	defer h.recoverPanic("cart_recalculated")

	h.cart.OnCartRecalculated(cart)
}

// OnOrderCreated 結帳建立訂單
func (h *Hooks) OnOrderCreated(order loyalty.Order) {
	defer h.recoverPanic("order_created")

	if _, err := h.ledger.AttachSnapshot(order); err != nil {
		h.logger.Error("failed to attach redemption snapshot",
			zap.Int64("order_id", int64(order.ID)),
			zap.Error(err),
		)
	}
}

// OnOrderStatusChanged 訂單狀態變更
//
// processing / completed 觸發扣減；completed 另外觸發發放。
// 扣減先於發放，發放後的等級以扣減後的餘額計算。
func (h *Hooks) OnOrderStatusChanged(order loyalty.Order, status loyalty.OrderStatus) {
	defer h.recoverPanic("order_status_changed")

	if status.TriggersDeduction() {
		if _, err := h.ledger.DeductOnStatusReached(order, status); err != nil {
			h.logger.Error("failed to deduct redeemed points",
				zap.Int64("order_id", int64(order.ID)),
				zap.String("status", string(status)),
				zap.Error(err),
			)
		}
	}

	if status.TriggersAward() {
		if _, err := h.ledger.AwardOnCompletion(order); err != nil {
			h.logger.Error("failed to award points",
				zap.Int64("order_id", int64(order.ID)),
				zap.Error(err),
			)
		}
	}
}

func (h *Hooks) recoverPanic(hook string) {
	if r := recover(); r != nil {
		h.logger.Error("loyalty hook panicked",
			zap.String("hook", hook),
			zap.Error(fmt.Errorf("%v", r)),
		)
	}
}
