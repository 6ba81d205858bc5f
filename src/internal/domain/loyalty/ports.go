package loyalty

import (
	"github.com/shopspring/decimal"
)

// ===========================
// 宿主協作者介面
// ===========================

// ConfigProvider 會員積分設定來源
//
// 每次購物車計算或訂單事件調用一次；返回錯誤時調用方回退到 DefaultConfig()。
type ConfigProvider interface {
	LoadLoyaltyConfig() (LoyaltyConfig, error)
}

// Cart 宿主的即時購物車
type Cart interface {
	// SessionKey 購物車所屬的會話鍵
	SessionKey() string
	// UserID 登入用戶（訪客為 0）
	UserID() UserID
	Lines() []CartLine
	// Subtotal 折扣前小計
	Subtotal() decimal.Decimal
	// AddFee 新增費用行，負數代表折扣
	AddFee(label string, amount decimal.Decimal)
}

// SnapshotStore 會話範圍的兌換快照存儲
//
// 每次購物車重算都以 SetSnapshot 覆寫（不合併），結帳時讀取後刪除。
type SnapshotStore interface {
	GetSnapshot(sessionKey string) (RedemptionSnapshot, bool)
	SetSnapshot(sessionKey string, snapshot RedemptionSnapshot)
	DeleteSnapshot(sessionKey string)
}
