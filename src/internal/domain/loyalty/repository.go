package loyalty

import "github.com/jackyeh168/shop_loyalty/src/internal/domain/shared"

// ===========================
// Repository 介面
// ===========================
//
// Domain Layer 定義介面，Infrastructure Layer 實作。
// 寫操作的 ctx 必須為 non-nil（在 TransactionManager 的事務中），讀操作的 ctx 可為 nil。

// MemberAccountRepository 會員積分帳戶倉儲（用戶屬性存儲）
type MemberAccountRepository interface {
	// Save 保存新帳戶
	// 錯誤：ErrAccountAlreadyExists（同一用戶已有帳戶）
	Save(ctx shared.TransactionContext, account *MemberAccount) error

	// FindByUserID 根據用戶 ID 查找帳戶
	// 錯誤：ErrAccountNotFound
	FindByUserID(ctx shared.TransactionContext, userID UserID) (*MemberAccount, error)

	// Update 更新帳戶餘額、等級與遷移狀態
	// 錯誤：ErrAccountNotFound
	Update(ctx shared.TransactionContext, account *MemberAccount) error
}

// OrderRecordRepository 訂單兌換記錄倉儲（訂單中繼資料存儲）
type OrderRecordRepository interface {
	// Save 保存新記錄
	// 錯誤：ErrOrderRecordAlreadyExists（快照只能附加一次）
	Save(ctx shared.TransactionContext, record *OrderRedemptionRecord) error

	// FindByOrderID 根據訂單 ID 查找記錄
	// 錯誤：ErrOrderRecordNotFound
	FindByOrderID(ctx shared.TransactionContext, orderID OrderID) (*OrderRedemptionRecord, error)

	// ClaimDeduction 以單一條件更新將 deducted 由 false 設為 true
	// 返回 true 代表本次調用取得扣減權；false 代表已扣減過或記錄不存在
	ClaimDeduction(ctx shared.TransactionContext, orderID OrderID) (bool, error)

	// ClaimAward 以單一條件更新將 awarded 由 false 設為 true 並記錄發放積分
	// 記錄不存在時建立一筆僅含發放資訊的記錄
	// 返回 true 代表本次調用取得發放權
	ClaimAward(ctx shared.TransactionContext, orderID OrderID, userID UserID, points PointsAmount) (bool, error)
}

// LedgerEntryRepository 積分流水倉儲（只追加）
type LedgerEntryRepository interface {
	Append(ctx shared.TransactionContext, entries []LedgerEntry) error
	ListByUserID(ctx shared.TransactionContext, userID UserID, limit int) ([]LedgerEntry, error)
}
