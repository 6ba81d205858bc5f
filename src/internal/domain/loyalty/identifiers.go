package loyalty

import (
	"strconv"

	"github.com/jackyeh168/shop_loyalty/src/internal/domain/shared"
)

// ===========================
// 宿主系統識別符
// ===========================
//
// 用戶、訂單、商品的 ID 由商店宿主系統分配（自增整數），
// 核心只做有效性檢查，不負責生成。

// UserID 用戶 ID（0 代表訪客）
type UserID int64

// IsValid 是否為已登入的用戶
func (id UserID) IsValid() bool {
	return id > 0
}

// String 字串表示
func (id UserID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// OrderID 訂單 ID
type OrderID int64

// IsValid 是否為有效訂單 ID
func (id OrderID) IsValid() bool {
	return id > 0
}

// String 字串表示
func (id OrderID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ProductID 商品或變體 ID（0 代表無變體）
type ProductID int64

// CategoryID 商品分類 ID
type CategoryID int64

// ===========================
// LedgerEntryID - 積分流水 ID
// ===========================

// LedgerEntryMarker 是 LedgerEntryID 的標記類型
type LedgerEntryMarker struct{}

// LedgerEntryID 積分流水記錄的唯一標識符（由核心生成）
type LedgerEntryID = shared.EntityID[LedgerEntryMarker]

// NewLedgerEntryID 生成新的積分流水 ID
func NewLedgerEntryID() LedgerEntryID {
	return shared.NewEntityID[LedgerEntryMarker]()
}

// LedgerEntryIDFromString 從字串解析積分流水 ID（資料庫讀取時使用）
func LedgerEntryIDFromString(s string) (LedgerEntryID, error) {
	return shared.EntityIDFromString[LedgerEntryMarker](s, ErrInvalidLedgerEntryID)
}
