package persistence

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ===========================
// GORM Model 定義
// ===========================

// MemberAccountModel 會員積分帳戶（用戶屬性存儲）
//
// Points 是唯一的正式餘額欄位；LegacyPoints 只在 LegacyMigrated 為 false 時讀取一次。
type MemberAccountModel struct {
	UserID         int64          `gorm:"primaryKey;autoIncrement:false"`
	Points         int            `gorm:"not null;default:0;check:points >= 0"`
	LegacyPoints   int            `gorm:"not null;default:0"`
	LegacyMigrated bool           `gorm:"not null;default:false"`
	TierLabel      string         `gorm:"size:64;not null"`
	CreatedAt      time.Time      `gorm:"not null"`
	UpdatedAt      time.Time      `gorm:"not null"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

// TableName 指定表名
func (MemberAccountModel) TableName() string {
	return "member_accounts"
}

// OrderRedemptionRecordModel 訂單兌換與發放記錄（訂單中繼資料存儲）
//
// RedeemedAmount 以字串保存，避免浮點誤差。
type OrderRedemptionRecordModel struct {
	OrderID        int64           `gorm:"primaryKey;autoIncrement:false"`
	UserID         int64           `gorm:"index;not null"`
	RedeemedPoints int             `gorm:"not null;default:0"`
	RedeemedAmount decimal.Decimal `gorm:"type:varchar(32);not null"`
	Deducted       bool            `gorm:"not null;default:false"`
	Awarded        bool            `gorm:"not null;default:false"`
	AwardedPoints  int             `gorm:"not null;default:0"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName 指定表名
func (OrderRedemptionRecordModel) TableName() string {
	return "order_redemption_records"
}

// LedgerEntryModel 積分流水（只追加）
//
// Seq 提供穩定的寫入順序；EntryID 為對外的 UUID。
type LedgerEntryModel struct {
	Seq          uint64    `gorm:"primaryKey;autoIncrement"`
	EntryID      string    `gorm:"type:uuid;uniqueIndex;not null"`
	UserID       int64     `gorm:"index;not null"`
	OrderID      int64     `gorm:"index;not null;default:0"`
	Delta        int       `gorm:"not null"`
	BalanceAfter int       `gorm:"not null"`
	Reason       string    `gorm:"size:32;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName 指定表名
func (LedgerEntryModel) TableName() string {
	return "points_ledger_entries"
}

// AutoMigrate 建立或更新所有表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&MemberAccountModel{},
		&OrderRedemptionRecordModel{},
		&LedgerEntryModel{},
	)
}
