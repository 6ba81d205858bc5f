package persistence

import (
	"github.com/jackyeh168/shop_loyalty/src/internal/domain/shared"
	"gorm.io/gorm"
)

// ===========================
// GORM TransactionManager 實作
// ===========================

// GORMTransactionManager 以 gorm.DB.Transaction 實作 shared.TransactionManager
//
// 保證：
// - fn 返回 nil 時提交，返回錯誤時回滾並原樣返回該錯誤
// - fn panic 時回滾後重新 panic
type GORMTransactionManager struct {
	db *gorm.DB
}

// NewGORMTransactionManager 創建事務管理器
func NewGORMTransactionManager(db *gorm.DB) shared.TransactionManager {
	return &GORMTransactionManager{db: db}
}

// InTransaction 在事務中執行 fn
func (m *GORMTransactionManager) InTransaction(fn func(ctx shared.TransactionContext) error) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMTransactionContext(tx))
	})
}
