package persistence

import (
	"github.com/jackyeh168/shop_loyalty/src/internal/domain/shared"
	"gorm.io/gorm"
)

// ===========================
// GORM TransactionContext 實作
// ===========================

// gormTransactionContext 封裝事務中的 *gorm.DB
//
// 實作 shared.TransactionContext（標記介面），*gorm.DB 不會洩漏到 Domain Layer。
type gormTransactionContext struct {
	db *gorm.DB
}

// NewGORMTransactionContext 創建 GORM 事務上下文
func NewGORMTransactionContext(db *gorm.DB) shared.TransactionContext {
	return &gormTransactionContext{db: db}
}

// GetDB 獲取 GORM DB 連接（僅供 Infrastructure Layer 內部使用）
func (ctx *gormTransactionContext) GetDB() *gorm.DB {
	return ctx.db
}

// dbFrom 事務上下文中的 DB；ctx 為 nil 或不是 GORM 上下文時使用自動提交的 fallback
func dbFrom(ctx shared.TransactionContext, fallback *gorm.DB) *gorm.DB {
	if gormCtx, ok := ctx.(*gormTransactionContext); ok && gormCtx != nil {
		return gormCtx.GetDB()
	}
	return fallback
}
