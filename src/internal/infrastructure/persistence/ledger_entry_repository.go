package persistence

import (
	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
	"github.com/jackyeh168/shop_loyalty/src/internal/domain/shared"
	"gorm.io/gorm"
)

// GORMLedgerEntryRepository 積分流水倉儲（只追加，沒有更新與刪除）
type GORMLedgerEntryRepository struct {
	db     *gorm.DB
	errors errorMapping
}

// NewLedgerEntryRepository 創建 GORM Repository 實例
func NewLedgerEntryRepository(db *gorm.DB) loyalty.LedgerEntryRepository {
	return &GORMLedgerEntryRepository{db: db}
}

// Append 批次寫入流水
func (r *GORMLedgerEntryRepository) Append(ctx shared.TransactionContext, entries []loyalty.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	db := dbFrom(ctx, r.db)

	models := make([]LedgerEntryModel, 0, len(entries))
	for _, entry := range entries {
		models = append(models, ledgerEntryToGORM(entry))
	}

	if err := db.Create(&models).Error; err != nil {
		return r.errors.mapError(err)
	}
	return nil
}

// ListByUserID 最近的流水（新到舊）
func (r *GORMLedgerEntryRepository) ListByUserID(ctx shared.TransactionContext, userID loyalty.UserID, limit int) ([]loyalty.LedgerEntry, error) {
	db := dbFrom(ctx, r.db)

	var models []LedgerEntryModel
	query := db.Where("user_id = ?", int64(userID)).Order("seq DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, r.errors.mapError(err)
	}

	entries := make([]loyalty.LedgerEntry, 0, len(models))
	for i := range models {
		entry, err := ledgerEntryToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
