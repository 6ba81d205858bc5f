package persistence

import (
	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
	"github.com/jackyeh168/shop_loyalty/src/internal/domain/shared"
	"gorm.io/gorm"
)

// ===========================
// GORM MemberAccountRepository 實作
// ===========================

// GORMMemberAccountRepository GORM 實作的會員積分帳戶倉儲
//
// 職責：Domain ↔ GORM 轉換、錯誤映射；不包含業務邏輯。
type GORMMemberAccountRepository struct {
	db     *gorm.DB
	errors errorMapping
}

// NewMemberAccountRepository 創建 GORM Repository 實例
func NewMemberAccountRepository(db *gorm.DB) loyalty.MemberAccountRepository {
	return &GORMMemberAccountRepository{
		db: db,
		errors: errorMapping{
			notFound:      loyalty.ErrAccountNotFound,
			alreadyExists: loyalty.ErrAccountAlreadyExists,
		},
	}
}

// Save 保存新帳戶
// 錯誤：ErrAccountAlreadyExists（主鍵 user_id 衝突）
func (r *GORMMemberAccountRepository) Save(ctx shared.TransactionContext, account *loyalty.MemberAccount) error {
	db := dbFrom(ctx, r.db)

	if err := db.Create(accountToGORM(account)).Error; err != nil {
		return r.errors.mapError(err)
	}
	return nil
}

// FindByUserID 根據用戶 ID 查找帳戶
func (r *GORMMemberAccountRepository) FindByUserID(ctx shared.TransactionContext, userID loyalty.UserID) (*loyalty.MemberAccount, error) {
	db := dbFrom(ctx, r.db)

	var model MemberAccountModel
	if err := db.Where("user_id = ?", int64(userID)).First(&model).Error; err != nil {
		return nil, r.errors.mapError(err)
	}

	return accountToDomain(&model)
}

// Update 更新餘額、等級與遷移狀態
//
// 以欄位 map 更新，零值（餘額 0、legacy_migrated false）同樣會寫入。
// RowsAffected = 0 表示帳戶不存在。
func (r *GORMMemberAccountRepository) Update(ctx shared.TransactionContext, account *loyalty.MemberAccount) error {
	db := dbFrom(ctx, r.db)
	model := accountToGORM(account)

	result := db.Model(&MemberAccountModel{}).
		Where("user_id = ?", model.UserID).
		Updates(map[string]interface{}{
			"points":          model.Points,
			"legacy_points":   model.LegacyPoints,
			"legacy_migrated": model.LegacyMigrated,
			"tier_label":      model.TierLabel,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		return r.errors.mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return loyalty.ErrAccountNotFound.WithContext(
			"user_id", model.UserID,
			"reason", "account does not exist in database",
		)
	}
	return nil
}
