package persistence

import (
	"time"

	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
	"github.com/jackyeh168/shop_loyalty/src/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ===========================
// GORM OrderRecordRepository 實作
// ===========================

// GORMOrderRecordRepository GORM 實作的訂單兌換記錄倉儲
//
// deducted / awarded 旗標只透過條件 UPDATE 設置：
//   UPDATE ... SET deducted = true WHERE order_id = ? AND deducted = false
// RowsAffected = 1 代表本次調用取得該旗標，重複或並發的事件只會有一個成功。
type GORMOrderRecordRepository struct {
	db     *gorm.DB
	errors errorMapping
}

// NewOrderRecordRepository 創建 GORM Repository 實例
func NewOrderRecordRepository(db *gorm.DB) loyalty.OrderRecordRepository {
	return &GORMOrderRecordRepository{
		db: db,
		errors: errorMapping{
			notFound:      loyalty.ErrOrderRecordNotFound,
			alreadyExists: loyalty.ErrOrderRecordAlreadyExists,
		},
	}
}

// Save 保存由快照建立的記錄
// 錯誤：ErrOrderRecordAlreadyExists
func (r *GORMOrderRecordRepository) Save(ctx shared.TransactionContext, record *loyalty.OrderRedemptionRecord) error {
	db := dbFrom(ctx, r.db)

	if err := db.Create(orderRecordToGORM(record)).Error; err != nil {
		return r.errors.mapError(err)
	}
	return nil
}

// FindByOrderID 根據訂單 ID 查找記錄
func (r *GORMOrderRecordRepository) FindByOrderID(ctx shared.TransactionContext, orderID loyalty.OrderID) (*loyalty.OrderRedemptionRecord, error) {
	db := dbFrom(ctx, r.db)

	var model OrderRedemptionRecordModel
	if err := db.Where("order_id = ?", int64(orderID)).First(&model).Error; err != nil {
		return nil, r.errors.mapError(err)
	}

	return orderRecordToDomain(&model)
}

// ClaimDeduction 條件更新 deducted: false → true
func (r *GORMOrderRecordRepository) ClaimDeduction(ctx shared.TransactionContext, orderID loyalty.OrderID) (bool, error) {
	db := dbFrom(ctx, r.db)

	result := db.Model(&OrderRedemptionRecordModel{}).
		Where("order_id = ? AND deducted = ?", int64(orderID), false).
		Updates(map[string]interface{}{
			"deducted":   true,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, r.errors.mapError(result.Error)
	}

	return result.RowsAffected == 1, nil
}

// ClaimAward 條件更新 awarded: false → true，並記錄發放積分
//
// 訂單沒有兌換記錄時建立一筆僅含發放資訊的記錄；
// 並發建立時主鍵衝突的一方視為搶佔失敗。
func (r *GORMOrderRecordRepository) ClaimAward(
	ctx shared.TransactionContext,
	orderID loyalty.OrderID,
	userID loyalty.UserID,
	points loyalty.PointsAmount,
) (bool, error) {
	db := dbFrom(ctx, r.db)
	now := time.Now()

	result := db.Model(&OrderRedemptionRecordModel{}).
		Where("order_id = ? AND awarded = ?", int64(orderID), false).
		Updates(map[string]interface{}{
			"awarded":        true,
			"awarded_points": points.Value(),
			"updated_at":     now,
		})
	if result.Error != nil {
		return false, r.errors.mapError(result.Error)
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	var count int64
	if err := db.Model(&OrderRedemptionRecordModel{}).
		Where("order_id = ?", int64(orderID)).
		Count(&count).Error; err != nil {
		return false, r.errors.mapError(err)
	}
	if count > 0 {
		return false, nil
	}

	err := db.Create(&OrderRedemptionRecordModel{
		OrderID:        int64(orderID),
		UserID:         int64(userID),
		RedeemedAmount: decimal.Zero,
		Awarded:        true,
		AwardedPoints:  points.Value(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}).Error
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, r.errors.mapError(err)
	}
	return true, nil
}
