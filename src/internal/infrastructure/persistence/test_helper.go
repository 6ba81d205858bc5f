package persistence

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ===========================
// 測試輔助函數
// ===========================

// setupTestDB 創建測試用的 SQLite in-memory 資料庫
//
// in-memory 資料庫屬於單一連線，連線池限制為 1，
// 事務內外的查詢才會看到同一份資料。
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	cleanup := func() {
		sqlDB.Close()
	}

	return db, cleanup
}

// createLegacyAccount 直接寫入尚未遷移的舊版帳戶列
func createLegacyAccount(t *testing.T, db *gorm.DB, userID int64, points, legacyPoints int) {
	t.Helper()
	err := db.Exec(
		"INSERT INTO member_accounts (user_id, points, legacy_points, legacy_migrated, tier_label, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		userID, points, legacyPoints, false, "普通会员", time.Now(), time.Now(),
	).Error
	if err != nil {
		t.Fatalf("Failed to insert legacy account: %v", err)
	}
}
