package persistence

import (
	"errors"
	"strings"

	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
	"gorm.io/gorm"
)

// uniqueViolationMarkers 各資料庫唯一約束違反的錯誤訊息片段
//   SQLite:     "UNIQUE constraint failed"
//   PostgreSQL: "duplicate key value violates unique constraint"
//   MySQL:      "Duplicate entry"
var uniqueViolationMarkers = []string{"UNIQUE constraint", "duplicate key", "Duplicate entry"}

// errorMapping 單一倉儲的錯誤映射目標
type errorMapping struct {
	notFound      *loyalty.DomainError
	alreadyExists *loyalty.DomainError
}

// mapError 映射 GORM 錯誤到 Domain 錯誤
//
// 映射規則：
// - gorm.ErrRecordNotFound → notFound
// - gorm.ErrDuplicatedKey 或唯一約束違反 → alreadyExists
// - 其他錯誤 → loyalty.ErrRepositoryError（保留原始訊息）
func (m errorMapping) mapError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) && m.notFound != nil {
		return m.notFound
	}

	if m.alreadyExists != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return m.alreadyExists
		}
		if isUniqueViolation(err) {
			return m.alreadyExists.WithContext("database_error", err.Error())
		}
	}

	return loyalty.ErrRepositoryError.WithContext("database_error", err.Error())
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	for _, marker := range uniqueViolationMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
