package loyalty

import (
	"github.com/shopspring/decimal"
)

// ===========================
// PointsCalculationService 領域服務
// ===========================

// PointsCalculationService 消費積分計算
//
// 無狀態，可在多個 goroutine 間共享。
type PointsCalculationService struct{}

// NewPointsCalculationService 建構函數
func NewPointsCalculationService() *PointsCalculationService {
	return &PointsCalculationService{}
}

// CalculateEarned 根據訂單金額計算獲得積分
//
// 業務規則：
// - 積分 = floor(訂單金額 × PointsPerUnit)
// - 向下取整（123.45 元、每元 1 點 → 123 點）
// - 負數金額或非正的 PointsPerUnit 返回 0 點
func (s *PointsCalculationService) CalculateEarned(
	orderTotal decimal.Decimal,
	pointsPerUnit decimal.Decimal,
) PointsAmount {
	if !orderTotal.IsPositive() || !pointsPerUnit.IsPositive() {
		return PointsAmount{}
	}

	earned := orderTotal.Mul(pointsPerUnit).Floor().IntPart()
	return ClampPointsAmount(int(earned))
}
