package loyalty

import "fmt"

// PointsAmount 積分數量值對象
// 值對象不可變、自我驗證，永遠 >= 0
type PointsAmount struct {
	value int
}

// NewPointsAmount 建構函數（checked 版本）
//
// 建構約束：積分數量必須 >= 0
func NewPointsAmount(value int) (PointsAmount, error) {
	if value < 0 {
		return PointsAmount{}, fmt.Errorf(
			"%w: attempted to create PointsAmount with value %d",
			ErrNegativePointsAmount,
			value,
		)
	}
	return PointsAmount{value: value}, nil
}

// ClampPointsAmount 將任意整數夾到 >= 0 後建構
// 用於「算術一律在零處截斷」的場景（例如讀取到的異常負數餘額）
func ClampPointsAmount(value int) PointsAmount {
	if value < 0 {
		return PointsAmount{}
	}
	return PointsAmount{value: value}
}

// newPointsAmountUnchecked 內部建構函數，調用者保證 value >= 0
func newPointsAmountUnchecked(value int) PointsAmount {
	return PointsAmount{value: value}
}

// Value 獲取積分數量
func (p PointsAmount) Value() int {
	return p.value
}

// IsZero 是否為零
func (p PointsAmount) IsZero() bool {
	return p.value == 0
}

// Add 相加
func (p PointsAmount) Add(other PointsAmount) PointsAmount {
	return newPointsAmountUnchecked(p.value + other.value)
}

// SubtractFloored 相減，結果在零處截斷：max(0, p - other)
//
// 扣減兌換積分時使用：餘額在下單後可能已被其他訂單消耗，
// 此時扣到零為止而不是失敗。
func (p PointsAmount) SubtractFloored(other PointsAmount) PointsAmount {
	if other.value >= p.value {
		return PointsAmount{}
	}
	return newPointsAmountUnchecked(p.value - other.value)
}

// Min 取較小者
func (p PointsAmount) Min(other PointsAmount) PointsAmount {
	if other.value < p.value {
		return other
	}
	return p
}

// Equals 比較兩個 PointsAmount 是否相等
func (p PointsAmount) Equals(other PointsAmount) bool {
	return p.value == other.value
}

// GreaterThan 判斷是否大於另一個 PointsAmount
func (p PointsAmount) GreaterThan(other PointsAmount) bool {
	return p.value > other.value
}

// LessThan 判斷是否小於另一個 PointsAmount
func (p PointsAmount) LessThan(other PointsAmount) bool {
	return p.value < other.value
}
