package loyalty

import (
	"github.com/shopspring/decimal"
)

// CategoryResolver 宿主提供的商品分類查詢
type CategoryResolver interface {
	CategoriesOf(productID ProductID) ([]CategoryID, error)
}

// ===========================
// EligibilityMatcher 領域服務
// ===========================

// EligibilityMatcher 判斷購物車商品行是否落在折扣 / 兌換範圍內
//
// 規則：
// 1. 範圍為空 → 全部命中
// 2. ProductIDs 非空 → 商品 ID 或變體 ID 在集合內即命中
// 3. CategoryIDs 非空 → 有效商品分類與集合有交集即命中
//    （有變體時優先使用變體分類，變體無分類時退回父商品分類）
// 4. 兩者都設定時為「或」關係
//
// 分類解析失敗視為不命中，並以 ErrScopeResolution 回報，永不中斷計算。
type EligibilityMatcher struct {
	categories CategoryResolver
}

// NewEligibilityMatcher 建構函數，categories 可為 nil（僅使用商品行自帶分類）
func NewEligibilityMatcher(categories CategoryResolver) *EligibilityMatcher {
	return &EligibilityMatcher{categories: categories}
}

// Matches 商品行是否命中範圍
// 第二個返回值只在分類解析失敗時非 nil，此時第一個返回值必為 false
func (m *EligibilityMatcher) Matches(scope Scope, line CartLine) (bool, error) {
	if scope.IsEmpty() {
		return true, nil
	}

	if len(scope.ProductIDs) > 0 && m.matchesProduct(scope.ProductIDs, line) {
		return true, nil
	}

	if len(scope.CategoryIDs) == 0 {
		return false, nil
	}

	lineCategories, err := m.effectiveCategories(line)
	if err != nil {
		return false, err
	}
	return intersects(scope.CategoryIDs, lineCategories), nil
}

// EligibleSubtotal 累加命中範圍的商品行小計
// 解析失敗的商品行不計入，失敗原因逐一返回
func (m *EligibilityMatcher) EligibleSubtotal(scope Scope, lines []CartLine) (decimal.Decimal, []error) {
	total := decimal.Zero
	var failures []error

	for _, line := range lines {
		ok, err := m.Matches(scope, line)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		if ok && line.LineSubtotal.IsPositive() {
			total = total.Add(line.LineSubtotal)
		}
	}

	return total, failures
}

func (m *EligibilityMatcher) matchesProduct(ids []ProductID, line CartLine) bool {
	for _, id := range ids {
		if id == line.ProductID || (line.HasVariation() && id == line.VariationID) {
			return true
		}
	}
	return false
}

func (m *EligibilityMatcher) effectiveCategories(line CartLine) ([]CategoryID, error) {
	if line.CategoryIDs != nil {
		return line.CategoryIDs, nil
	}
	if m.categories == nil {
		return nil, nil
	}

	if line.HasVariation() {
		ids, err := m.categories.CategoriesOf(line.VariationID)
		if err != nil {
			return nil, ErrScopeResolution.WithContext(
				"product_id", int64(line.VariationID),
				"error", err.Error(),
			)
		}
		if len(ids) > 0 {
			return ids, nil
		}
	}

	ids, err := m.categories.CategoriesOf(line.ProductID)
	if err != nil {
		return nil, ErrScopeResolution.WithContext(
			"product_id", int64(line.ProductID),
			"error", err.Error(),
		)
	}
	return ids, nil
}

func intersects(a, b []CategoryID) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[CategoryID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
