package loyalty

import (
	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
)

// Metrics 會員積分引擎的計數指標
//
// Application Layer 只依賴此介面；Prometheus 實作位於 infrastructure/observability。
type Metrics interface {
	ConfigFallback()
	FeeApplied(kind loyalty.FeeKind)
	SnapshotAttached()
	PointsAwarded(points int)
	PointsDeducted(points int)
	DuplicateDeduction()
	DuplicateAward()
}

// NopMetrics 不記錄任何指標
type NopMetrics struct{}

func (NopMetrics) ConfigFallback() {}
func (NopMetrics) FeeApplied(loyalty.FeeKind) {}
func (NopMetrics) SnapshotAttached() {}
func (NopMetrics) PointsAwarded(int) {}
func (NopMetrics) PointsDeducted(int) {}
func (NopMetrics) DuplicateDeduction() {}
func (NopMetrics) DuplicateAward() {}
