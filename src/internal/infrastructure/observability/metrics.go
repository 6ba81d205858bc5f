package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
)

const namespace = "shop_loyalty"

// LedgerMetrics 會員積分引擎的 Prometheus 指標
//
// 實現 application/loyalty.Metrics。
type LedgerMetrics struct {
	configFallbacks     prometheus.Counter
	feesApplied         *prometheus.CounterVec
	snapshotsAttached   prometheus.Counter
	pointsAwarded       prometheus.Counter
	pointsDeducted      prometheus.Counter
	duplicateDeductions prometheus.Counter
	duplicateAwards     prometheus.Counter
	events              *prometheus.CounterVec
}

// NewLedgerMetrics 建立並註冊指標
//
// registerer 為 nil 時不註冊（測試或不需要匯出時）。
func NewLedgerMetrics(registerer prometheus.Registerer) (*LedgerMetrics, error) {
	m := &LedgerMetrics{
		configFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_fallbacks_total",
			Help:      "Times the tier table was unusable and the built-in default was used.",
		}),
		feesApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fees_applied_total",
			Help:      "Negative fee lines added to carts by kind.",
		}, []string{"kind"}),
		snapshotsAttached: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_attached_total",
			Help:      "Redemption snapshots persisted onto orders at checkout.",
		}),
		pointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_awarded_total",
			Help:      "Points credited on order completion.",
		}),
		pointsDeducted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_deducted_total",
			Help:      "Redeemed points actually removed from balances.",
		}),
		duplicateDeductions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_deductions_total",
			Help:      "Status events skipped because the order was already deducted.",
		}),
		duplicateAwards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_awards_total",
			Help:      "Completion events skipped because the order was already awarded.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Domain events published by type.",
		}, []string{"type"}),
	}

	if registerer != nil {
		collectors := []prometheus.Collector{
			m.configFallbacks, m.feesApplied, m.snapshotsAttached, m.pointsAwarded,
			m.pointsDeducted, m.duplicateDeductions, m.duplicateAwards, m.events,
		}
		for _, c := range collectors {
			if err := registerer.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *LedgerMetrics) ConfigFallback() {
	m.configFallbacks.Inc()
}

func (m *LedgerMetrics) FeeApplied(kind loyalty.FeeKind) {
	m.feesApplied.WithLabelValues(string(kind)).Inc()
}

func (m *LedgerMetrics) SnapshotAttached() {
	m.snapshotsAttached.Inc()
}

func (m *LedgerMetrics) PointsAwarded(points int) {
	if points > 0 {
		m.pointsAwarded.Add(float64(points))
	}
}

func (m *LedgerMetrics) PointsDeducted(points int) {
	if points > 0 {
		m.pointsDeducted.Add(float64(points))
	}
}

func (m *LedgerMetrics) DuplicateDeduction() {
	m.duplicateDeductions.Inc()
}

func (m *LedgerMetrics) DuplicateAward() {
	m.duplicateAwards.Inc()
}

// EventPublished 記錄已發布的領域事件
func (m *LedgerMetrics) EventPublished(eventType string) {
	m.events.WithLabelValues(eventType).Inc()
}

// ConfigFallbacksCounter 供測試讀取
func (m *LedgerMetrics) ConfigFallbacksCounter() prometheus.Counter { return m.configFallbacks }

// PointsAwardedCounter 供測試讀取
func (m *LedgerMetrics) PointsAwardedCounter() prometheus.Counter { return m.pointsAwarded }

// PointsDeductedCounter 供測試讀取
func (m *LedgerMetrics) PointsDeductedCounter() prometheus.Counter { return m.pointsDeducted }
