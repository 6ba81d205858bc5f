package observability

import (
	"go.uber.org/zap"

	"github.com/jackyeh168/shop_loyalty/src/internal/domain/shared"
)

// EventCounter 記錄事件數量
type EventCounter interface {
	EventPublished(eventType string)
}

// LoggingEventPublisher 以結構化日誌發布領域事件
//
// 實現 shared.EventPublisher。宿主沒有訊息佇列時，帳本事件以日誌形式保留。
type LoggingEventPublisher struct {
	logger  *zap.Logger
	counter EventCounter
}

// NewLoggingEventPublisher 建構函數（counter 可為 nil）
func NewLoggingEventPublisher(logger *zap.Logger, counter EventCounter) *LoggingEventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingEventPublisher{logger: logger, counter: counter}
}

// Publish 實現 shared.EventPublisher
func (p *LoggingEventPublisher) Publish(event shared.DomainEvent) error {
	p.logger.Info("domain event",
		zap.String("event_id", event.EventID()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_id", event.AggregateID()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	if p.counter != nil {
		p.counter.EventPublished(event.EventType())
	}
	return nil
}

// PublishBatch 實現 shared.EventPublisher
func (p *LoggingEventPublisher) PublishBatch(events []shared.DomainEvent) error {
	for _, event := range events {
		if err := p.Publish(event); err != nil {
			return err
		}
	}
	return nil
}
