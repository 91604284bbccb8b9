package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/merchant-crm/internal/events"
	"github.com/spec-kit/merchant-crm/internal/service"
)

const publishTimeout = 5 * time.Second

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// PublishWorker moves event publishing off the request path. Publish enqueues
// without blocking; a full queue drops the event with a warning.
type PublishWorker struct {
	sink   events.Publisher
	queue  chan events.Event
	logger *zap.Logger
	wg     sync.WaitGroup
	once   sync.Once
}

// NewPublishWorker wraps sink with a queue of the given size.
func NewPublishWorker(sink events.Publisher, size int, logger *zap.Logger) *PublishWorker {
	if size <= 0 {
		size = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublishWorker{sink: sink, queue: make(chan events.Event, size), logger: logger}
}

// Start drains the queue until Close.
func (w *PublishWorker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for event := range w.queue {
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			if err := w.sink.Publish(ctx, event); err != nil {
				w.logger.Warn("publish event failed",
					zap.String("event_id", event.ID),
					zap.String("event_type", string(event.Type)),
					zap.Error(err))
			}
			cancel()
		}
	}()
}

func (w *PublishWorker) Publish(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("publish queue full; dropping event", zap.String("event_id", event.ID))
	}
	return nil
}

// Close stops accepting events, flushes the queue and closes the sink.
func (w *PublishWorker) Close() error {
	w.once.Do(func() { close(w.queue) })
	w.wg.Wait()
	return w.sink.Close()
}
