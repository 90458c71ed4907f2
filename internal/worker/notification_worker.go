package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/disuhitarth/EcommerceConcept/internal/events"
	"github.com/disuhitarth/EcommerceConcept/internal/service"
)

const defaultQueueSize = 256

// NotificationWorker delivers notifications from a queue so publishers never
// wait on email or webhook delivery. When the queue is full the event is dropped.
type NotificationWorker struct {
	handler events.EventHandler
	logger  *zap.Logger
	queue   chan events.Event

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
	dropped atomic.Int64
}

// NewNotificationWorker creates a worker with a queue of size events.
func NewNotificationWorker(handler events.EventHandler, size int, logger *zap.Logger) *NotificationWorker {
	if size <= 0 {
		size = defaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		handler: handler,
		logger:  logger,
		queue:   make(chan events.Event, size),
	}
}

// StartNotificationWorker subscribes the notification service through a
// queued worker and starts it. Call Stop on shutdown to drain the queue.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, notifications *service.NotificationService, logger *zap.Logger) *NotificationWorker {
	w := NewNotificationWorker(notifications.Handle, defaultQueueSize, logger)
	w.Subscribe(dispatcher, notifications.EventTypes()...)
	w.Start(ctx)
	return w
}

// Subscribe routes the given event types into the queue.
func (w *NotificationWorker) Subscribe(dispatcher events.Dispatcher, types ...events.EventType) {
	for _, et := range types {
		dispatcher.Subscribe(et, w.Enqueue)
	}
}

// Enqueue queues an event. It never blocks.
func (w *NotificationWorker) Enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return nil
	}

	select {
	case w.queue <- event:
	default:
		w.dropped.Add(1)
		w.logger.Warn("notification queue full; event dropped",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID))
	}
	return nil
}

// Start launches the delivery loop. Delivery contexts are detached from ctx
// cancellation so queued events are still delivered during Stop.
func (w *NotificationWorker) Start(ctx context.Context) {
	deliverCtx := context.WithoutCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for event := range w.queue {
			if err := w.handler(deliverCtx, event); err != nil {
				w.logger.Warn("notification delivery failed",
					zap.String("event_type", string(event.Type)),
					zap.Error(err))
			}
		}
	}()
}

// Stop refuses new events, drains the queue and waits for the loop to exit.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.queue)
	w.mu.Unlock()

	w.wg.Wait()
}

// Dropped reports how many events were discarded on a full queue.
func (w *NotificationWorker) Dropped() int64 {
	return w.dropped.Load()
}
