package reminders

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmartinel/turnosms/pkg/logging"
)

// MemoryQueue is a Queue backed by an in-memory buffered channel.
type MemoryQueue struct {
	ch     chan queueMessage
	logger *logging.Logger
}

// NewMemoryQueue creates a MemoryQueue with the provided buffer capacity.
func NewMemoryQueue(buffer int, logger *logging.Logger) *MemoryQueue {
	if buffer <= 0 {
		buffer = 128
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MemoryQueue{ch: make(chan queueMessage, buffer), logger: logger}
}

var _ Queue = (*MemoryQueue)(nil)

// Send enqueues a payload, honoring delay with a timer, or blocks until
// ctx is done.
func (q *MemoryQueue) Send(ctx context.Context, body string, delay time.Duration) error {
	msg := queueMessage{
		ID:            uuid.NewString(),
		Body:          body,
		ReceiptHandle: uuid.NewString(),
	}
	if delay > 0 {
		time.AfterFunc(delay, func() {
			select {
			case q.ch <- msg:
			default:
				q.logger.Warn("memory queue full, dropping delayed message", "message_id", msg.ID)
			}
		})
		return nil
	}
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive blocks until a message is available, ctx is done, or waitSeconds
// elapses.
func (q *MemoryQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error) {
	if maxMessages <= 0 {
		maxMessages = 1
	}

	var timeout <-chan time.Time
	if waitSeconds > 0 {
		timer := time.NewTimer(time.Duration(waitSeconds) * time.Second)
		defer timer.Stop()
		timeout = timer.C
	}

	var first queueMessage
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout:
		return nil, nil
	case first = <-q.ch:
	}

	messages := []queueMessage{first}
	for len(messages) < maxMessages {
		select {
		case msg := <-q.ch:
			messages = append(messages, msg)
		default:
			return messages, nil
		}
	}
	return messages, nil
}

// Delete is a no-op for the in-memory queue.
func (q *MemoryQueue) Delete(_ context.Context, _ string) error {
	return nil
}
