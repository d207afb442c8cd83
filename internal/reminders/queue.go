// Package reminders delivers "your appointment is tomorrow" texts. Jobs
// are queued at booking time and a worker sends them when due; cancelled
// appointments are filtered at send time, so nothing ever has to be pulled
// back out of the queue.
package reminders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Queue abstracts the delivery queue. SQSQueue is the production
// implementation, MemoryQueue serves development and tests.
type Queue interface {
	Send(ctx context.Context, body string, delay time.Duration) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// job is the queued reminder payload.
type job struct {
	ID            string    `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	Phone         string    `json:"phone"`
	SendAt        time.Time `json:"send_at"`
}

func encodeJob(j job) (string, error) {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	body, err := json.Marshal(j)
	if err != nil {
		return "", fmt.Errorf("reminders: encoding job: %w", err)
	}
	return string(body), nil
}

func decodeJob(body string) (job, error) {
	var j job
	if err := json.Unmarshal([]byte(body), &j); err != nil {
		return job{}, fmt.Errorf("reminders: decoding job: %w", err)
	}
	return j, nil
}
