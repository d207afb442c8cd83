package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmartinel/turnosms/internal/store"
	"github.com/dmartinel/turnosms/pkg/logging"
)

// Sender delivers the reminder SMS.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// Worker drains the reminder queue. Jobs that are not yet due are requeued
// with a delay; due jobs are dropped when the appointment was cancelled in
// the meantime.
type Worker struct {
	queue        Queue
	appointments store.AppointmentStore
	sender       Sender
	logger       *logging.Logger
	now          func() time.Time

	// dueSlack tolerates early deliveries so a job a few seconds ahead of
	// schedule is sent rather than requeued.
	dueSlack time.Duration
}

func NewWorker(queue Queue, appointments store.AppointmentStore, sender Sender, logger *logging.Logger) *Worker {
	if queue == nil {
		panic("reminders: queue is required")
	}
	if appointments == nil {
		panic("reminders: appointment store is required")
	}
	if sender == nil {
		panic("reminders: sender is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{
		queue:        queue,
		appointments: appointments,
		sender:       sender,
		logger:       logger,
		now:          time.Now,
		dueSlack:     30 * time.Second,
	}
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("reminder worker started")
	for {
		if err := ctx.Err(); err != nil {
			w.logger.Info("reminder worker stopping")
			return err
		}
		messages, err := w.queue.Receive(ctx, 10, 20)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			w.logger.Error("reminder receive failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		for _, msg := range messages {
			if err := w.process(ctx, msg); err != nil {
				w.logger.Error("reminder job failed", "message_id", msg.ID, "error", err)
				continue
			}
			if err := w.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
				w.logger.Warn("reminder delete failed", "message_id", msg.ID, "error", err)
			}
		}
	}
}

func (w *Worker) process(ctx context.Context, msg queueMessage) error {
	j, err := decodeJob(msg.Body)
	if err != nil {
		// A poison message would loop forever; log and let it be deleted.
		w.logger.Error("dropping undecodable reminder", "message_id", msg.ID, "error", err)
		return nil
	}

	now := w.now()
	if j.SendAt.After(now.Add(w.dueSlack)) {
		// Not due yet: requeue (SQS caps per-message delay well below a
		// 24h lead, so long waits take several hops).
		body, err := encodeJob(j)
		if err != nil {
			return err
		}
		return w.queue.Send(ctx, body, j.SendAt.Sub(now))
	}

	appt, err := w.appointments.GetByID(ctx, j.AppointmentID)
	if errors.Is(err, store.ErrNotFound) {
		w.logger.Warn("reminder for missing appointment", "appointment_id", j.AppointmentID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reminders: loading appointment: %w", err)
	}
	if appt.Status != store.AppointmentConfirmed || !appt.StartsAt.After(now) {
		w.logger.Debug("skipping reminder", "appointment_id", appt.ID, "status", string(appt.Status))
		return nil
	}

	body := fmt.Sprintf("Recordatorio: tenés un turno el %s a las %s hs. Si no podés ir, respondé \"cancelar\".",
		appt.StartsAt.Format("02/01"), appt.StartsAt.Format("15:04"))
	if err := w.sender.Send(ctx, j.Phone, body); err != nil {
		return fmt.Errorf("reminders: sending: %w", err)
	}
	w.logger.Info("reminder sent", "appointment_id", appt.ID)
	return nil
}
