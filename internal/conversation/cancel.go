package conversation

import (
	"context"
	"fmt"

	"github.com/dmartinel/turnosms/internal/nlp"
	"github.com/dmartinel/turnosms/internal/session"
)

// startCancellation lists the customer's upcoming appointments and asks
// which one to cancel. With nothing to cancel the session resets right away.
func (e *Engine) startCancellation(ctx context.Context, sess *session.Session) error {
	appts, err := e.upcomingAppointments(ctx, sess)
	if err != nil {
		return err
	}
	if len(appts) == 0 {
		e.resetSession(ctx, sess)
		return e.reply(ctx, sess.Phone, msgNothingToCancel)
	}

	sess.Data.Appointments = appts
	sess.State = session.StateCancelling
	if err := e.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("conversation: saving session: %w", err)
	}
	body := formatAppointmentList("¿Cuál turno querés cancelar?", appts) + "\n\nEscribí el número."
	return e.reply(ctx, sess.Phone, body)
}

func (e *Engine) handleCancelSelection(ctx context.Context, sess *session.Session, text string) error {
	sel := nlp.ExtractSelection(text, len(sess.Data.Appointments))
	if sel == 0 {
		return e.reply(ctx, sess.Phone, msgRange(len(sess.Data.Appointments)))
	}

	target := sess.Data.Appointments[sel-1]
	sess.Data.CancelTarget = target.ID
	sess.State = session.StateConfirmingCancellation
	if err := e.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("conversation: saving session: %w", err)
	}
	body := fmt.Sprintf(msgConfirmCancel, formatDayES(target.StartsAt), target.StartsAt.Format("15:04"), target.EmployeeName)
	return e.reply(ctx, sess.Phone, body)
}

func (e *Engine) handleCancelConfirmation(ctx context.Context, sess *session.Session, text string) error {
	switch {
	case nlp.IsAffirmative(text):
		appt, err := e.appointments.Cancel(ctx, sess.Data.CancelTarget)
		if err != nil {
			return fmt.Errorf("conversation: cancelling appointment: %w", err)
		}
		e.metrics.ObserveCancelled()
		if e.reminders != nil {
			if err := e.reminders.CancelForAppointment(ctx, appt.ID); err != nil {
				e.logger.Warn("reminder cancellation failed", "appointment_id", appt.ID, "error", err)
			}
		}
		e.resetSession(ctx, sess)
		return e.reply(ctx, sess.Phone, msgCancelled)
	case nlp.IsNegative(text):
		e.resetSession(ctx, sess)
		return e.reply(ctx, sess.Phone, msgCancelKept)
	default:
		return e.reply(ctx, sess.Phone, msgYesNo)
	}
}
