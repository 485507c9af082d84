// File: services/booking/lifecycle.go
package booking

import (
	"context"
	"errors"

	appointmentRepo "clinicbook/database/repository/appointment"
	"clinicbook/models"
	"clinicbook/services/notification"
	"clinicbook/utils"

	"go.uber.org/zap"
)

// Confirm is the practitioner's acceptance of a pending booking. No time
// constraint applies.
func (s *DefaultBookingService) Confirm(ctx context.Context, apptID, practitionerID string) (*models.Appointment, error) {
	appt, err := s.loadForPractitioner(ctx, apptID, practitionerID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, appt, models.StatusConfirmed, "")
}

// Begin moves a confirmed appointment into progress, allowed at or after the
// scheduled start.
func (s *DefaultBookingService) Begin(ctx context.Context, apptID, practitionerID string) (*models.Appointment, error) {
	appt, err := s.loadForPractitioner(ctx, apptID, practitionerID)
	if err != nil {
		return nil, err
	}
	startsAt, err := appt.StartsAt(s.location())
	if err != nil {
		return nil, NewValidationError("appointment %s has a malformed date: %v", apptID, err)
	}
	if s.now().Before(startsAt) {
		return nil, NewInvalidTransitionError("appointment %s has not started yet (scheduled %s %s)",
			apptID, appt.Date, models.FormatClock(appt.Start))
	}
	return s.transition(ctx, appt, models.StatusInProgress, "")
}

// Complete finishes an in-progress appointment.
func (s *DefaultBookingService) Complete(ctx context.Context, apptID, practitionerID string) (*models.Appointment, error) {
	appt, err := s.loadForPractitioner(ctx, apptID, practitionerID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, appt, models.StatusCompleted, "")
}

// Cancel lets either party cancel, but only while the cancellation cutoff has
// not been reached. The row survives as a CANCELLED status change; the unique
// index ignores cancelled rows, so the slot opens up again. Rescheduling is
// cancel-then-rebook, never an in-place time edit.
func (s *DefaultBookingService) Cancel(ctx context.Context, apptID, actorID, reason string) (*models.Appointment, error) {
	appt, err := s.load(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != actorID && appt.PractitionerID != actorID {
		return nil, NewNotFoundError("appointment %s not found", apptID)
	}
	if !appt.Status.CanTransitionTo(models.StatusCancelled) {
		return nil, NewInvalidTransitionError("cannot cancel a %s appointment", appt.Status)
	}

	startsAt, err := appt.StartsAt(s.location())
	if err != nil {
		return nil, NewValidationError("appointment %s has a malformed date: %v", apptID, err)
	}
	if !s.now().Before(startsAt.Add(-s.CancelCutoff)) {
		return nil, NewCancellationClosedError("cancellation closed %s before the %s %s start",
			s.CancelCutoff, appt.Date, models.FormatClock(appt.Start))
	}

	updated, err := s.transition(ctx, appt, models.StatusCancelled, reason)
	if err != nil {
		return nil, err
	}
	s.Scheduler.InvalidateDay(ctx, updated.PractitionerID, updated.Date)
	s.notify(ctx, notification.EventCancelled, updated)
	return updated, nil
}

// SweepNoShows moves confirmed appointments whose scheduled end passed more
// than the grace period ago into NO_SHOW. Invoked periodically by the worker.
func (s *DefaultBookingService) SweepNoShows(ctx context.Context) (int, error) {
	logger := utils.GetLogger()

	cutoff := s.now().Add(-s.NoShowGrace)
	date := cutoff.Format(models.DateLayout)
	minutes := cutoff.Hour()*60 + cutoff.Minute()

	expired, err := s.Repo.ListConfirmedEndedBefore(ctx, date, minutes)
	if err != nil {
		return 0, s.classifyStoreError("no-show sweep query", err)
	}

	swept := 0
	for _, appt := range expired {
		if _, err := s.Repo.UpdateStatus(ctx, appt.ID, models.StatusConfirmed, models.StatusNoShow, ""); err != nil {
			// Lost to a concurrent transition (e.g. practitioner started it);
			// skip and keep sweeping.
			if errors.Is(err, appointmentRepo.ErrStaleStatus) {
				continue
			}
			logger.Warn("no-show sweep failed for appointment",
				zap.String("appointmentID", appt.ID), zap.Error(err))
			continue
		}
		s.Scheduler.InvalidateDay(ctx, appt.PractitionerID, appt.Date)
		swept++
	}
	if swept > 0 {
		logger.Info("no-show sweep finished", zap.Int("swept", swept))
	}
	return swept, nil
}

func (s *DefaultBookingService) loadForPractitioner(ctx context.Context, apptID, practitionerID string) (*models.Appointment, error) {
	appt, err := s.load(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if appt.PractitionerID != practitionerID {
		return nil, NewNotFoundError("appointment %s not found", apptID)
	}
	return appt, nil
}

// transition applies one step of the state machine. The table check makes
// InvalidTransition total; the conditional update makes concurrent transitions
// lose cleanly instead of double-applying.
func (s *DefaultBookingService) transition(ctx context.Context, appt *models.Appointment, target models.AppointmentStatus, reason string) (*models.Appointment, error) {
	if !appt.Status.CanTransitionTo(target) {
		return nil, NewInvalidTransitionError("cannot move appointment from %s to %s", appt.Status, target)
	}

	var updated *models.Appointment
	err := s.withRetry(ctx, func() error {
		var uerr error
		updated, uerr = s.Repo.UpdateStatus(ctx, appt.ID, appt.Status, target, reason)
		return uerr
	})
	if err != nil {
		switch {
		case errors.Is(err, appointmentRepo.ErrStaleStatus):
			return nil, NewConflictError("appointment %s changed concurrently; reload and retry", appt.ID)
		case errors.Is(err, appointmentRepo.ErrNotFound):
			return nil, NewNotFoundError("appointment %s not found", appt.ID)
		default:
			return nil, s.classifyStoreError("status update", err)
		}
	}
	return updated, nil
}
