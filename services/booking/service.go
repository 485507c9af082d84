// File: services/booking/service.go
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentRepo "clinicbook/database/repository/appointment"
	"clinicbook/models"
	"clinicbook/services/notification"
	"clinicbook/services/scheduling"
	"clinicbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingService commits bookings against the ledger and drives the
// appointment lifecycle.
type BookingService interface {
	Book(ctx context.Context, req models.BookingRequest) (*models.Appointment, error)

	Confirm(ctx context.Context, apptID, practitionerID string) (*models.Appointment, error)
	Begin(ctx context.Context, apptID, practitionerID string) (*models.Appointment, error)
	Complete(ctx context.Context, apptID, practitionerID string) (*models.Appointment, error)
	Cancel(ctx context.Context, apptID, actorID, reason string) (*models.Appointment, error)
	SweepNoShows(ctx context.Context) (int, error)

	GetAppointment(ctx context.Context, apptID, actorID string) (*models.Appointment, error)
	ListForPatient(ctx context.Context, patientID string, status models.AppointmentStatus) ([]models.Appointment, error)
	ListForPractitioner(ctx context.Context, practitionerID string, status models.AppointmentStatus) ([]models.Appointment, error)
}

// DefaultBookingService is the production implementation. Policy durations
// are injected from configuration; the clock and timezone are injectable so
// window rules stay testable.
type DefaultBookingService struct {
	Repo      appointmentRepo.AppointmentRepository
	Scheduler scheduling.SchedulingService
	Notifier  notification.NotificationService

	CancelCutoff time.Duration
	NoShowGrace  time.Duration
	MaxRetries   int
	RetryBase    time.Duration

	Location *time.Location   // canonical timezone from the surrounding system
	Now      func() time.Time // injectable clock
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultBookingService) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.Local
}

// Book validates the request, re-checks availability (advisory only), and
// commits into the ledger. The ledger's atomic insert is what guarantees that
// of N concurrent commits for one slot exactly one succeeds; everyone else
// gets a conflict and is expected to re-query rather than blindly retry.
func (s *DefaultBookingService) Book(ctx context.Context, req models.BookingRequest) (*models.Appointment, error) {
	logger := utils.GetLogger()

	if err := validateBookingRequest(req); err != nil {
		return nil, err
	}

	slots, err := s.Scheduler.DaySlots(ctx, req.PractitionerID, req.Date)
	if err != nil {
		return nil, s.classifyStoreError("pre-commit slot query", err)
	}
	slot := findSlot(slots, req.Start)
	if slot == nil {
		return nil, NewSlotUnavailableError("no slot starts at %s on %s", models.FormatClock(req.Start), req.Date)
	}
	if !slot.IsAvailable {
		return nil, NewSlotUnavailableError("slot %s on %s is already booked", slot.Label, req.Date)
	}

	now := s.now()
	appt := &models.Appointment{
		ID:              uuid.New().String(),
		PractitionerID:  req.PractitionerID,
		PatientID:       req.PatientID,
		Date:            req.Date,
		Start:           slot.Start,
		End:             slot.End,
		Duration:        slot.Duration,
		Status:          models.StatusPending,
		ConsultationFee: req.ConsultationFee,
		PatientNotes:    req.PatientNotes,
		DocumentRefs:    req.DocumentRefs,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.withRetry(ctx, func() error { return s.Repo.Insert(ctx, appt) })
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrSlotTaken) {
			// Advisory read said free, commit said taken: real contention.
			logger.Info("booking commit lost race",
				zap.String("practitionerID", req.PractitionerID),
				zap.String("date", req.Date),
				zap.Int("start", req.Start))
			return nil, NewConflictError("slot %s on %s was taken by a concurrent booking", slot.Label, req.Date)
		}
		return nil, s.classifyStoreError("booking commit", err)
	}

	s.Scheduler.InvalidateDay(ctx, req.PractitionerID, req.Date)
	s.notify(ctx, notification.EventBooked, appt)

	logger.Info("booking committed",
		zap.String("appointmentID", appt.ID),
		zap.String("practitionerID", appt.PractitionerID),
		zap.String("date", appt.Date),
		zap.Int("start", appt.Start))
	return appt, nil
}

func validateBookingRequest(req models.BookingRequest) error {
	if req.PractitionerID == "" {
		return NewValidationError("practitionerId is required")
	}
	if req.PatientID == "" {
		return NewValidationError("patientId is required")
	}
	if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
		return NewValidationError("invalid date %q: expected YYYY-MM-DD", req.Date)
	}
	if req.Start < 0 || req.Start >= models.MinutesPerDay {
		return NewValidationError("start %d outside the day", req.Start)
	}
	if req.ConsultationFee < 0 {
		return NewValidationError("consultationFee cannot be negative")
	}
	return nil
}

func findSlot(slots []models.Slot, start int) *models.Slot {
	for i := range slots {
		if slots[i].Start == start {
			return &slots[i]
		}
	}
	return nil
}

// GetAppointment returns the appointment when the actor is one of its
// parties; anyone else sees not-found.
func (s *DefaultBookingService) GetAppointment(ctx context.Context, apptID, actorID string) (*models.Appointment, error) {
	appt, err := s.load(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != actorID && appt.PractitionerID != actorID {
		return nil, NewNotFoundError("appointment %s not found", apptID)
	}
	return appt, nil
}

func (s *DefaultBookingService) ListForPatient(ctx context.Context, patientID string, status models.AppointmentStatus) ([]models.Appointment, error) {
	if status != "" && !status.Valid() {
		return nil, NewValidationError("unknown status %q", status)
	}
	appts, err := s.Repo.ListByPatient(ctx, patientID, appointmentRepo.ListFilter{Status: status})
	if err != nil {
		return nil, s.classifyStoreError("list patient appointments", err)
	}
	return appts, nil
}

func (s *DefaultBookingService) ListForPractitioner(ctx context.Context, practitionerID string, status models.AppointmentStatus) ([]models.Appointment, error) {
	if status != "" && !status.Valid() {
		return nil, NewValidationError("unknown status %q", status)
	}
	appts, err := s.Repo.ListByPractitioner(ctx, practitionerID, appointmentRepo.ListFilter{Status: status})
	if err != nil {
		return nil, s.classifyStoreError("list practitioner appointments", err)
	}
	return appts, nil
}

func (s *DefaultBookingService) load(ctx context.Context, apptID string) (*models.Appointment, error) {
	appt, err := s.Repo.GetByID(ctx, apptID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrNotFound) {
			return nil, NewNotFoundError("appointment %s not found", apptID)
		}
		return nil, s.classifyStoreError("load appointment", err)
	}
	return appt, nil
}

func (s *DefaultBookingService) classifyStoreError(op string, err error) error {
	if appointmentRepo.IsTransient(err) {
		return NewTransientStoreError("%s failed after retries: %v", op, err)
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

func (s *DefaultBookingService) notify(ctx context.Context, event string, appt *models.Appointment) {
	if s.Notifier == nil {
		return
	}
	var err error
	switch event {
	case notification.EventBooked:
		err = s.Notifier.AppointmentBooked(ctx, appt)
	case notification.EventCancelled:
		err = s.Notifier.AppointmentCancelled(ctx, appt)
	}
	if err != nil {
		// Event emission is best-effort; the booking itself already stands.
		utils.GetLogger().Warn("failed to emit appointment event",
			zap.String("event", event), zap.String("appointmentID", appt.ID), zap.Error(err))
	}
}
