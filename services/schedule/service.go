// File: services/schedule/service.go
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	scheduleRepo "clinicbook/database/repository/schedule"
	"clinicbook/models"
	"clinicbook/services/booking"
	"clinicbook/services/scheduling"
	"clinicbook/utils"

	"go.uber.org/zap"
)

// ScheduleService manages a practitioner's weekly templates and per-date
// overrides. The practitioner is the only writer; edits are last-writer-wins.
type ScheduleService interface {
	SetTemplate(ctx context.Context, tmpl models.ScheduleTemplate) error
	SetWeek(ctx context.Context, practitionerID string, templates []models.ScheduleTemplate) error
	GetWeek(ctx context.Context, practitionerID string) ([]models.ScheduleTemplate, error)
	DeleteDay(ctx context.Context, practitionerID string, dayOfWeek int) error

	SetOverride(ctx context.Context, ov models.AvailabilityOverride) error
	ListOverrides(ctx context.Context, practitionerID, fromDate, toDate string) ([]models.AvailabilityOverride, error)
	DeleteOverride(ctx context.Context, practitionerID, date string) error
}

// DefaultScheduleService is the production implementation.
type DefaultScheduleService struct {
	Repo      scheduleRepo.ScheduleRepository
	Scheduler scheduling.SchedulingService
}

func (s *DefaultScheduleService) SetTemplate(ctx context.Context, tmpl models.ScheduleTemplate) error {
	if tmpl.PractitionerID == "" {
		return booking.NewValidationError("practitionerId is required")
	}
	if err := tmpl.Validate(); err != nil {
		return booking.NewValidationError("invalid template: %v", err)
	}
	if err := s.Repo.UpsertTemplate(ctx, tmpl); err != nil {
		return fmt.Errorf("failed to store template: %w", err)
	}
	// Derived slots pick the change up once the short cache TTL lapses; no
	// targeted invalidation is needed for a whole-weekday edit.
	utils.GetLogger().Info("schedule template updated",
		zap.String("practitionerID", tmpl.PractitionerID), zap.Int("dayOfWeek", tmpl.DayOfWeek))
	return nil
}

// SetWeek validates the whole batch before touching the store, so a bad
// template writes nothing. The writes themselves are per-day upserts rather
// than one transaction: a store failure mid-loop leaves the earlier days
// replaced, which the single-writer last-writer-wins model tolerates. The
// caller can re-submit the same batch to converge.
func (s *DefaultScheduleService) SetWeek(ctx context.Context, practitionerID string, templates []models.ScheduleTemplate) error {
	if practitionerID == "" {
		return booking.NewValidationError("practitionerId is required")
	}
	seen := make(map[int]bool, len(templates))
	for _, tmpl := range templates {
		if seen[tmpl.DayOfWeek] {
			return booking.NewValidationError("duplicate template for day %d", tmpl.DayOfWeek)
		}
		seen[tmpl.DayOfWeek] = true
		tmpl.PractitionerID = practitionerID
		if err := tmpl.Validate(); err != nil {
			return booking.NewValidationError("invalid template for day %d: %v", tmpl.DayOfWeek, err)
		}
	}
	for _, tmpl := range templates {
		tmpl.PractitionerID = practitionerID
		if err := s.Repo.UpsertTemplate(ctx, tmpl); err != nil {
			return fmt.Errorf("failed to store template for day %d: %w", tmpl.DayOfWeek, err)
		}
	}
	return nil
}

func (s *DefaultScheduleService) GetWeek(ctx context.Context, practitionerID string) ([]models.ScheduleTemplate, error) {
	templates, err := s.Repo.GetWeek(ctx, practitionerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load week: %w", err)
	}
	return templates, nil
}

func (s *DefaultScheduleService) DeleteDay(ctx context.Context, practitionerID string, dayOfWeek int) error {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return booking.NewValidationError("dayOfWeek must be in 0..6, got %d", dayOfWeek)
	}
	if err := s.Repo.DeleteTemplate(ctx, practitionerID, dayOfWeek); err != nil {
		if errors.Is(err, scheduleRepo.ErrNotFound) {
			return booking.NewNotFoundError("no template for day %d", dayOfWeek)
		}
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

func (s *DefaultScheduleService) SetOverride(ctx context.Context, ov models.AvailabilityOverride) error {
	if ov.PractitionerID == "" {
		return booking.NewValidationError("practitionerId is required")
	}
	if err := ov.Validate(); err != nil {
		return booking.NewValidationError("invalid override: %v", err)
	}
	if err := s.Repo.UpsertOverride(ctx, ov); err != nil {
		return fmt.Errorf("failed to store override: %w", err)
	}
	if s.Scheduler != nil {
		s.Scheduler.InvalidateDay(ctx, ov.PractitionerID, ov.Date)
	}
	return nil
}

func (s *DefaultScheduleService) ListOverrides(ctx context.Context, practitionerID, fromDate, toDate string) ([]models.AvailabilityOverride, error) {
	for _, d := range []string{fromDate, toDate} {
		if _, err := time.Parse(models.DateLayout, d); err != nil {
			return nil, booking.NewValidationError("invalid date %q: expected YYYY-MM-DD", d)
		}
	}
	overrides, err := s.Repo.ListOverrides(ctx, practitionerID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}
	return overrides, nil
}

func (s *DefaultScheduleService) DeleteOverride(ctx context.Context, practitionerID, date string) error {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return booking.NewValidationError("invalid date %q: expected YYYY-MM-DD", date)
	}
	if err := s.Repo.DeleteOverride(ctx, practitionerID, date); err != nil {
		if errors.Is(err, scheduleRepo.ErrNotFound) {
			return booking.NewNotFoundError("no override for %s", date)
		}
		return fmt.Errorf("failed to delete override: %w", err)
	}
	if s.Scheduler != nil {
		s.Scheduler.InvalidateDay(ctx, practitionerID, date)
	}
	return nil
}
