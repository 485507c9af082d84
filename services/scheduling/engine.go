// File: services/scheduling/engine.go
package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	appointmentRepo "clinicbook/database/repository/appointment"
	scheduleRepo "clinicbook/database/repository/schedule"
	"clinicbook/models"
	"clinicbook/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// SchedulingService exposes slot queries and availability previews. Reads are
// advisory: the ledger's atomic insert is the authoritative availability check.
type SchedulingService interface {
	DaySlots(ctx context.Context, practitionerID, date string) ([]models.Slot, error)
	Summarize(ctx context.Context, practitionerID, fromDate string, numDays int) ([]models.DaySummary, error)
	NextAvailable(ctx context.Context, practitionerID, fromDate string, numDays int) (*models.Slot, error)
	InvalidateDay(ctx context.Context, practitionerID, date string)
}

// DefaultSchedulingEngine computes slots from the schedule store plus the
// ledger, with a short-lived Redis cache in front of the per-day computation.
type DefaultSchedulingEngine struct {
	ScheduleRepo scheduleRepo.ScheduleRepository
	ApptRepo     appointmentRepo.AppointmentRepository
	Cache        *redis.Client // optional; nil disables caching
	CacheTTL     time.Duration
	Now          func() time.Time // injectable clock
}

func (se *DefaultSchedulingEngine) now() time.Time {
	if se.Now != nil {
		return se.Now()
	}
	return time.Now()
}

func slotCacheKey(practitionerID, date string) string {
	return fmt.Sprintf("slots:%s:%s", practitionerID, date)
}

// DaySlots returns the ordered slot list for one date. Dates with no weekday
// template and dates blocked by an override yield an empty list, not an error.
func (se *DefaultSchedulingEngine) DaySlots(ctx context.Context, practitionerID, date string) ([]models.Slot, error) {
	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	if cached, ok := se.cacheGet(ctx, practitionerID, date); ok {
		return cached, nil
	}

	tmpl, err := se.ScheduleRepo.GetTemplate(ctx, practitionerID, int(day.Weekday()))
	if err != nil && !errors.Is(err, scheduleRepo.ErrNotFound) {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	override, err := se.ScheduleRepo.GetOverride(ctx, practitionerID, date)
	if err != nil && !errors.Is(err, scheduleRepo.ErrNotFound) {
		return nil, fmt.Errorf("failed to load override: %w", err)
	}
	appts, err := se.ApptRepo.GetByPractitionerAndDate(ctx, practitionerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	slots := GenerateSlots(tmpl, override, date, appts)
	se.cacheSet(ctx, practitionerID, date, slots)
	return slots, nil
}

// Summarize aggregates per-day counts over a rolling window for preview
// display. Days without a template report zero slots rather than erroring.
func (se *DefaultSchedulingEngine) Summarize(ctx context.Context, practitionerID, fromDate string, numDays int) ([]models.DaySummary, error) {
	from, err := time.Parse(models.DateLayout, fromDate)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", fromDate, err)
	}
	if numDays <= 0 {
		numDays = 7
	}

	summaries := make([]models.DaySummary, 0, numDays)
	for i := 0; i < numDays; i++ {
		date := from.AddDate(0, 0, i).Format(models.DateLayout)
		slots, err := se.DaySlots(ctx, practitionerID, date)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, Summarize(date, slots))
	}
	return summaries, nil
}

// NextAvailable scans the window for the first open slot that has not already
// started, in ascending date and start order.
func (se *DefaultSchedulingEngine) NextAvailable(ctx context.Context, practitionerID, fromDate string, numDays int) (*models.Slot, error) {
	from, err := time.Parse(models.DateLayout, fromDate)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", fromDate, err)
	}
	if numDays <= 0 {
		numDays = 7
	}

	now := se.now()
	today := now.Format(models.DateLayout)
	nowMinutes := now.Hour()*60 + now.Minute()

	for i := 0; i < numDays; i++ {
		date := from.AddDate(0, 0, i).Format(models.DateLayout)
		slots, err := se.DaySlots(ctx, practitionerID, date)
		if err != nil {
			return nil, err
		}
		for _, slot := range slots {
			if !slot.IsAvailable {
				continue
			}
			if date == today && slot.Start <= nowMinutes {
				continue
			}
			if date < today {
				continue
			}
			s := slot
			return &s, nil
		}
	}
	return nil, nil
}

// InvalidateDay drops the cached slot list after a booking mutation. Cache
// failures only cost freshness, so they are logged and swallowed.
func (se *DefaultSchedulingEngine) InvalidateDay(ctx context.Context, practitionerID, date string) {
	if se.Cache == nil {
		return
	}
	if err := se.Cache.Del(ctx, slotCacheKey(practitionerID, date)).Err(); err != nil {
		utils.GetLogger().Warn("failed to invalidate slot cache",
			zap.String("practitionerID", practitionerID), zap.String("date", date), zap.Error(err))
	}
}

func (se *DefaultSchedulingEngine) cacheGet(ctx context.Context, practitionerID, date string) ([]models.Slot, bool) {
	if se.Cache == nil {
		return nil, false
	}
	raw, err := se.Cache.Get(ctx, slotCacheKey(practitionerID, date)).Result()
	if err != nil {
		if err != redis.Nil {
			utils.GetLogger().Warn("slot cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var slots []models.Slot
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		utils.GetLogger().Warn("slot cache entry corrupt, discarding", zap.Error(err))
		return nil, false
	}
	return slots, true
}

func (se *DefaultSchedulingEngine) cacheSet(ctx context.Context, practitionerID, date string, slots []models.Slot) {
	if se.Cache == nil {
		return
	}
	ttl := se.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := se.Cache.Set(ctx, slotCacheKey(practitionerID, date), raw, ttl).Err(); err != nil {
		utils.GetLogger().Warn("slot cache write failed", zap.Error(err))
	}
}
