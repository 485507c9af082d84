package schedule

import (
	"context"
	"testing"

	scheduleRepo "clinicbook/database/repository/schedule"
	"clinicbook/models"
	"clinicbook/services/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memScheduleRepo struct {
	templates map[string]map[int]models.ScheduleTemplate
	overrides map[string]map[string]models.AvailabilityOverride
}

func newMemScheduleRepo() *memScheduleRepo {
	return &memScheduleRepo{
		templates: make(map[string]map[int]models.ScheduleTemplate),
		overrides: make(map[string]map[string]models.AvailabilityOverride),
	}
}

func (m *memScheduleRepo) EnsureIndexes() error { return nil }

func (m *memScheduleRepo) UpsertTemplate(_ context.Context, tmpl models.ScheduleTemplate) error {
	if m.templates[tmpl.PractitionerID] == nil {
		m.templates[tmpl.PractitionerID] = make(map[int]models.ScheduleTemplate)
	}
	m.templates[tmpl.PractitionerID][tmpl.DayOfWeek] = tmpl
	return nil
}

func (m *memScheduleRepo) GetTemplate(_ context.Context, practitionerID string, dayOfWeek int) (*models.ScheduleTemplate, error) {
	tmpl, ok := m.templates[practitionerID][dayOfWeek]
	if !ok {
		return nil, scheduleRepo.ErrNotFound
	}
	return &tmpl, nil
}

func (m *memScheduleRepo) GetWeek(_ context.Context, practitionerID string) ([]models.ScheduleTemplate, error) {
	var out []models.ScheduleTemplate
	for _, tmpl := range m.templates[practitionerID] {
		out = append(out, tmpl)
	}
	return out, nil
}

func (m *memScheduleRepo) DeleteTemplate(_ context.Context, practitionerID string, dayOfWeek int) error {
	if _, ok := m.templates[practitionerID][dayOfWeek]; !ok {
		return scheduleRepo.ErrNotFound
	}
	delete(m.templates[practitionerID], dayOfWeek)
	return nil
}

func (m *memScheduleRepo) UpsertOverride(_ context.Context, ov models.AvailabilityOverride) error {
	if m.overrides[ov.PractitionerID] == nil {
		m.overrides[ov.PractitionerID] = make(map[string]models.AvailabilityOverride)
	}
	m.overrides[ov.PractitionerID][ov.Date] = ov
	return nil
}

func (m *memScheduleRepo) GetOverride(_ context.Context, practitionerID, date string) (*models.AvailabilityOverride, error) {
	ov, ok := m.overrides[practitionerID][date]
	if !ok {
		return nil, scheduleRepo.ErrNotFound
	}
	return &ov, nil
}

func (m *memScheduleRepo) ListOverrides(_ context.Context, practitionerID, fromDate, toDate string) ([]models.AvailabilityOverride, error) {
	var out []models.AvailabilityOverride
	for date, ov := range m.overrides[practitionerID] {
		if date >= fromDate && date <= toDate {
			out = append(out, ov)
		}
	}
	return out, nil
}

func (m *memScheduleRepo) DeleteOverride(_ context.Context, practitionerID, date string) error {
	if _, ok := m.overrides[practitionerID][date]; !ok {
		return scheduleRepo.ErrNotFound
	}
	delete(m.overrides[practitionerID], date)
	return nil
}

func validTemplate(day int) models.ScheduleTemplate {
	return models.ScheduleTemplate{
		DayOfWeek:    day,
		Start:        540,
		End:          1020,
		SlotDuration: 30,
	}
}

func newService() (*DefaultScheduleService, *memScheduleRepo) {
	repo := newMemScheduleRepo()
	return &DefaultScheduleService{Repo: repo}, repo
}

func TestSetTemplate(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	tmpl := validTemplate(1)
	tmpl.PractitionerID = "prac-1"
	require.NoError(t, svc.SetTemplate(ctx, tmpl))

	stored, err := repo.GetTemplate(ctx, "prac-1", 1)
	require.NoError(t, err)
	assert.Equal(t, 540, stored.Start)

	// Upsert replaces.
	tmpl.Start = 600
	require.NoError(t, svc.SetTemplate(ctx, tmpl))
	stored, err = repo.GetTemplate(ctx, "prac-1", 1)
	require.NoError(t, err)
	assert.Equal(t, 600, stored.Start)
}

func TestSetTemplateValidation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	missing := validTemplate(1)
	err := svc.SetTemplate(ctx, missing)
	assert.Equal(t, booking.CodeValidation, booking.CodeOf(err))

	bad := validTemplate(1)
	bad.PractitionerID = "prac-1"
	bad.SlotDuration = 0
	err = svc.SetTemplate(ctx, bad)
	assert.Equal(t, booking.CodeValidation, booking.CodeOf(err))
}

func TestSetWeek(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	err := svc.SetWeek(ctx, "prac-1", []models.ScheduleTemplate{
		validTemplate(1), validTemplate(2), validTemplate(3),
	})
	require.NoError(t, err)

	week, err := repo.GetWeek(ctx, "prac-1")
	require.NoError(t, err)
	assert.Len(t, week, 3)
	for _, tmpl := range week {
		assert.Equal(t, "prac-1", tmpl.PractitionerID)
	}
}

func TestSetWeekRejectsDuplicatesAtomically(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	err := svc.SetWeek(ctx, "prac-1", []models.ScheduleTemplate{
		validTemplate(1), validTemplate(1),
	})
	assert.Equal(t, booking.CodeValidation, booking.CodeOf(err))

	// An invalid batch writes nothing.
	bad := validTemplate(2)
	bad.Start, bad.End = 1020, 540
	err = svc.SetWeek(ctx, "prac-1", []models.ScheduleTemplate{validTemplate(1), bad})
	assert.Equal(t, booking.CodeValidation, booking.CodeOf(err))

	week, err := repo.GetWeek(ctx, "prac-1")
	require.NoError(t, err)
	assert.Empty(t, week)
}

func TestDeleteDay(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	tmpl := validTemplate(1)
	tmpl.PractitionerID = "prac-1"
	require.NoError(t, svc.SetTemplate(ctx, tmpl))

	require.NoError(t, svc.DeleteDay(ctx, "prac-1", 1))

	err := svc.DeleteDay(ctx, "prac-1", 1)
	assert.Equal(t, booking.CodeNotFound, booking.CodeOf(err))

	err = svc.DeleteDay(ctx, "prac-1", 9)
	assert.Equal(t, booking.CodeValidation, booking.CodeOf(err))
}

func TestOverrideRoundTrip(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	ov := models.AvailabilityOverride{
		PractitionerID: "prac-1",
		Date:           "2025-06-16",
		Blocked:        true,
		Reason:         "conference",
	}
	require.NoError(t, svc.SetOverride(ctx, ov))

	listed, err := svc.ListOverrides(ctx, "prac-1", "2025-06-01", "2025-06-30")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].Blocked)

	require.NoError(t, svc.DeleteOverride(ctx, "prac-1", "2025-06-16"))
	err = svc.DeleteOverride(ctx, "prac-1", "2025-06-16")
	assert.Equal(t, booking.CodeNotFound, booking.CodeOf(err))
}

func TestOverrideValidation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	err := svc.SetOverride(ctx, models.AvailabilityOverride{PractitionerID: "prac-1", Date: "bogus"})
	assert.Equal(t, booking.CodeValidation, booking.CodeOf(err))

	err = svc.SetOverride(ctx, models.AvailabilityOverride{
		PractitionerID: "prac-1",
		Date:           "2025-06-16",
		Blocked:        true,
		Window:         &models.TimeWindow{Start: 540, End: 720},
	})
	assert.Equal(t, booking.CodeValidation, booking.CodeOf(err))

	_, err = svc.ListOverrides(ctx, "prac-1", "June 1", "2025-06-30")
	assert.Equal(t, booking.CodeValidation, booking.CodeOf(err))
}
