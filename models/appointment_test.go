package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to AppointmentStatus }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusInProgress},
		{StatusConfirmed, StatusCancelled},
		{StatusConfirmed, StatusNoShow},
		{StatusInProgress, StatusCompleted},
	}
	for _, tr := range allowed {
		assert.True(t, tr.from.CanTransitionTo(tr.to), "%s -> %s should be allowed", tr.from, tr.to)
	}

	denied := []struct{ from, to AppointmentStatus }{
		{StatusPending, StatusInProgress},
		{StatusPending, StatusCompleted},
		{StatusPending, StatusNoShow},
		{StatusConfirmed, StatusCompleted},
		{StatusInProgress, StatusCancelled},
		{StatusInProgress, StatusNoShow},
		{StatusCompleted, StatusPending},
		{StatusCancelled, StatusConfirmed},
		{StatusNoShow, StatusConfirmed},
		{StatusCompleted, StatusCancelled},
	}
	for _, tr := range denied {
		assert.False(t, tr.from.CanTransitionTo(tr.to), "%s -> %s should be denied", tr.from, tr.to)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusNoShow.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusNoShow.Valid())
	assert.False(t, AppointmentStatus("SCHEDULED").Valid())
	assert.False(t, AppointmentStatus("").Valid())
}

func TestAppointmentClockResolution(t *testing.T) {
	loc, err := time.LoadLocation("UTC")
	require.NoError(t, err)

	appt := Appointment{Date: "2025-06-16", Start: 540, End: 570}

	startsAt, err := appt.StartsAt(loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 16, 9, 0, 0, 0, loc), startsAt)

	endsAt, err := appt.EndsAt(loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 16, 9, 30, 0, 0, loc), endsAt)

	_, err = Appointment{Date: "bogus", Start: 540}.StartsAt(loc)
	assert.Error(t, err)
}
