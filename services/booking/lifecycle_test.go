package booking

import (
	"context"
	"testing"
	"time"

	"clinicbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBook(t *testing.T, svc *DefaultBookingService, start int) *models.Appointment {
	t.Helper()
	appt, err := svc.Book(context.Background(), bookingReq(start))
	require.NoError(t, err)
	return appt
}

func atClock(hour, min int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, 6, 16, hour, min, 0, 0, time.UTC)
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	appt := mustBook(t, svc, 540) // 09:00 - 09:30

	confirmed, err := svc.Confirm(ctx, appt.ID, "prac-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	svc.Now = atClock(9, 5)
	started, err := svc.Begin(ctx, appt.ID, "prac-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, started.Status)

	svc.Now = atClock(9, 35)
	done, err := svc.Complete(ctx, appt.ID, "prac-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.True(t, done.Status.IsTerminal())
}

func TestBeginBeforeScheduledStart(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	appt := mustBook(t, svc, 540)

	_, err := svc.Confirm(ctx, appt.ID, "prac-1")
	require.NoError(t, err)

	svc.Now = atClock(8, 59)
	_, err = svc.Begin(ctx, appt.ID, "prac-1")
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))
}

func TestInvalidTransitions(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	appt := mustBook(t, svc, 540)
	svc.Now = atClock(9, 5)

	// PENDING cannot begin or complete.
	_, err := svc.Begin(ctx, appt.ID, "prac-1")
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))
	_, err = svc.Complete(ctx, appt.ID, "prac-1")
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))

	// Double confirm is invalid, not idempotent.
	_, err = svc.Confirm(ctx, appt.ID, "prac-1")
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, appt.ID, "prac-1")
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))
}

func TestTransitionRequiresOwningPractitioner(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.Confirm(context.Background(), mustBook(t, svc, 540).ID, "prac-2")
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestCancelWindow(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	// With a 2 hour cutoff, one minute before start is closed.
	appt := mustBook(t, svc, 540)
	_, err := svc.Confirm(ctx, appt.ID, "prac-1")
	require.NoError(t, err)

	svc.Now = atClock(8, 59)
	_, err = svc.Cancel(ctx, appt.ID, "pat-1", "can't make it")
	assert.Equal(t, CodeCancellationClosed, CodeOf(err))

	// Three hours before start is open.
	svc.Now = atClock(6, 0)
	cancelled, err := svc.Cancel(ctx, appt.ID, "pat-1", "can't make it")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, "can't make it", cancelled.CancelReason)
}

func TestCancelExactlyAtCutoff(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	appt := mustBook(t, svc, 540)

	// now == start - cutoff is already closed; the window is strict.
	svc.Now = atClock(7, 0)
	_, err := svc.Cancel(ctx, appt.ID, "pat-1", "")
	assert.Equal(t, CodeCancellationClosed, CodeOf(err))
}

func TestCancelAuthorization(t *testing.T) {
	svc, _, _, notifier := newTestService()
	ctx := context.Background()
	appt := mustBook(t, svc, 540)

	_, err := svc.Cancel(ctx, appt.ID, "stranger", "")
	assert.Equal(t, CodeNotFound, CodeOf(err))

	// The practitioner may cancel too.
	cancelled, err := svc.Cancel(ctx, appt.ID, "prac-1", "emergency")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, 1, notifier.cancelled)
}

func TestCancelTerminalAppointment(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	appt := mustBook(t, svc, 540)

	_, err := svc.Confirm(ctx, appt.ID, "prac-1")
	require.NoError(t, err)
	svc.Now = atClock(9, 5)
	_, err = svc.Begin(ctx, appt.ID, "prac-1")
	require.NoError(t, err)
	_, err = svc.Complete(ctx, appt.ID, "prac-1")
	require.NoError(t, err)

	svc.Now = atClock(6, 0)
	_, err = svc.Cancel(ctx, appt.ID, "pat-1", "")
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))
}

func TestCancelFreesSlotForRebooking(t *testing.T) {
	svc, _, scheduler, _ := newTestService()
	ctx := context.Background()
	appt := mustBook(t, svc, 540)

	_, err := svc.Cancel(ctx, appt.ID, "pat-1", "")
	require.NoError(t, err)
	// Booking mutations drop the cached day (book + cancel).
	assert.Len(t, scheduler.invalidated, 2)

	rebook := bookingReq(540)
	rebook.PatientID = "pat-2"
	again, err := svc.Book(ctx, rebook)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, again.Status)
}

func TestConcurrentTransitionLosesCleanly(t *testing.T) {
	svc, ledger, _, _ := newTestService()
	ctx := context.Background()
	appt := mustBook(t, svc, 540)

	ledger.staleOnce = true
	_, err := svc.Confirm(ctx, appt.ID, "prac-1")
	assert.Equal(t, CodeConflict, CodeOf(err))
}

func TestSweepNoShows(t *testing.T) {
	svc, ledger, scheduler, _ := newTestService()
	ctx := context.Background()

	overdue := mustBook(t, svc, 540) // ends 09:30
	_, err := svc.Confirm(ctx, overdue.ID, "prac-1")
	require.NoError(t, err)

	upcoming := mustBook(t, svc, 570) // ends 10:00
	_, err = svc.Confirm(ctx, upcoming.ID, "prac-1")
	require.NoError(t, err)

	// 10:15 with a 30 minute grace: cutoff is 09:45, so only the 09:30
	// appointment has expired.
	svc.Now = atClock(10, 15)
	invalidatedBefore := len(scheduler.invalidated)

	swept, err := svc.SweepNoShows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)
	assert.Len(t, scheduler.invalidated, invalidatedBefore+1)

	first, err := ledger.GetByID(ctx, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNoShow, first.Status)

	second, err := ledger.GetByID(ctx, upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, second.Status)

	// Idempotent: nothing new right after.
	swept, err = svc.SweepNoShows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, swept)
}

func TestSweepSkipsConcurrentlyStartedAppointments(t *testing.T) {
	svc, ledger, _, _ := newTestService()
	ctx := context.Background()

	appt := mustBook(t, svc, 540)
	_, err := svc.Confirm(ctx, appt.ID, "prac-1")
	require.NoError(t, err)

	svc.Now = atClock(10, 30)
	ledger.staleOnce = true // practitioner begins it mid-sweep

	swept, err := svc.SweepNoShows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, swept)
}
