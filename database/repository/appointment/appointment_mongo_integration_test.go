// File: database/repository/appointment/appointment_mongo_integration_test.go
package appointmentRepo

import (
	"context"
	"os"
	"testing"
	"time"

	"clinicbook/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Exercises the real storage boundary: the partial unique index must be
// accepted by the server, reject a second insert for the same slot, and stop
// covering a row once it is cancelled. Runs only when MONGO_TEST_URI points
// at a reachable mongod, e.g. MONGO_TEST_URI=mongodb://localhost:27017.
func newIntegrationRepo(t *testing.T) *mongoAppointmentRepo {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set; skipping MongoDB integration test")
	}
	if testing.Short() {
		t.Skip("skipping MongoDB integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	coll := client.Database("clinicbook_test").Collection("appointments_" + uuid.New().String()[:8])
	t.Cleanup(func() {
		dropCtx, dropCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer dropCancel()
		_ = coll.Drop(dropCtx)
		_ = client.Disconnect(dropCtx)
	})

	return &mongoAppointmentRepo{coll: coll}
}

func integrationAppointment(practitionerID, patientID string, start int) *models.Appointment {
	now := time.Now().UTC()
	return &models.Appointment{
		ID:             uuid.New().String(),
		PractitionerID: practitionerID,
		PatientID:      patientID,
		Date:           "2025-06-16",
		Start:          start,
		End:            start + 30,
		Duration:       30,
		Status:         models.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestMongoInsertEnforcesSlotUniqueness(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()

	// The index must install cleanly; a rejected filter expression would
	// surface here before any booking is attempted.
	require.NoError(t, repo.EnsureIndexes())

	first := integrationAppointment("prac-1", "pat-1", 540)
	require.NoError(t, repo.Insert(ctx, first))

	second := integrationAppointment("prac-1", "pat-2", 540)
	err := repo.Insert(ctx, second)
	require.ErrorIs(t, err, ErrSlotTaken)

	// Same start for a different practitioner is a different slot.
	other := integrationAppointment("prac-2", "pat-2", 540)
	assert.NoError(t, repo.Insert(ctx, other))
}

func TestMongoCancelFreesSlotForRebooking(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.EnsureIndexes())

	first := integrationAppointment("prac-1", "pat-1", 600)
	require.NoError(t, repo.Insert(ctx, first))

	cancelled, err := repo.UpdateStatus(ctx, first.ID, models.StatusPending, models.StatusCancelled, "patient request")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	// The cancelled row left the index, so the slot accepts a new booking
	// and the historical row survives alongside it.
	rebooked := integrationAppointment("prac-1", "pat-2", 600)
	require.NoError(t, repo.Insert(ctx, rebooked))

	appts, err := repo.GetByPractitionerAndDate(ctx, "prac-1", "2025-06-16")
	require.NoError(t, err)
	assert.Len(t, appts, 2)
}

func TestMongoUpdateStatusDetectsStaleExpectation(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.EnsureIndexes())

	appt := integrationAppointment("prac-1", "pat-1", 660)
	require.NoError(t, repo.Insert(ctx, appt))

	_, err := repo.UpdateStatus(ctx, appt.ID, models.StatusPending, models.StatusConfirmed, "")
	require.NoError(t, err)

	_, err = repo.UpdateStatus(ctx, appt.ID, models.StatusPending, models.StatusConfirmed, "")
	assert.ErrorIs(t, err, ErrStaleStatus)
}
