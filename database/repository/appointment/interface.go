// File: database/repository/appointment/interface.go
package appointmentRepo

import (
	"context"
	"errors"

	"clinicbook/database"
	"clinicbook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// Sentinel errors surfaced by the ledger. ErrSlotTaken is the authoritative
// conflict signal from the atomic insert; callers must not treat a prior
// availability read as a guarantee.
var (
	ErrSlotTaken   = errors.New("appointment slot already taken")
	ErrNotFound    = errors.New("appointment not found")
	ErrStaleStatus = errors.New("appointment status changed concurrently")
)

// ListFilter narrows appointment listings.
type ListFilter struct {
	Status   models.AppointmentStatus // optional
	FromDate string                   // optional, inclusive "YYYY-MM-DD"
	Limit    int64                    // 0 means repository default
}

// AppointmentRepository is the authoritative ledger of committed bookings.
type AppointmentRepository interface {
	EnsureIndexes() error

	// Insert commits a booking atomically. The partial unique index on
	// (practitioner_id, date, start) over non-cancelled rows makes the
	// check-and-insert a single step; a duplicate key maps to ErrSlotTaken.
	Insert(ctx context.Context, appt *models.Appointment) error

	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	GetByPractitionerAndDate(ctx context.Context, practitionerID, date string) ([]models.Appointment, error)
	ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]models.Appointment, error)
	ListByPractitioner(ctx context.Context, practitionerID string, filter ListFilter) ([]models.Appointment, error)

	// UpdateStatus transitions id from expected to target in one conditional
	// update. It returns ErrStaleStatus when the row exists but its status no
	// longer matches expected, so concurrent transitions cannot double-apply.
	UpdateStatus(ctx context.Context, id string, expected, target models.AppointmentStatus, reason string) (*models.Appointment, error)

	// ListConfirmedEndedBefore returns confirmed appointments whose scheduled
	// end passed before the given cutoff (date strictly earlier, or same date
	// with end <= cutoffMinutes). Used by the no-show sweep.
	ListConfirmedEndedBefore(ctx context.Context, date string, cutoffMinutes int) ([]models.Appointment, error)
}

type mongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo constructs the MongoDB-backed ledger.
func NewMongoAppointmentRepo() AppointmentRepository {
	db := database.MongoClient.Database(database.Name)
	return &mongoAppointmentRepo{
		coll: db.Collection("appointments"),
	}
}
