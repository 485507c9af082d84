// File: database/repository/appointment/indexes.go
package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"clinicbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// slotHoldingStatuses lists every status under which an appointment still
// occupies its slot. Only cancellation releases the slot. The partial index
// filter must enumerate these with $in: Mongo's partialFilterExpression does
// not accept $ne, so "status != CANCELLED" cannot be expressed directly.
func slotHoldingStatuses() []string {
	return []string{
		string(models.StatusPending),
		string(models.StatusConfirmed),
		string(models.StatusInProgress),
		string(models.StatusCompleted),
		string(models.StatusNoShow),
	}
}

// appointmentIndexModels defines the appointments collection's indexes. The
// partial unique index is the one-slot-one-booking invariant: among rows
// whose status still holds the slot, (practitioner_id, date, start) admits
// exactly one document, and Mongo enforces it atomically at insert time.
// Cancelled rows fall outside the filter, which frees the slot for rebooking.
func appointmentIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys: bson.D{{Key: "practitioner_id", Value: 1}, {Key: "date", Value: 1}, {Key: "start", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("unique_active_slot").
				SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": slotHoldingStatuses()},
				}),
		},
		// Listing patterns.
		{
			Keys:    bson.D{{Key: "patient_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("patient_date_idx"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}, {Key: "end", Value: 1}},
			Options: options.Index().SetName("status_date_end_idx"),
		},
	}
}

// EnsureIndexes creates the necessary indexes on the appointments collection.
func (r *mongoAppointmentRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, appointmentIndexModels())
	if err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}
	return nil
}
