// File: database/repository/appointment/appointment_mongo.go
package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinicbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const queryTimeout = 5 * time.Second

func (r *mongoAppointmentRepo) Insert(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, appt); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("insert appointment failed: %w", err)
	}
	return nil
}

func (r *mongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var appt models.Appointment
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching appointment %s: %w", id, err)
	}
	return &appt, nil
}

func (r *mongoAppointmentRepo) GetByPractitionerAndDate(ctx context.Context, practitionerID, date string) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"practitioner_id": practitionerID, "date": date}
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching appointments for %s on %s: %w", practitionerID, date, err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding appointments: %w", err)
	}
	return appts, nil
}

func (r *mongoAppointmentRepo) ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]models.Appointment, error) {
	return r.list(ctx, bson.M{"patient_id": patientID}, filter)
}

func (r *mongoAppointmentRepo) ListByPractitioner(ctx context.Context, practitionerID string, filter ListFilter) ([]models.Appointment, error) {
	return r.list(ctx, bson.M{"practitioner_id": practitionerID}, filter)
}

func (r *mongoAppointmentRepo) list(ctx context.Context, query bson.M, filter ListFilter) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.FromDate != "" {
		query["date"] = bson.M{"$gte": filter.FromDate}
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start", Value: 1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding appointments: %w", err)
	}
	return appts, nil
}

func (r *mongoAppointmentRepo) UpdateStatus(ctx context.Context, id string, expected, target models.AppointmentStatus, reason string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	set := bson.M{"status": target, "updated_at": time.Now()}
	if reason != "" {
		set["cancel_reason"] = reason
	}
	filter := bson.M{"id": id, "status": expected}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var appt models.Appointment
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&appt)
	if err == nil {
		return &appt, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("error updating appointment %s status: %w", id, err)
	}

	// Distinguish a missing row from a row whose status moved under us.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrStaleStatus
}

func (r *mongoAppointmentRepo) ListConfirmedEndedBefore(ctx context.Context, date string, cutoffMinutes int) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"status": models.StatusConfirmed,
		"$or": bson.A{
			bson.M{"date": bson.M{"$lt": date}},
			bson.M{"date": date, "end": bson.M{"$lte": cutoffMinutes}},
		},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching expired confirmed appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding expired appointments: %w", err)
	}
	return appts, nil
}

// IsTransient reports whether a storage error is worth a bounded retry.
// Conflicts and not-found results are authoritative and never retried.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, ErrSlotTaken) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrStaleStatus) {
		return false
	}
	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}
