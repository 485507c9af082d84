// File: database/repository/schedule/schedule_mongo.go
package scheduleRepo

import (
	"context"
	"fmt"
	"time"

	"clinicbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const queryTimeout = 5 * time.Second

// EnsureIndexes creates the uniqueness indexes backing upserts: one template
// per (practitioner, weekday), one override per (practitioner, date).
func (r *mongoScheduleRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.templateColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "practitioner_id", Value: 1}, {Key: "day_of_week", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_practitioner_day"),
	})
	if err != nil {
		return fmt.Errorf("failed to create template indexes: %w", err)
	}

	_, err = r.overrideColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "practitioner_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_practitioner_date"),
	})
	if err != nil {
		return fmt.Errorf("failed to create override indexes: %w", err)
	}
	return nil
}

func (r *mongoScheduleRepo) UpsertTemplate(ctx context.Context, tmpl models.ScheduleTemplate) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tmpl.UpdatedAt = time.Now()
	filter := bson.M{"practitioner_id": tmpl.PractitionerID, "day_of_week": tmpl.DayOfWeek}
	update := bson.M{"$set": tmpl}
	opts := options.Update().SetUpsert(true)
	if _, err := r.templateColl.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert template for day %d: %w", tmpl.DayOfWeek, err)
	}
	return nil
}

func (r *mongoScheduleRepo) GetTemplate(ctx context.Context, practitionerID string, dayOfWeek int) (*models.ScheduleTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"practitioner_id": practitionerID, "day_of_week": dayOfWeek}
	var tmpl models.ScheduleTemplate
	if err := r.templateColl.FindOne(ctx, filter).Decode(&tmpl); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching template for %s day %d: %w", practitionerID, dayOfWeek, err)
	}
	return &tmpl, nil
}

func (r *mongoScheduleRepo) GetWeek(ctx context.Context, practitionerID string) ([]models.ScheduleTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "day_of_week", Value: 1}})
	cursor, err := r.templateColl.Find(ctx, bson.M{"practitioner_id": practitionerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching week templates: %w", err)
	}
	defer cursor.Close(ctx)

	var templates []models.ScheduleTemplate
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, fmt.Errorf("error decoding week templates: %w", err)
	}
	return templates, nil
}

func (r *mongoScheduleRepo) DeleteTemplate(ctx context.Context, practitionerID string, dayOfWeek int) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"practitioner_id": practitionerID, "day_of_week": dayOfWeek}
	res, err := r.templateColl.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("error deleting template for day %d: %w", dayOfWeek, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoScheduleRepo) UpsertOverride(ctx context.Context, ov models.AvailabilityOverride) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ov.UpdatedAt = time.Now()
	filter := bson.M{"practitioner_id": ov.PractitionerID, "date": ov.Date}
	update := bson.M{"$set": ov}
	opts := options.Update().SetUpsert(true)
	if _, err := r.overrideColl.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert override for %s: %w", ov.Date, err)
	}
	return nil
}

func (r *mongoScheduleRepo) GetOverride(ctx context.Context, practitionerID, date string) (*models.AvailabilityOverride, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"practitioner_id": practitionerID, "date": date}
	var ov models.AvailabilityOverride
	if err := r.overrideColl.FindOne(ctx, filter).Decode(&ov); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching override for %s on %s: %w", practitionerID, date, err)
	}
	return &ov, nil
}

func (r *mongoScheduleRepo) ListOverrides(ctx context.Context, practitionerID, fromDate, toDate string) ([]models.AvailabilityOverride, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"practitioner_id": practitionerID,
		"date":            bson.M{"$gte": fromDate, "$lte": toDate},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.overrideColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing overrides: %w", err)
	}
	defer cursor.Close(ctx)

	var overrides []models.AvailabilityOverride
	if err := cursor.All(ctx, &overrides); err != nil {
		return nil, fmt.Errorf("error decoding overrides: %w", err)
	}
	return overrides, nil
}

func (r *mongoScheduleRepo) DeleteOverride(ctx context.Context, practitionerID, date string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"practitioner_id": practitionerID, "date": date}
	res, err := r.overrideColl.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("error deleting override for %s: %w", date, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
