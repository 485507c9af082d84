// File: database/repository/schedule/interface.go
package scheduleRepo

import (
	"context"
	"errors"

	"clinicbook/database"
	"clinicbook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("schedule record not found")

// ScheduleRepository persists weekly templates and per-date overrides.
// Both are owned by the practitioner (single writer, last-writer-wins).
type ScheduleRepository interface {
	EnsureIndexes() error

	UpsertTemplate(ctx context.Context, tmpl models.ScheduleTemplate) error
	GetTemplate(ctx context.Context, practitionerID string, dayOfWeek int) (*models.ScheduleTemplate, error)
	GetWeek(ctx context.Context, practitionerID string) ([]models.ScheduleTemplate, error)
	DeleteTemplate(ctx context.Context, practitionerID string, dayOfWeek int) error

	UpsertOverride(ctx context.Context, ov models.AvailabilityOverride) error
	GetOverride(ctx context.Context, practitionerID, date string) (*models.AvailabilityOverride, error)
	ListOverrides(ctx context.Context, practitionerID, fromDate, toDate string) ([]models.AvailabilityOverride, error)
	DeleteOverride(ctx context.Context, practitionerID, date string) error
}

type mongoScheduleRepo struct {
	templateColl *mongo.Collection
	overrideColl *mongo.Collection
}

// NewMongoScheduleRepo constructs the MongoDB-backed schedule store.
func NewMongoScheduleRepo() ScheduleRepository {
	db := database.MongoClient.Database(database.Name)
	return &mongoScheduleRepo{
		templateColl: db.Collection("schedule_templates"),
		overrideColl: db.Collection("availability_overrides"),
	}
}
