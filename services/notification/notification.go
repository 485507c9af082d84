// File: services/notification/notification.go
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"clinicbook/models"
	"clinicbook/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Task types consumed by the background worker.
const (
	TypeAppointmentEvent = "appointment:event"
)

// Event names carried in the payload.
const (
	EventBooked    = "booked"
	EventCancelled = "cancelled"
)

// EventPayload is the queued record of a booking mutation. Delivery (push,
// email) is an external collaborator's job; this engine only emits events.
type EventPayload struct {
	Event          string `json:"event"`
	AppointmentID  string `json:"appointmentId"`
	PractitionerID string `json:"practitionerId"`
	PatientID      string `json:"patientId"`
	Date           string `json:"date"`
	Start          int    `json:"start"`
}

// NotificationService emits appointment lifecycle events.
type NotificationService interface {
	AppointmentBooked(ctx context.Context, appt *models.Appointment) error
	AppointmentCancelled(ctx context.Context, appt *models.Appointment) error
}

// AsynqNotificationService queues events onto Redis via asynq; the worker in
// cron/ picks them up and hands them to a Dispatcher.
type AsynqNotificationService struct {
	Client *asynq.Client
}

func NewAsynqNotificationService(client *asynq.Client) *AsynqNotificationService {
	return &AsynqNotificationService{Client: client}
}

func (s *AsynqNotificationService) AppointmentBooked(ctx context.Context, appt *models.Appointment) error {
	return s.enqueue(ctx, EventBooked, appt)
}

func (s *AsynqNotificationService) AppointmentCancelled(ctx context.Context, appt *models.Appointment) error {
	return s.enqueue(ctx, EventCancelled, appt)
}

func (s *AsynqNotificationService) enqueue(ctx context.Context, event string, appt *models.Appointment) error {
	payload, err := json.Marshal(EventPayload{
		Event:          event,
		AppointmentID:  appt.ID,
		PractitionerID: appt.PractitionerID,
		PatientID:      appt.PatientID,
		Date:           appt.Date,
		Start:          appt.Start,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event, err)
	}
	task := asynq.NewTask(TypeAppointmentEvent, payload)
	if _, err := s.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue %s event: %w", event, err)
	}
	return nil
}

// Dispatcher delivers a queued event to the outside world.
type Dispatcher interface {
	Deliver(ctx context.Context, payload EventPayload) error
}

// LogDispatcher is the default delivery sink: it records the event and leaves
// actual push/email delivery to the deployment's collaborator service.
type LogDispatcher struct{}

func (LogDispatcher) Deliver(_ context.Context, p EventPayload) error {
	utils.GetLogger().Info("appointment event",
		zap.String("event", p.Event),
		zap.String("appointmentID", p.AppointmentID),
		zap.String("practitionerID", p.PractitionerID),
		zap.String("patientID", p.PatientID),
		zap.String("date", p.Date),
		zap.Int("start", p.Start),
	)
	return nil
}
