package models

import "time"

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending    AppointmentStatus = "PENDING"
	StatusConfirmed  AppointmentStatus = "CONFIRMED"
	StatusInProgress AppointmentStatus = "IN_PROGRESS"
	StatusCompleted  AppointmentStatus = "COMPLETED"
	StatusCancelled  AppointmentStatus = "CANCELLED"
	StatusNoShow     AppointmentStatus = "NO_SHOW"
)

// transitions is the exhaustive transition table. Absent entries are invalid.
var transitions = map[AppointmentStatus]map[AppointmentStatus]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusInProgress: true,
		StatusCancelled:  true,
		StatusNoShow:     true,
	},
	StatusInProgress: {
		StatusCompleted: true,
	},
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	return transitions[s][target]
}

// IsTerminal reports whether s admits no further transitions.
func (s AppointmentStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Valid reports whether s is a known status value.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Appointment is a committed booking. Rows are never deleted; cancellation is
// a status change so the audit history survives. The ledger enforces that
// (practitioner_id, date, start) is unique among non-cancelled appointments.
type Appointment struct {
	ID              string            `bson:"id" json:"id"`
	PractitionerID  string            `bson:"practitioner_id" json:"practitionerId"`
	PatientID       string            `bson:"patient_id" json:"patientId"`
	Date            string            `bson:"date" json:"date"` // "YYYY-MM-DD"
	Start           int               `bson:"start" json:"start"`
	End             int               `bson:"end" json:"end"`
	Duration        int               `bson:"duration" json:"durationMinutes"`
	Status          AppointmentStatus `bson:"status" json:"status"`
	ConsultationFee float64           `bson:"consultation_fee,omitempty" json:"consultationFee,omitempty"`
	PatientNotes    string            `bson:"patient_notes,omitempty" json:"patientNotes,omitempty"`
	DocumentRefs    []string          `bson:"document_refs,omitempty" json:"documentRefs,omitempty"`
	CancelReason    string            `bson:"cancel_reason,omitempty" json:"cancelReason,omitempty"`
	CreatedAt       time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time         `bson:"updated_at" json:"updatedAt"`
}

// StartsAt resolves the appointment's scheduled start as a wall-clock instant
// in the given location. The engine performs no timezone arithmetic; loc is
// the single canonical timezone supplied by the surrounding system.
func (a Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, a.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(a.Start) * time.Minute), nil
}

// EndsAt resolves the appointment's scheduled end, analogous to StartsAt.
func (a Appointment) EndsAt(loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, a.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(a.End) * time.Minute), nil
}

// BookingRequest is the payload for a booking commit. The practitioner and
// slot selection identify the target; everything else is patient-supplied.
type BookingRequest struct {
	PractitionerID string `json:"practitionerId" binding:"required"`
	PatientID      string `json:"-"` // resolved from auth, never from the body
	Date           string `json:"date" binding:"required"`
	Start          int    `json:"start"`
	// ConsultationFee is quoted to the client by the practitioner-profile
	// collaborator and echoed back here; the engine records it for the
	// appointment but does not price-check it beyond non-negativity.
	ConsultationFee float64  `json:"consultationFee,omitempty"`
	PatientNotes    string   `json:"patientNotes,omitempty"`
	DocumentRefs    []string `json:"documentRefs,omitempty"`
}
