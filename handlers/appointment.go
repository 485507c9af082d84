package handlers

import (
	"context"
	"net/http"

	"clinicbook/models"
	"clinicbook/services/booking"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentHandler exposes booking commits and lifecycle transitions.
type AppointmentHandler struct {
	Service booking.BookingService
}

func NewAppointmentHandler(svc booking.BookingService) *AppointmentHandler {
	return &AppointmentHandler{Service: svc}
}

// BookHandler commits a booking for the authenticated patient.
func (h *AppointmentHandler) BookHandler(c *gin.Context) {
	logger := utils.GetLogger()

	patientID, ok := subjectID(c)
	if !ok {
		return
	}

	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid booking request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "message": err.Error()})
		return
	}
	req.PatientID = patientID

	appt, err := h.Service.Book(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"appointment": appt})
}

// ConfirmHandler moves a pending appointment to confirmed. Practitioner only.
func (h *AppointmentHandler) ConfirmHandler(c *gin.Context) {
	h.practitionerTransition(c, h.Service.Confirm)
}

// BeginHandler marks a confirmed appointment as in progress. Practitioner only.
func (h *AppointmentHandler) BeginHandler(c *gin.Context) {
	h.practitionerTransition(c, h.Service.Begin)
}

// CompleteHandler closes out an in-progress appointment. Practitioner only.
func (h *AppointmentHandler) CompleteHandler(c *gin.Context) {
	h.practitionerTransition(c, h.Service.Complete)
}

// CancelHandler cancels an appointment. Either party may cancel, subject to
// the cutoff window.
func (h *AppointmentHandler) CancelHandler(c *gin.Context) {
	actorID, ok := subjectID(c)
	if !ok {
		return
	}
	apptID := c.Param("appointmentID")
	if apptID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing appointment ID in path"})
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	// Body is optional; a bare cancel carries no reason.
	_ = c.ShouldBindJSON(&body)

	appt, err := h.Service.Cancel(c.Request.Context(), apptID, actorID, body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// GetHandler returns a single appointment visible to the caller.
func (h *AppointmentHandler) GetHandler(c *gin.Context) {
	actorID, ok := subjectID(c)
	if !ok {
		return
	}
	apptID := c.Param("appointmentID")
	if apptID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing appointment ID in path"})
		return
	}

	appt, err := h.Service.GetAppointment(c.Request.Context(), apptID, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// ListMineHandler lists the authenticated patient's appointments, optionally
// filtered by ?status=.
func (h *AppointmentHandler) ListMineHandler(c *gin.Context) {
	patientID, ok := subjectID(c)
	if !ok {
		return
	}
	status, ok := parseStatusQuery(c)
	if !ok {
		return
	}

	appts, err := h.Service.ListForPatient(c.Request.Context(), patientID, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// ListAgendaHandler lists the authenticated practitioner's appointments,
// optionally filtered by ?status=.
func (h *AppointmentHandler) ListAgendaHandler(c *gin.Context) {
	practitionerID, ok := subjectID(c)
	if !ok {
		return
	}
	status, ok := parseStatusQuery(c)
	if !ok {
		return
	}

	appts, err := h.Service.ListForPractitioner(c.Request.Context(), practitionerID, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// practitionerTransition factors the shared shape of the practitioner-driven
// lifecycle endpoints.
func (h *AppointmentHandler) practitionerTransition(
	c *gin.Context,
	op func(ctx context.Context, apptID, practitionerID string) (*models.Appointment, error),
) {
	practitionerID, ok := subjectID(c)
	if !ok {
		return
	}
	apptID := c.Param("appointmentID")
	if apptID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing appointment ID in path"})
		return
	}

	appt, err := op(c.Request.Context(), apptID, practitionerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

func parseStatusQuery(c *gin.Context) (models.AppointmentStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return "", true
	}
	status := models.AppointmentStatus(raw)
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter", "status": raw})
		return "", false
	}
	return status, true
}
