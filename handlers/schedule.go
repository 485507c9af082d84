package handlers

import (
	"net/http"
	"strconv"

	"clinicbook/models"
	"clinicbook/services/schedule"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScheduleHandler exposes the practitioner's own schedule management
// endpoints. All of these act on the authenticated practitioner; the
// practitioner ID never comes from the request body.
type ScheduleHandler struct {
	Service schedule.ScheduleService
}

func NewScheduleHandler(svc schedule.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{Service: svc}
}

// SetTemplateHandler upserts a single weekday template.
func (h *ScheduleHandler) SetTemplateHandler(c *gin.Context) {
	practitionerID, ok := subjectID(c)
	if !ok {
		return
	}

	var tmpl models.ScheduleTemplate
	if err := c.ShouldBindJSON(&tmpl); err != nil {
		utils.GetLogger().Error("Invalid template payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "message": err.Error()})
		return
	}
	tmpl.PractitionerID = practitionerID

	if err := h.Service.SetTemplate(c.Request.Context(), tmpl); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "template saved"})
}

// SetWeekHandler replaces the full weekly template in one request.
func (h *ScheduleHandler) SetWeekHandler(c *gin.Context) {
	practitionerID, ok := subjectID(c)
	if !ok {
		return
	}

	var body struct {
		Templates []models.ScheduleTemplate `json:"templates" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "message": err.Error()})
		return
	}

	if err := h.Service.SetWeek(c.Request.Context(), practitionerID, body.Templates); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "week saved", "days": len(body.Templates)})
}

// GetWeekHandler returns the practitioner's weekly templates.
func (h *ScheduleHandler) GetWeekHandler(c *gin.Context) {
	practitionerID, ok := subjectID(c)
	if !ok {
		return
	}

	templates, err := h.Service.GetWeek(c.Request.Context(), practitionerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// DeleteDayHandler removes the template for one weekday.
func (h *ScheduleHandler) DeleteDayHandler(c *gin.Context) {
	practitionerID, ok := subjectID(c)
	if !ok {
		return
	}
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day must be an integer in 0..6"})
		return
	}

	if err := h.Service.DeleteDay(c.Request.Context(), practitionerID, day); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "template deleted"})
}

// SetOverrideHandler upserts a per-date availability override.
func (h *ScheduleHandler) SetOverrideHandler(c *gin.Context) {
	practitionerID, ok := subjectID(c)
	if !ok {
		return
	}

	var ov models.AvailabilityOverride
	if err := c.ShouldBindJSON(&ov); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "message": err.Error()})
		return
	}
	ov.PractitionerID = practitionerID

	if err := h.Service.SetOverride(c.Request.Context(), ov); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "override saved", "date": ov.Date})
}

// ListOverridesHandler lists overrides in a date range.
func (h *ScheduleHandler) ListOverridesHandler(c *gin.Context) {
	practitionerID, ok := subjectID(c)
	if !ok {
		return
	}
	fromDate := c.Query("from")
	toDate := c.Query("to")
	if fromDate == "" || toDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	overrides, err := h.Service.ListOverrides(c.Request.Context(), practitionerID, fromDate, toDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"overrides": overrides})
}

// DeleteOverrideHandler removes the override for one date.
func (h *ScheduleHandler) DeleteOverrideHandler(c *gin.Context) {
	practitionerID, ok := subjectID(c)
	if !ok {
		return
	}
	date := c.Param("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing date in path"})
		return
	}

	if err := h.Service.DeleteOverride(c.Request.Context(), practitionerID, date); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "override deleted"})
}
