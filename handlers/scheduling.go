package handlers

import (
	"net/http"
	"strconv"

	"clinicbook/services/scheduling"

	"github.com/gin-gonic/gin"
)

const maxSummaryDays = 31

// SchedulingHandler exposes read-only availability views. These endpoints are
// public so patients can browse before authenticating.
type SchedulingHandler struct {
	Service scheduling.SchedulingService
}

func NewSchedulingHandler(svc scheduling.SchedulingService) *SchedulingHandler {
	return &SchedulingHandler{Service: svc}
}

// DaySlotsHandler returns the generated slot list for one practitioner day.
func (h *SchedulingHandler) DaySlotsHandler(c *gin.Context) {
	practitionerID := c.Param("practitionerID")
	date := c.Query("date")
	if practitionerID == "" || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "practitionerID and date are required"})
		return
	}

	slots, err := h.Service.DaySlots(c.Request.Context(), practitionerID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}

// SummaryHandler returns per-day availability counts over a date range.
func (h *SchedulingHandler) SummaryHandler(c *gin.Context) {
	practitionerID := c.Param("practitionerID")
	fromDate := c.Query("from")
	if practitionerID == "" || fromDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "practitionerID and from are required"})
		return
	}
	numDays, ok := parseDaysQuery(c, 7)
	if !ok {
		return
	}

	summaries, err := h.Service.Summarize(c.Request.Context(), practitionerID, fromDate, numDays)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summaries": summaries})
}

// NextAvailableHandler returns the earliest open slot at or after a date.
func (h *SchedulingHandler) NextAvailableHandler(c *gin.Context) {
	practitionerID := c.Param("practitionerID")
	fromDate := c.Query("from")
	if practitionerID == "" || fromDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "practitionerID and from are required"})
		return
	}
	numDays, ok := parseDaysQuery(c, 14)
	if !ok {
		return
	}

	slot, err := h.Service.NextAvailable(c.Request.Context(), practitionerID, fromDate, numDays)
	if err != nil {
		respondError(c, err)
		return
	}
	if slot == nil {
		c.JSON(http.StatusOK, gin.H{"slot": nil, "message": "no availability in the requested window"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slot": slot})
}

func parseDaysQuery(c *gin.Context, def int) (int, bool) {
	raw := c.Query("days")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxSummaryDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer in 1..31"})
		return 0, false
	}
	return n, true
}
