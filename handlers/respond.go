package handlers

import (
	"errors"
	"net/http"

	"clinicbook/services/booking"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusByCode maps engine error codes to HTTP statuses. Conflicts share 409
// with slotUnavailable; lifecycle rule violations get 422 so clients can tell
// "bad request shape" apart from "valid request, rule says no".
var statusByCode = map[string]int{
	booking.CodeValidation:         http.StatusBadRequest,
	booking.CodeSlotUnavailable:    http.StatusConflict,
	booking.CodeConflict:           http.StatusConflict,
	booking.CodeInvalidTransition:  http.StatusUnprocessableEntity,
	booking.CodeCancellationClosed: http.StatusUnprocessableEntity,
	booking.CodeNotFound:           http.StatusNotFound,
	booking.CodeTransientStore:     http.StatusServiceUnavailable,
}

// respondError translates a service error into the standard JSON error shape.
func respondError(c *gin.Context, err error) {
	var ee *booking.EngineError
	if errors.As(err, &ee) {
		status, ok := statusByCode[ee.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"error": ee.Message, "code": ee.Code})
		return
	}
	utils.GetLogger().Error("unclassified handler error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// subjectID returns the authenticated principal's ID set by the auth
// middleware, or aborts with 401.
func subjectID(c *gin.Context) (string, bool) {
	idVal, exists := c.Get("subjectID")
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return "", false
	}
	id, ok := idVal.(string)
	if !ok || id == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return "", false
	}
	return id, true
}
