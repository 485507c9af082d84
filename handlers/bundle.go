// File: clinicbook/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct so route
// registration stays declarative.
type HandlerBundle struct {
	// Availability endpoints (public)
	DaySlotsHandler      gin.HandlerFunc
	SummaryHandler       gin.HandlerFunc
	NextAvailableHandler gin.HandlerFunc

	// Appointment endpoints
	BookHandler       gin.HandlerFunc
	ConfirmHandler    gin.HandlerFunc
	BeginHandler      gin.HandlerFunc
	CompleteHandler   gin.HandlerFunc
	CancelHandler     gin.HandlerFunc
	GetHandler        gin.HandlerFunc
	ListMineHandler   gin.HandlerFunc
	ListAgendaHandler gin.HandlerFunc

	// Practitioner schedule management endpoints
	SetTemplateHandler    gin.HandlerFunc
	SetWeekHandler        gin.HandlerFunc
	GetWeekHandler        gin.HandlerFunc
	DeleteDayHandler      gin.HandlerFunc
	SetOverrideHandler    gin.HandlerFunc
	ListOverridesHandler  gin.HandlerFunc
	DeleteOverrideHandler gin.HandlerFunc
}
