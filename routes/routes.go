package routes

import (
	"net/http"
	"time"

	"clinicbook/handlers"
	"clinicbook/middleware"
	"clinicbook/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAvailabilityRoutes registers the public availability views.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/availability")
	{
		api.GET("/:practitionerID/slots", hb.DaySlotsHandler)
		api.GET("/:practitionerID/summary", hb.SummaryHandler)
		api.GET("/:practitionerID/next", hb.NextAvailableHandler)
	}
}

// RegisterAppointmentRoutes registers booking and lifecycle endpoints.
// Confirm, begin and complete are practitioner actions; cancel and reads are
// open to either party on the appointment.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.POST("", middleware.PatientAuth(), hb.BookHandler)
		api.GET("", middleware.PatientAuth(), hb.ListMineHandler)

		either := middleware.AuthRequired(utils.RolePatient, utils.RolePractitioner)
		api.GET("/:appointmentID", either, hb.GetHandler)
		api.POST("/:appointmentID/cancel", either, hb.CancelHandler)

		api.POST("/:appointmentID/confirm", middleware.PractitionerAuth(), hb.ConfirmHandler)
		api.POST("/:appointmentID/begin", middleware.PractitionerAuth(), hb.BeginHandler)
		api.POST("/:appointmentID/complete", middleware.PractitionerAuth(), hb.CompleteHandler)
	}
}

// RegisterPractitionerRoutes registers the practitioner's schedule management
// and agenda endpoints.
func RegisterPractitionerRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/practitioner")
	api.Use(middleware.PractitionerAuth())
	{
		api.GET("/appointments", hb.ListAgendaHandler)

		api.PUT("/schedule/template", hb.SetTemplateHandler)
		api.PUT("/schedule/week", hb.SetWeekHandler)
		api.GET("/schedule/week", hb.GetWeekHandler)
		api.DELETE("/schedule/template/:day", hb.DeleteDayHandler)

		api.PUT("/schedule/overrides", hb.SetOverrideHandler)
		api.GET("/schedule/overrides", hb.ListOverridesHandler)
		api.DELETE("/schedule/overrides/:date", hb.DeleteOverrideHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint backed by the
// background monitor's snapshot.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Mongo {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAvailabilityRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterPractitionerRoutes(r, hb)
}
