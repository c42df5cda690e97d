package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"ledgerly/handlers"
	"ledgerly/middleware"
	"ledgerly/utils"
)

// RegisterPublicRoutes registers the customer-facing endpoints. No auth; the
// global rate limiter is the only guard.
func RegisterPublicRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/public")
	{
		api.GET("/availability/:date", hb.ListDayHandler)
		api.POST("/bookings", hb.CreateBookingHandler)
	}
}

// RegisterAvailabilityRoutes registers staff window management endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/availability")
	{
		api.Use(middleware.JWTAuthStaffMiddleware())
		api.POST("", hb.CreateAvailabilityHandler)
		api.GET("", hb.ListAvailabilityHandler)
		api.PATCH("/:id", hb.UpdateAvailabilityHandler)
		api.DELETE("/:id", hb.DeleteAvailabilityHandler)
	}
}

// RegisterAdminRoutes registers the staff booking dashboard and the external
// connection management endpoints.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/admin")
	{
		api.Use(middleware.JWTAuthStaffMiddleware())
		api.GET("/bookings", hb.ListBookingsHandler)
		api.GET("/bookings/stats", hb.StatsHandler)
		api.GET("/bookings/:id", hb.GetBookingHandler)
		api.POST("/bookings/:id/cancel", hb.CancelBookingHandler)
		api.POST("/bookings/:id/complete", hb.CompleteBookingHandler)
		api.GET("/bookings/:id/sync-history", hb.SyncHistoryHandler)
		api.POST("/bookings/:id/resync/:system", hb.ResyncHandler)

		api.GET("/connections", hb.ConnectionsStatusHandler)
		api.GET("/connections/google/url", hb.GoogleAuthURLHandler)
		api.DELETE("/connections/google", hb.DisconnectCalendarHandler)
	}

	// The OAuth callback is hit by Google's redirect, outside the staff session.
	r.GET("/api/connections/google/callback", hb.GoogleCallbackHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterPublicRoutes(r, hb)
	RegisterAvailabilityRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}
