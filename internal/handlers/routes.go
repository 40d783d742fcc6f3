package handlers

import (
	"bloodlink/internal/auth"
	"bloodlink/internal/cache"

	"github.com/gin-gonic/gin"
)

// Routes registers every endpoint on router
func (h *Handler) Routes(router *gin.Engine) {
	// Basic routes
	router.GET("/", HomeHandler)
	router.GET("/health", HealthHandler)

	api := router.Group("/api")

	// Auth routes (no auth required)
	api.POST("/auth/register", h.Register)
	api.GET("/auth/verify", h.VerifyEmail)
	api.POST("/auth/resend-verification", h.ResendVerification)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/google/login", h.GoogleLogin)
	api.GET("/auth/google/callback", h.GoogleCallback)

	// Public reads, cached
	cached := api.Group("")
	cached.Use(cache.Middleware(h.Cache, h.CacheTTL, h.Logger))
	{
		cached.GET("/hospitals", h.ListHospitals)
		cached.GET("/hospitals/:id", h.GetHospital)
		cached.GET("/hospitals/:id/slots", h.HospitalSlots)
		cached.GET("/hospitals/:id/open-dates", h.HospitalOpenDates)
		cached.GET("/requests/active", h.ActiveRequests)
		cached.GET("/leaderboard", h.Leaderboard)
	}
	api.GET("/blood-types/:type", h.BloodType)
	api.GET("/revalidate", h.Revalidate)
	api.POST("/revalidate", h.Revalidate)

	// Protected routes (auth required)
	protected := api.Group("")
	protected.Use(auth.RequireAuth(h.Tokens, h.Logger))
	protected.GET("/auth/me", h.Me)

	donor := protected.Group("")
	donor.Use(auth.RequireRole(h.Logger, auth.RoleDonor))
	{
		donor.GET("/donors/me", h.GetMyProfile)
		donor.PUT("/donors/me", h.UpdateMyProfile)
		donor.GET("/donors/me/eligibility", h.MyEligibility)
		donor.GET("/donors/me/stats", h.MyStats)
		donor.GET("/donors/me/donations", h.MyDonations)
		donor.GET("/donors/me/appointments", h.MyAppointments)
		donor.POST("/appointments", h.BookAppointment)
		donor.POST("/appointments/:id/cancel", h.CancelAppointment)
	}

	admin := protected.Group("")
	admin.Use(auth.RequireRole(h.Logger, auth.RoleAdmin))
	{
		admin.POST("/notify-donors", h.NotifyDonors)

		admin.GET("/admin/dashboard", h.AdminDashboard)
		admin.GET("/admin/donors", h.ListDonors)
		admin.GET("/admin/donors/search", h.SearchDonors)
		admin.POST("/admin/donors/:id/deactivate", h.DeactivateDonor)
		admin.POST("/admin/donors/:id/activate", h.ActivateDonor)

		admin.POST("/admin/requests", h.CreateRequest)
		admin.GET("/admin/requests", h.ListRequests)
		admin.GET("/admin/requests/:id", h.GetRequest)
		admin.PATCH("/admin/requests/:id/status", h.UpdateRequestStatus)
		admin.DELETE("/admin/requests/:id", h.DeleteRequest)

		admin.GET("/admin/alerts", h.ListAlerts)
		admin.PATCH("/admin/alerts/:id/status", h.UpdateAlertStatus)

		admin.POST("/admin/hospitals", h.CreateHospital)

		admin.GET("/admin/appointments", h.ListAppointments)
		admin.PATCH("/admin/appointments/:id/status", h.UpdateAppointmentStatus)

		admin.POST("/admin/donations", h.RecordDonation)
		admin.GET("/admin/donations", h.ListDonations)
		admin.POST("/admin/donations/:id/certificate", h.UploadCertificate)
	}
}
