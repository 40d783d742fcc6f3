package handlers

import (
	"net/http"
	"time"

	"bloodlink/internal/apperrors"
	"bloodlink/internal/auth"
	"bloodlink/internal/cache"
	"bloodlink/internal/logging"
	"bloodlink/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler holds everything the HTTP layer needs
type Handler struct {
	Auth         *services.AuthService
	Donors       *services.DonorService
	Search       *services.SearchService
	Hospitals    *services.HospitalService
	Requests     *services.RequestService
	Appointments *services.AppointmentService
	Donations    *services.DonationService
	Dashboard    *services.DashboardService

	Tokens           *auth.TokenManager
	Google           *auth.GoogleProvider // nil when Google sign-in is not configured
	Cache            cache.Cache
	CacheTTL         time.Duration
	RevalidateSecret string
	FrontendURL      string
	Logger           *zap.Logger
}

// log returns the request-scoped logger
func (h *Handler) log(c *gin.Context) *zap.Logger {
	return logging.FromContext(c.Request.Context(), h.Logger)
}

// fail writes err as an error envelope
func (h *Handler) fail(c *gin.Context, err error) {
	apperrors.Respond(c, h.log(c), err)
}

// bindJSON binds the body into dst and writes a 400 on failure
func (h *Handler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.fail(c, apperrors.Validation("Invalid input").WithDetails(validationDetails(err)))
		return false
	}
	return true
}

// principal returns the authenticated user. RequireAuth guarantees it exists.
func principal(c *gin.Context) *auth.Principal {
	p, _ := auth.CurrentUser(c)
	return p
}

// HomeHandler handles requests to the root path "/"
func HomeHandler(c *gin.Context) {
	c.String(http.StatusOK, "BloodLink API")
}

// HealthHandler is a simple health check endpoint
func HealthHandler(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// invalidate drops cached public reads affected by a write. Failures only
// leave stale data until the TTL expires, so they are logged.
func (h *Handler) invalidate(c *gin.Context, paths ...string) {
	for _, path := range paths {
		if _, err := h.Cache.Invalidate(c.Request.Context(), path); err != nil {
			h.log(c).Warn("cache invalidation failed", zap.String("path", path), zap.Error(err))
		}
	}
}
