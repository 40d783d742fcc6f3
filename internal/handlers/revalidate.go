package handlers

import (
	"crypto/subtle"
	"net/http"

	"bloodlink/internal/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Revalidate deletes cached responses for ?path=, or everything for path=*.
// The shared secret comes from ?secret= or the X-Revalidate-Secret header.
func (h *Handler) Revalidate(c *gin.Context) {
	secret := c.Query("secret")
	if secret == "" {
		secret = c.GetHeader("X-Revalidate-Secret")
	}
	if h.RevalidateSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.RevalidateSecret)) != 1 {
		h.fail(c, apperrors.Unauthorized("Invalid revalidation secret"))
		return
	}

	path := c.Query("path")
	if path == "" {
		h.fail(c, apperrors.Validation("path parameter is required"))
		return
	}

	deleted, err := h.Cache.Invalidate(c.Request.Context(), path)
	if err != nil {
		h.fail(c, apperrors.External("cache", err))
		return
	}
	h.log(c).Info("cache revalidated", zap.String("path", path), zap.Int64("deleted", deleted))
	apperrors.OK(c, http.StatusOK, gin.H{"revalidated": true, "path": path, "deleted": deleted})
}
