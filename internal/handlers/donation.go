package handlers

import (
	"net/http"

	"bloodlink/internal/apperrors"
	"bloodlink/internal/models"
	"bloodlink/internal/services"
	"bloodlink/internal/utils"

	"github.com/gin-gonic/gin"
)

const leaderboardPath = "/api/leaderboard"

func (h *Handler) RecordDonation(c *gin.Context) {
	var req models.RecordDonationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	rec, err := h.Donations.Record(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.invalidate(c, leaderboardPath)
	apperrors.OK(c, http.StatusCreated, rec)
}

func (h *Handler) ListDonations(c *gin.Context) {
	recs, err := h.Donations.List(c.Request.Context(),
		utils.QueryInt(c, "limit", 50, 1, 200),
		utils.QueryInt(c, "offset", 0, 0, 1<<30))
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, recs)
}

// UploadCertificate handles the multipart "certificate" file upload
func (h *Handler) UploadCertificate(c *gin.Context) {
	header, err := c.FormFile("certificate")
	if err != nil {
		h.fail(c, apperrors.Validation("No certificate file provided"))
		return
	}
	if err := services.ValidateCertificateFile(header.Filename, header.Size); err != nil {
		h.fail(c, apperrors.Validation(err.Error()))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.fail(c, apperrors.Internal(err))
		return
	}
	defer file.Close()

	rec, err := h.Donations.AttachCertificate(c.Request.Context(), c.Param("id"), file, header.Filename, header.Size)
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, rec)
}

func (h *Handler) Leaderboard(c *gin.Context) {
	board, err := h.Donations.Leaderboard(c.Request.Context(), utils.QueryInt(c, "limit", 10, 1, 100))
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, board)
}

// BloodType returns the compatibility card for a type, e.g. /api/blood-types/O-
func (h *Handler) BloodType(c *gin.Context) {
	info, err := services.DescribeBloodType(c.Param("type"))
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, info)
}

// AdminDashboard returns the back-office overview counts
func (h *Handler) AdminDashboard(c *gin.Context) {
	overview, err := h.Dashboard.Overview(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, overview)
}
