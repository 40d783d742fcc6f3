package handlers

import (
	"net/http"
	"strconv"

	"bloodlink/internal/apperrors"
	"bloodlink/internal/models"
	"bloodlink/internal/rules"
	"bloodlink/internal/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetMyProfile(c *gin.Context) {
	donor, err := h.Donors.Get(c.Request.Context(), principal(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, donor)
}

func (h *Handler) UpdateMyProfile(c *gin.Context) {
	var req models.UpdateDonorRequest
	if !h.bindJSON(c, &req) {
		return
	}
	donor, err := h.Donors.UpdateProfile(c.Request.Context(), principal(c).ID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, donor)
}

func (h *Handler) MyEligibility(c *gin.Context) {
	elig, err := h.Donors.Eligibility(c.Request.Context(), principal(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, elig)
}

func (h *Handler) MyStats(c *gin.Context) {
	stats, err := h.Donations.Stats(c.Request.Context(), principal(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, stats)
}

func (h *Handler) MyDonations(c *gin.Context) {
	recs, err := h.Donations.ListForDonor(c.Request.Context(), principal(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, recs)
}

func (h *Handler) MyAppointments(c *gin.Context) {
	appts, err := h.Appointments.ListForDonor(c.Request.Context(), principal(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, appts)
}

// ListDonors handles the admin donor listing with filtering and pagination
func (h *Handler) ListDonors(c *gin.Context) {
	filter := models.DonorFilter{
		Barangay: c.Query("barangay"),
		Limit:    utils.QueryInt(c, "limit", 50, 1, 200),
		Offset:   utils.QueryInt(c, "offset", 0, 0, 1<<30),
	}
	if raw := c.Query("bloodType"); raw != "" {
		bt, err := rules.ParseBloodType(raw)
		if err != nil {
			h.fail(c, apperrors.Validation("Invalid blood type"))
			return
		}
		filter.BloodType = bt
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			h.fail(c, apperrors.Validation("active must be true or false"))
			return
		}
		filter.Active = &active
	}

	donors, total, err := h.Donors.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, gin.H{
		"donors": donors,
		"pagination": gin.H{
			"total":  total,
			"limit":  filter.Limit,
			"offset": filter.Offset,
		},
	})
}

// SearchDonors finds donors by email, name, phone or barangay
func (h *Handler) SearchDonors(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		h.fail(c, apperrors.Validation("q parameter is required"))
		return
	}
	matches, err := h.Search.SearchDonors(c.Request.Context(), term, utils.QueryInt(c, "limit", 20, 1, 100))
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, matches)
}

func (h *Handler) DeactivateDonor(c *gin.Context) {
	h.setDonorActive(c, false)
}

func (h *Handler) ActivateDonor(c *gin.Context) {
	h.setDonorActive(c, true)
}

func (h *Handler) setDonorActive(c *gin.Context, active bool) {
	donor, err := h.Donors.SetActive(c.Request.Context(), c.Param("id"), active)
	if err != nil {
		h.fail(c, err)
		return
	}
	// the leaderboard only ranks active donors
	h.invalidate(c, leaderboardPath)
	apperrors.OK(c, http.StatusOK, donor)
}
