package handlers

import (
	"net/http"

	"bloodlink/internal/apperrors"
	"bloodlink/internal/models"
	"bloodlink/internal/services"
	"bloodlink/internal/utils"

	"github.com/gin-gonic/gin"
)

const hospitalsPath = "/api/hospitals"

func (h *Handler) ListHospitals(c *gin.Context) {
	hospitals, err := h.Hospitals.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, hospitals)
}

func (h *Handler) GetHospital(c *gin.Context) {
	hospital, err := h.Hospitals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, hospital)
}

// HospitalSlots lists slot availability for ?date=YYYY-MM-DD
func (h *Handler) HospitalSlots(c *gin.Context) {
	date, err := utils.ParseDate(c.Query("date"))
	if err != nil {
		h.fail(c, apperrors.Validation("date must be in YYYY-MM-DD format"))
		return
	}
	day, err := h.Hospitals.Slots(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, day)
}

// HospitalOpenDates lists donation dates in [from, from+days)
func (h *Handler) HospitalOpenDates(c *gin.Context) {
	from := utils.Today()
	if raw := c.Query("from"); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			h.fail(c, apperrors.Validation("from must be in YYYY-MM-DD format"))
			return
		}
		from = parsed
	}
	days := utils.QueryInt(c, "days", 30, 1, services.MaxOpenDateDays)

	dates, err := h.Hospitals.OpenDates(c.Request.Context(), c.Param("id"), from, days)
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, gin.H{"from": from.Format("2006-01-02"), "days": days, "dates": dates})
}

func (h *Handler) CreateHospital(c *gin.Context) {
	var req models.CreateHospitalRequest
	if !h.bindJSON(c, &req) {
		return
	}
	hospital, err := h.Hospitals.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.invalidate(c, hospitalsPath)
	apperrors.OK(c, http.StatusCreated, hospital)
}
