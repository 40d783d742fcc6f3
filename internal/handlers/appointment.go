package handlers

import (
	"net/http"

	"bloodlink/internal/apperrors"
	"bloodlink/internal/models"
	"bloodlink/internal/rules"

	"github.com/gin-gonic/gin"
)

func slotsPath(hospitalID string) string {
	return hospitalsPath + "/" + hospitalID + "/slots"
}

// BookAppointment reserves a slot for the signed-in donor
func (h *Handler) BookAppointment(c *gin.Context) {
	var req models.BookAppointmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	appt, err := h.Appointments.Book(c.Request.Context(), principal(c).ID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.invalidate(c, slotsPath(appt.HospitalID))
	apperrors.OK(c, http.StatusCreated, appt)
}

// CancelAppointment lets a donor cancel their own appointment
func (h *Handler) CancelAppointment(c *gin.Context) {
	appt, err := h.Appointments.Cancel(c.Request.Context(), principal(c).ID, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.invalidate(c, slotsPath(appt.HospitalID))
	apperrors.OK(c, http.StatusOK, appt)
}

// ListAppointments handles the admin listing with optional filters
func (h *Handler) ListAppointments(c *gin.Context) {
	appts, err := h.Appointments.List(c.Request.Context(), models.AppointmentFilter{
		HospitalID: c.Query("hospitalId"),
		Date:       c.Query("date"),
		DonorID:    c.Query("donorId"),
		Status:     rules.AppointmentStatus(c.Query("status")),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, appts)
}

func (h *Handler) UpdateAppointmentStatus(c *gin.Context) {
	var body models.UpdateStatusRequest
	if !h.bindJSON(c, &body) {
		return
	}
	appt, err := h.Appointments.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		h.fail(c, err)
		return
	}

	paths := []string{slotsPath(appt.HospitalID)}
	if appt.Status == rules.AppointmentCompleted {
		paths = append(paths, leaderboardPath)
	}
	h.invalidate(c, paths...)
	apperrors.OK(c, http.StatusOK, appt)
}
