package handlers

import (
	"net/http"

	"bloodlink/internal/apperrors"
	"bloodlink/internal/models"
	"bloodlink/internal/utils"

	"github.com/gin-gonic/gin"
)

const activeRequestsPath = "/api/requests/active"

func (h *Handler) CreateRequest(c *gin.Context) {
	var req models.CreateBloodRequestRequest
	if !h.bindJSON(c, &req) {
		return
	}
	created, err := h.Requests.Create(c.Request.Context(), principal(c).ID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.invalidate(c, activeRequestsPath)
	apperrors.OK(c, http.StatusCreated, created)
}

// ListRequests handles the admin listing, optionally filtered by status
func (h *Handler) ListRequests(c *gin.Context) {
	reqs, err := h.Requests.List(c.Request.Context(), c.Query("status"),
		utils.QueryInt(c, "limit", 50, 1, 200),
		utils.QueryInt(c, "offset", 0, 0, 1<<30))
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, reqs)
}

func (h *Handler) GetRequest(c *gin.Context) {
	req, err := h.Requests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, req)
}

func (h *Handler) UpdateRequestStatus(c *gin.Context) {
	var body models.UpdateStatusRequest
	if !h.bindJSON(c, &body) {
		return
	}
	req, err := h.Requests.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.invalidate(c, activeRequestsPath)
	apperrors.OK(c, http.StatusOK, req)
}

func (h *Handler) DeleteRequest(c *gin.Context) {
	if err := h.Requests.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.invalidate(c, activeRequestsPath)
	apperrors.OK(c, http.StatusOK, gin.H{"message": "Request deleted"})
}

// NotifyDonors broadcasts an active request to matching donors
func (h *Handler) NotifyDonors(c *gin.Context) {
	var body models.NotifyDonorsRequest
	if !h.bindJSON(c, &body) {
		return
	}
	result, err := h.Requests.NotifyDonors(c.Request.Context(), body.RequestID)
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, result)
}

func (h *Handler) ListAlerts(c *gin.Context) {
	alerts, err := h.Requests.ListAlerts(c.Request.Context(),
		utils.QueryInt(c, "limit", 50, 1, 200),
		utils.QueryInt(c, "offset", 0, 0, 1<<30))
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, alerts)
}

func (h *Handler) UpdateAlertStatus(c *gin.Context) {
	var body models.UpdateStatusRequest
	if !h.bindJSON(c, &body) {
		return
	}
	alert, err := h.Requests.UpdateAlertStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, alert)
}

// ActiveRequests is the public board of open requests
func (h *Handler) ActiveRequests(c *gin.Context) {
	reqs, err := h.Requests.Active(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	apperrors.OK(c, http.StatusOK, reqs)
}
