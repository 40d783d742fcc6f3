package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"bloodlink/internal/apperrors"
	"bloodlink/internal/models"
	"bloodlink/internal/repository"
	"bloodlink/internal/rules"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type requestStore interface {
	Create(ctx context.Context, req *models.BloodRequest) error
	GetByID(ctx context.Context, id string) (*models.BloodRequest, error)
	List(ctx context.Context, status rules.RequestStatus, limit, offset int) ([]models.BloodRequest, error)
	Transition(ctx context.Context, id string, from, to rules.RequestStatus) error
	SetMatchedDonors(ctx context.Context, id string, matched int) error
	Delete(ctx context.Context, id string) error
}

type alertStore interface {
	Create(ctx context.Context, alert *models.Alert) error
	GetByID(ctx context.Context, id string) (*models.Alert, error)
	List(ctx context.Context, limit, offset int) ([]models.Alert, error)
	RecordDelivery(ctx context.Context, id string, recipients, delivered, failed int) error
	Transition(ctx context.Context, id string, from, to rules.AlertStatus) error
	FulfillForRequest(ctx context.Context, requestID string) (int64, error)
}

type donorCandidates interface {
	ListByBloodType(ctx context.Context, bt rules.BloodType) ([]models.Donor, error)
}

type hospitalLookup interface {
	GetByID(ctx context.Context, id string) (*models.Hospital, error)
}

type alertSender interface {
	SendBloodAlert(ctx context.Context, donor *models.Donor, alert *models.Alert) error
}

// NotifyResult summarizes one alert broadcast
type NotifyResult struct {
	AlertID string `json:"alertId"`
	Matched int    `json:"matched"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
}

type RequestService struct {
	requests  requestStore
	alerts    alertStore
	donors    donorCandidates
	hospitals hospitalLookup
	email     alertSender
	logger    *zap.Logger
}

func NewRequestService(requests requestStore, alerts alertStore, donors donorCandidates, hospitals hospitalLookup, email alertSender, logger *zap.Logger) *RequestService {
	return &RequestService{
		requests:  requests,
		alerts:    alerts,
		donors:    donors,
		hospitals: hospitals,
		email:     email,
		logger:    logger,
	}
}

// Create opens a blood request. A hospital id, when given, supplies the hospital name.
func (s *RequestService) Create(ctx context.Context, adminID string, in models.CreateBloodRequestRequest) (*models.BloodRequest, error) {
	bt, err := rules.ParseBloodType(in.BloodType)
	if err != nil {
		return nil, apperrors.Validation("Invalid blood type")
	}

	req := &models.BloodRequest{
		Hospital:  strings.TrimSpace(in.Hospital),
		BloodType: bt,
		Quantity:  in.Quantity,
		Urgency:   models.Urgency(in.Urgency),
		Notes:     in.Notes,
		Status:    rules.RequestActive,
		CreatedBy: adminID,
	}
	if in.HospitalID != "" {
		h, err := s.hospitals.GetByID(ctx, in.HospitalID)
		if err != nil {
			return nil, apperrors.FromDB(err, "Hospital")
		}
		req.HospitalID = &h.ID
		req.Hospital = h.Name
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperrors.FromDB(err, "Blood request")
	}
	s.logger.Info("blood request created",
		zap.String("request_id", req.ID),
		zap.String("blood_type", string(bt)),
		zap.String("urgency", in.Urgency))
	return req, nil
}

func (s *RequestService) Get(ctx context.Context, id string) (*models.BloodRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromDB(err, "Blood request")
	}
	return req, nil
}

func (s *RequestService) List(ctx context.Context, status string, limit, offset int) ([]models.BloodRequest, error) {
	st := rules.RequestStatus(status)
	if status != "" && !st.Valid() {
		return nil, apperrors.Validation("Unknown request status")
	}
	reqs, err := s.requests.List(ctx, st, limit, offset)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return reqs, nil
}

// Active lists open requests for the public board
func (s *RequestService) Active(ctx context.Context) ([]models.BloodRequest, error) {
	return s.List(ctx, string(rules.RequestActive), 100, 0)
}

// UpdateStatus applies the request transition table. Fulfilling a request
// also fulfills its outstanding alerts.
func (s *RequestService) UpdateStatus(ctx context.Context, id, status string) (*models.BloodRequest, error) {
	to := rules.RequestStatus(status)
	if !to.Valid() {
		return nil, apperrors.Validation("Unknown request status")
	}
	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rules.CheckRequestTransition(req.Status, to); err != nil {
		return nil, apperrors.InvalidStatus(err)
	}
	if err := s.requests.Transition(ctx, id, req.Status, to); err != nil {
		return nil, transitionError(err, "Blood request")
	}

	if to == rules.RequestFulfilled {
		if n, err := s.alerts.FulfillForRequest(ctx, id); err != nil {
			s.logger.Error("failed to fulfill alerts", zap.String("request_id", id), zap.Error(err))
		} else if n > 0 {
			s.logger.Info("alerts fulfilled", zap.String("request_id", id), zap.Int64("count", n))
		}
	}

	req.Status = to
	return req, nil
}

// Delete soft-deletes a request
func (s *RequestService) Delete(ctx context.Context, id string) error {
	return apperrors.FromDB(s.requests.Delete(ctx, id), "Blood request")
}

// NotifyDonors snapshots an active request into an alert and emails every
// matching donor. Individual send failures are counted, not fatal.
func (s *RequestService) NotifyDonors(ctx context.Context, requestID string) (*NotifyResult, error) {
	req, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != rules.RequestActive {
		return nil, apperrors.Conflict("Only active requests can be broadcast")
	}

	snapshot, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	alert := &models.Alert{
		RequestID: req.ID,
		Hospital:  req.Hospital,
		BloodType: req.BloodType,
		Quantity:  req.Quantity,
		Urgency:   req.Urgency,
		Notes:     req.Notes,
		Snapshot:  datatypes.JSON(snapshot),
		Status:    rules.AlertSent,
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, apperrors.FromDB(err, "Alert")
	}

	candidates, err := s.donors.ListByBloodType(ctx, req.BloodType)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	matched := rules.MatchDonors(req.BloodType, candidates)

	result := &NotifyResult{AlertID: alert.ID, Matched: len(matched)}
	for i := range matched {
		if ctx.Err() != nil {
			result.Failed += len(matched) - i
			break
		}
		if err := s.email.SendBloodAlert(ctx, &matched[i], alert); err != nil {
			result.Failed++
			s.logger.Warn("failed to send blood alert",
				zap.String("alert_id", alert.ID),
				zap.String("donor_id", matched[i].ID),
				zap.Error(err))
			continue
		}
		result.Sent++
	}

	if err := s.alerts.RecordDelivery(ctx, alert.ID, result.Matched, result.Sent, result.Failed); err != nil {
		s.logger.Error("failed to record alert delivery", zap.String("alert_id", alert.ID), zap.Error(err))
	}
	if err := s.requests.SetMatchedDonors(ctx, req.ID, result.Matched); err != nil {
		s.logger.Error("failed to store matched donor count", zap.String("request_id", req.ID), zap.Error(err))
	}

	s.logger.Info("blood alert broadcast",
		zap.String("alert_id", alert.ID),
		zap.String("request_id", req.ID),
		zap.Int("matched", result.Matched),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (s *RequestService) ListAlerts(ctx context.Context, limit, offset int) ([]models.Alert, error) {
	alerts, err := s.alerts.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return alerts, nil
}

func (s *RequestService) UpdateAlertStatus(ctx context.Context, id, status string) (*models.Alert, error) {
	to := rules.AlertStatus(status)
	if !to.Valid() {
		return nil, apperrors.Validation("Unknown alert status")
	}
	alert, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromDB(err, "Alert")
	}
	if err := rules.CheckAlertTransition(alert.Status, to); err != nil {
		return nil, apperrors.InvalidStatus(err)
	}
	if err := s.alerts.Transition(ctx, id, alert.Status, to); err != nil {
		return nil, transitionError(err, "Alert")
	}
	alert.Status = to
	return alert, nil
}

func transitionError(err error, what string) error {
	if errors.Is(err, repository.ErrStaleStatus) {
		return apperrors.Conflict(what + " was modified by someone else, please reload")
	}
	return apperrors.FromDB(err, what)
}
