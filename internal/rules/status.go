package rules

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a status change is not in the transition table
var ErrInvalidTransition = errors.New("invalid status transition")

// AppointmentStatus tracks an appointment through its lifecycle
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no-show"
)

// RequestStatus tracks a blood request
type RequestStatus string

const (
	RequestActive    RequestStatus = "active"
	RequestFulfilled RequestStatus = "fulfilled"
	RequestCancelled RequestStatus = "cancelled"
)

// AlertStatus tracks an alert broadcast
type AlertStatus string

const (
	AlertSent      AlertStatus = "sent"
	AlertFulfilled AlertStatus = "fulfilled"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentScheduled: {AppointmentConfirmed, AppointmentCancelled, AppointmentNoShow},
	AppointmentConfirmed: {AppointmentCompleted, AppointmentCancelled, AppointmentNoShow},
}

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestActive: {RequestFulfilled, RequestCancelled},
}

var alertTransitions = map[AlertStatus][]AlertStatus{
	AlertSent: {AlertFulfilled},
}

// Valid reports whether s is a known appointment status
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentScheduled, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled, AppointmentNoShow:
		return true
	}
	return false
}

// Valid reports whether s is a known request status
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestActive, RequestFulfilled, RequestCancelled:
		return true
	}
	return false
}

// Valid reports whether s is a known alert status
func (s AlertStatus) Valid() bool {
	return s == AlertSent || s == AlertFulfilled
}

// Terminal reports whether no further transitions are allowed from s
func (s AppointmentStatus) Terminal() bool {
	return len(appointmentTransitions[s]) == 0
}

// CheckAppointmentTransition returns ErrInvalidTransition unless from -> to is allowed
func CheckAppointmentTransition(from, to AppointmentStatus) error {
	return checkTransition(appointmentTransitions, from, to)
}

// CheckRequestTransition returns ErrInvalidTransition unless from -> to is allowed
func CheckRequestTransition(from, to RequestStatus) error {
	return checkTransition(requestTransitions, from, to)
}

// CheckAlertTransition returns ErrInvalidTransition unless from -> to is allowed
func CheckAlertTransition(from, to AlertStatus) error {
	return checkTransition(alertTransitions, from, to)
}

func checkTransition[S ~string](table map[S][]S, from, to S) error {
	for _, allowed := range table[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
