package services

import (
	"context"
	"fmt"
	"strconv"

	"bloodlink/internal/models"
)

// EmailService renders templates and hands them to a Mailer
type EmailService struct {
	mailer  Mailer
	baseURL string
}

func NewEmailService(mailer Mailer, baseURL string) *EmailService {
	return &EmailService{mailer: mailer, baseURL: baseURL}
}

func (s *EmailService) send(ctx context.Context, template string, to *models.Donor, vars map[string]string) error {
	vars["donorName"] = to.Name
	vars["bloodType"] = string(to.BloodType)

	msg, ok := RenderTemplate(template, vars)
	if !ok {
		return fmt.Errorf("unknown email template %q", template)
	}
	msg.ToEmail = to.Email
	msg.ToName = to.Name
	return s.mailer.Send(ctx, msg)
}

func (s *EmailService) SendVerification(ctx context.Context, donor *models.Donor, token string) error {
	return s.send(ctx, TemplateVerifyEmail, donor, map[string]string{
		"link": s.baseURL + "/verify-email?token=" + token,
	})
}

// SendBloodAlert tells a matched donor about a request. The blood type shown
// is the requested one, which matching guarantees is the donor's own.
func (s *EmailService) SendBloodAlert(ctx context.Context, donor *models.Donor, alert *models.Alert) error {
	return s.send(ctx, TemplateBloodAlert, donor, map[string]string{
		"hospital": alert.Hospital,
		"quantity": strconv.Itoa(alert.Quantity),
		"urgency":  string(alert.Urgency),
		"notes":    alert.Notes,
		"link":     s.baseURL + "/appointments/new",
	})
}

func (s *EmailService) SendAppointmentBooked(ctx context.Context, donor *models.Donor, hospital *models.Hospital, appt *models.Appointment) error {
	return s.send(ctx, TemplateAppointmentBooked, donor, appointmentVars(hospital, appt))
}

func (s *EmailService) SendAppointmentReminder(ctx context.Context, donor *models.Donor, hospital *models.Hospital, appt *models.Appointment) error {
	return s.send(ctx, TemplateAppointmentReminder, donor, appointmentVars(hospital, appt))
}

func (s *EmailService) SendAppointmentStatus(ctx context.Context, donor *models.Donor, hospital *models.Hospital, appt *models.Appointment) error {
	vars := appointmentVars(hospital, appt)
	vars["status"] = string(appt.Status)
	return s.send(ctx, TemplateAppointmentStatus, donor, vars)
}

func appointmentVars(hospital *models.Hospital, appt *models.Appointment) map[string]string {
	name := ""
	if hospital != nil {
		name = hospital.Name
	}
	return map[string]string{
		"hospital": name,
		"date":     appt.Date,
		"timeSlot": appt.TimeSlot,
	}
}
