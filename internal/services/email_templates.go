package services

import (
	"html"
	"regexp"
	"strings"
)

// EmailTemplate is a subject and HTML body with {placeholder} variables
type EmailTemplate struct {
	Subject string
	HTML    string
}

const (
	TemplateVerifyEmail         = "verify-email"
	TemplateBloodAlert          = "blood-alert"
	TemplateAppointmentBooked   = "appointment-booked"
	TemplateAppointmentReminder = "appointment-reminder"
	TemplateAppointmentStatus   = "appointment-status"
)

var emailTemplates = map[string]EmailTemplate{
	TemplateVerifyEmail: {
		Subject: "Confirm your BloodLink email address",
		HTML: `<p>Hi {donorName},</p>
<p>Thanks for registering as a {bloodType} donor. Please confirm your email address:</p>
<p><a href="{link}">Verify my email</a></p>
<p>The link expires in 48 hours.</p>`,
	},
	TemplateBloodAlert: {
		Subject: "[{urgency}] {bloodType} blood needed at {hospital}",
		HTML: `<p>Hi {donorName},</p>
<p><strong>{hospital}</strong> urgently needs <strong>{quantity}</strong> unit(s) of <strong>{bloodType}</strong> blood.</p>
<p>Urgency: {urgency}</p>
<p>{notes}</p>
<p>If you are eligible, please <a href="{link}">book a donation slot</a>.</p>`,
	},
	TemplateAppointmentBooked: {
		Subject: "Your donation appointment on {date}",
		HTML: `<p>Hi {donorName},</p>
<p>Your blood donation appointment is booked at <strong>{hospital}</strong> on <strong>{date}</strong>, {timeSlot}.</p>
<p>Please eat a light meal and drink plenty of water beforehand.</p>`,
	},
	TemplateAppointmentReminder: {
		Subject: "Reminder: donation appointment tomorrow at {hospital}",
		HTML: `<p>Hi {donorName},</p>
<p>This is a reminder of your donation appointment at <strong>{hospital}</strong> on <strong>{date}</strong>, {timeSlot}.</p>
<p>Thank you for helping save lives.</p>`,
	},
	TemplateAppointmentStatus: {
		Subject: "Your appointment on {date} is {status}",
		HTML: `<p>Hi {donorName},</p>
<p>Your appointment at <strong>{hospital}</strong> on {date}, {timeSlot} is now <strong>{status}</strong>.</p>`,
	},
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// RenderTemplate fills a named template. Values are HTML-escaped in the body;
// unknown placeholders are left as-is.
func RenderTemplate(name string, vars map[string]string) (Message, bool) {
	tmpl, ok := emailTemplates[name]
	if !ok {
		return Message{}, false
	}

	plainPairs := make([]string, 0, len(vars)*2)
	htmlPairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		plainPairs = append(plainPairs, "{"+k+"}", v)
		htmlPairs = append(htmlPairs, "{"+k+"}", html.EscapeString(v))
	}

	body := strings.NewReplacer(htmlPairs...).Replace(tmpl.HTML)
	return Message{
		Subject: strings.NewReplacer(plainPairs...).Replace(tmpl.Subject),
		HTML:    body,
		Plain:   html.UnescapeString(strings.TrimSpace(tagPattern.ReplaceAllString(body, ""))),
	}, true
}
