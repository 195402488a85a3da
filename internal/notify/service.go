package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/mindwell-health/practice-api/pkg/logging"
)

// Service composes the patient-facing emails and hands them to a sender.
type Service struct {
	email        EmailSender
	practiceName string
	logger       *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, practiceName string, logger *logging.Logger) *Service {
	if email == nil {
		panic("notify: email sender required")
	}
	if practiceName == "" {
		practiceName = "Mindwell Health"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, practiceName: practiceName, logger: logger}
}

// SendInvite emails the onboarding link to a newly invited patient.
func (s *Service) SendInvite(ctx context.Context, to, toName, link string) error {
	if toName == "" {
		toName = "there"
	}

	body := fmt.Sprintf(`Hi %s,

Your therapist at %s has invited you to set up your patient account.

Open the link below to review the consent forms and choose a password:

%s

The link expires in a few days. If it has expired, ask your therapist to
send a new invitation.

If you were not expecting this email you can safely ignore it.

%s`, toName, s.practiceName, link, s.practiceName)

	html := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your therapist at %s has invited you to set up your patient account.</p>
<p><a href="%s">Set up your account</a></p>
<p>The link expires in a few days. If it has expired, ask your therapist to send a new invitation.</p>
<p>If you were not expecting this email you can safely ignore it.</p>
<p>%s</p>`, toName, s.practiceName, link, s.practiceName)

	err := s.email.Send(ctx, EmailMessage{
		To:      to,
		ToName:  toName,
		Subject: fmt.Sprintf("Your invitation to %s", s.practiceName),
		Body:    body,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("notify: send invite: %w", err)
	}
	return nil
}

// SendAppointmentReminder emails a patient about an upcoming appointment.
func (s *Service) SendAppointmentReminder(ctx context.Context, to, toName string, startsAt time.Time, location string) error {
	if toName == "" {
		toName = "there"
	}

	when := startsAt.Format("Monday, January 2 at 3:04 PM")
	where := ""
	if location != "" {
		where = fmt.Sprintf("\nLocation: %s", location)
	}

	body := fmt.Sprintf(`Hi %s,

This is a reminder of your upcoming appointment with %s.

When: %s%s

If you need to reschedule, please contact your therapist as soon as possible.

%s`, toName, s.practiceName, when, where, s.practiceName)

	err := s.email.Send(ctx, EmailMessage{
		To:      to,
		ToName:  toName,
		Subject: fmt.Sprintf("Appointment reminder: %s", when),
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("notify: send reminder: %w", err)
	}
	return nil
}
