package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type recordingSender struct {
	sent []EmailMessage
	err  error
}

func (s *recordingSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestSendInviteCarriesLink(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, "Mindwell Health", nil)

	link := "https://app.mindwell.example/onboarding?token=abc123abc123"
	if err := svc.SendInvite(context.Background(), "anna@example.com", "Anna", link); err != nil {
		t.Fatalf("SendInvite returned error: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "anna@example.com" {
		t.Errorf("unexpected recipient: %s", msg.To)
	}
	if !strings.Contains(msg.Body, link) || !strings.Contains(msg.HTML, link) {
		t.Errorf("expected invite link in both bodies")
	}
	if !strings.Contains(msg.Subject, "Mindwell Health") {
		t.Errorf("unexpected subject: %s", msg.Subject)
	}
}

func TestSendInviteWrapsSenderError(t *testing.T) {
	upstream := errors.New("smtp down")
	svc := NewService(&recordingSender{err: upstream}, "", nil)

	err := svc.SendInvite(context.Background(), "anna@example.com", "Anna", "https://x")
	if !errors.Is(err, upstream) {
		t.Fatalf("expected wrapped sender error, got %v", err)
	}
}

func TestSendAppointmentReminderFormatsTime(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, "Mindwell Health", nil)

	starts := time.Date(2026, time.September, 14, 15, 30, 0, 0, time.UTC)
	if err := svc.SendAppointmentReminder(context.Background(), "anna@example.com", "Anna", starts, "Studio 2"); err != nil {
		t.Fatalf("SendAppointmentReminder returned error: %v", err)
	}

	msg := sender.sent[0]
	if !strings.Contains(msg.Body, "Monday, September 14 at 3:30 PM") {
		t.Errorf("expected formatted time in body, got: %s", msg.Body)
	}
	if !strings.Contains(msg.Body, "Studio 2") {
		t.Errorf("expected location in body")
	}
}

func TestSendAppointmentReminderWithoutLocation(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, "", nil)

	if err := svc.SendAppointmentReminder(context.Background(), "anna@example.com", "", time.Now(), ""); err != nil {
		t.Fatalf("SendAppointmentReminder returned error: %v", err)
	}
	if strings.Contains(sender.sent[0].Body, "Location:") {
		t.Errorf("expected no location line when location is empty")
	}
}
