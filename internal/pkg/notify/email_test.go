package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"listable/internal/config"

	"gopkg.in/gomail.v2"
)

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func newTestNotifier(cfg config.EmailConfig, s sender) *EmailNotifier {
	n := NewEmailNotifier(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	n.dialer = s
	return n
}

var smtpConfig = config.EmailConfig{
	SMTPHost:  "smtp.example.com",
	SMTPPort:  587,
	SMTPUser:  "mailer",
	SMTPPass:  "secret",
	FromEmail: "noreply@example.com",
}

func TestSendWelcome(t *testing.T) {
	fs := &fakeSender{}
	n := newTestNotifier(smtpConfig, fs)

	if err := n.SendWelcome(context.Background(), "alice@example.com", "alice"); err != nil {
		t.Fatalf("SendWelcome: %v", err)
	}
	if len(fs.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fs.sent))
	}
	m := fs.sent[0]
	if got := m.GetHeader("To"); len(got) != 1 || got[0] != "alice@example.com" {
		t.Fatalf("unexpected To header: %v", got)
	}
	if got := m.GetHeader("From"); len(got) != 1 || got[0] != smtpConfig.FromEmail {
		t.Fatalf("unexpected From header: %v", got)
	}
}

func TestSendWelcome_SkipsWithoutRecipient(t *testing.T) {
	fs := &fakeSender{}
	n := newTestNotifier(smtpConfig, fs)

	if err := n.SendWelcome(context.Background(), "  ", "alice"); err != nil {
		t.Fatalf("SendWelcome: %v", err)
	}
	if len(fs.sent) != 0 {
		t.Fatalf("expected no message, got %d", len(fs.sent))
	}
}

func TestSendWelcome_WrapsDialError(t *testing.T) {
	dialErr := errors.New("connection refused")
	n := newTestNotifier(smtpConfig, &fakeSender{err: dialErr})

	err := n.SendWelcome(context.Background(), "alice@example.com", "alice")
	if !errors.Is(err, dialErr) {
		t.Fatalf("expected wrapped dial error, got %v", err)
	}
}

func TestNew_ReturnsNopWhenMailDisabled(t *testing.T) {
	if _, ok := New(&config.EmailConfig{}, nil).(Nop); !ok {
		t.Fatalf("expected Nop notifier for empty config")
	}
	if _, ok := New(&smtpConfig, nil).(*EmailNotifier); !ok {
		t.Fatalf("expected EmailNotifier for complete config")
	}
}

func TestBuildWelcomeBody_EscapesUsername(t *testing.T) {
	body := buildWelcomeBody("<script>")
	if strings.Contains(body, "<script>") {
		t.Fatalf("username was not escaped: %s", body)
	}
}
