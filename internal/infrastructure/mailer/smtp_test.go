package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/memberdesk/accounts-api/internal/core/domain"
)

func newTestMailer(send func(string, smtp.Auth, string, []string, []byte) error) *Mailer {
	m := New(Config{
		Host:    "smtp.example.com",
		Port:    587,
		From:    "no-reply@example.com",
		BaseURL: "https://portal.example.com",
	}, zerolog.Nop())
	m.send = send
	return m
}

func TestMailer_SendVerification(t *testing.T) {
	var gotTo []string
	var gotMsg string
	m := newTestMailer(func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		if addr != "smtp.example.com:587" || from != "no-reply@example.com" {
			t.Fatalf("unexpected addr/from: %s %s", addr, from)
		}
		gotTo, gotMsg = to, string(msg)
		return nil
	})

	err := m.Send(context.Background(), "alice@example.com", "Alice", "tok-123", domain.TokenKindVerification)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(gotTo) != 1 || gotTo[0] != "alice@example.com" {
		t.Fatalf("unexpected recipients: %v", gotTo)
	}
	if !strings.Contains(gotMsg, "/verify-email?token=tok-123") {
		t.Fatalf("verification link missing:\n%s", gotMsg)
	}
	if !strings.Contains(gotMsg, "Subject: Verify your email address") {
		t.Fatalf("wrong subject:\n%s", gotMsg)
	}
}

func TestMailer_SendPasswordReset(t *testing.T) {
	var gotMsg string
	m := newTestMailer(func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotMsg = string(msg)
		return nil
	})

	err := m.Send(context.Background(), "bob@example.com", "Bob", "tok-456", domain.TokenKindPasswordReset)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if !strings.Contains(gotMsg, "/reset-password?token=tok-456") {
		t.Fatalf("reset link missing:\n%s", gotMsg)
	}
}

func TestMailer_SendFailureBubbles(t *testing.T) {
	m := newTestMailer(func(_ string, _ smtp.Auth, _ string, _ []string, _ []byte) error {
		return errors.New("connection refused")
	})

	err := m.Send(context.Background(), "x@example.com", "X", "tok", domain.TokenKindVerification)
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected transport error to bubble, got %v", err)
	}
}
