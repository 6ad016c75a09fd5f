package mailer

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestSendSuppressedWithoutHost(t *testing.T) {
	m := New(Config{SiteName: "SevaHub"}, zap.NewNop())
	if m.Enabled() {
		t.Error("mailer with no host should be disabled")
	}
	err := m.Send(context.Background(), Email{To: "a@b.com", Subject: "hi", TextBody: "x"})
	if err != nil {
		t.Errorf("suppressed send returned error: %v", err)
	}
}

func TestSendRejectsEmptyRecipient(t *testing.T) {
	m := New(Config{}, zap.NewNop())
	if err := m.Send(context.Background(), Email{Subject: "hi"}); err == nil {
		t.Error("expected error for empty recipient")
	}
}

func TestSendComposesMultipart(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	m := New(Config{Host: "smtp.test", Port: 2525, From: "noreply@sevahub.org"}, zap.NewNop())
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := m.Send(context.Background(), Email{
		To:       "devotee@example.com",
		Subject:  "Welcome",
		TextBody: "plain body",
		HTMLBody: "<p>html body</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "smtp.test:2525" || gotFrom != "noreply@sevahub.org" {
		t.Errorf("addr=%q from=%q", gotAddr, gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "devotee@example.com" {
		t.Errorf("to=%v", gotTo)
	}
	body := string(gotMsg)
	for _, want := range []string{"multipart/alternative", "plain body", "<p>html body</p>"} {
		if !strings.Contains(body, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestBuildApprovalEmail(t *testing.T) {
	e := BuildApprovalEmail(ApprovalEmailData{
		SiteName:      "SevaHub",
		FullName:      "Asha Rao",
		Email:         "asha@example.com",
		CommunityName: "North Temple",
		BaseURL:       "https://sevahub.org",
	})
	if e.To != "asha@example.com" {
		t.Errorf("to=%q", e.To)
	}
	if !strings.Contains(e.TextBody, "North Temple") {
		t.Error("text body missing community name")
	}
	if !strings.Contains(e.HTMLBody, "North Temple") {
		t.Error("html body missing community name")
	}
}
