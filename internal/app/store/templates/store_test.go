package templatestore

import (
	"testing"

	"github.com/sevahub/sevahub/internal/domain/models"
)

func TestRender(t *testing.T) {
	tmpl := models.CommunicationTemplate{
		Subject:  "Welcome {{name}}",
		TextBody: "Dear {{name}}, your seva on {{date}} is confirmed.",
		HTMLBody: "<p>Dear {{name}},</p>",
	}

	subject, text, html := Render(tmpl, map[string]string{
		"name": "Lakshmi",
		"date": "2026-09-01",
	})

	if subject != "Welcome Lakshmi" {
		t.Errorf("subject: got %q", subject)
	}
	if text != "Dear Lakshmi, your seva on 2026-09-01 is confirmed." {
		t.Errorf("text: got %q", text)
	}
	if html != "<p>Dear Lakshmi,</p>" {
		t.Errorf("html: got %q", html)
	}
}

func TestRender_UnknownPlaceholderSurvives(t *testing.T) {
	tmpl := models.CommunicationTemplate{TextBody: "Hello {{missing}}"}
	_, text, _ := Render(tmpl, map[string]string{"name": "X"})
	if text != "Hello {{missing}}" {
		t.Errorf("unknown placeholder should remain visible, got %q", text)
	}
}
