package sms

import (
	"context"
	"strings"
	"testing"
)

func TestRenderReplacesPlaceholders(t *testing.T) {
	engine := NewTemplateEngine()

	body, err := engine.Render("otp-login", map[string]string{
		"code":    "482913",
		"minutes": "10",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "Your verification code is 482913. It expires in 10 minutes."
	if body != want {
		t.Errorf("got %q, want %q", body, want)
	}
}

func TestRenderScheduleNotice(t *testing.T) {
	engine := NewTemplateEngine()

	body, err := engine.Render("schedule-notice", map[string]string{
		"patient_name": "Jean Mugisha",
		"location":     "Kigali",
		"date":         "20 Aug 2026",
		"phase":        "phase 2",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"Jean Mugisha", "Kigali", "20 Aug 2026", "phase 2"} {
		if !strings.Contains(body, want) {
			t.Errorf("rendered body %q missing %q", body, want)
		}
	}
	if strings.Contains(body, "{{") {
		t.Errorf("rendered body %q has unreplaced placeholders", body)
	}
}

func TestRenderLeavesMissingKeys(t *testing.T) {
	engine := NewTemplateEngine()

	body, err := engine.Render("otp-login", map[string]string{"code": "111222"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(body, "{{minutes}}") {
		t.Errorf("body %q should keep the unfilled placeholder", body)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	engine := NewTemplateEngine()

	if _, err := engine.Render("no-such-template", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestRegisterReplacesTemplate(t *testing.T) {
	engine := NewTemplateEngine()
	engine.Register(Template{ID: "otp-login", Body: "code: {{code}}"})

	body, err := engine.Render("otp-login", map[string]string{"code": "9"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if body != "code: 9" {
		t.Errorf("got %q, want %q", body, "code: 9")
	}
}

func TestMockSenderRecordsCalls(t *testing.T) {
	var m MockSender

	if err := m.Send(context.Background(), "+250788000001", "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	sent := m.Sent()
	if len(sent) != 1 || sent[0].To != "+250788000001" || sent[0].Content != "hello" {
		t.Errorf("unexpected calls: %+v", sent)
	}

	m.ShouldFail = true
	if err := m.Send(context.Background(), "+250788000002", "x"); err == nil {
		t.Fatal("expected failure")
	}
	if len(m.Sent()) != 1 {
		t.Errorf("failed send must not be recorded")
	}
}
