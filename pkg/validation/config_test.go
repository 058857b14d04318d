package validation

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfigValidator_Required(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.Required("Name", "")

	if !cv.HasErrors() {
		t.Error("Expected error for empty required field")
	}

	cv2 := NewConfigValidator("TestConfig")
	cv2.Required("Name", "value")

	if cv2.HasErrors() {
		t.Error("Expected no error for non-empty required field")
	}
}

func TestConfigValidator_URL(t *testing.T) {
	tests := []struct {
		value     string
		expectErr bool
	}{
		{"http://localhost:8000", false},
		{"https://pathview.example.com/api", false},
		{"localhost:8000", true},
		{"ftp://host/file", true},
		{"", true},
		{"http://", true},
	}

	for _, tt := range tests {
		cv := NewConfigValidator("Backend")
		cv.URL("URL", tt.value)
		if cv.HasErrors() != tt.expectErr {
			t.Errorf("URL(%q): expected error=%v, got %v", tt.value, tt.expectErr, cv.Errors())
		}
	}
}

func TestConfigValidator_RangeInt(t *testing.T) {
	tests := []struct {
		name      string
		value     int
		min       int
		max       int
		expectErr bool
	}{
		{"Within range", 5, 1, 10, false},
		{"At minimum", 1, 1, 10, false},
		{"At maximum", 10, 1, 10, false},
		{"Below minimum", 0, 1, 10, true},
		{"Above maximum", 11, 1, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewConfigValidator("TestConfig")
			cv.RangeInt("Value", tt.value, tt.min, tt.max)

			if cv.HasErrors() != tt.expectErr {
				t.Errorf("Expected error=%v, got errors=%v", tt.expectErr, cv.Errors())
			}
		})
	}
}

func TestConfigValidator_Numbers(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.Positive("Radius", 0).
		NonNegativeFloat("MinWeight", -0.5).
		MinDuration("Timeout", 10*time.Millisecond, time.Second)

	if len(cv.Errors()) != 3 {
		t.Errorf("Expected 3 errors, got %d: %v", len(cv.Errors()), cv.Errors())
	}

	cv2 := NewConfigValidator("TestConfig")
	cv2.Positive("Radius", 2).
		NonNegativeFloat("MinWeight", 0).
		MinDuration("Timeout", time.Second, time.Second)

	if cv2.HasErrors() {
		t.Errorf("Expected no errors, got %v", cv2.Errors())
	}
}

func TestConfigValidator_OneOf(t *testing.T) {
	allowed := []string{"debug", "info", "warn", "error"}

	cv := NewConfigValidator("Log")
	cv.OneOf("Level", "info", allowed)
	if cv.HasErrors() {
		t.Error("Expected no error for allowed value")
	}

	cv2 := NewConfigValidator("Log")
	cv2.OneOf("Level", "verbose", allowed)
	if !cv2.HasErrors() {
		t.Error("Expected error for value not in allowed list")
	}
}

func TestConfigValidator_Custom(t *testing.T) {
	sentinel := errors.New("custom check failed")

	cv := NewConfigValidator("TestConfig")
	cv.Custom("Field", func() error { return sentinel })

	if !errors.Is(cv.Validate(), sentinel) {
		t.Errorf("Expected wrapped sentinel, got %v", cv.Validate())
	}
}

func TestConfigValidator_When(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.When(false, func(v *ConfigValidator) {
		v.Required("Secret", "")
	})
	if cv.HasErrors() {
		t.Error("Expected no error when condition is false")
	}

	cv.When(true, func(v *ConfigValidator) {
		v.Required("Secret", "")
	})
	if !cv.HasErrors() {
		t.Error("Expected error when condition is true")
	}
}

func TestConfigValidator_Validate(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	if err := cv.Validate(); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}

	cv.Required("A", "").Required("B", "")
	err := cv.Validate()
	if err == nil {
		t.Fatal("Expected combined error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "TestConfig.A") || !strings.Contains(msg, "TestConfig.B") {
		t.Errorf("Expected both fields in error, got %q", msg)
	}
}

func TestDefaultOr(t *testing.T) {
	if got := DefaultOr("", "fallback"); got != "fallback" {
		t.Errorf("Expected fallback, got %q", got)
	}
	if got := DefaultOr("set", "fallback"); got != "set" {
		t.Errorf("Expected set, got %q", got)
	}
	if got := DefaultOr(0, 30); got != 30 {
		t.Errorf("Expected 30, got %d", got)
	}
}

func TestClampInt(t *testing.T) {
	tests := []struct {
		value, min, max, want int
	}{
		{5, 1, 10, 5},
		{0, 1, 10, 1},
		{15, 1, 10, 10},
	}
	for _, tt := range tests {
		if got := ClampInt(tt.value, tt.min, tt.max); got != tt.want {
			t.Errorf("ClampInt(%d, %d, %d): expected %d, got %d", tt.value, tt.min, tt.max, tt.want, got)
		}
	}
}
