package validation

import (
	"context"
	"strings"
	"testing"

	"birthchart-server/internal/shared/errors"
)

type sample struct {
	Name  string  `json:"name" validate:"required,max=10"`
	Count *int    `json:"count" validate:"required,min=1"`
	Mode  string  `json:"mode" default:"fast" validate:"oneof=fast slow"`
	Ratio float64 `json:"ratio" validate:"gte=0,lt=1"`
}

func intPtr(v int) *int { return &v }

func TestStructAppliesDefaults(t *testing.T) {
	s := &sample{Name: "ok", Count: intPtr(2)}
	if err := Struct(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Mode != "fast" {
		t.Fatalf("expected default mode, got %q", s.Mode)
	}
}

func TestStructReportsFieldsByJSONName(t *testing.T) {
	s := &sample{Name: "much too long", Ratio: 1.5}
	err := Struct(context.Background(), s)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if errors.GetType(err) != errors.ErrorTypeValidation {
		t.Fatalf("expected validation type, got %s", errors.GetType(err))
	}
	msg := errors.ClientMessage(err)
	for _, want := range []string{"name must be at most 10 characters", "count is required", "ratio must be less than 1"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}
