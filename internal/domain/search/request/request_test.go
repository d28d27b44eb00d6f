package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/pastlight/recollect/internal/domain"
)

var testDefaults = Defaults{Limit: 5, MinScore: 0.7}

func TestNew_Valid(t *testing.T) {
	r, err := New("how did we fix the race", 10, "", false, nil, nil, testDefaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "how did we fix the race" {
		t.Errorf("query = %q", r.Query())
	}
	if r.Limit() != 10 {
		t.Errorf("limit = %d, want 10", r.Limit())
	}
	if r.MinScore() != 0.7 {
		t.Errorf("min score = %g, want default 0.7", r.MinScore())
	}
}

func TestNew_EmptyQuery(t *testing.T) {
	_, err := New("", 5, "", false, nil, nil, testDefaults)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestNew_QueryTooLong(t *testing.T) {
	_, err := New(strings.Repeat("x", MaxQueryLength+1), 5, "", false, nil, nil, testDefaults)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestNew_LimitHandling(t *testing.T) {
	tests := []struct {
		name    string
		limit   int
		want    int
		wantErr bool
	}{
		{"zero takes default", 0, 5, false},
		{"explicit kept", 3, 3, false},
		{"above max clamped", MaxLimit + 50, MaxLimit, false},
		{"negative rejected", -1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New("q", tt.limit, "", false, nil, nil, testDefaults)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidRequest) {
					t.Fatalf("expected ErrInvalidRequest, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Limit() != tt.want {
				t.Errorf("limit = %d, want %d", r.Limit(), tt.want)
			}
		})
	}
}

func TestNew_LimitDefaultWhenDefaultsUnset(t *testing.T) {
	r, err := New("q", 0, "", false, nil, nil, Defaults{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("limit = %d, want built-in default %d", r.Limit(), DefaultLimit)
	}
}

func TestNew_MinScoreHandling(t *testing.T) {
	low := 0.2
	r, err := New("q", 5, "", false, &low, nil, testDefaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.MinScore() != 0.2 {
		t.Errorf("min score = %g, want explicit 0.2", r.MinScore())
	}

	for _, bad := range []float64{-0.1, 1.5} {
		_, err := New("q", 5, "", false, &bad, nil, testDefaults)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("min score %g: expected ErrInvalidRequest, got %v", bad, err)
		}
	}
}

func TestDecayEnabled(t *testing.T) {
	on, off := true, false
	tests := []struct {
		name           string
		useDecay       *bool
		processDefault bool
		want           bool
	}{
		{"nil defers to process on", nil, true, true},
		{"nil defers to process off", nil, false, false},
		{"explicit on overrides off", &on, false, true},
		{"explicit off overrides on", &off, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New("q", 5, "", false, nil, tt.useDecay, testDefaults)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := r.DecayEnabled(tt.processDefault); got != tt.want {
				t.Errorf("DecayEnabled(%v) = %v, want %v", tt.processDefault, got, tt.want)
			}
		})
	}
}

func TestNew_ProjectAndCrossProject(t *testing.T) {
	r, err := New("q", 5, "billing", true, nil, nil, testDefaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Project() != "billing" {
		t.Errorf("project = %q", r.Project())
	}
	if !r.CrossProject() {
		t.Error("cross project flag lost")
	}
}

func TestNew_CrossProjectDefault(t *testing.T) {
	r, err := New("q", 5, "", false, nil, nil, Defaults{Limit: 5, MinScore: 0.7, CrossProject: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.CrossProject() {
		t.Error("config-level cross project opt-in not applied")
	}

	r, err = New("q", 5, "", true, nil, nil, testDefaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.CrossProject() {
		t.Error("request-level opt-in must survive a false default")
	}
}
