package decay

import (
	"math"
	"testing"
	"time"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{Weight: 0.3, ScaleDays: 90}, false},
		{"zero weight ok", Config{Weight: 0, ScaleDays: 90}, false},
		{"negative weight", Config{Weight: -0.1, ScaleDays: 90}, true},
		{"zero scale", Config{Weight: 0.3, ScaleDays: 0}, true},
		{"negative scale", Config{Weight: 0.3, ScaleDays: -5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAdjust_FreshPointGetsFullBonus(t *testing.T) {
	s := NewScorer(Config{Weight: 0.3, ScaleDays: 90})

	got := s.Adjust(0.6, testNow.Format(time.RFC3339), testNow)
	if math.Abs(got-0.9) > 1e-9 {
		t.Errorf("zero-age adjustment = %g, want raw+weight = 0.9", got)
	}
}

func TestAdjust_NeverBelowRaw(t *testing.T) {
	s := NewScorer(Config{Weight: 0.3, ScaleDays: 90})

	for _, ageDays := range []int{0, 1, 30, 90, 365, 3650} {
		ts := testNow.AddDate(0, 0, -ageDays).Format(time.RFC3339)
		got := s.Adjust(0.5, ts, testNow)
		if got < 0.5 {
			t.Errorf("age %d days: adjusted %g fell below raw 0.5", ageDays, got)
		}
	}
}

func TestAdjust_BonusDecaysTowardZero(t *testing.T) {
	s := NewScorer(Config{Weight: 0.3, ScaleDays: 90})

	ancient := testNow.AddDate(-30, 0, 0).Format(time.RFC3339)
	got := s.Adjust(0.5, ancient, testNow)
	if got-0.5 > 1e-9 {
		t.Errorf("30-year-old point kept bonus %g, want ~0", got-0.5)
	}
}

func TestAdjust_OneScalePeriodIsOneE(t *testing.T) {
	s := NewScorer(Config{Weight: 0.3, ScaleDays: 90})

	ts := testNow.AddDate(0, 0, -90).Format(time.RFC3339)
	got := s.Adjust(0.6, ts, testNow)
	want := 0.6 + 0.3*math.Exp(-1)
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("90-day adjustment = %g, want %g", got, want)
	}
}

func TestAdjust_BonusIsMonotonicInAge(t *testing.T) {
	s := NewScorer(Config{Weight: 0.3, ScaleDays: 90})

	prev := math.Inf(1)
	for _, ageDays := range []int{0, 7, 30, 90, 180, 365} {
		ts := testNow.AddDate(0, 0, -ageDays).Format(time.RFC3339)
		got := s.Adjust(0.5, ts, testNow)
		if got > prev {
			t.Errorf("age %d days: score %g exceeds younger point's %g", ageDays, got, prev)
		}
		prev = got
	}
}

func TestAdjust_UnparseableTimestampCountsAsFresh(t *testing.T) {
	s := NewScorer(Config{Weight: 0.3, ScaleDays: 90})

	for _, ts := range []string{"", "not-a-date", "13/01/2026"} {
		got := s.Adjust(0.6, ts, testNow)
		if math.Abs(got-0.9) > 1e-9 {
			t.Errorf("timestamp %q: adjustment = %g, want full bonus 0.9", ts, got)
		}
	}
}

func TestAdjust_FutureTimestampClampsToZeroAge(t *testing.T) {
	s := NewScorer(Config{Weight: 0.3, ScaleDays: 90})

	future := testNow.AddDate(0, 0, 7).Format(time.RFC3339)
	got := s.Adjust(0.6, future, testNow)
	if math.Abs(got-0.9) > 1e-9 {
		t.Errorf("future timestamp adjustment = %g, want full bonus 0.9", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2026-08-01T12:00:00Z", true},
		{"2026-08-01T12:00:00.123456Z", true},
		{"2026-08-01T12:00:00+03:00", true},
		{"2026-08-01T12:00:00", true},
		{"2026-08-01", true},
		{"", false},
		{"yesterday", false},
	}
	for _, tt := range tests {
		_, ok := ParseTimestamp(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseTimestamp(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
	}
}
