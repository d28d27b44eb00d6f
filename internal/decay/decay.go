// Package decay blends raw similarity scores with an exponential recency
// term. The adjustment is additive: a recent point can only be promoted,
// never demoted below its raw similarity, so old-but-relevant matches stay
// in play and are merely out-ranked by near-ties.
package decay

import (
	"fmt"
	"math"
	"time"
)

const msPerDay = 86_400_000

// Config holds the process-wide decay settings. Constructed once at startup
// and passed explicitly into every component that needs it.
type Config struct {
	Enabled   bool
	Weight    float64
	ScaleDays float64
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if c.Weight < 0 {
		return fmt.Errorf("decay weight must be >= 0, got %g", c.Weight)
	}
	if c.ScaleDays <= 0 {
		return fmt.Errorf("decay scale_days must be > 0, got %g", c.ScaleDays)
	}
	return nil
}

// Scorer maps (raw similarity, point timestamp, now) to an adjusted score.
// Pure; safe for any number of concurrent requests.
type Scorer struct {
	weight    float64
	scaleDays float64
}

// NewScorer creates a scorer from a validated config.
func NewScorer(cfg Config) Scorer {
	return Scorer{weight: cfg.Weight, scaleDays: cfg.ScaleDays}
}

// Adjust returns raw + weight * exp(-age / scale). An absent or unparseable
// timestamp counts as age zero: the point gets the full recency bonus rather
// than being dropped, so malformed metadata never shrinks the result set.
// Adjusted scores are not bounded to [0,1].
func (s Scorer) Adjust(raw float64, timestamp string, now time.Time) float64 {
	var ageMs float64
	if ts, ok := ParseTimestamp(timestamp); ok {
		if d := now.Sub(ts); d > 0 {
			ageMs = float64(d.Milliseconds())
		}
	}
	factor := math.Exp(-ageMs / (s.scaleDays * msPerDay))
	return raw + s.weight*factor
}

// ParseTimestamp parses the timestamp formats importers have written so far:
// RFC3339 with or without fractional seconds, and a bare date.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
