// Package decision turns an accepted-match count into a verdict.
package decision

import (
	"fmt"
	"math"

	"github.com/nvr-ai/go-sigverify/common"
)

const (
	// DefaultThreshold is the accepted-match count required for a match.
	DefaultThreshold = 100
	// MinThreshold is the lowest threshold the presentation layer offers.
	MinThreshold = 10
	// MaxThreshold is the highest threshold the presentation layer offers.
	MaxThreshold = 300
)

// Outcome is the categorical result of a verification run.
type Outcome string

const (
	Match    Outcome = "MATCH"
	Mismatch Outcome = "MISMATCH"
)

// Verdict is the immutable result of comparing an accepted-match count to a
// threshold.
type Verdict struct {
	// Outcome is Match iff Accepted >= Threshold.
	Outcome Outcome `json:"outcome"`
	// Accepted is the number of matches that passed the ratio test.
	Accepted int `json:"accepted"`
	// Threshold is the count that was required.
	Threshold int `json:"threshold"`
	// Confidence is min(100, round(100 * Accepted / Threshold)).
	Confidence int `json:"confidence"`
}

// IsMatch reports whether the outcome is Match.
func (v Verdict) IsMatch() bool {
	return v.Outcome == Match
}

// String renders the verdict as "MATCH (120 good matches)".
func (v Verdict) String() string {
	return fmt.Sprintf("%s (%d good matches)", v.Outcome, v.Accepted)
}

// Decide compares accepted against threshold.
//
// A non-positive threshold is a ConfigError. A negative accepted count is
// treated as zero.
func Decide(accepted, threshold int) (Verdict, error) {
	if threshold <= 0 {
		return Verdict{}, common.ConfigError("decide", "threshold must be positive, got %d", threshold)
	}
	if accepted < 0 {
		accepted = 0
	}

	outcome := Mismatch
	if accepted >= threshold {
		outcome = Match
	}

	return Verdict{
		Outcome:    outcome,
		Accepted:   accepted,
		Threshold:  threshold,
		Confidence: Confidence(accepted, threshold),
	}, nil
}

// Confidence returns min(100, round(100 * accepted / threshold)). threshold
// must be positive.
func Confidence(accepted, threshold int) int {
	pct := int(math.Round(100 * float64(accepted) / float64(threshold)))
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// ValidateThreshold checks that threshold lies in [MinThreshold, MaxThreshold].
func ValidateThreshold(threshold int) error {
	if threshold < MinThreshold || threshold > MaxThreshold {
		return common.ConfigError("decide", "threshold must be in [%d, %d], got %d", MinThreshold, MaxThreshold, threshold)
	}
	return nil
}
