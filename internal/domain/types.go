// Package domain contains the value types shared by every urology calculator:
// severities, categories, guidance text, metrics and result records.
//
// All values are immutable once built. Nothing in this package performs I/O
// or keeps state between evaluations.
package domain

import (
	"errors"
)

// Severity is the ordered risk/severity tag attached to a Category.
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityLow      Severity = "low"
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeveritySevere   Severity = "severe"

	// SeverityUndetermined marks a result that could not be computed.
	// It sits outside the ordering.
	SeverityUndetermined Severity = "undetermined"
)

var ErrInvalidSeverity = errors.New("invalid severity")

// IsValid reports whether s is one of the declared severities.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityNormal, SeverityLow, SeverityMild, SeverityModerate, SeverityHigh, SeveritySevere, SeverityUndetermined:
		return true
	default:
		return false
	}
}

// Rank returns the ordinal of the severity, 0 for normal up to 5 for severe.
// Undetermined and unknown severities rank -1.
func (s Severity) Rank() int {
	switch s {
	case SeverityNormal:
		return 0
	case SeverityLow:
		return 1
	case SeverityMild:
		return 2
	case SeverityModerate:
		return 3
	case SeverityHigh:
		return 4
	case SeveritySevere:
		return 5
	default:
		return -1
	}
}

// RequiresFollowUp reports whether a category of this severity should prompt
// a specialist review.
func (s Severity) RequiresFollowUp() bool {
	return s.Rank() >= SeverityModerate.Rank()
}

func (s Severity) String() string {
	return string(s)
}

// Style returns the presentation tag used for a badge of this severity.
func (s Severity) Style() string {
	switch s {
	case SeverityNormal, SeverityLow:
		return "bg-green-100 text-green-800"
	case SeverityMild:
		return "bg-yellow-100 text-yellow-800"
	case SeverityModerate:
		return "bg-orange-100 text-orange-800"
	case SeverityHigh, SeveritySevere:
		return "bg-red-100 text-red-800"
	default:
		return "bg-gray-100 text-gray-800"
	}
}

// Category is the discrete label a metric is classified into.
type Category struct {
	Code     string   `json:"code"`
	Label    string   `json:"label"`
	Severity Severity `json:"severity"`
	Style    string   `json:"style"`
}

// NewCategory builds a Category whose style follows its severity.
func NewCategory(code, label string, severity Severity) Category {
	return Category{
		Code:     code,
		Label:    label,
		Severity: severity,
		Style:    severity.Style(),
	}
}

// IsZero reports whether c is the empty category.
func (c Category) IsZero() bool {
	return c.Code == ""
}

// LogFields returns structured logging fields for the category.
func (c Category) LogFields() map[string]any {
	return map[string]any{
		"category":          c.Code,
		"category_label":    c.Label,
		"severity":          string(c.Severity),
		"severity_rank":     c.Severity.Rank(),
		"requires_followup": c.Severity.RequiresFollowUp(),
	}
}

// CannotCompute is the sentinel category used when a formula has no defined
// value for the given inputs, e.g. a zero prostate volume in a density.
var CannotCompute = NewCategory("cannot_compute", "Cannot Compute", SeverityUndetermined)

// CannotComputeGuidance is the fixed guidance attached to CannotCompute.
var CannotComputeGuidance = RecommendationSet{
	Interpretation: []string{
		"The entered values do not allow this metric to be calculated.",
	},
	Recommendations: []string{
		"Check that every measurement is greater than zero and entered in the expected unit.",
	},
}

// RecommendationSet is the static guidance text attached to a Category.
type RecommendationSet struct {
	Interpretation  []string `json:"interpretation"`
	Recommendations []string `json:"recommendations,omitempty"`
	Treatment       []string `json:"treatment,omitempty"`
	FollowUp        []string `json:"follow_up,omitempty"`
}

// IsEmpty reports whether the set carries no interpretation text.
func (r RecommendationSet) IsEmpty() bool {
	return len(r.Interpretation) == 0
}

// Clone returns a deep copy so callers cannot mutate shared tables.
func (r RecommendationSet) Clone() RecommendationSet {
	return RecommendationSet{
		Interpretation:  cloneStrings(r.Interpretation),
		Recommendations: cloneStrings(r.Recommendations),
		Treatment:       cloneStrings(r.Treatment),
		FollowUp:        cloneStrings(r.FollowUp),
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
