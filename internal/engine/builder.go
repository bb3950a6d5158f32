package engine

import (
	"errors"
	"fmt"

	"github.com/uro-calc-engine/internal/domain"
)

// Guide maps category codes to their fixed guidance text.
type Guide map[string]domain.RecommendationSet

// For returns the guidance of a category. CannotCompute always resolves to
// the shared sentinel guidance. A missing entry is a configuration defect.
func (g Guide) For(c domain.Category) domain.RecommendationSet {
	if c.Code == domain.CannotCompute.Code {
		return domain.CannotComputeGuidance.Clone()
	}
	set, ok := g[c.Code]
	if !ok || set.IsEmpty() {
		panic(fmt.Sprintf("engine: no guidance for category %q", c.Code))
	}
	return set.Clone()
}

// Builder assembles one ResultRecord.
type Builder struct {
	record domain.ResultRecord
}

// NewBuilder starts a record for a calculator. inputs is copied.
func NewBuilder(calculator string, inputs map[string]string) *Builder {
	cp := make(map[string]string, len(inputs))
	for k, v := range inputs {
		cp[k] = v
	}
	return &Builder{record: domain.ResultRecord{
		Calculator:      calculator,
		Metrics:         []domain.Metric{},
		Classifications: []domain.Classification{},
		Inputs:          cp,
	}}
}

// Metric records a defined metric.
func (b *Builder) Metric(name, label, unit string, value float64) *Builder {
	b.record.Metrics = append(b.record.Metrics, domain.Metric{
		Name: name, Label: label, Unit: unit, Value: value, Defined: true,
	})
	return b
}

// Undefined records a metric whose formula had no value.
func (b *Builder) Undefined(name, label, unit string) *Builder {
	b.record.Metrics = append(b.record.Metrics, domain.Metric{
		Name: name, Label: label, Unit: unit,
	})
	return b
}

// Derived records the result of a formula helper: a value when err is nil,
// an undefined metric when err is ErrUndefinedArithmetic. It reports whether
// the metric is defined.
func (b *Builder) Derived(name, label, unit string, value float64, err error) bool {
	if err != nil {
		if !errors.Is(err, domain.ErrUndefinedArithmetic) {
			panic(fmt.Sprintf("engine: metric %q: %v", name, err))
		}
		b.Undefined(name, label, unit)
		return false
	}
	b.Metric(name, label, unit, value)
	return true
}

// Category records a classification with the category's guidance.
func (b *Builder) Category(dimension string, c domain.Category, guide Guide) *Builder {
	b.record.Classifications = append(b.record.Classifications, domain.Classification{
		Dimension: dimension,
		Category:  c,
		Guidance:  guide.For(c),
	})
	return b
}

// Classify looks x up in table and records the matched category. Undefined
// input records CannotCompute; an unmatched band panics.
func (b *Builder) Classify(dimension string, table CategoryBands, guide Guide, x float64) domain.Category {
	c, err := table.Lookup(x)
	if err != nil {
		if !errors.Is(err, domain.ErrUndefinedArithmetic) {
			panic(err)
		}
		c = domain.CannotCompute
	}
	b.Category(dimension, c, guide)
	return c
}

// CannotCompute records the sentinel category for a dimension.
func (b *Builder) CannotCompute(dimension string) *Builder {
	return b.Category(dimension, domain.CannotCompute, nil)
}

// Summary sets the one-line summary used for events and logs.
func (b *Builder) Summary(format string, args ...any) *Builder {
	b.record.Summary = fmt.Sprintf(format, args...)
	return b
}

// Build returns the finished record.
func (b *Builder) Build() *domain.ResultRecord {
	r := b.record
	return &r
}

// MustLookup is Lookup for score tables authored as exhaustive; any error is
// a configuration defect.
func MustLookup[T any](table Bands[T], x float64) T {
	v, err := table.Lookup(x)
	if err != nil {
		panic(err)
	}
	return v
}
