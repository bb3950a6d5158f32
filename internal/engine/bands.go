// Package engine holds the calculator-independent building blocks: ordered
// band tables, the input validator, formula helpers and the result builder.
package engine

import (
	"fmt"
	"math"

	"github.com/uro-calc-engine/internal/domain"
)

// Band is one entry of an ordered partition of the real line. Its lower
// bound is the previous band's upper bound (exclusive if the previous band
// was inclusive), so adjacent bands can never overlap.
type Band[T any] struct {
	Upper     float64
	Inclusive bool
	Value     T
}

// Below is a band matching x < upper.
func Below[T any](upper float64, v T) Band[T] {
	return Band[T]{Upper: upper, Value: v}
}

// AtMost is a band matching x <= upper.
func AtMost[T any](upper float64, v T) Band[T] {
	return Band[T]{Upper: upper, Inclusive: true, Value: v}
}

// Above is the open top band.
func Above[T any](v T) Band[T] {
	return Band[T]{Upper: math.Inf(1), Value: v}
}

// Bands is an ordered, exhaustive band table.
type Bands[T any] struct {
	Name  string
	Bands []Band[T]
}

// CategoryBands maps a metric to a category.
type CategoryBands = Bands[domain.Category]

// PointBands maps a measurement to a score contribution.
type PointBands = Bands[int]

// NewBands builds and validates a band table.
func NewBands[T any](name string, bands ...Band[T]) (Bands[T], error) {
	b := Bands[T]{Name: name, Bands: bands}
	if err := b.Validate(); err != nil {
		return Bands[T]{}, err
	}
	return b, nil
}

// MustBands is NewBands for package-level tables; an invalid table panics at
// init so the defect surfaces before any evaluation runs.
func MustBands[T any](name string, bands ...Band[T]) Bands[T] {
	b, err := NewBands(name, bands...)
	if err != nil {
		panic(err)
	}
	return b
}

// Validate checks that the bands are strictly ascending and that the last
// band is open-ended, which makes the table exhaustive and exclusive.
func (b Bands[T]) Validate() error {
	if len(b.Bands) == 0 {
		return fmt.Errorf("band table %q: %w: no bands", b.Name, domain.ErrNoMatchingBand)
	}
	for i, band := range b.Bands {
		if math.IsNaN(band.Upper) {
			return fmt.Errorf("band table %q: band %d has NaN upper bound", b.Name, i)
		}
		if i == 0 {
			continue
		}
		prev := b.Bands[i-1]
		switch {
		case band.Upper > prev.Upper:
		case band.Upper == prev.Upper && !prev.Inclusive && band.Inclusive:
			// [x == Upper] point band after an exclusive band
		default:
			return fmt.Errorf("band table %q: band %d (upper %v) does not ascend from band %d (upper %v)",
				b.Name, i, band.Upper, i-1, prev.Upper)
		}
	}
	if last := b.Bands[len(b.Bands)-1]; !math.IsInf(last.Upper, 1) {
		return fmt.Errorf("band table %q: %w: top band ends at %v", b.Name, domain.ErrNoMatchingBand, last.Upper)
	}
	return nil
}

// Lookup returns the value of the band containing x. Non-finite input is
// undefined arithmetic, never a band match.
func (b Bands[T]) Lookup(x float64) (T, error) {
	var zero T
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return zero, fmt.Errorf("band table %q: %w: value %v", b.Name, domain.ErrUndefinedArithmetic, x)
	}
	for _, band := range b.Bands {
		if x < band.Upper || (band.Inclusive && x == band.Upper) {
			return band.Value, nil
		}
	}
	return zero, fmt.Errorf("band table %q: %w: value %v", b.Name, domain.ErrNoMatchingBand, x)
}

// Index returns the position of the band containing x, or -1.
func (b Bands[T]) Index(x float64) int {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return -1
	}
	for i, band := range b.Bands {
		if x < band.Upper || (band.Inclusive && x == band.Upper) {
			return i
		}
	}
	return -1
}

// Values returns every band value in order.
func (b Bands[T]) Values() []T {
	out := make([]T, len(b.Bands))
	for i, band := range b.Bands {
		out[i] = band.Value
	}
	return out
}

// RangeInfo is the serialisable description of one band. Nil bounds are open.
type RangeInfo struct {
	Lower          *float64 `json:"lower,omitempty"`
	LowerInclusive bool     `json:"lower_inclusive"`
	Upper          *float64 `json:"upper,omitempty"`
	UpperInclusive bool     `json:"upper_inclusive"`
	Value          any      `json:"value"`
}

// TableInfo is the serialisable description of a band table.
type TableInfo struct {
	Name   string      `json:"name"`
	Ranges []RangeInfo `json:"ranges"`
}

// Describe renders the table for the catalog.
func (b Bands[T]) Describe() TableInfo {
	info := TableInfo{Name: b.Name, Ranges: make([]RangeInfo, len(b.Bands))}
	for i, band := range b.Bands {
		r := RangeInfo{Value: band.Value, UpperInclusive: band.Inclusive}
		if i > 0 {
			lower := b.Bands[i-1].Upper
			r.Lower = &lower
			r.LowerInclusive = !b.Bands[i-1].Inclusive
		}
		if !math.IsInf(band.Upper, 1) {
			upper := band.Upper
			r.Upper = &upper
		}
		info.Ranges[i] = r
	}
	return info
}

// Describer is any table that can describe itself for the catalog.
type Describer interface {
	Describe() TableInfo
}
