package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/uro-calc-engine/internal/domain"
)

// Options tunes validation and arithmetic for every calculator.
type Options struct {
	// StrictRanges rejects values outside a field's Min/Max hint.
	StrictRanges bool
	NearZero     float64
}

// DefaultOptions keeps range hints advisory.
func DefaultOptions() Options {
	return Options{NearZero: DefaultNearZero}
}

// Values is a validated, typed input set.
type Values struct {
	schema  domain.Schema
	opts    Options
	numbers map[string]float64
	enums   map[string]string
	bools   map[string]bool
	rows    []Row
	// supplied records fields the user entered, as opposed to defaults.
	supplied map[string]bool
	raw      map[string]string
}

// Row is one valid row of a repeated field.
type Row struct {
	Index   int
	numbers map[string]float64
}

// Float returns a numeric column of the row.
func (r Row) Float(name string) (float64, bool) {
	v, ok := r.numbers[name]
	return v, ok
}

// Hour returns the clock hour of a time column.
func (r Row) Hour(name string) int {
	return int(r.numbers[name]) / 60
}

// Validate coerces raw form values into a typed input set. It never panics
// and never partially succeeds: any problem yields an *IncompleteInputError
// naming every offending field.
func Validate(schema domain.Schema, in domain.Input, opts Options) (*Values, error) {
	if opts.NearZero <= 0 {
		opts.NearZero = DefaultNearZero
	}
	v := &Values{
		schema:   schema,
		opts:     opts,
		numbers:  make(map[string]float64),
		enums:    make(map[string]string),
		bools:    make(map[string]bool),
		supplied: make(map[string]bool),
		raw:      make(map[string]string),
	}

	var problems []*domain.ValidationError
	for _, f := range schema.Fields {
		if f.Kind == domain.FieldRepeated {
			rows, p := validateRows(f, in.Rows, opts)
			v.rows = rows
			problems = append(problems, p...)
			if len(rows) > 0 {
				v.supplied[f.Name] = true
			}
			continue
		}

		raw := in.Get(f.Name)
		if raw == "" {
			if f.Required {
				problems = append(problems, domain.NewValidationError(f.Name, label(f)+" is required", nil))
				continue
			}
			if f.Default == "" {
				continue
			}
			raw = f.Default
		} else {
			v.supplied[f.Name] = true
		}

		if p := v.set(f, raw); p != nil {
			problems = append(problems, p)
			continue
		}
		v.raw[f.Name] = raw
	}

	if len(problems) > 0 {
		return nil, &domain.IncompleteInputError{Calculator: schema.Name, Problems: problems}
	}
	return v, nil
}

func (v *Values) set(f domain.Field, raw string) *domain.ValidationError {
	switch f.Kind {
	case domain.FieldNumber:
		n, p := parseNumber(f, raw, v.opts)
		if p != nil {
			return p
		}
		v.numbers[f.Name] = n
	case domain.FieldEnum:
		s := strings.ToLower(raw)
		if !f.HasOption(s) {
			return domain.NewValidationError(f.Name,
				fmt.Sprintf("%s must be one of: %s", label(f), strings.Join(f.Options, ", ")), raw)
		}
		v.enums[f.Name] = s
	case domain.FieldBool:
		b, ok := parseBool(raw)
		if !ok {
			return domain.NewValidationError(f.Name, label(f)+" must be yes or no", raw)
		}
		v.bools[f.Name] = b
	case domain.FieldTime:
		m, ok := parseClock(raw)
		if !ok {
			return domain.NewValidationError(f.Name, label(f)+" must be a time of day (HH:MM)", raw)
		}
		v.numbers[f.Name] = m
	default:
		return domain.NewValidationError(f.Name, fmt.Sprintf("unsupported field kind %q", f.Kind), raw)
	}
	return nil
}

// validateRows keeps every row whose columns all parse; malformed rows are
// dropped rather than rejected, then the count is checked against MinRows.
// In strict mode a column outside its range is reported as a problem.
func validateRows(f domain.Field, rows []map[string]string, opts Options) ([]Row, []*domain.ValidationError) {
	var valid []Row
	var problems []*domain.ValidationError
	for i, raw := range rows {
		row := Row{Index: i, numbers: make(map[string]float64)}
		ok := true
		for _, col := range f.Columns {
			s := strings.TrimSpace(raw[col.Name])
			if s == "" {
				if col.Required {
					ok = false
					break
				}
				continue
			}
			switch col.Kind {
			case domain.FieldTime:
				m, good := parseClock(s)
				if !good {
					ok = false
				}
				row.numbers[col.Name] = m
			default:
				n, p := parseNumber(col, s, Options{})
				if p != nil {
					if col.Required {
						ok = false
					}
					continue
				}
				if opts.StrictRanges && !inRange(col, n) {
					name := fmt.Sprintf("%s[%d].%s", f.Name, i, col.Name)
					msg := fmt.Sprintf("%s entry %d: %s must be within %s", label(f), i+1, label(col), col.Hint)
					problems = append(problems, domain.NewValidationError(name, msg, s))
					continue
				}
				row.numbers[col.Name] = n
			}
			if !ok {
				break
			}
		}
		if ok {
			valid = append(valid, row)
		}
	}

	if len(valid) < f.MinRows {
		msg := fmt.Sprintf("%s needs at least %d valid entries (got %d)", label(f), f.MinRows, len(valid))
		problems = append(problems, domain.NewValidationError(f.Name, msg, len(valid)))
	}
	return valid, problems
}

func parseNumber(f domain.Field, raw string, opts Options) (float64, *domain.ValidationError) {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, domain.NewValidationError(f.Name, label(f)+" must be a number", raw)
	}
	if opts.StrictRanges && !inRange(f, n) {
		return 0, domain.NewValidationError(f.Name, fmt.Sprintf("%s must be within %s", label(f), f.Hint), raw)
	}
	return n, nil
}

func inRange(f domain.Field, n float64) bool {
	return (f.Min == nil || n >= *f.Min) && (f.Max == nil || n <= *f.Max)
}

func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "y", "1", "on":
		return true, true
	case "false", "no", "n", "0", "off":
		return false, true
	default:
		return false, false
	}
}

// parseClock returns minutes since midnight for "HH:MM".
func parseClock(raw string) (float64, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return float64(t.Hour()*60 + t.Minute()), true
}

func label(f domain.Field) string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Float returns a numeric field. It panics if the field is not a declared,
// present numeric field, which is a calculator bug.
func (v *Values) Float(name string) float64 {
	n, ok := v.numbers[name]
	if !ok {
		panic(fmt.Sprintf("engine: numeric field %q not present in %s", name, v.schema.Name))
	}
	return n
}

// Int returns a numeric field truncated toward zero.
func (v *Values) Int(name string) int {
	return int(v.Float(name))
}

// Enum returns an enum field in lower case.
func (v *Values) Enum(name string) string {
	s, ok := v.enums[name]
	if !ok {
		panic(fmt.Sprintf("engine: enum field %q not present in %s", name, v.schema.Name))
	}
	return s
}

// Bool returns a boolean field, false when absent.
func (v *Values) Bool(name string) bool {
	return v.bools[name]
}

// Has reports whether an optional field without a default was supplied.
func (v *Values) Has(name string) bool {
	_, n := v.numbers[name]
	_, e := v.enums[name]
	_, b := v.bools[name]
	return n || e || b
}

// Supplied reports whether the user entered the field, as opposed to the
// default being substituted.
func (v *Values) Supplied(name string) bool {
	return v.supplied[name]
}

// Rows returns the valid rows of the repeated field.
func (v *Values) Rows() []Row {
	return v.rows
}

// Options returns the options the values were validated with.
func (v *Values) Options() Options {
	return v.opts
}

// Raw returns the effective raw value of every scalar field, defaults included.
func (v *Values) Raw() map[string]string {
	out := make(map[string]string, len(v.raw))
	for k, s := range v.raw {
		out[k] = s
	}
	return out
}
