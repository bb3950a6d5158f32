// Package calculator implements every urology calculator on top of the
// engine package and keeps them in a name-keyed registry.
package calculator

import (
	"fmt"
	"sort"

	"github.com/uro-calc-engine/internal/domain"
	"github.com/uro-calc-engine/internal/engine"
)

// Calculator is one self-contained evaluation: a schema, a pure evaluation
// over validated values, and the band tables it classifies with.
type Calculator interface {
	Schema() domain.Schema
	Evaluate(v *engine.Values) (*domain.ResultRecord, error)
	Tables() []engine.TableInfo
}

// Registry holds every calculator keyed by name.
type Registry struct {
	opts        engine.Options
	calculators map[string]Calculator
}

// NewRegistry creates a registry with all calculators registered.
func NewRegistry(opts engine.Options) *Registry {
	r := &Registry{
		opts:        opts,
		calculators: make(map[string]Calculator),
	}
	r.initializeCalculators()
	return r
}

func (r *Registry) initializeCalculators() {
	r.add(ProstateVolume{})
	r.add(PSADensity{})
	r.add(PSAVelocity{})
	r.add(FreePSA{})
	r.add(PSAAgeReference{})
	r.add(IPSS{})
	r.add(BladderCapacity{})
	r.add(CVRisk{})
	r.add(VoidingDiary{})
	r.add(ComprehensiveRisk{})
	r.add(EGFR{})
}

func (r *Registry) add(c Calculator) {
	name := c.Schema().Name
	if _, dup := r.calculators[name]; dup {
		panic(fmt.Sprintf("calculator: duplicate registration of %q", name))
	}
	r.calculators[name] = c
}

// Get returns the named calculator.
func (r *Registry) Get(name string) (Calculator, error) {
	c, ok := r.calculators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCalculator, name)
	}
	return c, nil
}

// Names returns the registered calculator names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.calculators))
	for name := range r.calculators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schemas returns every schema, sorted by name.
func (r *Registry) Schemas() []domain.Schema {
	names := r.Names()
	out := make([]domain.Schema, len(names))
	for i, name := range names {
		out[i] = r.calculators[name].Schema()
	}
	return out
}

// Options returns the validation options the registry evaluates with.
func (r *Registry) Options() engine.Options {
	return r.opts
}

// Evaluate validates raw input against the calculator's schema and, if it is
// complete, evaluates it. An incomplete input returns an
// *domain.IncompleteInputError and no record.
func (r *Registry) Evaluate(name string, in domain.Input) (*domain.ResultRecord, error) {
	c, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	values, err := engine.Validate(c.Schema(), in, r.opts)
	if err != nil {
		return nil, err
	}
	return c.Evaluate(values)
}

func describe(tables ...engine.Describer) []engine.TableInfo {
	out := make([]engine.TableInfo, len(tables))
	for i, t := range tables {
		out[i] = t.Describe()
	}
	return out
}

func number(name, label, unit, hint string, required bool) domain.Field {
	return domain.Field{Name: name, Label: label, Kind: domain.FieldNumber, Required: required, Unit: unit, Hint: hint}
}

func bounded(f domain.Field, min, max float64) domain.Field {
	f.Min = domain.Float64(min)
	f.Max = domain.Float64(max)
	return f
}

func enum(name, label string, required bool, def string, options ...string) domain.Field {
	return domain.Field{Name: name, Label: label, Kind: domain.FieldEnum, Required: required, Default: def, Options: options}
}

func flag(name, label string) domain.Field {
	return domain.Field{Name: name, Label: label, Kind: domain.FieldBool, Default: "false"}
}

func withDefault(f domain.Field, def string) domain.Field {
	f.Required = false
	f.Default = def
	return f
}

var genderField = enum("gender", "Gender", true, "", "male", "female")
