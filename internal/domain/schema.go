package domain

import (
	"sort"
	"strconv"
	"strings"
)

// FieldKind is the type a raw form value is coerced into.
type FieldKind string

const (
	FieldNumber   FieldKind = "number"
	FieldEnum     FieldKind = "enum"
	FieldBool     FieldKind = "bool"
	FieldTime     FieldKind = "time"
	FieldRepeated FieldKind = "repeated"
)

// Field declares one input of a calculator.
type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	// Default is substituted when an optional field is absent.
	Default string   `json:"default,omitempty"`
	Options []string `json:"options,omitempty"`
	Unit    string   `json:"unit,omitempty"`
	// Hint is the advisory range shown next to the input, e.g. "18-100".
	Hint string `json:"hint,omitempty"`
	// Min and Max back Hint; they are only enforced in strict mode.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
	// Columns describes each row of a repeated field.
	Columns []Field `json:"columns,omitempty"`
	// MinRows is the minimum number of valid rows a repeated field needs.
	MinRows int `json:"min_rows,omitempty"`
}

// HasOption reports whether v is one of the field's literal options.
func (f Field) HasOption(v string) bool {
	for _, o := range f.Options {
		if o == v {
			return true
		}
	}
	return false
}

// Schema is the declared input set of one calculator.
type Schema struct {
	Name        string  `json:"name"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
}

// Field returns the named field.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// RequiredFields lists the names of the required fields in declaration order.
func (s Schema) RequiredFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// Input is the raw, string-valued form data submitted for one evaluation.
type Input struct {
	Values map[string]string   `json:"values"`
	Rows   []map[string]string `json:"rows,omitempty"`
}

// Get returns the trimmed raw value of a field.
func (in Input) Get(name string) string {
	if in.Values == nil {
		return ""
	}
	return strings.TrimSpace(in.Values[name])
}

// Key returns a canonical string for the input, independent of map order.
// Names and values are quoted, so distinct inputs never share a key.
func (in Input) Key() string {
	var b strings.Builder
	writeSorted(&b, in.Values)
	for _, row := range in.Rows {
		b.WriteString("|")
		writeSorted(&b, row)
	}
	return b.String()
}

func writeSorted(b *strings.Builder, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteString("{")
	for _, k := range keys {
		b.WriteString(strconv.Quote(k))
		b.WriteString(":")
		b.WriteString(strconv.Quote(strings.TrimSpace(m[k])))
		b.WriteString(",")
	}
	b.WriteString("}")
}

// Float64 returns a pointer to v, used for optional schema bounds.
func Float64(v float64) *float64 {
	return &v
}
