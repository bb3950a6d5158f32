package domain

import (
	"testing"
)

func TestSeverityConstants(t *testing.T) {
	tests := []struct {
		name     string
		value    Severity
		expected string
		rank     int
	}{
		{"Normal", SeverityNormal, "normal", 0},
		{"Low", SeverityLow, "low", 1},
		{"Mild", SeverityMild, "mild", 2},
		{"Moderate", SeverityModerate, "moderate", 3},
		{"High", SeverityHigh, "high", 4},
		{"Severe", SeveritySevere, "severe", 5},
		{"Undetermined", SeverityUndetermined, "undetermined", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.value) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, string(tt.value))
			}
			if tt.value.Rank() != tt.rank {
				t.Errorf("Expected rank %d, got %d", tt.rank, tt.value.Rank())
			}
			if !tt.value.IsValid() {
				t.Errorf("Expected %s to be valid", tt.value)
			}
		})
	}

	if Severity("critical").IsValid() {
		t.Error("Expected unknown severity to be invalid")
	}
}

func TestSeverityRequiresFollowUp(t *testing.T) {
	tests := []struct {
		value    Severity
		expected bool
	}{
		{SeverityNormal, false},
		{SeverityMild, false},
		{SeverityModerate, true},
		{SeveritySevere, true},
		{SeverityUndetermined, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			if got := tt.value.RequiresFollowUp(); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestNewCategoryStyleFollowsSeverity(t *testing.T) {
	c := NewCategory("x", "X", SeverityHigh)
	if c.Style != SeverityHigh.Style() {
		t.Errorf("Expected style %q, got %q", SeverityHigh.Style(), c.Style)
	}
	if c.IsZero() {
		t.Error("Expected category with code to be non-zero")
	}
	if !(Category{}).IsZero() {
		t.Error("Expected empty category to be zero")
	}
}

func TestRecommendationSetClone(t *testing.T) {
	orig := RecommendationSet{
		Interpretation:  []string{"a"},
		Recommendations: []string{"b"},
	}
	cp := orig.Clone()
	cp.Interpretation[0] = "changed"

	if orig.Interpretation[0] != "a" {
		t.Errorf("Clone shares backing array with original")
	}
	if cp.Treatment != nil {
		t.Errorf("Expected nil Treatment to stay nil, got %v", cp.Treatment)
	}
	if (RecommendationSet{}).IsEmpty() != true {
		t.Error("Expected empty set to report IsEmpty")
	}
}

func TestResultRecordAccessors(t *testing.T) {
	mild := NewCategory("mild", "Mild", SeverityMild)
	severe := NewCategory("severe", "Severe", SeveritySevere)
	r := &ResultRecord{
		Calculator: "test",
		Metrics: []Metric{
			{Name: "volume", Value: 42, Defined: true},
		},
		Classifications: []Classification{
			{Dimension: "size", Category: mild},
			{Dimension: "risk", Category: severe},
			{Dimension: "density", Category: CannotCompute},
		},
	}

	m, ok := r.Metric("volume")
	if !ok || m.Value != 42 {
		t.Errorf("Expected volume metric 42, got %v (found=%v)", m.Value, ok)
	}
	if _, ok := r.Metric("missing"); ok {
		t.Error("Expected missing metric not to be found")
	}
	if r.Primary().Dimension != "size" {
		t.Errorf("Expected primary dimension size, got %s", r.Primary().Dimension)
	}
	if r.Category("risk").Code != "severe" {
		t.Errorf("Expected risk category severe, got %s", r.Category("risk").Code)
	}
	if !r.Category("nothing").IsZero() {
		t.Error("Expected unclassified dimension to give zero category")
	}
	if r.HighestSeverity() != SeveritySevere {
		t.Errorf("Expected highest severity severe, got %s", r.HighestSeverity())
	}

	fields := r.LogFields()
	if fields["primary_category"] != "mild" {
		t.Errorf("Expected primary_category mild, got %v", fields["primary_category"])
	}
}

func TestHighestSeverityOnlyUndetermined(t *testing.T) {
	r := &ResultRecord{Classifications: []Classification{{Dimension: "d", Category: CannotCompute}}}
	if r.HighestSeverity() != SeverityUndetermined {
		t.Errorf("Expected undetermined, got %s", r.HighestSeverity())
	}
	if (&ResultRecord{}).Primary().Dimension != "" {
		t.Error("Expected empty record to have empty primary")
	}
}

func TestInputKeyIsOrderIndependent(t *testing.T) {
	a := Input{Values: map[string]string{"age": "60", "psa": " 4.5 "}}
	b := Input{Values: map[string]string{"psa": "4.5", "age": "60"}}
	if a.Key() != b.Key() {
		t.Errorf("Expected equal keys, got %q and %q", a.Key(), b.Key())
	}

	c := Input{Values: map[string]string{"age": "61", "psa": "4.5"}}
	if a.Key() == c.Key() {
		t.Error("Expected different inputs to give different keys")
	}

	withRows := Input{Rows: []map[string]string{{"time": "08:00", "volume": "300"}}}
	if withRows.Key() == (Input{}).Key() {
		t.Error("Expected rows to contribute to the key")
	}
}

func TestInputKeySeparatorsInValues(t *testing.T) {
	pairs := [][2]Input{
		{
			{Values: map[string]string{"psa": "4.5", "volume": "30"}},
			{Values: map[string]string{"psa": "4.5;volume=30"}},
		},
		{
			{Values: map[string]string{"a": "1", "b": "2"}},
			{Values: map[string]string{"a": `1","b":"2`}},
		},
		{
			{Rows: []map[string]string{{"time": "08:00"}, {"time": "09:00"}}},
			{Rows: []map[string]string{{"time": "08:00}|{time:09:00"}}},
		},
	}
	for _, p := range pairs {
		if p[0].Key() == p[1].Key() {
			t.Errorf("Expected distinct keys, both were %q", p[0].Key())
		}
	}
}

func TestSchemaLookup(t *testing.T) {
	s := Schema{
		Name: "test",
		Fields: []Field{
			{Name: "a", Required: true},
			{Name: "b"},
			{Name: "c", Required: true, Kind: FieldEnum, Options: []string{"x", "y"}},
		},
	}

	if f, ok := s.Field("c"); !ok || !f.HasOption("y") || f.HasOption("z") {
		t.Errorf("Unexpected field lookup result: %+v (found=%v)", f, ok)
	}
	if _, ok := s.Field("zzz"); ok {
		t.Error("Expected unknown field not to be found")
	}

	req := s.RequiredFields()
	if len(req) != 2 || req[0] != "a" || req[1] != "c" {
		t.Errorf("Expected required fields [a c], got %v", req)
	}
}
