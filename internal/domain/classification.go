package domain

// Metric is a named value derived from an input set.
type Metric struct {
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
	// Defined is false when the formula had no finite value for the inputs.
	// Value is then zero and must not be displayed.
	Defined bool `json:"defined"`
}

// Classification is the category matched for one classified dimension.
type Classification struct {
	Dimension string            `json:"dimension"`
	Category  Category          `json:"category"`
	Guidance  RecommendationSet `json:"guidance"`
}

// ResultRecord is the output of one evaluation.
type ResultRecord struct {
	Calculator      string            `json:"calculator"`
	Metrics         []Metric          `json:"metrics"`
	Classifications []Classification  `json:"classifications"`
	Inputs          map[string]string `json:"inputs,omitempty"`
	Summary         string            `json:"summary"`
}

// Metric returns the named metric.
func (r *ResultRecord) Metric(name string) (Metric, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Classification returns the classification for a dimension.
func (r *ResultRecord) Classification(dimension string) (Classification, bool) {
	for _, c := range r.Classifications {
		if c.Dimension == dimension {
			return c, true
		}
	}
	return Classification{}, false
}

// Category returns the category matched for a dimension, or the zero
// Category when the dimension was not classified.
func (r *ResultRecord) Category(dimension string) Category {
	c, _ := r.Classification(dimension)
	return c.Category
}

// Primary returns the first classification, which each calculator uses for
// its headline result.
func (r *ResultRecord) Primary() Classification {
	if len(r.Classifications) == 0 {
		return Classification{}
	}
	return r.Classifications[0]
}

// HighestSeverity returns the most severe category across all dimensions.
func (r *ResultRecord) HighestSeverity() Severity {
	highest := SeverityUndetermined
	for _, c := range r.Classifications {
		if c.Category.Severity.Rank() > highest.Rank() {
			highest = c.Category.Severity
		}
	}
	return highest
}

// LogFields returns structured logging fields for audit of one evaluation.
func (r *ResultRecord) LogFields() map[string]any {
	primary := r.Primary()
	return map[string]any{
		"calculator":       r.Calculator,
		"metric_count":     len(r.Metrics),
		"dimension_count":  len(r.Classifications),
		"primary_category": primary.Category.Code,
		"highest_severity": string(r.HighestSeverity()),
	}
}
