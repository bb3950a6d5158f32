package calculator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uro-calc-engine/internal/domain"
)

func comprehensiveValues(overrides map[string]string) map[string]string {
	values := map[string]string{"psa": "3", "prostateVolume": "50", "age": "55", "ipss": "10"}
	for k, v := range overrides {
		values[k] = v
	}
	return values
}

func TestComprehensiveRiskAllFactors(t *testing.T) {
	r := evaluate(t, "comprehensive-risk", comprehensiveValues(map[string]string{
		"psa": "6", "prostateVolume": "40", "age": "65", "ipss": "22",
		"familyHistory": "yes", "dre": "abnormal", "pirads": "4",
	}))

	// density 0.15 (1) + age (2) + family (2) + DRE (2) + PI-RADS 4 (3) + IPSS (1)
	assert.Equal(t, 11.0, metric(t, r, "cancer_score"))
	assert.Equal(t, CancerRiskVeryHigh, r.Category("cancer_risk"))
	assert.Equal(t, BPHRiskModerate, r.Category("bph_progression"))
	assert.Equal(t, SurgicalRiskLow, r.Category("surgical_risk"))
	assert.Equal(t, DensityIntermediate, r.Category("psa_density"))
	assert.Equal(t, "cancer_risk", r.Primary().Dimension)
}

func TestComprehensiveRiskDefaults(t *testing.T) {
	r := evaluate(t, "comprehensive-risk", comprehensiveValues(nil))

	// density 0.06 (0) + age 55 (1)
	assert.Equal(t, 1.0, metric(t, r, "cancer_score"))
	assert.Equal(t, CancerRiskLow, r.Category("cancer_risk"))
	assert.Equal(t, "none", r.Inputs["priorBiopsy"])
	assert.Equal(t, "normal", r.Inputs["dre"])
	assert.Equal(t, "0", r.Inputs["pirads"])
}

func TestComprehensiveRiskBiopsyHistory(t *testing.T) {
	tests := []struct {
		biopsy   string
		expected float64
	}{
		{"none", 1},
		{"negative", 0},
		{"atypical", 3},
	}
	for _, tt := range tests {
		r := evaluate(t, "comprehensive-risk", comprehensiveValues(map[string]string{"priorBiopsy": tt.biopsy}))
		assert.Equal(t, tt.expected, metric(t, r, "cancer_score"), tt.biopsy)
	}
}

func TestComprehensiveRiskNonPositiveVolume(t *testing.T) {
	for _, volume := range []string{"0", "-20"} {
		t.Run(volume, func(t *testing.T) {
			r := evaluate(t, "comprehensive-risk", comprehensiveValues(map[string]string{"prostateVolume": volume, "psa": "4"}))

			m, ok := r.Metric("psa_density")
			require.True(t, ok)
			assert.False(t, m.Defined)
			assert.Equal(t, domain.CannotCompute, r.Category("psa_density"))
			assert.Equal(t, domain.CannotCompute, r.Category("bph_progression"))

			// Age 55 and IPSS 10 only; no density points.
			assert.Equal(t, 1.0, metric(t, r, "cancer_score"))
			assert.Equal(t, CancerRiskLow, r.Category("cancer_risk"))
			assert.Contains(t, r.Summary, "without PSA density")
		})
	}
}

func TestComprehensiveRiskMonotonicInDensity(t *testing.T) {
	prev := -1
	prevScore := -1.0
	for psa := 0.5; psa <= 20; psa += 0.5 {
		r := evaluate(t, "comprehensive-risk", comprehensiveValues(map[string]string{"psa": fmt.Sprintf("%.1f", psa)}))
		rank := r.Category("cancer_risk").Severity.Rank()
		score := metric(t, r, "cancer_score")
		assert.GreaterOrEqual(t, rank, prev, "psa %.1f", psa)
		assert.GreaterOrEqual(t, score, prevScore, "psa %.1f", psa)
		prev, prevScore = rank, score
	}
}

func TestComprehensiveRiskSurgical(t *testing.T) {
	tests := []struct {
		age, comorbidities string
		score              float64
		expected           domain.Category
	}{
		{"60", "0", 0, SurgicalRiskLow},
		{"65", "1", 2, SurgicalRiskModerate},
		{"75", "1", 3, SurgicalRiskModerate},
		{"80", "2", 4, SurgicalRiskHigh},
		{"80", "9", 5, SurgicalRiskHigh},
	}
	for _, tt := range tests {
		r := evaluate(t, "comprehensive-risk", comprehensiveValues(map[string]string{"age": tt.age, "comorbidities": tt.comorbidities}))
		assert.Equal(t, tt.score, metric(t, r, "surgical_score"), "age %s comorbidities %s", tt.age, tt.comorbidities)
		assert.Equal(t, tt.expected, r.Category("surgical_risk"))
	}
}

func TestComprehensiveRiskPIRADS(t *testing.T) {
	tests := []struct {
		pirads   string
		expected float64
	}{
		{"0", 1}, {"2", 1}, {"3", 2}, {"4", 4}, {"5", 5},
	}
	for _, tt := range tests {
		r := evaluate(t, "comprehensive-risk", comprehensiveValues(map[string]string{"pirads": tt.pirads}))
		assert.Equal(t, tt.expected, metric(t, r, "cancer_score"), "PI-RADS %s", tt.pirads)
	}
}
