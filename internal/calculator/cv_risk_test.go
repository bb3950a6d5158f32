package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/uro-calc-engine/internal/domain"
)

func cvValues(overrides map[string]string) map[string]string {
	values := map[string]string{
		"gender": "male", "age": "55", "totalCholesterol": "210", "hdl": "45", "systolicBp": "135",
	}
	for k, v := range overrides {
		values[k] = v
	}
	return values
}

func TestCVRiskExample(t *testing.T) {
	r := evaluate(t, "cv-risk", cvValues(nil))

	assert.Equal(t, 5.0, metric(t, r, "age_points"))
	assert.Equal(t, 2.0, metric(t, r, "cholesterol_points"))
	assert.Equal(t, 0.0, metric(t, r, "hdl_points"))
	assert.Equal(t, 1.0, metric(t, r, "bp_points"))
	assert.Equal(t, 0.0, metric(t, r, "other_points"))
	assert.Equal(t, 8.0, metric(t, r, "total_points"))
	assert.Equal(t, 8.0, metric(t, r, "ten_year_risk"))
	assert.Equal(t, CVRiskIntermediate, r.Category("risk"))
	assert.Equal(t, "never", r.Inputs["smoking"])
}

func TestCVRiskFivePercentIsBorderline(t *testing.T) {
	// 4 + 1 + 0 + 0 + 1 (former smoker) = 6 points, 5% for men.
	r := evaluate(t, "cv-risk", cvValues(map[string]string{
		"age": "50", "totalCholesterol": "170", "hdl": "50", "systolicBp": "110", "smoking": "former",
	}))

	assert.Equal(t, 6.0, metric(t, r, "total_points"))
	assert.Equal(t, 5.0, metric(t, r, "ten_year_risk"))
	assert.Equal(t, CVRiskBorderline, r.Category("risk"))
}

func TestCVRiskRiskFactors(t *testing.T) {
	r := evaluate(t, "cv-risk", cvValues(map[string]string{
		"smoking": "current", "diabetes": "yes", "treatedHypertension": "true", "familyHistory": "1",
	}))

	// 8 base + 2 + 2 + 1 + 1
	assert.Equal(t, 6.0, metric(t, r, "other_points"))
	assert.Equal(t, 14.0, metric(t, r, "total_points"))
	assert.Equal(t, 26.0, metric(t, r, "ten_year_risk"))
	assert.Equal(t, CVRiskHigh, r.Category("risk"))
}

func TestCVRiskSexSpecificTables(t *testing.T) {
	male := evaluate(t, "cv-risk", cvValues(nil))
	female := evaluate(t, "cv-risk", cvValues(map[string]string{"gender": "female"}))

	assert.Equal(t, 4.0, metric(t, female, "age_points"))
	assert.Equal(t, 7.0, metric(t, female, "total_points"))
	assert.Equal(t, 4.0, metric(t, female, "ten_year_risk"))
	assert.Equal(t, CVRiskLow, female.Category("risk"))
	assert.Greater(t, metric(t, male, "ten_year_risk"), metric(t, female, "ten_year_risk"))
}

func TestCVRiskPointTables(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		points   string
		expected float64
	}{
		{"chol below 160", "totalCholesterol", "159", "cholesterol_points", 0},
		{"chol 160", "totalCholesterol", "160", "cholesterol_points", 1},
		{"chol 280", "totalCholesterol", "280", "cholesterol_points", 4},
		{"hdl 34", "hdl", "34", "hdl_points", 2},
		{"hdl 35", "hdl", "35", "hdl_points", 1},
		{"hdl 60 is protective", "hdl", "60", "hdl_points", -1},
		{"sbp 119", "systolicBp", "119", "bp_points", 0},
		{"sbp 160", "systolicBp", "160", "bp_points", 3},
		{"age 34", "age", "34", "age_points", 0},
		{"age 70", "age", "70", "age_points", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := evaluate(t, "cv-risk", cvValues(map[string]string{tt.key: tt.value}))
			assert.Equal(t, tt.expected, metric(t, r, tt.points))
		})
	}
}

func TestCVRiskPercentTablesCoverAllScores(t *testing.T) {
	for _, gender := range []string{"male", "female"} {
		table := cvRiskPercent[gender]
		prev := 0.0
		for points := -5; points <= 30; points++ {
			pct, err := table.Lookup(float64(points))
			assert.NoError(t, err)
			assert.GreaterOrEqual(t, pct, prev, "%s %d points", gender, points)
			prev = pct
		}
	}
	c, err := cvRiskBands.Lookup(7.5)
	assert.NoError(t, err)
	assert.Equal(t, CVRiskIntermediate, c)
	assert.Equal(t, domain.SeverityModerate, c.Severity)
}
