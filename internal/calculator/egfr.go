package calculator

import (
	"math"

	"github.com/uro-calc-engine/internal/domain"
	"github.com/uro-calc-engine/internal/engine"
)

// KDIGO GFR stages
var (
	StageG1  = domain.NewCategory("ckd_g1", "G1 Normal or High", domain.SeverityNormal)
	StageG2  = domain.NewCategory("ckd_g2", "G2 Mildly Decreased", domain.SeverityLow)
	StageG3a = domain.NewCategory("ckd_g3a", "G3a Mildly to Moderately Decreased", domain.SeverityMild)
	StageG3b = domain.NewCategory("ckd_g3b", "G3b Moderately to Severely Decreased", domain.SeverityModerate)
	StageG4  = domain.NewCategory("ckd_g4", "G4 Severely Decreased", domain.SeverityHigh)
	StageG5  = domain.NewCategory("ckd_g5", "G5 Kidney Failure", domain.SeveritySevere)
)

var egfrBands = engine.MustBands("egfr_ml_min_1_73m2",
	engine.Below(15.0, StageG5),
	engine.Below(30.0, StageG4),
	engine.Below(45.0, StageG3b),
	engine.Below(60.0, StageG3a),
	engine.Below(90.0, StageG2),
	engine.Above(StageG1),
)

var egfrGuide = engine.Guide{
	StageG1.Code: {
		Interpretation:  []string{"eGFR of 90 or more is normal kidney function."},
		Recommendations: []string{"No dose adjustment needed for renally cleared drugs."},
	},
	StageG2.Code: {
		Interpretation:  []string{"eGFR of 60-89 is mildly decreased; this is CKD only with other markers of kidney damage."},
		Recommendations: []string{"Check urine albumin-to-creatinine ratio.", "Control blood pressure."},
		FollowUp:        []string{"Repeat eGFR annually."},
	},
	StageG3a.Code: {
		Interpretation:  []string{"eGFR of 45-59 is mildly to moderately decreased (CKD G3a)."},
		Recommendations: []string{"Review nephrotoxic and renally cleared medication.", "Assess cardiovascular risk."},
		FollowUp:        []string{"Repeat eGFR every 6-12 months."},
	},
	StageG3b.Code: {
		Interpretation:  []string{"eGFR of 30-44 is moderately to severely decreased (CKD G3b)."},
		Recommendations: []string{"Adjust doses of renally cleared drugs.", "Avoid iodinated contrast where possible."},
		FollowUp:        []string{"Repeat eGFR every 3-6 months."},
	},
	StageG4.Code: {
		Interpretation:  []string{"eGFR of 15-29 is severely decreased (CKD G4)."},
		Recommendations: []string{"Refer to nephrology.", "Plan for renal replacement therapy."},
		FollowUp:        []string{"Nephrology review within 4 weeks."},
	},
	StageG5.Code: {
		Interpretation:  []string{"eGFR under 15 indicates kidney failure (CKD G5)."},
		Recommendations: []string{"Urgent nephrology referral.", "Dialysis or transplant planning."},
		FollowUp:        []string{"Immediate specialist review."},
	},
}

// ckdEPIParams are the sex-specific constants of the 2021 CKD-EPI equation.
type ckdEPIParams struct {
	kappa  float64
	alpha  float64
	factor float64
}

var ckdEPI = map[string]ckdEPIParams{
	"male":   {kappa: 0.9, alpha: -0.302, factor: 1},
	"female": {kappa: 0.7, alpha: -0.241, factor: 1.012},
}

// EGFR estimates glomerular filtration rate with the race-free CKD-EPI 2021
// creatinine equation.
type EGFR struct{}

func (EGFR) Schema() domain.Schema {
	return domain.Schema{
		Name:        "egfr",
		Title:       "eGFR Calculator (CKD-EPI 2021)",
		Description: "Estimated glomerular filtration rate from serum creatinine, age and sex.",
		Fields: []domain.Field{
			bounded(number("creatinine", "Serum creatinine", "mg/dL", "0.2-15", true), 0.2, 15),
			bounded(number("age", "Age", "years", "18-100", true), 18, 100),
			genderField,
		},
	}
}

func (c EGFR) Evaluate(v *engine.Values) (*domain.ResultRecord, error) {
	b := engine.NewBuilder(c.Schema().Name, v.Raw())
	egfr, err := CKDEPI2021(v.Float("creatinine"), v.Float("age"), v.Enum("gender"))
	if !b.Derived("egfr", "eGFR", "mL/min/1.73m²", egfr, err) {
		b.CannotCompute("ckd_stage")
		b.Summary("eGFR cannot be computed")
		return b.Build(), nil
	}
	stage := b.Classify("ckd_stage", egfrBands, egfrGuide, egfr)
	b.Summary("eGFR %.0f mL/min/1.73m² (%s)", egfr, stage.Label)
	return b.Build(), nil
}

func (EGFR) Tables() []engine.TableInfo {
	return describe(egfrBands)
}

// CKDEPI2021 returns eGFR in mL/min/1.73m². A non-positive creatinine has no
// value.
func CKDEPI2021(creatinine, age float64, gender string) (float64, error) {
	p, ok := ckdEPI[gender]
	if !ok || creatinine <= 0 {
		return engine.Finite(math.NaN())
	}
	r := creatinine / p.kappa
	egfr := 142 *
		math.Pow(math.Min(r, 1), p.alpha) *
		math.Pow(math.Max(r, 1), -1.200) *
		math.Pow(0.9938, age) *
		p.factor
	return engine.Finite(egfr)
}
