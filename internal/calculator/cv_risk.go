package calculator

import (
	"github.com/uro-calc-engine/internal/domain"
	"github.com/uro-calc-engine/internal/engine"
)

// Ten-year cardiovascular risk categories
var (
	CVRiskLow          = domain.NewCategory("cv_low", "Low Risk", domain.SeverityLow)
	CVRiskBorderline   = domain.NewCategory("cv_borderline", "Borderline Risk", domain.SeverityMild)
	CVRiskIntermediate = domain.NewCategory("cv_intermediate", "Intermediate Risk", domain.SeverityModerate)
	CVRiskHigh         = domain.NewCategory("cv_high", "High Risk", domain.SeverityHigh)
)

// Age points by sex. Women start scoring five years later and top out one
// point lower.
var cvAgePoints = map[string]engine.PointBands{
	"male": engine.MustBands("male_age_points",
		engine.Below(35.0, 0),
		engine.Below(40.0, 1),
		engine.Below(45.0, 2),
		engine.Below(50.0, 3),
		engine.Below(55.0, 4),
		engine.Below(60.0, 5),
		engine.Below(65.0, 6),
		engine.Below(70.0, 7),
		engine.Above(8),
	),
	"female": engine.MustBands("female_age_points",
		engine.Below(40.0, 0),
		engine.Below(45.0, 1),
		engine.Below(50.0, 2),
		engine.Below(55.0, 3),
		engine.Below(60.0, 4),
		engine.Below(65.0, 5),
		engine.Below(70.0, 6),
		engine.Above(7),
	),
}

var cholesterolPoints = engine.MustBands("total_cholesterol_points",
	engine.Below(160.0, 0),
	engine.Below(200.0, 1),
	engine.Below(240.0, 2),
	engine.Below(280.0, 3),
	engine.Above(4),
)

// HDL is protective, so the highest band subtracts a point.
var hdlPoints = engine.MustBands("hdl_points",
	engine.Below(35.0, 2),
	engine.Below(45.0, 1),
	engine.Below(60.0, 0),
	engine.Above(-1),
)

var systolicPoints = engine.MustBands("systolic_bp_points",
	engine.Below(120.0, 0),
	engine.Below(140.0, 1),
	engine.Below(160.0, 2),
	engine.Above(3),
)

var smokingPoints = map[string]int{
	"never":   0,
	"former":  1,
	"current": 2,
}

const (
	diabetesPoints      = 2
	hypertensionPoints  = 1
	familyHistoryPoints = 1
)

// Ten-year risk in percent by total points.
var cvRiskPercent = map[string]engine.Bands[float64]{
	"male": engine.MustBands("male_points_to_percent",
		engine.AtMost(1.0, 1.0),
		engine.AtMost(2.0, 2.0),
		engine.AtMost(3.0, 2.0),
		engine.AtMost(4.0, 3.0),
		engine.AtMost(5.0, 4.0),
		engine.AtMost(6.0, 5.0),
		engine.AtMost(7.0, 6.0),
		engine.AtMost(8.0, 8.0),
		engine.AtMost(9.0, 10.0),
		engine.AtMost(10.0, 12.0),
		engine.AtMost(11.0, 15.0),
		engine.AtMost(12.0, 18.0),
		engine.AtMost(13.0, 22.0),
		engine.AtMost(14.0, 26.0),
		engine.Above(30.0),
	),
	"female": engine.MustBands("female_points_to_percent",
		engine.AtMost(3.0, 1.0),
		engine.AtMost(4.0, 2.0),
		engine.AtMost(5.0, 2.0),
		engine.AtMost(6.0, 3.0),
		engine.AtMost(7.0, 4.0),
		engine.AtMost(8.0, 5.0),
		engine.AtMost(9.0, 6.0),
		engine.AtMost(10.0, 8.0),
		engine.AtMost(11.0, 10.0),
		engine.AtMost(12.0, 12.0),
		engine.AtMost(13.0, 15.0),
		engine.AtMost(14.0, 18.0),
		engine.AtMost(15.0, 22.0),
		engine.Above(27.0),
	),
}

var cvRiskBands = engine.MustBands("ten_year_risk_percent",
	engine.Below(5.0, CVRiskLow),
	engine.Below(7.5, CVRiskBorderline),
	engine.Below(20.0, CVRiskIntermediate),
	engine.Above(CVRiskHigh),
)

var cvRiskGuide = engine.Guide{
	CVRiskLow.Code: {
		Interpretation:  []string{"Estimated 10-year cardiovascular risk is below 5%."},
		Recommendations: []string{"Keep up a heart-healthy diet and regular activity.", "Avoid tobacco."},
		FollowUp:        []string{"Reassess risk factors every 4-6 years."},
	},
	CVRiskBorderline.Code: {
		Interpretation:  []string{"Estimated 10-year cardiovascular risk is 5% to under 7.5%."},
		Recommendations: []string{"Lifestyle changes targeting blood pressure, weight and cholesterol.", "Discuss risk enhancers such as family history."},
		Treatment:       []string{"Statin therapy may be considered if risk enhancers are present"},
		FollowUp:        []string{"Reassess in 1-2 years."},
	},
	CVRiskIntermediate.Code: {
		Interpretation:  []string{"Estimated 10-year cardiovascular risk is 7.5% to under 20%."},
		Recommendations: []string{"Discuss moderate-intensity statin therapy.", "Optimise blood pressure and glucose control.", "Stop smoking if applicable."},
		Treatment:       []string{"Moderate-intensity statin", "Antihypertensive therapy to target"},
		FollowUp:        []string{"Review lipids and blood pressure in 3 months."},
	},
	CVRiskHigh.Code: {
		Interpretation:  []string{"Estimated 10-year cardiovascular risk is 20% or more."},
		Recommendations: []string{"Start high-intensity statin therapy unless contraindicated.", "Aggressive management of every modifiable risk factor."},
		Treatment:       []string{"High-intensity statin", "Blood pressure control", "Smoking cessation support"},
		FollowUp:        []string{"Review within 4-6 weeks, then every 3 months."},
	},
}

// CVRisk estimates ten-year cardiovascular risk with a Framingham-style
// point score. Relevant before prescribing PDE5 inhibitors or androgen
// deprivation therapy.
type CVRisk struct{}

func (CVRisk) Schema() domain.Schema {
	return domain.Schema{
		Name:        "cv-risk",
		Title:       "Cardiovascular Risk Calculator",
		Description: "Ten-year cardiovascular risk from a sex-specific point score.",
		Fields: []domain.Field{
			genderField,
			bounded(number("age", "Age", "years", "20-79", true), 20, 79),
			bounded(number("totalCholesterol", "Total cholesterol", "mg/dL", "100-400", true), 100, 400),
			bounded(number("hdl", "HDL cholesterol", "mg/dL", "20-100", true), 20, 100),
			bounded(number("systolicBp", "Systolic blood pressure", "mmHg", "90-200", true), 90, 200),
			enum("smoking", "Smoking status", false, "never", "never", "former", "current"),
			flag("diabetes", "Diabetes"),
			flag("treatedHypertension", "On blood pressure treatment"),
			flag("familyHistory", "Premature family history of CVD"),
		},
	}
}

func (c CVRisk) Evaluate(v *engine.Values) (*domain.ResultRecord, error) {
	gender := v.Enum("gender")

	age := engine.MustLookup(cvAgePoints[gender], v.Float("age"))
	chol := engine.MustLookup(cholesterolPoints, v.Float("totalCholesterol"))
	hdl := engine.MustLookup(hdlPoints, v.Float("hdl"))
	bp := engine.MustLookup(systolicPoints, v.Float("systolicBp"))

	other := smokingPoints[v.Enum("smoking")]
	if v.Bool("diabetes") {
		other += diabetesPoints
	}
	if v.Bool("treatedHypertension") {
		other += hypertensionPoints
	}
	if v.Bool("familyHistory") {
		other += familyHistoryPoints
	}

	total := age + chol + hdl + bp + other
	risk := engine.MustLookup(cvRiskPercent[gender], float64(total))

	b := engine.NewBuilder(c.Schema().Name, v.Raw())
	b.Metric("age_points", "Age points", "points", float64(age))
	b.Metric("cholesterol_points", "Cholesterol points", "points", float64(chol))
	b.Metric("hdl_points", "HDL points", "points", float64(hdl))
	b.Metric("bp_points", "Blood pressure points", "points", float64(bp))
	b.Metric("other_points", "Other risk factor points", "points", float64(other))
	b.Metric("total_points", "Total points", "points", float64(total))
	b.Metric("ten_year_risk", "10-year risk", "%", risk)
	cat := b.Classify("risk", cvRiskBands, cvRiskGuide, risk)
	b.Summary("%d points, 10-year risk %.0f%% (%s)", total, risk, cat.Label)
	return b.Build(), nil
}

func (CVRisk) Tables() []engine.TableInfo {
	return describe(
		cvAgePoints["male"], cvAgePoints["female"],
		cholesterolPoints, hdlPoints, systolicPoints,
		cvRiskPercent["male"], cvRiskPercent["female"],
		cvRiskBands,
	)
}
