package calculator

import (
	"github.com/uro-calc-engine/internal/domain"
	"github.com/uro-calc-engine/internal/engine"
)

const maxComorbidityPoints = 3

// Comprehensive assessment categories
var (
	CancerRiskLow          = domain.NewCategory("cancer_low", "Low Cancer Risk", domain.SeverityLow)
	CancerRiskIntermediate = domain.NewCategory("cancer_intermediate", "Intermediate Cancer Risk", domain.SeverityModerate)
	CancerRiskHigh         = domain.NewCategory("cancer_high", "High Cancer Risk", domain.SeverityHigh)
	CancerRiskVeryHigh     = domain.NewCategory("cancer_very_high", "Very High Cancer Risk", domain.SeveritySevere)

	BPHRiskLow      = domain.NewCategory("bph_low", "Low Progression Risk", domain.SeverityLow)
	BPHRiskModerate = domain.NewCategory("bph_moderate", "Moderate Progression Risk", domain.SeverityModerate)
	BPHRiskHigh     = domain.NewCategory("bph_high", "High Progression Risk", domain.SeverityHigh)

	SurgicalRiskLow      = domain.NewCategory("surgical_low", "Low Surgical Risk", domain.SeverityLow)
	SurgicalRiskModerate = domain.NewCategory("surgical_moderate", "Moderate Surgical Risk", domain.SeverityModerate)
	SurgicalRiskHigh     = domain.NewCategory("surgical_high", "High Surgical Risk", domain.SeverityHigh)
)

// Cancer score contributions
var (
	densityPoints = engine.MustBands("density_points",
		engine.Below(0.10, 0),
		engine.AtMost(0.15, 1),
		engine.AtMost(0.20, 2),
		engine.Above(3),
	)
	cancerAgePoints = engine.MustBands("cancer_age_points",
		engine.Below(50.0, 0),
		engine.Below(60.0, 1),
		engine.Below(70.0, 2),
		engine.Above(3),
	)
	piradsPoints = engine.MustBands("pirads_points",
		engine.AtMost(2.0, 0),
		engine.AtMost(3.0, 1),
		engine.AtMost(4.0, 3),
		engine.Above(4),
	)
	ipssPoints = engine.MustBands("ipss_points",
		engine.Below(20.0, 0),
		engine.Above(1),
	)
	surgicalAgePoints = engine.MustBands("surgical_age_points",
		engine.Below(65.0, 0),
		engine.Below(75.0, 1),
		engine.Above(2),
	)
)

var biopsyPoints = map[string]int{
	"none":     0,
	"negative": -1,
	"atypical": 2,
}

const (
	cancerFamilyHistoryPoints = 2
	abnormalDREPoints         = 2
)

var cancerRiskBands = engine.MustBands("cancer_score",
	engine.Below(2.0, CancerRiskLow),
	engine.Below(5.0, CancerRiskIntermediate),
	engine.Below(8.0, CancerRiskHigh),
	engine.Above(CancerRiskVeryHigh),
)

var bphRiskBands = engine.MustBands("bph_volume_ml",
	engine.Below(40.0, BPHRiskLow),
	engine.Below(80.0, BPHRiskModerate),
	engine.Above(BPHRiskHigh),
)

var surgicalRiskBands = engine.MustBands("surgical_score",
	engine.Below(2.0, SurgicalRiskLow),
	engine.Below(4.0, SurgicalRiskModerate),
	engine.Above(SurgicalRiskHigh),
)

var comprehensiveGuide = engine.Guide{
	CancerRiskLow.Code: {
		Interpretation:  []string{"Combined factors indicate a low probability of clinically significant prostate cancer."},
		Recommendations: []string{"Continue routine PSA surveillance."},
		FollowUp:        []string{"Repeat PSA in 12 months."},
	},
	CancerRiskIntermediate.Code: {
		Interpretation:  []string{"Combined factors indicate an intermediate probability of prostate cancer."},
		Recommendations: []string{"Multiparametric MRI is advised if not already done.", "Shared decision making about biopsy."},
		FollowUp:        []string{"Repeat PSA in 3-6 months."},
	},
	CancerRiskHigh.Code: {
		Interpretation:  []string{"Combined factors indicate a high probability of prostate cancer."},
		Recommendations: []string{"Refer to urology.", "MRI-targeted biopsy is usually recommended."},
		FollowUp:        []string{"Specialist review within 4 weeks."},
	},
	CancerRiskVeryHigh.Code: {
		Interpretation:  []string{"Combined factors indicate a very high probability of prostate cancer."},
		Recommendations: []string{"Urgent urology referral.", "MRI-targeted biopsy and staging as indicated."},
		FollowUp:        []string{"Specialist review within 2 weeks."},
	},
	BPHRiskLow.Code: {
		Interpretation: []string{"Prostate volume under 40 mL carries a low risk of BPH progression."},
	},
	BPHRiskModerate.Code: {
		Interpretation:  []string{"Prostate volume of 40-79 mL carries a moderate risk of BPH progression."},
		Recommendations: []string{"Consider a 5-alpha reductase inhibitor if symptoms are bothersome."},
	},
	BPHRiskHigh.Code: {
		Interpretation:  []string{"Prostate volume of 80 mL or more carries a high risk of progression and retention."},
		Recommendations: []string{"Discuss combination therapy or surgical options with urology."},
		Treatment:       []string{"5-alpha reductase inhibitor with alpha-blocker", "HoLEP or simple prostatectomy"},
	},
	SurgicalRiskLow.Code: {
		Interpretation: []string{"Age and comorbidity indicate a low perioperative risk."},
	},
	SurgicalRiskModerate.Code: {
		Interpretation:  []string{"Age and comorbidity indicate a moderate perioperative risk."},
		Recommendations: []string{"Pre-operative assessment before any procedure."},
	},
	SurgicalRiskHigh.Code: {
		Interpretation:  []string{"Age and comorbidity indicate a high perioperative risk."},
		Recommendations: []string{"Favour minimally invasive or medical options.", "Anaesthetic review before surgery."},
	},
}

// ComprehensiveRisk combines PSA, gland size, age, symptoms and history into
// independent cancer, BPH progression and surgical risk assessments.
type ComprehensiveRisk struct{}

func (ComprehensiveRisk) Schema() domain.Schema {
	return domain.Schema{
		Name:        "comprehensive-risk",
		Title:       "Comprehensive Prostate Risk Assessment",
		Description: "Cancer, BPH progression and surgical risk from combined clinical factors.",
		Fields: []domain.Field{
			bounded(number("psa", "PSA", "ng/mL", "0-100", true), 0, 100),
			bounded(number("prostateVolume", "Prostate volume", "mL", "10-200", true), 10, 200),
			bounded(number("age", "Age", "years", "40-90", true), 40, 90),
			bounded(number("ipss", "IPSS total", "points", "0-35", true), 0, 35),
			flag("familyHistory", "Family history of prostate cancer"),
			enum("priorBiopsy", "Prior biopsy", false, "none", "none", "negative", "atypical"),
			enum("dre", "Digital rectal exam", false, "normal", "normal", "abnormal"),
			withDefault(bounded(number("pirads", "PI-RADS score", "", "0-5 (0 = not done)", false), 0, 5), "0"),
			withDefault(bounded(number("comorbidities", "Significant comorbidities", "", "0-10", false), 0, 10), "0"),
		},
	}
}

func (c ComprehensiveRisk) Evaluate(v *engine.Values) (*domain.ResultRecord, error) {
	psa, volume, age := v.Float("psa"), v.Float("prostateVolume"), v.Float("age")

	b := engine.NewBuilder(c.Schema().Name, v.Raw())

	score := 0
	density, err := engine.Ratio(psa, volume, v.Options().NearZero)
	densityDefined := b.Derived("psa_density", "PSA density", "ng/mL/mL", density, err)
	if densityDefined {
		score += engine.MustLookup(densityPoints, density)
	}

	score += engine.MustLookup(cancerAgePoints, age)
	if v.Bool("familyHistory") {
		score += cancerFamilyHistoryPoints
	}
	score += biopsyPoints[v.Enum("priorBiopsy")]
	if v.Enum("dre") == "abnormal" {
		score += abnormalDREPoints
	}
	score += engine.MustLookup(piradsPoints, v.Float("pirads"))
	score += engine.MustLookup(ipssPoints, v.Float("ipss"))

	comorbidities := min(max(v.Int("comorbidities"), 0), maxComorbidityPoints)
	surgical := engine.MustLookup(surgicalAgePoints, age) + comorbidities

	b.Metric("cancer_score", "Cancer risk score", "points", float64(score))
	b.Metric("surgical_score", "Surgical risk score", "points", float64(surgical))

	cancer := b.Classify("cancer_risk", cancerRiskBands, comprehensiveGuide, float64(score))
	bph := domain.CannotCompute
	if _, err := engine.Positive(volume, v.Options().NearZero); err == nil {
		bph = b.Classify("bph_progression", bphRiskBands, comprehensiveGuide, volume)
	} else {
		b.CannotCompute("bph_progression")
	}
	b.Classify("surgical_risk", surgicalRiskBands, comprehensiveGuide, float64(surgical))
	if densityDefined {
		b.Classify("psa_density", psaDensityBands, psaDensityGuide, density)
	} else {
		b.CannotCompute("psa_density")
	}

	if densityDefined {
		b.Summary("cancer score %d (%s), BPH %s", score, cancer.Label, bph.Label)
	} else {
		b.Summary("cancer score %d without PSA density (%s), BPH %s", score, cancer.Label, bph.Label)
	}
	return b.Build(), nil
}

func (ComprehensiveRisk) Tables() []engine.TableInfo {
	return describe(
		densityPoints, cancerAgePoints, piradsPoints, ipssPoints,
		cancerRiskBands, bphRiskBands, surgicalAgePoints, surgicalRiskBands,
	)
}
