package calculator

import (
	"math"

	"github.com/uro-calc-engine/internal/domain"
	"github.com/uro-calc-engine/internal/engine"
)

// PSA density categories
var (
	DensityLow          = domain.NewCategory("density_low", "Low", domain.SeverityLow)
	DensityIntermediate = domain.NewCategory("density_intermediate", "Intermediate", domain.SeverityModerate)
	DensityHigh         = domain.NewCategory("density_high", "High", domain.SeverityHigh)
)

// 0.15 itself is intermediate; only values above it are high.
var psaDensityBands = engine.MustBands("psa_density",
	engine.Below(0.10, DensityLow),
	engine.AtMost(0.15, DensityIntermediate),
	engine.Above(DensityHigh),
)

var psaDensityGuide = engine.Guide{
	DensityLow.Code: {
		Interpretation:  []string{"PSA density is below 0.10 ng/mL/mL; the PSA level is well explained by gland size."},
		Recommendations: []string{"Continue PSA monitoring at the usual interval."},
		FollowUp:        []string{"Repeat PSA in 12 months."},
	},
	DensityIntermediate.Code: {
		Interpretation:  []string{"PSA density is between 0.10 and 0.15 ng/mL/mL, a grey zone for clinically significant cancer."},
		Recommendations: []string{"Consider multiparametric MRI before deciding on biopsy.", "Repeat PSA to confirm the level."},
		FollowUp:        []string{"Repeat PSA in 3-6 months."},
	},
	DensityHigh.Code: {
		Interpretation:  []string{"PSA density is above 0.15 ng/mL/mL, associated with a higher likelihood of clinically significant cancer."},
		Recommendations: []string{"Refer to urology.", "Multiparametric MRI and targeted biopsy are usually advised."},
		FollowUp:        []string{"Specialist review within 4-6 weeks."},
	},
}

// PSADensity divides PSA by prostate volume.
type PSADensity struct{}

func (PSADensity) Schema() domain.Schema {
	return domain.Schema{
		Name:        "psa-density",
		Title:       "PSA Density Calculator",
		Description: "PSA divided by prostate volume, normalising PSA for gland size.",
		Fields: []domain.Field{
			bounded(number("psa", "PSA", "ng/mL", "0-100", true), 0, 100),
			bounded(number("volume", "Prostate volume", "mL", "10-200", true), 10, 200),
		},
	}
}

func (c PSADensity) Evaluate(v *engine.Values) (*domain.ResultRecord, error) {
	b := engine.NewBuilder(c.Schema().Name, v.Raw())
	density, err := engine.Ratio(v.Float("psa"), v.Float("volume"), v.Options().NearZero)
	if !b.Derived("psa_density", "PSA density", "ng/mL/mL", density, err) {
		b.CannotCompute("psa_density")
		b.Summary("PSA density cannot be computed")
		return b.Build(), nil
	}
	cat := b.Classify("psa_density", psaDensityBands, psaDensityGuide, density)
	b.Summary("PSA density %.3f ng/mL/mL (%s)", density, cat.Label)
	return b.Build(), nil
}

func (PSADensity) Tables() []engine.TableInfo {
	return describe(psaDensityBands)
}

// PSA velocity categories
var (
	VelocityNormal     = domain.NewCategory("velocity_normal", "Normal", domain.SeverityNormal)
	VelocityBorderline = domain.NewCategory("velocity_borderline", "Borderline", domain.SeverityMild)
	VelocityElevated   = domain.NewCategory("velocity_elevated", "Elevated", domain.SeverityHigh)
)

var psaVelocityBands = engine.MustBands("psa_velocity",
	engine.Below(0.35, VelocityNormal),
	engine.Below(0.75, VelocityBorderline),
	engine.Above(VelocityElevated),
)

var psaVelocityGuide = engine.Guide{
	VelocityNormal.Code: {
		Interpretation:  []string{"PSA is rising by less than 0.35 ng/mL per year, or not rising."},
		Recommendations: []string{"Continue routine PSA monitoring."},
		FollowUp:        []string{"Repeat PSA in 12 months."},
	},
	VelocityBorderline.Code: {
		Interpretation:  []string{"PSA is rising by 0.35-0.75 ng/mL per year."},
		Recommendations: []string{"Confirm the trend with a further measurement.", "Exclude infection or recent instrumentation."},
		FollowUp:        []string{"Repeat PSA in 6 months."},
	},
	VelocityElevated.Code: {
		Interpretation:  []string{"PSA is rising by 0.75 ng/mL per year or more, which warrants further assessment."},
		Recommendations: []string{"Refer to urology.", "Consider multiparametric MRI."},
		FollowUp:        []string{"Specialist review within 6 weeks."},
	},
}

// PSAVelocity measures the yearly rate of PSA change and its doubling time.
type PSAVelocity struct{}

func (PSAVelocity) Schema() domain.Schema {
	return domain.Schema{
		Name:        "psa-velocity",
		Title:       "PSA Velocity and Doubling Time",
		Description: "Yearly PSA change and doubling time between two measurements.",
		Fields: []domain.Field{
			bounded(number("initialPsa", "Initial PSA", "ng/mL", "0-100", true), 0, 100),
			bounded(number("currentPsa", "Current PSA", "ng/mL", "0-100", true), 0, 100),
			bounded(number("months", "Months between tests", "months", "3-60", true), 3, 60),
		},
	}
}

func (c PSAVelocity) Evaluate(v *engine.Values) (*domain.ResultRecord, error) {
	initial, current, months := v.Float("initialPsa"), v.Float("currentPsa"), v.Float("months")
	nearZero := v.Options().NearZero

	b := engine.NewBuilder(c.Schema().Name, v.Raw())
	velocity, err := engine.Ratio(current-initial, months/12, nearZero)
	if !b.Derived("velocity", "PSA velocity", "ng/mL/yr", velocity, err) {
		b.CannotCompute("velocity")
		b.Summary("PSA velocity cannot be computed")
		return b.Build(), nil
	}

	// Doubling time only exists for a rising, positive PSA.
	if initial > 0 && current > initial {
		dt, err := engine.Ratio(months*math.Ln2, math.Log(current/initial), nearZero)
		b.Derived("doubling_time", "PSA doubling time", "months", dt, err)
	} else {
		b.Undefined("doubling_time", "PSA doubling time", "months")
	}

	cat := b.Classify("velocity", psaVelocityBands, psaVelocityGuide, velocity)
	b.Summary("PSA velocity %.2f ng/mL/yr (%s)", velocity, cat.Label)
	return b.Build(), nil
}

func (PSAVelocity) Tables() []engine.TableInfo {
	return describe(psaVelocityBands)
}

// Free PSA categories
var (
	FreePSAHighProbability = domain.NewCategory("free_psa_high_probability", "High Probability", domain.SeverityHigh)
	FreePSAIntermediate    = domain.NewCategory("free_psa_intermediate", "Intermediate Probability", domain.SeverityModerate)
	FreePSALowProbability  = domain.NewCategory("free_psa_low_probability", "Low Probability", domain.SeverityLow)
)

// Lower free-to-total ratios carry the higher cancer probability.
var freePSABands = engine.MustBands("free_psa_percent",
	engine.Below(10.0, FreePSAHighProbability),
	engine.AtMost(25.0, FreePSAIntermediate),
	engine.Above(FreePSALowProbability),
)

var freePSAGuide = engine.Guide{
	FreePSAHighProbability.Code: {
		Interpretation:  []string{"Free PSA is under 10% of total PSA, associated with a higher probability of prostate cancer."},
		Recommendations: []string{"Refer to urology for MRI and biopsy discussion."},
		FollowUp:        []string{"Specialist review within 4-6 weeks."},
	},
	FreePSAIntermediate.Code: {
		Interpretation:  []string{"Free PSA is 10-25% of total PSA, an intermediate probability range."},
		Recommendations: []string{"Interpret together with PSA density, age and family history."},
		FollowUp:        []string{"Repeat PSA and free PSA in 3-6 months."},
	},
	FreePSALowProbability.Code: {
		Interpretation:  []string{"Free PSA is above 25% of total PSA, which favours a benign cause of PSA elevation."},
		Recommendations: []string{"Continue monitoring; benign prostatic enlargement is the likely cause."},
		FollowUp:        []string{"Repeat PSA in 12 months."},
	},
}

// FreePSA computes the free-to-total PSA percentage.
type FreePSA struct{}

func (FreePSA) Schema() domain.Schema {
	return domain.Schema{
		Name:        "free-psa",
		Title:       "Free PSA Ratio",
		Description: "Free PSA as a percentage of total PSA.",
		Fields: []domain.Field{
			bounded(number("totalPsa", "Total PSA", "ng/mL", "2-20", true), 2, 20),
			bounded(number("freePsa", "Free PSA", "ng/mL", "0-10", true), 0, 10),
		},
	}
}

func (c FreePSA) Evaluate(v *engine.Values) (*domain.ResultRecord, error) {
	b := engine.NewBuilder(c.Schema().Name, v.Raw())
	ratio, err := engine.Percent(v.Float("freePsa"), v.Float("totalPsa"), v.Options().NearZero)
	if !b.Derived("free_psa_percent", "Free PSA", "%", ratio, err) {
		b.CannotCompute("free_psa")
		b.Summary("free PSA ratio cannot be computed")
		return b.Build(), nil
	}
	cat := b.Classify("free_psa", freePSABands, freePSAGuide, ratio)
	b.Summary("free PSA %.1f%% (%s)", ratio, cat.Label)
	return b.Build(), nil
}

func (FreePSA) Tables() []engine.TableInfo {
	return describe(freePSABands)
}

// Age-specific PSA reference categories
var (
	PSAWithinRange      = domain.NewCategory("psa_within_range", "Within Age Range", domain.SeverityNormal)
	PSAMildlyElevated   = domain.NewCategory("psa_mildly_elevated", "Mildly Elevated for Age", domain.SeverityModerate)
	PSAMarkedlyElevated = domain.NewCategory("psa_markedly_elevated", "Markedly Elevated for Age", domain.SeverityHigh)
)

// psaAgeLimits is the upper reference PSA by age decade.
var psaAgeLimits = engine.MustBands("psa_age_upper_limit",
	engine.Below(50.0, 2.5),
	engine.Below(60.0, 3.5),
	engine.Below(70.0, 4.5),
	engine.Above(6.5),
)

var psaAgeRatioBands = engine.MustBands("psa_to_age_limit_ratio",
	engine.AtMost(1.0, PSAWithinRange),
	engine.AtMost(1.5, PSAMildlyElevated),
	engine.Above(PSAMarkedlyElevated),
)

var psaAgeGuide = engine.Guide{
	PSAWithinRange.Code: {
		Interpretation:  []string{"PSA is within the age-specific reference range."},
		Recommendations: []string{"Continue shared decision-making about periodic testing."},
		FollowUp:        []string{"Repeat PSA in 1-2 years."},
	},
	PSAMildlyElevated.Code: {
		Interpretation:  []string{"PSA is up to 1.5 times the age-specific upper limit."},
		Recommendations: []string{"Repeat PSA after excluding infection, ejaculation and recent cycling.", "Consider free PSA or PSA density."},
		FollowUp:        []string{"Repeat PSA in 6-12 weeks."},
	},
	PSAMarkedlyElevated.Code: {
		Interpretation:  []string{"PSA is more than 1.5 times the age-specific upper limit."},
		Recommendations: []string{"Refer to urology.", "Multiparametric MRI is usually the next step."},
		FollowUp:        []string{"Specialist review within 2 weeks."},
	},
}

// PSAAgeReference compares PSA with the age-specific upper reference limit.
type PSAAgeReference struct{}

func (PSAAgeReference) Schema() domain.Schema {
	return domain.Schema{
		Name:        "psa-age-reference",
		Title:       "Age-Specific PSA Reference",
		Description: "PSA compared with the upper reference limit for the patient's age.",
		Fields: []domain.Field{
			bounded(number("psa", "PSA", "ng/mL", "0-100", true), 0, 100),
			bounded(number("age", "Age", "years", "40-90", true), 40, 90),
		},
	}
}

func (c PSAAgeReference) Evaluate(v *engine.Values) (*domain.ResultRecord, error) {
	psa := v.Float("psa")
	limit := engine.MustLookup(psaAgeLimits, v.Float("age"))

	b := engine.NewBuilder(c.Schema().Name, v.Raw())
	b.Metric("age_upper_limit", "Age-specific upper limit", "ng/mL", limit)
	ratio, err := engine.Ratio(psa, limit, v.Options().NearZero)
	b.Derived("limit_ratio", "PSA / upper limit", "", ratio, err)
	cat := b.Classify("psa_for_age", psaAgeRatioBands, psaAgeGuide, ratio)
	b.Summary("PSA %.2f vs limit %.1f ng/mL (%s)", psa, limit, cat.Label)
	return b.Build(), nil
}

func (PSAAgeReference) Tables() []engine.TableInfo {
	return describe(psaAgeLimits, psaAgeRatioBands)
}
