package calculator

import (
	"github.com/uro-calc-engine/internal/domain"
	"github.com/uro-calc-engine/internal/engine"
)

// Prostate size categories
var (
	ProstateNormal             = domain.NewCategory("prostate_normal", "Normal Size", domain.SeverityNormal)
	ProstateMildlyEnlarged     = domain.NewCategory("prostate_mildly_enlarged", "Mildly Enlarged", domain.SeverityMild)
	ProstateModeratelyEnlarged = domain.NewCategory("prostate_moderately_enlarged", "Moderately Enlarged", domain.SeverityModerate)
	ProstateSeverelyEnlarged   = domain.NewCategory("prostate_severely_enlarged", "Severely Enlarged", domain.SeveritySevere)
)

var prostateSizeBands = engine.MustBands("prostate_size_ml",
	engine.Below(30.0, ProstateNormal),
	engine.Below(50.0, ProstateMildlyEnlarged),
	engine.Below(80.0, ProstateModeratelyEnlarged),
	engine.Above(ProstateSeverelyEnlarged),
)

var prostateSizeGuide = engine.Guide{
	ProstateNormal.Code: {
		Interpretation:  []string{"Prostate volume is within the normal adult range (under 30 mL)."},
		Recommendations: []string{"No size-related action is needed.", "Continue routine checks appropriate for age."},
		FollowUp:        []string{"Re-measure only if urinary symptoms develop."},
	},
	ProstateMildlyEnlarged.Code: {
		Interpretation:  []string{"The prostate is mildly enlarged (30-49 mL), common with benign prostatic hyperplasia."},
		Recommendations: []string{"Track urinary symptoms with the IPSS questionnaire.", "Discuss lifestyle measures such as limiting evening fluids and caffeine."},
		Treatment:       []string{"Watchful waiting", "Alpha-blockers if symptoms are bothersome"},
		FollowUp:        []string{"Review in 12 months or sooner if symptoms change."},
	},
	ProstateModeratelyEnlarged.Code: {
		Interpretation:  []string{"The prostate is moderately enlarged (50-79 mL), which raises the risk of BPH progression."},
		Recommendations: []string{"See a urologist for a symptom and flow assessment.", "Check post-void residual volume."},
		Treatment:       []string{"Alpha-blockers", "5-alpha reductase inhibitors", "Combination therapy"},
		FollowUp:        []string{"Review in 6 months."},
	},
	ProstateSeverelyEnlarged.Code: {
		Interpretation:  []string{"The prostate is severely enlarged (80 mL or more)."},
		Recommendations: []string{"Arrange a urology referral.", "Assess for urinary retention and upper tract changes."},
		Treatment:       []string{"5-alpha reductase inhibitors", "Surgical options such as HoLEP or simple prostatectomy"},
		FollowUp:        []string{"Review within 3 months."},
	},
}

// ProstateVolume estimates gland volume with the ellipsoid formula from three
// orthogonal ultrasound diameters, and optionally the PSA density.
type ProstateVolume struct{}

func (ProstateVolume) Schema() domain.Schema {
	return domain.Schema{
		Name:        "prostate-volume",
		Title:       "Prostate Volume Calculator",
		Description: "Ellipsoid volume (π/6 × L × W × H) from transrectal ultrasound diameters.",
		Fields: []domain.Field{
			bounded(number("length", "Length", "mm", "20-80", true), 20, 80),
			bounded(number("width", "Width", "mm", "20-80", true), 20, 80),
			bounded(number("height", "Height", "mm", "15-70", true), 15, 70),
			bounded(number("psa", "PSA", "ng/mL", "0-100", false), 0, 100),
		},
	}
}

func (c ProstateVolume) Evaluate(v *engine.Values) (*domain.ResultRecord, error) {
	nearZero := v.Options().NearZero
	volume, err := engine.Positive(engine.EllipsoidVolume(v.Float("length"), v.Float("width"), v.Float("height")), nearZero)

	b := engine.NewBuilder(c.Schema().Name, v.Raw())
	if !b.Derived("volume", "Prostate volume", "mL", volume, err) {
		b.CannotCompute("size")
		if v.Has("psa") {
			b.Undefined("psa_density", "PSA density", "ng/mL/mL")
			b.CannotCompute("psa_density")
		}
		b.Summary("prostate volume cannot be computed from non-positive diameters")
		return b.Build(), nil
	}
	size := b.Classify("size", prostateSizeBands, prostateSizeGuide, volume)

	if v.Has("psa") {
		density, err := engine.Ratio(v.Float("psa"), volume, nearZero)
		if b.Derived("psa_density", "PSA density", "ng/mL/mL", density, err) {
			b.Classify("psa_density", psaDensityBands, psaDensityGuide, density)
		} else {
			b.CannotCompute("psa_density")
		}
	}

	b.Summary("volume %.1f mL (%s)", volume, size.Label)
	return b.Build(), nil
}

func (ProstateVolume) Tables() []engine.TableInfo {
	return describe(prostateSizeBands, psaDensityBands)
}
