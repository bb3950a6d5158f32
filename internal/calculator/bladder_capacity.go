package calculator

import (
	"strconv"

	"github.com/uro-calc-engine/internal/domain"
	"github.com/uro-calc-engine/internal/engine"
)

// Documented defaults for the optional bladder inputs.
const (
	DefaultDailyVoids  = 8
	DefaultFluidIntake = 2000
)

// Bladder capacity categories
var (
	CapacityIncreased         = domain.NewCategory("capacity_increased", "Increased Capacity", domain.SeverityMild)
	CapacityNormal            = domain.NewCategory("capacity_normal", "Normal Capacity", domain.SeverityNormal)
	CapacityMildlyReduced     = domain.NewCategory("capacity_mildly_reduced", "Mildly Reduced Capacity", domain.SeverityMild)
	CapacityModeratelyReduced = domain.NewCategory("capacity_moderately_reduced", "Moderately Reduced Capacity", domain.SeverityModerate)
	CapacitySeverelyReduced   = domain.NewCategory("capacity_severely_reduced", "Severely Reduced Capacity", domain.SeveritySevere)
	ResidualNormal            = domain.NewCategory("pvr_normal", "Normal Residual", domain.SeverityNormal)
	ResidualElevated          = domain.NewCategory("pvr_elevated", "Elevated Residual", domain.SeverityModerate)
	ResidualRetention         = domain.NewCategory("pvr_retention", "Significant Retention", domain.SeveritySevere)
	VoidFrequencyNormal       = domain.NewCategory("void_frequency_normal", "Normal Frequency", domain.SeverityNormal)
	VoidFrequencyIncreased    = domain.NewCategory("void_frequency_increased", "Increased Frequency", domain.SeverityMild)
)

// capacityRange is the normal functional capacity window in mL.
type capacityRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Normal ranges by gender, each split at age 65.
var capacityRanges = map[string]engine.Bands[capacityRange]{
	"male": engine.MustBands("male_capacity_range",
		engine.Below(65.0, capacityRange{Min: 300, Max: 600}),
		engine.Above(capacityRange{Min: 250, Max: 500}),
	),
	"female": engine.MustBands("female_capacity_range",
		engine.Below(65.0, capacityRange{Min: 300, Max: 650}),
		engine.Above(capacityRange{Min: 250, Max: 550}),
	),
}

// Reduction below the normal minimum, in percent. Zero means within range.
var capacityReductionBands = engine.MustBands("capacity_reduction_percent",
	engine.AtMost(0.0, CapacityNormal),
	engine.Below(25.0, CapacityMildlyReduced),
	engine.Below(50.0, CapacityModeratelyReduced),
	engine.Above(CapacitySeverelyReduced),
)

var residualBands = engine.MustBands("post_void_residual_ml",
	engine.Below(50.0, ResidualNormal),
	engine.Below(200.0, ResidualElevated),
	engine.Above(ResidualRetention),
)

var dailyFrequencyBands = engine.MustBands("daily_voids",
	engine.AtMost(8.0, VoidFrequencyNormal),
	engine.Above(VoidFrequencyIncreased),
)

var bladderGuide = engine.Guide{
	CapacityIncreased.Code: {
		Interpretation:  []string{"Functional capacity is above the normal range for age and gender."},
		Recommendations: []string{"Check for reduced bladder sensation or an underactive detrusor.", "Try timed voiding every 3-4 hours."},
		FollowUp:        []string{"Review with a post-void residual measurement."},
	},
	CapacityNormal.Code: {
		Interpretation:  []string{"Functional bladder capacity is within the normal range for age and gender."},
		Recommendations: []string{"Maintain regular fluid intake and voiding habits."},
	},
	CapacityMildlyReduced.Code: {
		Interpretation:  []string{"Functional capacity is up to 25% below the normal minimum."},
		Recommendations: []string{"Bladder training with gradually longer intervals between voids.", "Limit bladder irritants such as caffeine."},
		Treatment:       []string{"Bladder retraining", "Pelvic floor exercises"},
		FollowUp:        []string{"Repeat a voiding diary in 6-8 weeks."},
	},
	CapacityModeratelyReduced.Code: {
		Interpretation:  []string{"Functional capacity is 25-50% below the normal minimum."},
		Recommendations: []string{"Assess for overactive bladder and urinary tract infection.", "Keep a 3-day voiding diary."},
		Treatment:       []string{"Bladder retraining", "Antimuscarinics or beta-3 agonists"},
		FollowUp:        []string{"Review in 4-6 weeks."},
	},
	CapacitySeverelyReduced.Code: {
		Interpretation:  []string{"Functional capacity is at least 50% below the normal minimum."},
		Recommendations: []string{"Refer to urology or urogynaecology.", "Consider urodynamic studies."},
		Treatment:       []string{"Specialist-directed therapy", "Intravesical botulinum toxin for refractory cases"},
		FollowUp:        []string{"Specialist review within 4 weeks."},
	},
}

var residualGuide = engine.Guide{
	ResidualNormal.Code: {
		Interpretation: []string{"Post-void residual is under 50 mL; the bladder empties well."},
	},
	ResidualElevated.Code: {
		Interpretation:  []string{"Post-void residual is 50-199 mL, indicating incomplete emptying."},
		Recommendations: []string{"Repeat the measurement; try double voiding."},
	},
	ResidualRetention.Code: {
		Interpretation:  []string{"Post-void residual is 200 mL or more, consistent with chronic retention."},
		Recommendations: []string{"Arrange prompt urology assessment.", "Check renal function."},
	},
}

var frequencyGuide = engine.Guide{
	VoidFrequencyNormal.Code: {
		Interpretation: []string{"Eight or fewer voids a day is a normal frequency."},
	},
	VoidFrequencyIncreased.Code: {
		Interpretation:  []string{"More than eight voids a day is increased urinary frequency."},
		Recommendations: []string{"Review total fluid intake and bladder irritants."},
	},
}

// BladderCapacity compares functional bladder capacity with age- and
// gender-specific normal ranges.
type BladderCapacity struct{}

func (BladderCapacity) Schema() domain.Schema {
	return domain.Schema{
		Name:        "bladder-capacity",
		Title:       "Bladder Capacity Calculator",
		Description: "Estimated and functional bladder capacity against age and gender norms.",
		Fields: []domain.Field{
			bounded(number("maxVoid", "Maximum voided volume", "mL", "100-800", true), 100, 800),
			withDefault(bounded(number("pvr", "Post-void residual", "mL", "0-500", false), 0, 500), "0"),
			bounded(number("age", "Age", "years", "18-100", true), 18, 100),
			genderField,
			withDefault(bounded(number("dailyVoids", "Voids per day", "", "4-20", false), 4, 20), strconv.Itoa(DefaultDailyVoids)),
			withDefault(bounded(number("fluidIntake", "Daily fluid intake", "mL", "500-5000", false), 500, 5000), strconv.Itoa(DefaultFluidIntake)),
		},
	}
}

func (c BladderCapacity) Evaluate(v *engine.Values) (*domain.ResultRecord, error) {
	maxVoid, pvr := v.Float("maxVoid"), v.Float("pvr")
	functional := maxVoid
	normal := engine.MustLookup(capacityRanges[v.Enum("gender")], v.Float("age"))
	nearZero := v.Options().NearZero

	b := engine.NewBuilder(c.Schema().Name, v.Raw())
	b.Metric("estimated_capacity", "Estimated capacity", "mL", maxVoid+pvr)
	b.Metric("functional_capacity", "Functional capacity", "mL", functional)
	b.Metric("normal_min", "Normal minimum", "mL", normal.Min)
	b.Metric("normal_max", "Normal maximum", "mL", normal.Max)

	var capacity domain.Category
	if functional > normal.Max {
		b.Metric("reduction_percent", "Reduction below normal", "%", 0)
		capacity = CapacityIncreased
		b.Category("capacity", capacity, bladderGuide)
	} else {
		reduction := 0.0
		if functional < normal.Min {
			r, err := engine.Percent(normal.Min-functional, normal.Min, nearZero)
			if err != nil {
				panic(err)
			}
			reduction = r
		}
		b.Metric("reduction_percent", "Reduction below normal", "%", reduction)
		capacity = b.Classify("capacity", capacityReductionBands, bladderGuide, reduction)
	}

	b.Classify("post_void_residual", residualBands, residualGuide, pvr)

	voids := v.Float("dailyVoids")
	expected, err := engine.Ratio(v.Float("fluidIntake"), voids, nearZero)
	b.Derived("expected_void_volume", "Expected volume per void", "mL", expected, err)
	b.Classify("frequency", dailyFrequencyBands, frequencyGuide, voids)

	b.Summary("functional capacity %.0f mL vs %.0f-%.0f mL (%s)", functional, normal.Min, normal.Max, capacity.Label)
	return b.Build(), nil
}

func (BladderCapacity) Tables() []engine.TableInfo {
	return describe(capacityRanges["male"], capacityRanges["female"], capacityReductionBands, residualBands, dailyFrequencyBands)
}
