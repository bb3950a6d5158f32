package calculator

import (
	"strconv"

	"github.com/montanaflynn/stats"

	"github.com/uro-calc-engine/internal/domain"
	"github.com/uro-calc-engine/internal/engine"
)

// Night runs from 22:00 to 05:59.
const (
	nightStartHour = 22
	nightEndHour   = 6
	minDiaryRows   = 3
)

// Voiding diary categories
var (
	DayFrequencyNormal    = domain.NewCategory("day_frequency_normal", "Normal Daytime Frequency", domain.SeverityNormal)
	DayFrequencyIncreased = domain.NewCategory("day_frequency_increased", "Increased Daytime Frequency", domain.SeverityMild)

	NocturiaNone     = domain.NewCategory("nocturia_none", "No Nocturia", domain.SeverityNormal)
	NocturiaMild     = domain.NewCategory("nocturia_mild", "Mild Nocturia", domain.SeverityMild)
	NocturiaModerate = domain.NewCategory("nocturia_moderate", "Moderate Nocturia", domain.SeverityModerate)
	NocturiaSevere   = domain.NewCategory("nocturia_severe", "Severe Nocturia", domain.SeveritySevere)

	DiaryCapacityReduced   = domain.NewCategory("diary_capacity_reduced", "Reduced Capacity", domain.SeverityModerate)
	DiaryCapacityLowNormal = domain.NewCategory("diary_capacity_low_normal", "Low Normal Capacity", domain.SeverityMild)
	DiaryCapacityNormal    = domain.NewCategory("diary_capacity_normal", "Normal Capacity", domain.SeverityNormal)

	UrgencyLow      = domain.NewCategory("urgency_low", "Low Urgency", domain.SeverityLow)
	UrgencyModerate = domain.NewCategory("urgency_moderate", "Moderate Urgency", domain.SeverityModerate)
	UrgencyHigh     = domain.NewCategory("urgency_high", "High Urgency", domain.SeverityHigh)

	NocturnalVolumeNormal = domain.NewCategory("npi_normal", "Normal Nocturnal Volume", domain.SeverityNormal)
	NocturnalPolyuria     = domain.NewCategory("npi_polyuria", "Nocturnal Polyuria", domain.SeverityModerate)
)

var dayFrequencyBands = engine.MustBands("day_voids",
	engine.AtMost(8.0, DayFrequencyNormal),
	engine.Above(DayFrequencyIncreased),
)

var nocturiaBands = engine.MustBands("night_voids",
	engine.AtMost(0.0, NocturiaNone),
	engine.AtMost(1.0, NocturiaMild),
	engine.AtMost(3.0, NocturiaModerate),
	engine.Above(NocturiaSevere),
)

var diaryCapacityBands = engine.MustBands("functional_capacity_ml",
	engine.Below(150.0, DiaryCapacityReduced),
	engine.Below(300.0, DiaryCapacityLowNormal),
	engine.Above(DiaryCapacityNormal),
)

var urgencyBands = engine.MustBands("urgency_index",
	engine.Below(2.0, UrgencyLow),
	engine.Below(3.5, UrgencyModerate),
	engine.Above(UrgencyHigh),
)

// Nocturnal polyuria index: night volume as a percentage of the total.
var npiBands = engine.MustBands("nocturnal_polyuria_index",
	engine.AtMost(33.0, NocturnalVolumeNormal),
	engine.Above(NocturnalPolyuria),
)

var diaryGuide = engine.Guide{
	DayFrequencyNormal.Code: {
		Interpretation: []string{"Daytime voiding frequency is within normal limits (8 or fewer)."},
	},
	DayFrequencyIncreased.Code: {
		Interpretation:  []string{"More than 8 daytime voids suggests urinary frequency."},
		Recommendations: []string{"Review fluid intake and bladder irritants.", "Consider bladder training with scheduled voiding."},
		Treatment:       []string{"Bladder retraining", "Antimuscarinics or beta-3 agonists if overactive bladder is confirmed"},
	},
	NocturiaNone.Code: {
		Interpretation: []string{"No night-time voids were recorded."},
	},
	NocturiaMild.Code: {
		Interpretation:  []string{"One void per night is common and usually not bothersome."},
		Recommendations: []string{"Limit fluids in the two hours before bed."},
	},
	NocturiaModerate.Code: {
		Interpretation:  []string{"Two to three voids per night is clinically relevant nocturia."},
		Recommendations: []string{"Reduce evening fluids, caffeine and alcohol.", "Screen for sleep apnoea and peripheral oedema."},
		FollowUp:        []string{"Repeat the diary after lifestyle changes."},
	},
	NocturiaSevere.Code: {
		Interpretation:  []string{"Four or more voids per night is severe nocturia."},
		Recommendations: []string{"Evaluate for nocturnal polyuria, sleep disorders and bladder outlet obstruction."},
		Treatment:       []string{"Treat the underlying cause", "Desmopressin in selected patients"},
		FollowUp:        []string{"Urology review within 6 weeks."},
	},
	DiaryCapacityReduced.Code: {
		Interpretation:  []string{"The largest recorded void is under 150 mL, indicating reduced functional capacity."},
		Recommendations: []string{"Assess for overactive bladder, infection or bladder pain syndrome."},
		Treatment:       []string{"Bladder retraining"},
	},
	DiaryCapacityLowNormal.Code: {
		Interpretation:  []string{"The largest recorded void is 150-299 mL, low normal functional capacity."},
		Recommendations: []string{"Try gradually extending the interval between voids."},
	},
	DiaryCapacityNormal.Code: {
		Interpretation: []string{"The largest recorded void is 300 mL or more, a normal functional capacity."},
	},
	UrgencyLow.Code: {
		Interpretation: []string{"Average urgency is low."},
	},
	UrgencyModerate.Code: {
		Interpretation:  []string{"Average urgency is moderate."},
		Recommendations: []string{"Urge suppression techniques and pelvic floor exercises."},
	},
	UrgencyHigh.Code: {
		Interpretation:  []string{"Average urgency is high, consistent with overactive bladder."},
		Recommendations: []string{"Discuss overactive bladder treatment with a clinician."},
		Treatment:       []string{"Antimuscarinics", "Beta-3 agonists"},
	},
	NocturnalVolumeNormal.Code: {
		Interpretation: []string{"Night-time urine is 33% or less of the daily volume."},
	},
	NocturnalPolyuria.Code: {
		Interpretation:  []string{"More than 33% of the daily volume is produced at night (nocturnal polyuria)."},
		Recommendations: []string{"Check for heart failure, sleep apnoea and evening fluid or diuretic use."},
		Treatment:       []string{"Shift fluid intake earlier in the day", "Desmopressin in selected patients"},
	},
}

// VoidingDiary summarises a bladder diary of timed voids.
type VoidingDiary struct{}

func (VoidingDiary) Schema() domain.Schema {
	return domain.Schema{
		Name:        "voiding-diary",
		Title:       "Voiding Diary Analysis",
		Description: "Frequency, nocturia, capacity and urgency from a bladder diary.",
		Fields: []domain.Field{
			{
				Name:     "entries",
				Label:    "Diary entries",
				Kind:     domain.FieldRepeated,
				Required: true,
				MinRows:  minDiaryRows,
				Columns: []domain.Field{
					{Name: "time", Label: "Time", Kind: domain.FieldTime, Required: true, Hint: "HH:MM"},
					bounded(number("volume", "Volume", "mL", "0-1000", true), 0, 1000),
					bounded(number("urgency", "Urgency", "", "1-5", false), 1, 5),
				},
			},
		},
	}
}

func (c VoidingDiary) Evaluate(v *engine.Values) (*domain.ResultRecord, error) {
	rows := v.Rows()
	nearZero := v.Options().NearZero

	var volumes, urgencies stats.Float64Data
	var dayVoids, nightVoids int
	nightVolume := 0.0
	for _, row := range rows {
		volume, _ := row.Float("volume")
		volumes = append(volumes, volume)
		if u, ok := row.Float("urgency"); ok {
			urgencies = append(urgencies, u)
		}
		if isNight(row.Hour("time")) {
			nightVoids++
			nightVolume += volume
		} else {
			dayVoids++
		}
	}

	total, err := volumes.Sum()
	if err != nil {
		return nil, err
	}
	average, err := volumes.Mean()
	if err != nil {
		return nil, err
	}
	capacity, err := volumes.Max()
	if err != nil {
		return nil, err
	}

	inputs := v.Raw()
	inputs["entries"] = strconv.Itoa(len(rows))

	b := engine.NewBuilder(c.Schema().Name, inputs)
	b.Metric("total_volume", "Total voided volume", "mL", total)
	b.Metric("average_volume", "Average voided volume", "mL", average)
	b.Metric("functional_capacity", "Functional capacity", "mL", capacity)
	b.Metric("day_voids", "Daytime voids", "", float64(dayVoids))
	b.Metric("night_voids", "Night-time voids", "", float64(nightVoids))

	efficiency, err := engine.Percent(average, capacity, nearZero)
	b.Derived("voiding_efficiency", "Voiding efficiency", "%", efficiency, err)

	b.Classify("day_frequency", dayFrequencyBands, diaryGuide, float64(dayVoids))
	nocturia := b.Classify("nocturia", nocturiaBands, diaryGuide, float64(nightVoids))
	b.Classify("capacity", diaryCapacityBands, diaryGuide, capacity)

	if len(urgencies) > 0 {
		urgency, err := urgencies.Mean()
		if err != nil {
			return nil, err
		}
		b.Metric("urgency_index", "Urgency index", "", urgency)
		b.Classify("urgency", urgencyBands, diaryGuide, urgency)
	} else {
		b.Undefined("urgency_index", "Urgency index", "")
		b.CannotCompute("urgency")
	}

	npi, err := engine.Percent(nightVolume, total, nearZero)
	if b.Derived("nocturnal_polyuria_index", "Nocturnal polyuria index", "%", npi, err) {
		b.Classify("nocturnal_polyuria", npiBands, diaryGuide, npi)
	} else {
		b.CannotCompute("nocturnal_polyuria")
	}

	b.Summary("%d voids (%d day, %d night), %.0f mL total, capacity %.0f mL (%s)",
		len(rows), dayVoids, nightVoids, total, capacity, nocturia.Label)
	return b.Build(), nil
}

func (VoidingDiary) Tables() []engine.TableInfo {
	return describe(dayFrequencyBands, nocturiaBands, diaryCapacityBands, urgencyBands, npiBands)
}

func isNight(hour int) bool {
	return hour >= nightStartHour || hour < nightEndHour
}
