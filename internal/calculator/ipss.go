package calculator

import (
	"fmt"

	"github.com/uro-calc-engine/internal/domain"
	"github.com/uro-calc-engine/internal/engine"
)

// IPSS symptom severity categories
var (
	IPSSMild     = domain.NewCategory("ipss_mild", "Mild", domain.SeverityMild)
	IPSSModerate = domain.NewCategory("ipss_moderate", "Moderate", domain.SeverityModerate)
	IPSSSevere   = domain.NewCategory("ipss_severe", "Severe", domain.SeveritySevere)
)

// IPSS quality-of-life categories
var (
	QoLSatisfied    = domain.NewCategory("qol_satisfied", "Satisfied", domain.SeverityNormal)
	QoLMixed        = domain.NewCategory("qol_mixed", "Mixed", domain.SeverityMild)
	QoLDissatisfied = domain.NewCategory("qol_dissatisfied", "Dissatisfied", domain.SeverityHigh)
)

// Totals are integers, so 0-7 mild, 8-19 moderate, 20-35 severe.
var ipssBands = engine.MustBands("ipss_total",
	engine.AtMost(7.0, IPSSMild),
	engine.AtMost(19.0, IPSSModerate),
	engine.Above(IPSSSevere),
)

var qolBands = engine.MustBands("ipss_qol",
	engine.AtMost(1.0, QoLSatisfied),
	engine.AtMost(3.0, QoLMixed),
	engine.Above(QoLDissatisfied),
)

var ipssGuide = engine.Guide{
	IPSSMild.Code: {
		Interpretation:  []string{"Mild lower urinary tract symptoms (IPSS 0-7)."},
		Recommendations: []string{"Watchful waiting with lifestyle advice.", "Reduce evening fluids, caffeine and alcohol."},
		Treatment:       []string{"Behavioural measures", "Bladder training"},
		FollowUp:        []string{"Repeat the questionnaire in 12 months."},
	},
	IPSSModerate.Code: {
		Interpretation:  []string{"Moderate lower urinary tract symptoms (IPSS 8-19)."},
		Recommendations: []string{"Discuss medical therapy with a clinician.", "Check urinalysis and PSA where appropriate."},
		Treatment:       []string{"Alpha-blockers", "5-alpha reductase inhibitors for enlarged glands", "Antimuscarinics for storage symptoms"},
		FollowUp:        []string{"Reassess 4-6 weeks after starting treatment."},
	},
	IPSSSevere.Code: {
		Interpretation:  []string{"Severe lower urinary tract symptoms (IPSS 20-35)."},
		Recommendations: []string{"Refer to urology.", "Assess flow rate and post-void residual."},
		Treatment:       []string{"Combination medical therapy", "Minimally invasive procedures", "Transurethral resection or enucleation"},
		FollowUp:        []string{"Specialist review within 6 weeks."},
	},
}

var qolGuide = engine.Guide{
	QoLSatisfied.Code: {
		Interpretation: []string{"Urinary symptoms have little effect on quality of life."},
	},
	QoLMixed.Code: {
		Interpretation:  []string{"Urinary symptoms have a mixed effect on quality of life."},
		Recommendations: []string{"Include bother in the treatment decision, not only the symptom score."},
	},
	QoLDissatisfied.Code: {
		Interpretation:  []string{"Urinary symptoms noticeably reduce quality of life."},
		Recommendations: []string{"Bother is high; treatment is reasonable even with a moderate symptom score."},
	},
}

var ipssQuestions = []string{
	"Incomplete emptying",
	"Frequency",
	"Intermittency",
	"Urgency",
	"Weak stream",
	"Straining",
	"Nocturia",
}

// Voiding questions are 1, 3, 5 and 6; storage questions are 2, 4 and 7.
var (
	ipssVoiding = []int{1, 3, 5, 6}
	ipssStorage = []int{2, 4, 7}
)

// IPSS scores the International Prostate Symptom Score and its independent
// quality-of-life question.
type IPSS struct{}

func (IPSS) Schema() domain.Schema {
	fields := make([]domain.Field, 0, len(ipssQuestions)+1)
	for i, q := range ipssQuestions {
		fields = append(fields, bounded(number(questionField(i+1), q, "", "0-5", true), 0, 5))
	}
	fields = append(fields, bounded(number("qol", "Quality of life", "", "0-6", true), 0, 6))
	return domain.Schema{
		Name:        "ipss",
		Title:       "International Prostate Symptom Score",
		Description: "Seven symptom questions scored 0-5 and one quality-of-life question scored 0-6.",
		Fields:      fields,
	}
}

func (c IPSS) Evaluate(v *engine.Values) (*domain.ResultRecord, error) {
	total := 0.0
	for i := range ipssQuestions {
		total += v.Float(questionField(i + 1))
	}
	voiding := sumQuestions(v, ipssVoiding)
	storage := sumQuestions(v, ipssStorage)
	qol := v.Float("qol")

	b := engine.NewBuilder(c.Schema().Name, v.Raw())
	b.Metric("total", "IPSS total", "points", total)
	b.Metric("voiding_subscore", "Voiding subscore", "points", voiding)
	b.Metric("storage_subscore", "Storage subscore", "points", storage)
	b.Metric("qol", "Quality of life", "points", qol)
	severity := b.Classify("severity", ipssBands, ipssGuide, total)
	b.Classify("quality_of_life", qolBands, qolGuide, qol)
	b.Summary("IPSS %.0f (%s), QoL %.0f", total, severity.Label, qol)
	return b.Build(), nil
}

func (IPSS) Tables() []engine.TableInfo {
	return describe(ipssBands, qolBands)
}

func questionField(n int) string {
	return fmt.Sprintf("q%d", n)
}

func sumQuestions(v *engine.Values, questions []int) float64 {
	sum := 0.0
	for _, q := range questions {
		sum += v.Float(questionField(q))
	}
	return sum
}
