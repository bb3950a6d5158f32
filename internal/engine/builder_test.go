package engine

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uro-calc-engine/internal/domain"
)

var (
	testLow  = domain.NewCategory("t_low", "Low", domain.SeverityLow)
	testHigh = domain.NewCategory("t_high", "High", domain.SeverityHigh)
)

var testBands = MustBands("t", Below(1.0, testLow), Above(testHigh))

var testGuide = Guide{
	testLow.Code:  {Interpretation: []string{"low"}},
	testHigh.Code: {Interpretation: []string{"high"}, FollowUp: []string{"soon"}},
}

func TestBuilderClassify(t *testing.T) {
	inputs := map[string]string{"x": "2"}
	b := NewBuilder("calc", inputs)
	b.Metric("x", "X", "mL", 2)
	cat := b.Classify("level", testBands, testGuide, 2)
	b.Summary("x=%d", 2)
	r := b.Build()

	assert.Equal(t, testHigh, cat)
	assert.Equal(t, "calc", r.Calculator)
	assert.Equal(t, "x=2", r.Summary)
	require.Len(t, r.Classifications, 1)
	assert.Equal(t, "level", r.Classifications[0].Dimension)
	assert.Equal(t, []string{"soon"}, r.Classifications[0].Guidance.FollowUp)

	m, ok := r.Metric("x")
	require.True(t, ok)
	assert.True(t, m.Defined)

	inputs["x"] = "changed"
	assert.Equal(t, "2", r.Inputs["x"], "record keeps its own copy of the inputs")
}

func TestBuilderUndefinedValueIsCannotCompute(t *testing.T) {
	b := NewBuilder("calc", nil)
	cat := b.Classify("level", testBands, testGuide, math.NaN())
	r := b.Build()

	assert.Equal(t, domain.CannotCompute, cat)
	assert.Equal(t, domain.CannotComputeGuidance, r.Classifications[0].Guidance)
}

func TestBuilderDerived(t *testing.T) {
	b := NewBuilder("calc", nil)

	v, err := Ratio(1, 2, DefaultNearZero)
	assert.True(t, b.Derived("half", "Half", "", v, err))

	v, err = Ratio(1, 0, DefaultNearZero)
	assert.False(t, b.Derived("broken", "Broken", "", v, err))

	r := b.Build()
	half, _ := r.Metric("half")
	broken, _ := r.Metric("broken")
	assert.True(t, half.Defined)
	assert.Equal(t, 0.5, half.Value)
	assert.False(t, broken.Defined)

	assert.Panics(t, func() {
		b.Derived("bad", "Bad", "", 0, fmt.Errorf("boom"))
	})
}

func TestGuideMissingCategoryPanics(t *testing.T) {
	other := domain.NewCategory("other", "Other", domain.SeverityMild)
	assert.Panics(t, func() { testGuide.For(other) })
	assert.NotPanics(t, func() { Guide(nil).For(domain.CannotCompute) })
}

func TestGuideReturnsCopy(t *testing.T) {
	set := testGuide.For(testLow)
	set.Interpretation[0] = "mutated"
	assert.Equal(t, "low", testGuide.For(testLow).Interpretation[0])
}

func TestMustLookup(t *testing.T) {
	points := MustBands("p", Below(10.0, 0), Above(5))
	assert.Equal(t, 5, MustLookup(points, 12))
	assert.Panics(t, func() { MustLookup(points, math.Inf(1)) })
}

func TestBuildIsIndependentOfBuilder(t *testing.T) {
	b := NewBuilder("calc", nil)
	b.Metric("a", "A", "", 1)
	first := b.Build()
	b.Summary("later")
	assert.Empty(t, first.Summary)
}
