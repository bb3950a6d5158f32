package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uro-calc-engine/internal/domain"
)

func TestProstateVolume(t *testing.T) {
	t.Run("volume only", func(t *testing.T) {
		r := evaluate(t, "prostate-volume", map[string]string{"length": "45", "width": "35", "height": "30"})

		assert.InDelta(t, 24.74, metric(t, r, "volume"), 0.01)
		assert.Equal(t, ProstateNormal, r.Category("size"))
		assert.Equal(t, "size", r.Primary().Dimension)

		_, hasDensity := r.Metric("psa_density")
		assert.False(t, hasDensity, "density is only derived when PSA is given")
	})

	t.Run("chained density", func(t *testing.T) {
		r := evaluate(t, "prostate-volume", map[string]string{"length": "45", "width": "35", "height": "30", "psa": "4.5"})

		volume := metric(t, r, "volume")
		assert.InDelta(t, 4.5/volume, metric(t, r, "psa_density"), 1e-12)
		assert.Equal(t, DensityHigh, r.Category("psa_density"))
	})

	t.Run("zero diameter", func(t *testing.T) {
		r := evaluate(t, "prostate-volume", map[string]string{"length": "0", "width": "35", "height": "30", "psa": "4"})

		volume, ok := r.Metric("volume")
		require.True(t, ok)
		assert.False(t, volume.Defined)
		assert.Equal(t, domain.CannotCompute, r.Category("size"))
		assert.Equal(t, "size", r.Primary().Dimension)
		m, ok := r.Metric("psa_density")
		require.True(t, ok)
		assert.False(t, m.Defined)
		assert.Equal(t, domain.CannotCompute, r.Category("psa_density"))
	})
}

func TestProstateSizeBoundaries(t *testing.T) {
	tests := []struct {
		volume   float64
		expected domain.Category
	}{
		{29.99, ProstateNormal},
		{30, ProstateMildlyEnlarged},
		{49.99, ProstateMildlyEnlarged},
		{50, ProstateModeratelyEnlarged},
		{80, ProstateSeverelyEnlarged},
	}
	for _, tt := range tests {
		got, err := prostateSizeBands.Lookup(tt.volume)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got, "volume %v", tt.volume)
	}
}

func TestPSADensity(t *testing.T) {
	tests := []struct {
		name     string
		psa      string
		volume   string
		expected domain.Category
	}{
		{"example is high", "4.5", "24.76", DensityHigh},
		{"low", "2", "40", DensityLow},
		{"0.10 is intermediate", "4", "40", DensityIntermediate},
		{"0.15 is intermediate", "1.5", "10", DensityIntermediate},
		{"just above 0.15 is high", "1.51", "10", DensityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := evaluate(t, "psa-density", map[string]string{"psa": tt.psa, "volume": tt.volume})
			assert.Equal(t, tt.expected, r.Category("psa_density"))
		})
	}

	r := evaluate(t, "psa-density", map[string]string{"psa": "4.5", "volume": "24.76"})
	assert.InDelta(t, 0.1817, metric(t, r, "psa_density"), 0.0001)
}

func TestPSADensityNonPositiveVolume(t *testing.T) {
	for _, volume := range []string{"0", "-10", "1e-12"} {
		t.Run(volume, func(t *testing.T) {
			r := evaluate(t, "psa-density", map[string]string{"psa": "4.5", "volume": volume})

			m, ok := r.Metric("psa_density")
			require.True(t, ok)
			assert.False(t, m.Defined)
			assert.Equal(t, domain.CannotCompute, r.Category("psa_density"))
			assert.Equal(t, domain.SeverityUndetermined, r.Primary().Category.Severity)
			assert.Equal(t, domain.CannotComputeGuidance, r.Primary().Guidance)
		})
	}
}

func TestPSAVelocity(t *testing.T) {
	t.Run("rising", func(t *testing.T) {
		r := evaluate(t, "psa-velocity", map[string]string{"initialPsa": "4", "currentPsa": "5", "months": "12"})
		assert.InDelta(t, 1.0, metric(t, r, "velocity"), 1e-12)
		assert.InDelta(t, 37.27, metric(t, r, "doubling_time"), 0.01)
		assert.Equal(t, VelocityElevated, r.Category("velocity"))
	})

	t.Run("borderline over six months", func(t *testing.T) {
		r := evaluate(t, "psa-velocity", map[string]string{"initialPsa": "3", "currentPsa": "3.2", "months": "6"})
		assert.InDelta(t, 0.4, metric(t, r, "velocity"), 1e-9)
		assert.Equal(t, VelocityBorderline, r.Category("velocity"))
	})

	t.Run("falling has no doubling time", func(t *testing.T) {
		r := evaluate(t, "psa-velocity", map[string]string{"initialPsa": "5", "currentPsa": "4", "months": "12"})
		assert.Equal(t, VelocityNormal, r.Category("velocity"))
		m, ok := r.Metric("doubling_time")
		require.True(t, ok)
		assert.False(t, m.Defined)
	})

	t.Run("zero interval", func(t *testing.T) {
		r := evaluate(t, "psa-velocity", map[string]string{"initialPsa": "4", "currentPsa": "5", "months": "0"})
		assert.Equal(t, domain.CannotCompute, r.Category("velocity"))
	})
}

func TestFreePSA(t *testing.T) {
	tests := []struct {
		name     string
		free     string
		expected domain.Category
		percent  float64
	}{
		{"low ratio", "0.3", FreePSAHighProbability, 7.5},
		{"intermediate", "0.6", FreePSAIntermediate, 15},
		{"25 percent is intermediate", "1", FreePSAIntermediate, 25},
		{"high ratio", "1.2", FreePSALowProbability, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := evaluate(t, "free-psa", map[string]string{"totalPsa": "4", "freePsa": tt.free})
			assert.InDelta(t, tt.percent, metric(t, r, "free_psa_percent"), 1e-9)
			assert.Equal(t, tt.expected, r.Category("free_psa"))
		})
	}
}

func TestPSAAgeReference(t *testing.T) {
	tests := []struct {
		name     string
		psa, age string
		limit    float64
		expected domain.Category
	}{
		{"young and within", "2.0", "45", 2.5, PSAWithinRange},
		{"exactly at limit", "6.5", "72", 6.5, PSAWithinRange},
		{"mildly elevated", "4.0", "55", 3.5, PSAMildlyElevated},
		{"markedly elevated", "8.0", "65", 4.5, PSAMarkedlyElevated},
		{"age 50 uses the next decade", "3.5", "50", 3.5, PSAWithinRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := evaluate(t, "psa-age-reference", map[string]string{"psa": tt.psa, "age": tt.age})
			assert.Equal(t, tt.limit, metric(t, r, "age_upper_limit"))
			assert.Equal(t, tt.expected, r.Category("psa_for_age"))
		})
	}
}
