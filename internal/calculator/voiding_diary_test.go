package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uro-calc-engine/internal/domain"
	"github.com/uro-calc-engine/internal/engine"
)

func evaluateDiary(t *testing.T, rows []map[string]string) (*domain.ResultRecord, error) {
	t.Helper()
	return NewRegistry(engine.DefaultOptions()).Evaluate("voiding-diary", domain.Input{Rows: rows})
}

func TestVoidingDiaryMetrics(t *testing.T) {
	r, err := evaluateDiary(t, sampleInputs["voiding-diary"].Rows)
	require.NoError(t, err)

	assert.Equal(t, 1500.0, metric(t, r, "total_volume"))
	assert.Equal(t, 250.0, metric(t, r, "average_volume"))
	assert.Equal(t, 350.0, metric(t, r, "functional_capacity"))
	assert.Equal(t, 4.0, metric(t, r, "day_voids"))
	assert.Equal(t, 2.0, metric(t, r, "night_voids"))
	assert.InDelta(t, 71.43, metric(t, r, "voiding_efficiency"), 0.01)
	assert.InDelta(t, 2.0, metric(t, r, "urgency_index"), 1e-9)
	assert.InDelta(t, 26.67, metric(t, r, "nocturnal_polyuria_index"), 0.01)

	assert.Equal(t, DayFrequencyNormal, r.Category("day_frequency"))
	assert.Equal(t, NocturiaModerate, r.Category("nocturia"))
	assert.Equal(t, DiaryCapacityNormal, r.Category("capacity"))
	assert.Equal(t, UrgencyModerate, r.Category("urgency"))
	assert.Equal(t, NocturnalVolumeNormal, r.Category("nocturnal_polyuria"))
	assert.Equal(t, "6", r.Inputs["entries"])
}

func TestVoidingDiaryTooFewRows(t *testing.T) {
	r, err := evaluateDiary(t, []map[string]string{
		{"time": "08:00", "volume": "300"},
		{"time": "12:00", "volume": "250"},
	})
	assert.Nil(t, r)
	require.ErrorIs(t, err, domain.ErrIncompleteInput)

	var incomplete *domain.IncompleteInputError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"entries"}, incomplete.Fields())
}

func TestVoidingDiarySkipsInvalidRows(t *testing.T) {
	r, err := evaluateDiary(t, []map[string]string{
		{"time": "08:00", "volume": "300"},
		{"time": "noon", "volume": "250"},
		{"time": "12:00", "volume": ""},
		{"time": "13:00", "volume": "200"},
		{"time": "17:00", "volume": "100"},
	})
	require.NoError(t, err)

	assert.Equal(t, 600.0, metric(t, r, "total_volume"))
	assert.Equal(t, "3", r.Inputs["entries"])
}

func TestVoidingDiaryWithoutUrgency(t *testing.T) {
	r, err := evaluateDiary(t, []map[string]string{
		{"time": "08:00", "volume": "120"},
		{"time": "11:00", "volume": "100"},
		{"time": "14:00", "volume": "140"},
	})
	require.NoError(t, err)

	m, ok := r.Metric("urgency_index")
	require.True(t, ok)
	assert.False(t, m.Defined)
	assert.Equal(t, domain.CannotCompute, r.Category("urgency"))
	assert.Equal(t, DiaryCapacityReduced, r.Category("capacity"))
	assert.Equal(t, NocturiaNone, r.Category("nocturia"))
}

func TestVoidingDiaryNightBoundaries(t *testing.T) {
	tests := []struct {
		hour  int
		night bool
	}{
		{21, false},
		{22, true},
		{0, true},
		{5, true},
		{6, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.night, isNight(tt.hour), "hour %d", tt.hour)
	}
}

func TestVoidingDiaryNocturnalPolyuria(t *testing.T) {
	r, err := evaluateDiary(t, []map[string]string{
		{"time": "09:00", "volume": "200", "urgency": "4"},
		{"time": "15:00", "volume": "200", "urgency": "4"},
		{"time": "23:00", "volume": "300", "urgency": "3"},
		{"time": "01:00", "volume": "300", "urgency": "4"},
		{"time": "03:00", "volume": "300", "urgency": "4"},
		{"time": "05:00", "volume": "300", "urgency": "5"},
	})
	require.NoError(t, err)

	assert.InDelta(t, 75.0, metric(t, r, "nocturnal_polyuria_index"), 1e-9)
	assert.Equal(t, NocturnalPolyuria, r.Category("nocturnal_polyuria"))
	assert.Equal(t, NocturiaSevere, r.Category("nocturia"))
	assert.Equal(t, UrgencyHigh, r.Category("urgency"))
}

func TestVoidingDiaryZeroVolumes(t *testing.T) {
	r, err := evaluateDiary(t, []map[string]string{
		{"time": "08:00", "volume": "0"},
		{"time": "12:00", "volume": "0"},
		{"time": "23:00", "volume": "0"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.CannotCompute, r.Category("nocturnal_polyuria"))
	m, _ := r.Metric("voiding_efficiency")
	assert.False(t, m.Defined)
}
