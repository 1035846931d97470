package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRangeSpec(t *testing.T) {
	t.Parallel()

	spec, err := ParseRangeSpec("0.5:0.9:0.1")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, spec.Min, 1e-9)
	assert.InDelta(t, 0.9, spec.Max, 1e-9)
	assert.InDelta(t, 0.1, spec.Step, 1e-9)

	_, err = ParseRangeSpec("0.5:0.9")
	assert.Error(t, err)

	_, err = ParseRangeSpec("0.5:0.9:0")
	assert.Error(t, err)

	_, err = ParseRangeSpec("a:b:c")
	assert.Error(t, err)
}

func TestGenerateRange(t *testing.T) {
	t.Parallel()

	got := GenerateRange(0.5, 0.9, 0.1)
	require.Len(t, got, 5)
	for i, want := range []float64{0.5, 0.6, 0.7, 0.8, 0.9} {
		assert.InDelta(t, want, got[i], 1e-9)
	}

	assert.Nil(t, GenerateRange(1, 0, 0.1))
	assert.Nil(t, GenerateRange(0, 1, 0))
	assert.Equal(t, []float64{2}, GenerateRange(2, 2, 1))
}

func TestParseParamList(t *testing.T) {
	t.Parallel()

	got, err := ParseParamList("1, 2.5, 3")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, 3}, got)

	got, err = ParseParamList("0:1:0.5")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1}, got)

	got, err = ParseParamList("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseParamList("1,x")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize([]float64{1, 2, 3, 4})
	assert.Equal(t, 4, s.N)
	assert.InDelta(t, 2.5, s.Mean, 1e-9)
	assert.InDelta(t, 1.2909944, s.Stddev, 1e-6)
	assert.InDelta(t, 1, s.Min, 1e-9)
	assert.InDelta(t, 4, s.Max, 1e-9)

	assert.Equal(t, Summary{}, Summarize(nil))

	single := Summarize([]float64{7})
	assert.Equal(t, 1, single.N)
	assert.InDelta(t, 7, single.Mean, 1e-9)
	assert.InDelta(t, 0, single.Stddev, 1e-9)
}

func TestParseAxis(t *testing.T) {
	t.Parallel()

	a, err := ParseAxis("gate_sigma=2:4:1")
	require.NoError(t, err)
	assert.Equal(t, "gate_sigma", a.Name)
	assert.Equal(t, []float64{2, 3, 4}, a.Values)

	_, err = ParseAxis("gate_sigma")
	assert.Error(t, err)

	_, err = ParseAxis("not_a_param=1,2")
	assert.Error(t, err)

	_, err = ParseAxis("gate_sigma=5:1:1")
	assert.Error(t, err)
}

func TestExpandCartesianProduct(t *testing.T) {
	t.Parallel()

	axes := []Axis{
		{Name: "parabola_min_r2", Values: []float64{0.7, 0.8}},
		{Name: "min_quality", Values: []float64{0.4, 0.5, 0.6}},
	}
	combos, err := Expand(axes)
	require.NoError(t, err)
	require.Len(t, combos, 6)

	// Last axis cycles fastest.
	assert.Equal(t, []float64{0.7, 0.4}, combos[0].Values)
	assert.Equal(t, []float64{0.7, 0.6}, combos[2].Values)
	assert.Equal(t, []float64{0.8, 0.4}, combos[3].Values)
	assert.Equal(t, []float64{0.8, 0.6}, combos[5].Values)

	require.NotNil(t, combos[0].Overrides.ParabolaMinR2)
	assert.InDelta(t, 0.7, *combos[0].Overrides.ParabolaMinR2, 1e-9)
	require.NotNil(t, combos[5].Overrides.MinQuality)
	assert.InDelta(t, 0.6, *combos[5].Overrides.MinQuality, 1e-9)

	empty, err := Expand(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestExpandIntegerField(t *testing.T) {
	t.Parallel()

	combos, err := Expand([]Axis{{Name: "parabola_min_points", Values: []float64{6, 8}}})
	require.NoError(t, err)
	require.Len(t, combos, 2)
	require.NotNil(t, combos[1].Overrides.ParabolaMinPoints)
	assert.Equal(t, 8, *combos[1].Overrides.ParabolaMinPoints)
}
