package magnify

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_GlobalThreshold(t *testing.T) {
	g := newTestGrid(t, "hu_orig", 0, [][]float64{
		{0, 600, -50},
		{5, 5, 501},
	}, Raw)
	d := NewDetector(g)

	cells := d.SetThreshold(500)
	want := []HighlightedCell{
		{Channel: 1, Tick: 2, Magnitude: 600},
		{Channel: 2, Tick: 3, Magnitude: 501},
	}
	if diff := cmp.Diff(want, cells); diff != "" {
		t.Errorf("cells mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, GlobalThreshold, d.Mode())
	assert.Equal(t, 500.0, d.Threshold())
}

func TestDetector_GlobalThresholdUsesMagnitudeAndScale(t *testing.T) {
	g := newTestGrid(t, "hu_orig", 0, [][]float64{{-300, 200, 100}}, Raw)
	g.SetScale(2)
	cells := NewDetector(g).SetThreshold(350)
	want := []HighlightedCell{
		{Channel: 1, Tick: 1, Magnitude: 600},
		{Channel: 1, Tick: 2, Magnitude: 400},
	}
	assert.Equal(t, want, cells)
}

func TestDetector_ReinvocationReplaces(t *testing.T) {
	g := newTestGrid(t, "hu_orig", 0, [][]float64{{1, 2, 3, 4}}, Raw)
	d := NewDetector(g)
	assert.Len(t, d.SetThreshold(0), 4)
	assert.Len(t, d.SetThreshold(2), 2)
	assert.Empty(t, d.SetThreshold(10))
	assert.Empty(t, d.Cells())
}

func TestDetector_EarlierResultsSurviveRescan(t *testing.T) {
	g := newTestGrid(t, "hu_orig", 0, [][]float64{{100, 10, 700}}, Raw)
	d := NewDetector(g)

	loose := d.SetThreshold(50)
	strict := d.SetThreshold(500)
	assert.Equal(t, []HighlightedCell{
		{Channel: 1, Tick: 1, Magnitude: 100},
		{Channel: 1, Tick: 3, Magnitude: 700},
	}, loose)
	assert.Equal(t, []HighlightedCell{{Channel: 1, Tick: 3, Magnitude: 700}}, strict)

	v, err := NewVectorFromValues("hu_threshold", g.Channels, Float64, []float64{5})
	require.NoError(t, err)
	_, err = d.SetChannelThreshold(v, 1)
	require.NoError(t, err)
	assert.Len(t, loose, 2)
	assert.Equal(t, HighlightedCell{Channel: 1, Tick: 1, Magnitude: 100}, loose[0])
}

func TestDetector_StricterThresholdIsSubset(t *testing.T) {
	rows := make([][]float64, 8)
	for i := range rows {
		rows[i] = make([]float64, 16)
		for j := range rows[i] {
			rows[i][j] = float64((i*37+j*11)%200 - 100)
		}
	}
	g := newTestGrid(t, "hw_orig", 0, rows, Raw)
	d := NewDetector(g)

	loose := d.SetThreshold(20)
	strict := d.SetThreshold(60)
	require.NotEmpty(t, strict)
	require.Greater(t, len(loose), len(strict))

	type key struct{ c, t int }
	seen := make(map[key]bool, len(loose))
	for _, c := range loose {
		seen[key{c.Channel, c.Tick}] = true
	}
	for _, c := range strict {
		assert.True(t, seen[key{c.Channel, c.Tick}], "cell %+v missing from looser result", c)
	}
}

func TestDetector_Deterministic(t *testing.T) {
	g := newTestGrid(t, "hu_orig", 0, [][]float64{
		{9, -9, 0},
		{0, 9, -9},
	}, Raw)
	first := NewDetector(g).SetThreshold(1)
	second := NewDetector(g).SetThreshold(1)
	assert.Equal(t, first, second)
	// channel-major, tick-minor
	assert.Equal(t, []HighlightedCell{
		{Channel: 1, Tick: 1, Magnitude: 9},
		{Channel: 1, Tick: 2, Magnitude: 9},
		{Channel: 2, Tick: 2, Magnitude: 9},
		{Channel: 2, Tick: 3, Magnitude: 9},
	}, first)
}

func TestDetector_ChannelThreshold(t *testing.T) {
	rows := [][]float64{{-700, 300, 600}}
	thresholds, err := NewVectorFromValues("hu_threshold", Axis{Bins: 1, Low: -0.5, High: 0.5}, Int32, []float64{500})
	require.NoError(t, err)

	t.Run("raw compares magnitude", func(t *testing.T) {
		g := newTestGrid(t, "hu_raw", 0, rows, Raw)
		cells, err := NewDetector(g).SetChannelThreshold(thresholds, 1)
		require.NoError(t, err)
		assert.Equal(t, []HighlightedCell{
			{Channel: 1, Tick: 1, Magnitude: 700},
			{Channel: 1, Tick: 3, Magnitude: 600},
		}, cells)
	})

	t.Run("deconvolved compares signed", func(t *testing.T) {
		g := newTestGrid(t, "hu_decon", 0, rows, Deconvolved)
		cells, err := NewDetector(g).SetChannelThreshold(thresholds, 1)
		require.NoError(t, err)
		assert.Equal(t, []HighlightedCell{
			{Channel: 1, Tick: 3, Magnitude: 600},
		}, cells)
	})

	t.Run("deconvolved keeps sign in magnitude", func(t *testing.T) {
		g := newTestGrid(t, "hu_decon", 0, [][]float64{{-50, 10}}, Deconvolved)
		negative, err := NewVectorFromValues("neg", Axis{Bins: 1, Low: -0.5, High: 0.5}, Float64, []float64{-100})
		require.NoError(t, err)
		cells, err := NewDetector(g).SetChannelThreshold(negative, 1)
		require.NoError(t, err)
		assert.Equal(t, []HighlightedCell{
			{Channel: 1, Tick: 1, Magnitude: -50},
			{Channel: 1, Tick: 2, Magnitude: 10},
		}, cells)
	})

	t.Run("scale and scaling", func(t *testing.T) {
		g := newTestGrid(t, "hu_raw", 0, rows, Raw)
		g.SetScale(2)
		// effective threshold 500 * 2 * 0.7 = 700, values 1400, 600, 1200
		cells, err := NewDetector(g).SetChannelThreshold(thresholds, 0.7)
		require.NoError(t, err)
		assert.Equal(t, []HighlightedCell{
			{Channel: 1, Tick: 1, Magnitude: 1400},
			{Channel: 1, Tick: 3, Magnitude: 1200},
		}, cells)
	})
}

func TestDetector_ChannelThresholdDimensionMismatch(t *testing.T) {
	g := newTestGrid(t, "hu_raw", 0, [][]float64{{1000, 0}}, Raw)
	d := NewDetector(g)
	require.Len(t, d.SetThreshold(10), 1)

	wrong, err := NewVectorFromValues("hu_threshold", Axis{Bins: 2, Low: -0.5, High: 1.5}, Float64, []float64{1, 1})
	require.NoError(t, err)
	_, err = d.SetChannelThreshold(wrong, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	// The previous result is left in place
	assert.Len(t, d.Cells(), 1)
	assert.Equal(t, GlobalThreshold, d.Mode())

	_, err = d.SetChannelThreshold(nil, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDetector_BadChannelMask(t *testing.T) {
	g := newTestGrid(t, "hu_raw", 64, [][]float64{
		{900, 900},
		{900, 0},
	}, Raw)
	d := NewDetector(g)
	mask := MaskFunc(func(id int) bool { return id == 64 })

	d.SetMask(mask, false)
	assert.Len(t, d.SetThreshold(100), 3)

	d.SetMask(mask, true)
	assert.Equal(t, []HighlightedCell{{Channel: 2, Tick: 1, Magnitude: 900}}, d.SetThreshold(100))
}
