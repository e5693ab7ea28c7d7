package magnify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(nil)
	layout := s.Layout
	for _, plane := range []Plane{PlaneU, PlaneV} {
		g, err := layout.NewPlaneGrid(plane, plane.Tag("orig"), 10, Raw, Float64)
		require.NoError(t, err)
		g.SetSample(1, 1, 1000)
		g.SetSample(2, 5, -800)
		s.AddGrid(g)
	}
	return s
}

func TestSession_Defaults(t *testing.T) {
	s := NewSession(nil)
	assert.NotEqual(t, [16]byte{}, [16]byte(s.ID))
	assert.Equal(t, float64(DefaultZMin), s.ZMin)
	assert.Equal(t, float64(DefaultZMax), s.ZMax)
	s.SetZRange(-10, 30)
	assert.Equal(t, -10.0, s.ZMin)
	assert.Equal(t, 30.0, s.ZMax)
}

func TestSession_Threshold(t *testing.T) {
	s := newTestSession(t)

	cells, err := s.SetThreshold(PlaneU, 500)
	require.NoError(t, err)
	assert.Equal(t, []HighlightedCell{
		{Channel: 1, Tick: 1, Magnitude: 1000},
		{Channel: 2, Tick: 5, Magnitude: 800},
	}, cells)
	assert.Equal(t, cells, s.Cells(PlaneU))
	assert.Empty(t, s.Cells(PlaneV))
	assert.Nil(t, s.Cells(PlaneW))

	_, err = s.SetThreshold(PlaneW, 500)
	assert.ErrorIs(t, err, ErrNotFound)

	// Channel 64 is the first channel of plane U
	s.SetMask(NewBadChannelSet([]BadChannelRegion{{Channel: 64, Plane: PlaneU}}), true)
	cells, err = s.SetThreshold(PlaneU, 500)
	require.NoError(t, err)
	assert.Equal(t, []HighlightedCell{{Channel: 2, Tick: 5, Magnitude: 800}}, cells)
}

func TestSession_ChannelThreshold(t *testing.T) {
	s := newTestSession(t)
	v, err := s.Layout.NewPlaneVector(PlaneV, "hv_threshold", Int32)
	require.NoError(t, err)
	for i := 1; i <= v.Len(); i++ {
		v.Set(i, 900)
	}
	cells, err := s.SetChannelThreshold(PlaneV, v, 1)
	require.NoError(t, err)
	assert.Equal(t, []HighlightedCell{{Channel: 1, Tick: 1, Magnitude: 1000}}, cells)

	short, err := NewVector("short", Axis{Bins: 3, Low: 127.5, High: 130.5}, Int32)
	require.NoError(t, err)
	_, err = s.SetChannelThreshold(PlaneV, short, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSession_ProjectionCache(t *testing.T) {
	s := newTestSession(t)

	p, err := s.ChannelProjection(129)
	require.NoError(t, err)
	assert.Equal(t, -800.0, p.Values[4])
	assert.Equal(t, "hv_orig", p.Source)
	assert.Equal(t, 1, s.NumProjections())

	// A second channel of the same grid replaces the cached projection
	p2, err := s.ChannelProjection(128)
	require.NoError(t, err)
	assert.Equal(t, 1, s.NumProjections())
	cached, ok := s.Projection(ProjectionKey{Source: "hv_orig", Along: ChannelAxis})
	require.True(t, ok)
	assert.Same(t, p2, cached)

	_, err = s.TickProjection(PlaneU, 0)
	require.NoError(t, err)
	_, err = s.ChannelProjection(64)
	require.NoError(t, err)
	assert.Equal(t, 3, s.NumProjections())

	_, err = s.ChannelProjection(10)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.ChannelProjection(500)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = s.TickProjection(PlaneU, 10)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, 3, s.NumProjections())

	s.Close()
	assert.Zero(t, s.NumProjections())
	assert.Empty(t, s.Cells(PlaneU))
}
