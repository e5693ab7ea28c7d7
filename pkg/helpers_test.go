package magnify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestGrid builds a grid with unit channel bins starting at firstChannel
// and unit tick bins starting at 0. rows[c][t] is the sample of channel c.
func newTestGrid(t *testing.T, name string, firstChannel int, rows [][]float64, kind DatasetKind) *Grid {
	t.Helper()
	nChannels := len(rows)
	nTicks := len(rows[0])
	samples := make([]float64, 0, nChannels*nTicks)
	for _, row := range rows {
		require.Len(t, row, nTicks)
		samples = append(samples, row...)
	}
	g, err := NewGridFromSamples(GridSpec{
		Name:     name,
		Kind:     kind,
		Channels: Axis{Bins: nChannels, Low: float64(firstChannel) - 0.5, High: float64(firstChannel+nChannels) - 0.5},
		Ticks:    Axis{Bins: nTicks, Low: 0, High: float64(nTicks)},
	}, samples)
	require.NoError(t, err)
	return g
}

type memSource struct {
	grids   map[string]*Grid
	vectors map[string]*Vector
	regions map[string][]BadChannelRegion
	err     error
}

func newMemSource() *memSource {
	return &memSource{
		grids:   make(map[string]*Grid),
		vectors: make(map[string]*Vector),
		regions: make(map[string][]BadChannelRegion),
	}
}

func (m *memSource) Grid(tag string) (*Grid, error) {
	g, ok := m.grids[tag]
	if !ok {
		return nil, &ErrMissingTag{Tag: tag}
	}
	return g, nil
}

func (m *memSource) Vector(tag string) (*Vector, error) {
	v, ok := m.vectors[tag]
	if !ok {
		return nil, &ErrMissingTag{Tag: tag}
	}
	return v, nil
}

func (m *memSource) BadChannels(tag string) ([]BadChannelRegion, error) {
	if m.err != nil {
		return nil, fmt.Errorf("reading %s: %w", tag, m.err)
	}
	r, ok := m.regions[tag]
	if !ok {
		return nil, &ErrMissingTag{Tag: tag}
	}
	return r, nil
}
