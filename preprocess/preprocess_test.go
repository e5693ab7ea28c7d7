package main

import (
	"errors"
	"io"
	"testing"

	magnify "github.com/bnlif/magnify_go/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	grids   map[string]*magnify.Grid
	vectors map[string]*magnify.Vector
	regions map[string][]magnify.BadChannelRegion
}

func newMemStore() *memStore {
	return &memStore{
		grids:   make(map[string]*magnify.Grid),
		vectors: make(map[string]*magnify.Vector),
		regions: make(map[string][]magnify.BadChannelRegion),
	}
}

func (m *memStore) Grid(tag string) (*magnify.Grid, error) {
	g, ok := m.grids[tag]
	if !ok {
		return nil, &magnify.ErrMissingTag{Tag: tag}
	}
	return g, nil
}

func (m *memStore) Vector(tag string) (*magnify.Vector, error) {
	v, ok := m.vectors[tag]
	if !ok {
		return nil, &magnify.ErrMissingTag{Tag: tag}
	}
	return v, nil
}

func (m *memStore) BadChannels(tag string) ([]magnify.BadChannelRegion, error) {
	r, ok := m.regions[tag]
	if !ok {
		return nil, &magnify.ErrMissingTag{Tag: tag}
	}
	return r, nil
}

func (m *memStore) WriteGrid(g *magnify.Grid) error {
	m.grids[g.Name] = g
	return nil
}

func (m *memStore) WriteVector(v *magnify.Vector) error {
	m.vectors[v.Name] = v
	return nil
}

func (m *memStore) WriteBadChannels(tag string, regions []magnify.BadChannelRegion) error {
	m.regions[tag] = regions
	return nil
}

func init() {
	logger = magnify.NewLogger(io.Discard, io.Discard)
}

// addInputs stores one grid per plane tagged h<plane>_<tag>. Every channel
// holds a flat waveform of value 100 with a spike of 10 at tick 5.
func addInputs(t *testing.T, store *memStore, tag string, nTicks int) {
	t.Helper()
	layout := magnify.DefaultPlaneLayout()
	for _, plane := range magnify.Planes {
		g, err := layout.NewPlaneGrid(plane, plane.Tag(tag), nTicks, magnify.Raw, magnify.Float64)
		require.NoError(t, err)
		for i := 1; i <= g.NChannels(); i++ {
			for j := 1; j <= g.NTicks(); j++ {
				g.SetSample(i, j, 100)
			}
			g.SetSample(i, 5, 110.7)
		}
		store.grids[g.Name] = g
	}
}

func testConfig(inTag string, outTag string) magnify.Configuration {
	config, _ := LoadConfiguration("")
	config.InTag = inTag
	config.OutTag = outTag
	config.NTicks = 10
	return config
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "data/magnify_5141_23468-v2.h5", outputPath("/tmp/in/magnify_5141_23468.h5", "data", "v2"))
	assert.Equal(t, "out/run-x.h5", outputPath("run", "out", "x"))
}

func TestPreprocessOrig(t *testing.T) {
	store := newMemStore()
	addInputs(t, store, "raw", 10)

	config := testConfig("raw", "orig")
	config.SubtractBaseline = true
	require.NoError(t, preprocess(store, store, config))

	for _, plane := range magnify.Planes {
		g, err := store.Grid(plane.Tag("orig"))
		require.NoError(t, err)
		assert.Equal(t, magnify.Int32, g.Storage)
		assert.Equal(t, magnify.Raw, g.Kind)
		// orig keeps the baseline and truncates to integers
		assert.Equal(t, 100.0, g.Sample(1, 1))
		assert.Equal(t, 110.0, g.Sample(1, 5))
	}
}

func TestPreprocessBaseline(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		store := newMemStore()
		addInputs(t, store, "decon", 10)

		config := testConfig("decon", "decon")
		config.SubtractBaseline = true
		config.Parallel = parallel
		require.NoError(t, preprocess(store, store, config))

		g, err := store.Grid(magnify.PlaneV.Tag("decon"))
		require.NoError(t, err)
		assert.Equal(t, magnify.Float32, g.Storage)
		assert.Equal(t, magnify.Deconvolved, g.Kind)
		assert.Equal(t, 0.0, g.Sample(3, 1))
		assert.InDelta(t, 10.7, g.Sample(3, 5), 1e-4)
	}
}

func TestPreprocessKindFromConfig(t *testing.T) {
	store := newMemStore()
	addInputs(t, store, "raw", 10)

	config := testConfig("raw", "nobase")
	config.SubtractBaseline = true
	require.NoError(t, config.SetKind("raw"))
	require.NoError(t, preprocess(store, store, config))

	for _, plane := range magnify.Planes {
		g, err := store.Grid(plane.Tag("nobase"))
		require.NoError(t, err)
		assert.Equal(t, magnify.Raw, g.Kind)
		assert.Equal(t, magnify.Float32, g.Storage)
		assert.Equal(t, 0.0, g.Sample(1, 1))
	}
}

func TestPreprocessThreshold(t *testing.T) {
	store := newMemStore()
	layout := magnify.DefaultPlaneLayout()
	for _, plane := range magnify.Planes {
		v, err := layout.NewPlaneVector(plane, plane.Tag("thr"), magnify.Float64)
		require.NoError(t, err)
		for i := 1; i <= v.Len(); i++ {
			v.Set(i, 2.5*float64(i))
		}
		store.vectors[v.Name] = v
	}

	require.NoError(t, preprocess(store, store, testConfig("thr", "threshold")))
	v, err := store.Vector("hw_threshold")
	require.NoError(t, err)
	assert.Equal(t, magnify.Int32, v.Storage)
	assert.Equal(t, 2.0, v.At(1))
	assert.Equal(t, 5.0, v.At(2))
}

func TestPreprocessTrees(t *testing.T) {
	store := newMemStore()
	store.regions["bad1"] = []magnify.BadChannelRegion{{Channel: 70, StartTick: 0, EndTick: 10}}
	store.regions["bad4"] = []magnify.BadChannelRegion{{Channel: 3, Plane: magnify.PlaneW, StartTick: 2, EndTick: 4}}

	t.Run("explicit out tag", func(t *testing.T) {
		require.NoError(t, preprocess(store, store, testConfig("tree:bad", "bad_channel")))
		regions, err := store.BadChannels("bad_channel")
		require.NoError(t, err)
		require.Len(t, regions, 2)
		assert.Equal(t, 70, regions[0].Channel)
		assert.Equal(t, 3, regions[1].Channel)
	})
	t.Run("default out tag", func(t *testing.T) {
		require.NoError(t, preprocess(store, store, testConfig("tree:bad", "")))
		_, err := store.BadChannels("bad")
		assert.NoError(t, err)
	})
	t.Run("no lists", func(t *testing.T) {
		require.NoError(t, preprocess(store, store, testConfig("tree:none", "out")))
		_, err := store.BadChannels("out")
		assert.True(t, errors.Is(err, magnify.ErrNotFound))
	})
}

func TestPreprocessMissingPlane(t *testing.T) {
	store := newMemStore()
	addInputs(t, store, "raw", 10)
	delete(store.grids, "hw_raw")

	err := preprocess(store, store, testConfig("raw", "orig"))
	assert.True(t, errors.Is(err, magnify.ErrNotFound))
	assert.Empty(t, store.grids["hu_orig"])
}

func TestRunPlanesRecovers(t *testing.T) {
	job := func(plane magnify.Plane) (*magnify.Grid, error) {
		if plane == magnify.PlaneV {
			panic("boom")
		}
		return nil, nil
	}
	_, err := runPlanes(magnify.Planes, job, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plane v")
}
