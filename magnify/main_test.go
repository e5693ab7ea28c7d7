package main

import (
	"os"
	"path/filepath"
	"testing"

	magnify "github.com/bnlif/magnify_go/pkg"
	"github.com/bnlif/magnify_go/pkg/h5store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReadsStoreFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "magnify_1_1-v2.h5")
	layout := magnify.DefaultPlaneLayout()
	g, err := layout.NewPlaneGrid(magnify.PlaneU, "hu_orig", 10, magnify.Raw, magnify.Int32)
	require.NoError(t, err)
	g.SetSample(70-64+1, 4, -800)

	out, err := h5store.Create(fname, magnify.ModeCreate, 4)
	require.NoError(t, err)
	require.NoError(t, out.WriteGrid(g))
	require.NoError(t, out.Close())

	config := testConfig(t)
	config.FileIn = fname
	config.InTag = "orig"
	config.PlotDir = filepath.Join(config.PlotDir, "plots")
	require.NoError(t, run(config))

	_, err = os.Stat(filepath.Join(config.PlotDir, "hu_orig_cells.png"))
	assert.NoError(t, err)

	config.FileIn = filepath.Join(t.TempDir(), "missing.h5")
	assert.Error(t, run(config))
}
