package magnify

import (
	"fmt"
	"math"

	"golang.org/x/exp/slices"
)

// GridSpec describes the geometry and metadata of a grid.
type GridSpec struct {
	Name     string
	Plane    Plane
	Kind     DatasetKind
	Storage  Storage
	Channels Axis
	Ticks    Axis
	// Scale multiplies samples at read time. Zero means 1.
	Scale float64
}

// Grid is a dense channel x tick array of samples. Samples are stored
// channel-major, so a channel's waveform is contiguous.
type Grid struct {
	Name     string
	Plane    Plane
	Kind     DatasetKind
	Storage  Storage
	Channels Axis
	Ticks    Axis
	scale    float64
	samples  []float64
}

func NewGrid(spec GridSpec) (*Grid, error) {
	if spec.Channels.Bins <= 0 || spec.Ticks.Bins <= 0 {
		return nil, &ErrInvalid{
			What:   "grid " + spec.Name,
			Reason: fmt.Sprintf("%d channels x %d ticks", spec.Channels.Bins, spec.Ticks.Bins),
		}
	}
	scale := spec.Scale
	if scale == 0 {
		scale = 1
	}
	return &Grid{
		Name:     spec.Name,
		Plane:    spec.Plane,
		Kind:     spec.Kind,
		Storage:  spec.Storage,
		Channels: spec.Channels,
		Ticks:    spec.Ticks,
		scale:    scale,
		samples:  make([]float64, spec.Channels.Bins*spec.Ticks.Bins),
	}, nil
}

// NewGridFromSamples builds a grid from channel-major samples.
func NewGridFromSamples(spec GridSpec, samples []float64) (*Grid, error) {
	g, err := NewGrid(spec)
	if err != nil {
		return nil, err
	}
	if len(samples) != len(g.samples) {
		return nil, &ErrDimension{
			What:     "samples of grid " + spec.Name,
			Expected: fmt.Sprintf("%d (%d x %d)", len(g.samples), g.NChannels(), g.NTicks()),
			Actual:   fmt.Sprintf("%d", len(samples)),
		}
	}
	for i, v := range samples {
		g.samples[i] = g.Storage.Round(v)
	}
	return g, nil
}

func (g *Grid) NChannels() int {
	return g.Channels.Bins
}

func (g *Grid) NTicks() int {
	return g.Ticks.Bins
}

func (g *Grid) FirstChannel() int {
	return int(math.Round(g.Channels.BinCenter(1)))
}

// ChannelID converts a 1-based channel index into a channel id.
func (g *Grid) ChannelID(index int) int {
	return g.FirstChannel() + index - 1
}

// ChannelIndex resolves a channel id to its 1-based index.
func (g *Grid) ChannelIndex(channelID int) (int, error) {
	index := g.Channels.FindBin(float64(channelID))
	if !g.Channels.InRange(index) {
		return 0, &ErrOutOfAxis{What: "channel", ID: channelID, Axis: g.Channels}
	}
	return index, nil
}

// TickIndex resolves a tick coordinate to its 1-based index.
func (g *Grid) TickIndex(tick int) (int, error) {
	index := g.Ticks.FindBin(float64(tick))
	if !g.Ticks.InRange(index) {
		return 0, &ErrOutOfAxis{What: "tick", ID: tick, Axis: g.Ticks}
	}
	return index, nil
}

func (g *Grid) inRange(channel int, tick int) bool {
	return g.Channels.InRange(channel) && g.Ticks.InRange(tick)
}

func (g *Grid) offset(channel int, tick int) int {
	return (channel-1)*g.Ticks.Bins + (tick - 1)
}

// Sample returns the unscaled sample at 1-based indices. Out of range cells read as zero.
func (g *Grid) Sample(channel int, tick int) float64 {
	if !g.inRange(channel, tick) {
		return 0
	}
	return g.samples[g.offset(channel, tick)]
}

// Value returns the sample multiplied by the grid scale.
func (g *Grid) Value(channel int, tick int) float64 {
	return g.Sample(channel, tick) * g.scale
}

// SetSample overwrites one cell, rounding to the grid storage. Writes out of range are dropped.
func (g *Grid) SetSample(channel int, tick int, value float64) bool {
	if !g.inRange(channel, tick) {
		return false
	}
	g.samples[g.offset(channel, tick)] = g.Storage.Round(value)
	return true
}

func (g *Grid) Scale() float64 {
	return g.scale
}

func (g *Grid) SetScale(scale float64) {
	g.scale = scale
}

// Waveform returns a copy of the unscaled samples of one channel.
func (g *Grid) Waveform(channel int) []float64 {
	if !g.Channels.InRange(channel) {
		return nil
	}
	start := g.offset(channel, 1)
	return slices.Clone(g.samples[start : start+g.Ticks.Bins])
}

// Samples returns a channel-major copy of all unscaled samples.
func (g *Grid) Samples() []float64 {
	return slices.Clone(g.samples)
}

// Reset zeroes every sample.
func (g *Grid) Reset() {
	for i := range g.samples {
		g.samples[i] = 0
	}
}

func (g *Grid) Spec() GridSpec {
	return GridSpec{
		Name:     g.Name,
		Plane:    g.Plane,
		Kind:     g.Kind,
		Storage:  g.Storage,
		Channels: g.Channels,
		Ticks:    g.Ticks,
		Scale:    g.scale,
	}
}

func (g *Grid) Clone() *Grid {
	c := *g
	c.samples = slices.Clone(g.samples)
	return &c
}

// Vector is a dense per-channel sequence, e.g. a channel threshold.
type Vector struct {
	Name    string
	Axis    Axis
	Storage Storage
	values  []float64
}

func NewVector(name string, axis Axis, storage Storage) (*Vector, error) {
	if axis.Bins <= 0 {
		return nil, &ErrInvalid{What: "vector " + name, Reason: fmt.Sprintf("%d bins", axis.Bins)}
	}
	return &Vector{
		Name:    name,
		Axis:    axis,
		Storage: storage,
		values:  make([]float64, axis.Bins),
	}, nil
}

func NewVectorFromValues(name string, axis Axis, storage Storage, values []float64) (*Vector, error) {
	v, err := NewVector(name, axis, storage)
	if err != nil {
		return nil, err
	}
	if len(values) != axis.Bins {
		return nil, &ErrDimension{
			What:     "values of vector " + name,
			Expected: fmt.Sprintf("%d", axis.Bins),
			Actual:   fmt.Sprintf("%d", len(values)),
		}
	}
	for i, x := range values {
		v.values[i] = storage.Round(x)
	}
	return v, nil
}

func (v *Vector) Len() int {
	return len(v.values)
}

// At returns the value of a 1-based bin. Out of range bins read as zero.
func (v *Vector) At(bin int) float64 {
	if !v.Axis.InRange(bin) {
		return 0
	}
	return v.values[bin-1]
}

func (v *Vector) Set(bin int, value float64) bool {
	if !v.Axis.InRange(bin) {
		return false
	}
	v.values[bin-1] = v.Storage.Round(value)
	return true
}

func (v *Vector) Values() []float64 {
	return slices.Clone(v.values)
}

func (v *Vector) Reset() {
	for i := range v.values {
		v.values[i] = 0
	}
}
