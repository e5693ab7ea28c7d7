package magnify

import (
	"fmt"
	"math"
)

// HighlightedCell is a grid cell above the active threshold. Indices are 1-based.
type HighlightedCell struct {
	Channel   int
	Tick      int
	Magnitude float64
}

type ThresholdMode int

const (
	NoThreshold ThresholdMode = iota
	GlobalThreshold
	ChannelThreshold
)

func (m ThresholdMode) String() string {
	switch m {
	case GlobalThreshold:
		return "global"
	case ChannelThreshold:
		return "channel"
	default:
		return "none"
	}
}

// Detector scans a grid for samples above a threshold. Every scan builds a
// new cell list, so results of earlier calls stay valid.
type Detector struct {
	grid       *Grid
	cells      []HighlightedCell
	mode       ThresholdMode
	threshold  float64
	mask       BadChannelMask
	excludeBad bool
}

func NewDetector(g *Grid) *Detector {
	return &Detector{grid: g}
}

// SetMask installs a bad-channel mask. Masked channels are skipped only
// when exclude is true.
func (d *Detector) SetMask(mask BadChannelMask, exclude bool) {
	d.mask = mask
	d.excludeBad = exclude
}

func (d *Detector) Grid() *Grid {
	return d.grid
}

func (d *Detector) Mode() ThresholdMode {
	return d.mode
}

// Threshold returns the last global threshold.
func (d *Detector) Threshold() float64 {
	return d.threshold
}

func (d *Detector) Cells() []HighlightedCell {
	return d.cells
}

func (d *Detector) Clear() {
	d.cells = nil
}

// reset starts a new cell list sized like the previous one.
func (d *Detector) reset() {
	d.cells = make([]HighlightedCell, 0, len(d.cells))
}

func (d *Detector) skipChannel(channel int) bool {
	if !d.excludeBad || d.mask == nil {
		return false
	}
	return d.mask.IsBad(d.grid.ChannelID(channel))
}

// SetThreshold highlights every cell with |sample*scale| > threshold.
func (d *Detector) SetThreshold(threshold float64) []HighlightedCell {
	d.reset()
	d.mode = GlobalThreshold
	d.threshold = threshold

	g := d.grid
	scale := g.Scale()
	for i := 1; i <= g.NChannels(); i++ {
		if d.skipChannel(i) {
			continue
		}
		for j := 1; j <= g.NTicks(); j++ {
			content := math.Abs(g.Sample(i, j) * scale)
			if content > threshold {
				d.cells = append(d.cells, HighlightedCell{Channel: i, Tick: j, Magnitude: content})
			}
		}
	}
	d.logCells()
	return d.cells
}

// SetChannelThreshold highlights cells above thresholds[c]*scale*scaling.
// Deconvolved grids compare signed samples, raw grids compare magnitudes.
func (d *Detector) SetChannelThreshold(thresholds *Vector, scaling float64) ([]HighlightedCell, error) {
	g := d.grid
	if thresholds == nil {
		return nil, &ErrInvalid{What: "channel threshold", Reason: "missing"}
	}
	if thresholds.Len() != g.NChannels() {
		return nil, &ErrDimension{
			What:     fmt.Sprintf("channel threshold %s for %s", thresholds.Name, g.Name),
			Expected: fmt.Sprintf("%d channels", g.NChannels()),
			Actual:   fmt.Sprintf("%d", thresholds.Len()),
		}
	}

	d.reset()
	d.mode = ChannelThreshold

	scale := g.Scale()
	signed := g.Kind == Deconvolved
	for i := 1; i <= g.NChannels(); i++ {
		if d.skipChannel(i) {
			continue
		}
		channelThreshold := thresholds.At(i) * scale * scaling
		for j := 1; j <= g.NTicks(); j++ {
			content := g.Sample(i, j) * scale
			if !signed {
				content = math.Abs(content)
			}
			if content > channelThreshold {
				d.cells = append(d.cells, HighlightedCell{Channel: i, Tick: j, Magnitude: content})
			}
		}
	}
	d.logCells()
	return d.cells, nil
}

func (d *Detector) logCells() {
	if configuration.Verbosity > 1 {
		message := fmt.Sprintf("%s: %d cells above %s threshold", d.grid.Name, len(d.cells), d.mode)
		logger.Info(message, "threshold")
	}
}
