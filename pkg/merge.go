package magnify

import (
	"fmt"
)

// GridSource gives access to persisted grids and vectors by tag.
type GridSource interface {
	Grid(tag string) (*Grid, error)
	Vector(tag string) (*Vector, error)
}

type MergeOptions struct {
	SubtractBaseline bool
	// Scale multiplies every written value. Zero means 1.
	Scale float64
}

func (o MergeOptions) scale() float64 {
	if o.Scale == 0 {
		return 1
	}
	return o.Scale
}

func checkGridGeometry(dst *Grid, src *Grid) error {
	if !dst.Channels.Contains(src.Channels) {
		return &ErrDimension{
			What:     fmt.Sprintf("channel range of %s merged into %s", src.Name, dst.Name),
			Expected: fmt.Sprintf("within [%g, %g)", dst.Channels.Low, dst.Channels.High),
			Actual:   fmt.Sprintf("[%g, %g)", src.Channels.Low, src.Channels.High),
		}
	}
	if !dst.Ticks.Contains(src.Ticks) {
		return &ErrDimension{
			What:     fmt.Sprintf("tick range of %s merged into %s", src.Name, dst.Name),
			Expected: fmt.Sprintf("within [%g, %g)", dst.Ticks.Low, dst.Ticks.High),
			Actual:   fmt.Sprintf("[%g, %g)", src.Ticks.Low, src.Ticks.High),
		}
	}
	return nil
}

// MergeGrids writes every source cell into the destination cell whose
// interval holds the source cell center. All sources are validated before
// the destination is touched.
func MergeGrids(dst *Grid, sources []*Grid, opts MergeOptions) error {
	for _, src := range sources {
		if err := checkGridGeometry(dst, src); err != nil {
			return err
		}
	}
	for _, src := range sources {
		if err := mergeGrid(dst, src, opts); err != nil {
			return err
		}
	}
	return nil
}

func mergeGrid(dst *Grid, src *Grid, opts MergeOptions) error {
	scale := opts.scale()
	nTicks := src.NTicks()

	// Destination tick bins do not depend on the channel
	tickBins := make([]int, nTicks+1)
	for j := 1; j <= nTicks; j++ {
		tickBins[j] = dst.Ticks.FindBin(src.Ticks.BinCenter(j))
	}

	for i := 1; i <= src.NChannels(); i++ {
		channelBin := dst.Channels.FindBin(src.Channels.BinCenter(i))

		baseline := 0.0
		if opts.SubtractBaseline {
			var err error
			baseline, err = Median(src.Waveform(i))
			if err != nil {
				return fmt.Errorf("baseline of channel %d in %s: %w", src.ChannelID(i), src.Name, err)
			}
		}

		for j := 1; j <= nTicks; j++ {
			content := src.Sample(i, j)
			dst.SetSample(channelBin, tickBins[j], (content-baseline)*scale)
		}
	}

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Merging %s to %s", src.Name, dst.Name)
		logger.Info(message, "merge")
	}
	return nil
}

// MergeTags reads every tag from src and merges them into dst. A missing tag
// aborts the merge before any cell is written.
func MergeTags(src GridSource, dst *Grid, tags []string, opts MergeOptions) error {
	sources := make([]*Grid, 0, len(tags))
	for _, tag := range tags {
		g, err := src.Grid(tag)
		if err != nil {
			return fmt.Errorf("error reading grid %s: %w", tag, err)
		}
		sources = append(sources, g)
	}
	return MergeGrids(dst, sources, opts)
}

func MergeByTag(src GridSource, dst *Grid, tag string, opts MergeOptions) error {
	return MergeTags(src, dst, []string{tag}, opts)
}

// MergeVectors is the 1D variant of MergeGrids, used for channel thresholds.
func MergeVectors(dst *Vector, sources []*Vector) error {
	for _, src := range sources {
		if !dst.Axis.Contains(src.Axis) {
			return &ErrDimension{
				What:     fmt.Sprintf("channel range of %s merged into %s", src.Name, dst.Name),
				Expected: fmt.Sprintf("within [%g, %g)", dst.Axis.Low, dst.Axis.High),
				Actual:   fmt.Sprintf("[%g, %g)", src.Axis.Low, src.Axis.High),
			}
		}
	}
	for _, src := range sources {
		for i := 1; i <= src.Len(); i++ {
			bin := dst.Axis.FindBin(src.Axis.BinCenter(i))
			dst.Set(bin, src.At(i))
		}
		if configuration.Verbosity > 0 {
			message := fmt.Sprintf("Merging %s to %s", src.Name, dst.Name)
			logger.Info(message, "merge")
		}
	}
	return nil
}

func MergeVectorByTag(src GridSource, dst *Vector, tag string) error {
	v, err := src.Vector(tag)
	if err != nil {
		return fmt.Errorf("error reading vector %s: %w", tag, err)
	}
	return MergeVectors(dst, []*Vector{v})
}
