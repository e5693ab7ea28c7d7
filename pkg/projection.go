package magnify

import "fmt"

type ProjectionAxis int

const (
	ChannelAxis ProjectionAxis = iota
	TickAxis
)

func (a ProjectionAxis) String() string {
	if a == TickAxis {
		return "tick"
	}
	return "channel"
}

// Projection is a 1D cut through a grid. For a channel projection Axis is
// the grid's tick axis, for a tick projection the channel axis.
type Projection struct {
	Name   string
	Title  string
	Source string
	Along  ProjectionAxis
	At     int
	Axis   Axis
	Values []float64
}

// ChannelProjection returns the scaled waveform of one channel id.
func ChannelProjection(g *Grid, channelID int) (*Projection, error) {
	channel, err := g.ChannelIndex(channelID)
	if err != nil {
		return nil, err
	}
	values := make([]float64, g.NTicks())
	for j := 1; j <= g.NTicks(); j++ {
		values[j-1] = g.Value(channel, j)
	}
	return &Projection{
		Name:   fmt.Sprintf("hWire_%s", g.Name),
		Title:  fmt.Sprintf("Channel %d", channelID),
		Source: g.Name,
		Along:  ChannelAxis,
		At:     channelID,
		Axis:   g.Ticks,
		Values: values,
	}, nil
}

// TickProjection returns the scaled cross-section of all channels at one tick.
func TickProjection(g *Grid, tick int) (*Projection, error) {
	tickIndex, err := g.TickIndex(tick)
	if err != nil {
		return nil, err
	}
	values := make([]float64, g.NChannels())
	for i := 1; i <= g.NChannels(); i++ {
		values[i-1] = g.Value(i, tickIndex)
	}
	return &Projection{
		Name:   fmt.Sprintf("hTick_%s", g.Name),
		Title:  fmt.Sprintf("Time Tick %d", tick),
		Source: g.Name,
		Along:  TickAxis,
		At:     tick,
		Axis:   g.Channels,
		Values: values,
	}, nil
}
