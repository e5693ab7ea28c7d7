package magnify

import (
	"encoding/json"
	"fmt"
)

type Plane int

const (
	PlaneU Plane = iota
	PlaneV
	PlaneW
)

const (
	ChannelsPerPlane = 64
	DefaultTicks     = 648
)

var Planes = []Plane{PlaneU, PlaneV, PlaneW}

var planeStrings = []string{
	"u",
	"v",
	"w",
}

func (p Plane) String() string {
	if p < PlaneU || p > PlaneW {
		return "UNKNOWN"
	}
	return planeStrings[p]
}

// Tag is the store tag of this plane's grid for a given suffix, e.g. hu_orig.
func (p Plane) Tag(suffix string) string {
	return fmt.Sprintf("h%s_%s", p, suffix)
}

func (p Plane) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Plane) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	plane, err := ParsePlane(s)
	if err != nil {
		return err
	}
	*p = plane
	return nil
}

func ParsePlane(s string) (Plane, error) {
	for i, v := range planeStrings {
		if v == s {
			return Plane(i), nil
		}
	}
	return 0, fmt.Errorf("invalid Plane: %s", s)
}

// PlaneRange is the channel interval read out by one plane.
type PlaneRange struct {
	FirstChannel int
	Channels     int
}

func (r PlaneRange) LastChannel() int {
	return r.FirstChannel + r.Channels - 1
}

func (r PlaneRange) Has(channelID int) bool {
	return channelID >= r.FirstChannel && channelID <= r.LastChannel()
}

// ChannelAxis returns unit bins centered on the channel ids.
func (r PlaneRange) ChannelAxis() Axis {
	return Axis{
		Bins: r.Channels,
		Low:  float64(r.FirstChannel) - 0.5,
		High: float64(r.FirstChannel+r.Channels) - 0.5,
	}
}

// PlaneLayout maps every plane to its channel range.
type PlaneLayout map[Plane]PlaneRange

func DefaultPlaneLayout() PlaneLayout {
	return PlaneLayout{
		PlaneU: {FirstChannel: 64, Channels: ChannelsPerPlane},
		PlaneV: {FirstChannel: 128, Channels: ChannelsPerPlane},
		PlaneW: {FirstChannel: 0, Channels: ChannelsPerPlane},
	}
}

// PlaneOf returns the plane reading out channelID.
func (l PlaneLayout) PlaneOf(channelID int) (Plane, error) {
	for _, plane := range Planes {
		if r, ok := l[plane]; ok && r.Has(channelID) {
			return plane, nil
		}
	}
	return 0, &ErrOutOfAxis{What: "channel", ID: channelID, Axis: l.ChannelSpan()}
}

// ChannelSpan returns unit bins covering every channel of the layout.
func (l PlaneLayout) ChannelSpan() Axis {
	first, last := 0, -1
	for _, r := range l {
		if last < first {
			first, last = r.FirstChannel, r.LastChannel()
			continue
		}
		first = min(first, r.FirstChannel)
		last = max(last, r.LastChannel())
	}
	return PlaneRange{FirstChannel: first, Channels: last - first + 1}.ChannelAxis()
}

func (l PlaneLayout) Range(plane Plane) (PlaneRange, error) {
	r, ok := l[plane]
	if !ok {
		return PlaneRange{}, &ErrMissingTag{Tag: plane.String()}
	}
	return r, nil
}

// NewPlaneGrid creates an empty full-size grid for one plane.
func (l PlaneLayout) NewPlaneGrid(plane Plane, name string, nTicks int, kind DatasetKind, storage Storage) (*Grid, error) {
	r, err := l.Range(plane)
	if err != nil {
		return nil, err
	}
	ticks, err := NewAxis(nTicks, 0, float64(nTicks))
	if err != nil {
		return nil, err
	}
	return NewGrid(GridSpec{
		Name:     name,
		Plane:    plane,
		Kind:     kind,
		Storage:  storage,
		Channels: r.ChannelAxis(),
		Ticks:    ticks,
	})
}

// NewPlaneVector creates an empty per-channel vector for one plane.
func (l PlaneLayout) NewPlaneVector(plane Plane, name string, storage Storage) (*Vector, error) {
	r, err := l.Range(plane)
	if err != nil {
		return nil, err
	}
	return NewVector(name, r.ChannelAxis(), storage)
}
