package magnify

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	DefaultZMin = -500
	DefaultZMax = 500
)

// ProjectionKey identifies the single live projection of a source grid
// along one axis.
type ProjectionKey struct {
	Source string
	Along  ProjectionAxis
}

// Session holds the grids of one visualization: one grid and detector per
// plane, the latest projection per key and the color scale range.
type Session struct {
	ID          uuid.UUID
	Layout      PlaneLayout
	ZMin        float64
	ZMax        float64
	grids       map[Plane]*Grid
	detectors   map[Plane]*Detector
	projections map[ProjectionKey]*Projection
	mask        BadChannelMask
	excludeBad  bool
}

func NewSession(layout PlaneLayout) *Session {
	if layout == nil {
		layout = DefaultPlaneLayout()
	}
	return &Session{
		ID:          uuid.New(),
		Layout:      layout,
		ZMin:        DefaultZMin,
		ZMax:        DefaultZMax,
		grids:       make(map[Plane]*Grid),
		detectors:   make(map[Plane]*Detector),
		projections: make(map[ProjectionKey]*Projection),
	}
}

func (s *Session) info(message string) {
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("session %s: %s", s.ID, message), "session")
	}
}

// AddGrid installs g as the grid of its plane, replacing any previous one.
func (s *Session) AddGrid(g *Grid) {
	s.grids[g.Plane] = g
	d := NewDetector(g)
	d.SetMask(s.mask, s.excludeBad)
	s.detectors[g.Plane] = d
	s.info(fmt.Sprintf("%s: nChannels: %d | nTicks: %d", g.Name, g.NChannels(), g.NTicks()))
}

func (s *Session) Grid(plane Plane) (*Grid, error) {
	g, ok := s.grids[plane]
	if !ok {
		return nil, &ErrMissingTag{Tag: fmt.Sprintf("plane %s", plane)}
	}
	return g, nil
}

func (s *Session) detector(plane Plane) (*Detector, error) {
	d, ok := s.detectors[plane]
	if !ok {
		return nil, &ErrMissingTag{Tag: fmt.Sprintf("plane %s", plane)}
	}
	return d, nil
}

// SetMask applies a bad-channel mask to every current and future detector.
func (s *Session) SetMask(mask BadChannelMask, exclude bool) {
	s.mask = mask
	s.excludeBad = exclude
	for _, d := range s.detectors {
		d.SetMask(mask, exclude)
	}
}

func (s *Session) SetZRange(min float64, max float64) {
	s.ZMin = min
	s.ZMax = max
}

func (s *Session) SetThreshold(plane Plane, threshold float64) ([]HighlightedCell, error) {
	d, err := s.detector(plane)
	if err != nil {
		return nil, err
	}
	cells := d.SetThreshold(threshold)
	s.info(fmt.Sprintf("%s: %d cells above %g", d.Grid().Name, len(cells), threshold))
	return cells, nil
}

func (s *Session) SetChannelThreshold(plane Plane, thresholds *Vector, scaling float64) ([]HighlightedCell, error) {
	d, err := s.detector(plane)
	if err != nil {
		return nil, err
	}
	cells, err := d.SetChannelThreshold(thresholds, scaling)
	if err != nil {
		return nil, err
	}
	s.info(fmt.Sprintf("%s: %d cells above channel threshold %s", d.Grid().Name, len(cells), thresholds.Name))
	return cells, nil
}

// Cells returns the highlighted cells of the last threshold call on plane.
func (s *Session) Cells(plane Plane) []HighlightedCell {
	d, ok := s.detectors[plane]
	if !ok {
		return nil
	}
	return d.Cells()
}

// ChannelProjection projects the waveform of channelID from the grid of the
// plane reading it out. It replaces the cached channel projection of that grid.
func (s *Session) ChannelProjection(channelID int) (*Projection, error) {
	plane, err := s.Layout.PlaneOf(channelID)
	if err != nil {
		return nil, err
	}
	g, err := s.Grid(plane)
	if err != nil {
		return nil, err
	}
	p, err := ChannelProjection(g, channelID)
	if err != nil {
		return nil, err
	}
	s.projections[ProjectionKey{Source: g.Name, Along: ChannelAxis}] = p
	return p, nil
}

// TickProjection projects tick across the grid of plane, replacing the
// cached tick projection of that grid.
func (s *Session) TickProjection(plane Plane, tick int) (*Projection, error) {
	g, err := s.Grid(plane)
	if err != nil {
		return nil, err
	}
	p, err := TickProjection(g, tick)
	if err != nil {
		return nil, err
	}
	s.projections[ProjectionKey{Source: g.Name, Along: TickAxis}] = p
	return p, nil
}

func (s *Session) Projection(key ProjectionKey) (*Projection, bool) {
	p, ok := s.projections[key]
	return p, ok
}

func (s *Session) NumProjections() int {
	return len(s.projections)
}

// Close drops every highlighted cell list and cached projection.
func (s *Session) Close() {
	for _, d := range s.detectors {
		d.Clear()
	}
	s.projections = make(map[ProjectionKey]*Projection)
}
