package render

import (
	"fmt"
	"image/color"
	"math"

	magnify "github.com/bnlif/magnify_go/pkg"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	Width  = 20 * vg.Centimeter
	Height = 15 * vg.Centimeter

	paletteColors = 255
)

// ColorScale maps values to a diverging blue-red palette over a z range.
// Values outside the range take the color of the nearest edge.
type ColorScale struct {
	cmap palette.ColorMap
}

func NewColorScale(zmin float64, zmax float64) (*ColorScale, error) {
	if !(zmin < zmax) {
		return nil, &magnify.ErrInvalid{What: "z range", Reason: fmt.Sprintf("[%g, %g]", zmin, zmax)}
	}
	cmap := moreland.SmoothBlueRed()
	cmap.SetMax(zmax)
	cmap.SetMin(zmin)
	return &ColorScale{cmap: cmap}, nil
}

func (s *ColorScale) Min() float64 {
	return s.cmap.Min()
}

func (s *ColorScale) Max() float64 {
	return s.cmap.Max()
}

func (s *ColorScale) Color(v float64) color.Color {
	if math.IsNaN(v) {
		return color.Black
	}
	v = math.Max(s.cmap.Min(), math.Min(s.cmap.Max(), v))
	c, err := s.cmap.At(v)
	if err != nil {
		return color.Black
	}
	return c
}

func (s *ColorScale) Palette() palette.Palette {
	return s.cmap.Palette(paletteColors)
}

// cellBoxes draws every highlighted cell as a filled box over its bin edges.
type cellBoxes struct {
	grid  *magnify.Grid
	cells []magnify.HighlightedCell
	scale *ColorScale
}

func (b *cellBoxes) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for _, cell := range b.cells {
		x0, x1 := b.grid.Channels.BinLowEdge(cell.Channel), b.grid.Channels.BinUpEdge(cell.Channel)
		y0, y1 := b.grid.Ticks.BinLowEdge(cell.Tick), b.grid.Ticks.BinUpEdge(cell.Tick)
		pts := []vg.Point{
			{X: trX(x0), Y: trY(y0)},
			{X: trX(x1), Y: trY(y0)},
			{X: trX(x1), Y: trY(y1)},
			{X: trX(x0), Y: trY(y1)},
		}
		c.FillPolygon(b.scale.Color(cell.Magnitude), c.ClipPolygonXY(pts))
	}
}

func (b *cellBoxes) DataRange() (xmin, xmax, ymin, ymax float64) {
	return b.grid.Channels.Low, b.grid.Channels.High, b.grid.Ticks.Low, b.grid.Ticks.High
}

// gridXYZ exposes grid values to plotter.HeatMap with channels as columns.
type gridXYZ struct {
	grid *magnify.Grid
}

func (g gridXYZ) Dims() (c, r int) {
	return g.grid.NChannels(), g.grid.NTicks()
}

func (g gridXYZ) Z(c, r int) float64 {
	return g.grid.Value(c+1, r+1)
}

func (g gridXYZ) X(c int) float64 {
	return g.grid.Channels.BinCenter(c + 1)
}

func (g gridXYZ) Y(r int) float64 {
	return g.grid.Ticks.BinCenter(r + 1)
}

func newGridPlot(g *magnify.Grid, title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "channel"
	p.Y.Label.Text = "ticks"
	p.X.Min, p.X.Max = g.Channels.Low, g.Channels.High
	p.Y.Min, p.Y.Max = g.Ticks.Low, g.Ticks.High
	return p
}

// Cells saves the highlighted cells of g. The format follows the extension of path.
func Cells(g *magnify.Grid, cells []magnify.HighlightedCell, scale *ColorScale, path string) error {
	p := newGridPlot(g, fmt.Sprintf("%s: %d cells above threshold", g.Name, len(cells)))
	p.Add(plotter.NewGrid(), &cellBoxes{grid: g, cells: cells, scale: scale})
	if err := p.Save(Width, Height, path); err != nil {
		return fmt.Errorf("error saving %s: %w", path, err)
	}
	logPlot(path)
	return nil
}

// Grid saves a heat map of the scaled values of g clamped to the scale range.
func Grid(g *magnify.Grid, scale *ColorScale, path string) error {
	p := newGridPlot(g, g.Name)
	heat := plotter.NewHeatMap(gridXYZ{grid: g}, scale.Palette())
	heat.Min, heat.Max = scale.Min(), scale.Max()
	pal := scale.Palette().Colors()
	heat.Underflow = pal[0]
	heat.Overflow = pal[len(pal)-1]
	p.Add(heat)
	if err := p.Save(Width, Height, path); err != nil {
		return fmt.Errorf("error saving %s: %w", path, err)
	}
	logPlot(path)
	return nil
}

// ProjectionRange returns the y range of a projection padded by 5%.
func ProjectionRange(values []float64) (float64, float64) {
	if len(values) == 0 {
		return -1, 1
	}
	low, high := floats.Min(values), floats.Max(values)
	pad := 0.05 * (high - low)
	if pad == 0 {
		pad = math.Max(1, 0.05*math.Abs(high))
	}
	return low - pad, high + pad
}

// Projection saves a projection as a step line over its axis.
func Projection(proj *magnify.Projection, path string) error {
	xys := make(plotter.XYs, len(proj.Values)+1)
	for i, v := range proj.Values {
		xys[i].X = proj.Axis.BinLowEdge(i + 1)
		xys[i].Y = v
	}
	if n := len(proj.Values); n > 0 {
		xys[n].X = proj.Axis.High
		xys[n].Y = proj.Values[n-1]
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("error plotting %s: %w", proj.Name, err)
	}
	line.StepStyle = plotter.PostStep
	line.LineStyle.Width = vg.Points(1)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s %s", proj.Title, proj.Source)
	if proj.Along == magnify.ChannelAxis {
		p.X.Label.Text = "ticks"
	} else {
		p.X.Label.Text = "channel"
	}
	p.X.Min, p.X.Max = proj.Axis.Low, proj.Axis.High
	p.Y.Min, p.Y.Max = ProjectionRange(proj.Values)
	p.Add(plotter.NewGrid(), line)

	if err := p.Save(Width, Height, path); err != nil {
		return fmt.Errorf("error saving %s: %w", path, err)
	}
	logPlot(path)
	return nil
}

func logPlot(path string) {
	if magnify.GetConfiguration().Verbosity > 0 {
		magnify.GetLogger().Info(fmt.Sprintf("Saved %s", path), "render")
	}
}
