package magnify

import (
	"fmt"
	"math"
)

// Axis is a uniformly binned axis. Bins are numbered from 1 to Bins,
// bin 0 is the underflow and Bins+1 the overflow.
type Axis struct {
	Bins int
	Low  float64
	High float64
}

func NewAxis(bins int, low float64, high float64) (Axis, error) {
	if bins <= 0 {
		return Axis{}, &ErrInvalid{What: "axis", Reason: fmt.Sprintf("%d bins", bins)}
	}
	if !(high > low) {
		return Axis{}, &ErrInvalid{What: "axis", Reason: fmt.Sprintf("upper edge %g not above lower edge %g", high, low)}
	}
	return Axis{Bins: bins, Low: low, High: high}, nil
}

func (a Axis) Width() float64 {
	return (a.High - a.Low) / float64(a.Bins)
}

func (a Axis) BinLowEdge(i int) float64 {
	return a.Low + float64(i-1)*a.Width()
}

func (a Axis) BinUpEdge(i int) float64 {
	return a.Low + float64(i)*a.Width()
}

func (a Axis) BinCenter(i int) float64 {
	return a.Low + (float64(i)-0.5)*a.Width()
}

// FindBin returns the bin whose half-open interval [low, up) holds x.
func (a Axis) FindBin(x float64) int {
	if x < a.Low {
		return 0
	}
	if x >= a.High {
		return a.Bins + 1
	}
	bin := 1 + int(math.Floor(float64(a.Bins)*(x-a.Low)/(a.High-a.Low)))
	// Rounding can push values right below High into the overflow
	if bin > a.Bins {
		bin = a.Bins
	}
	return bin
}

func (a Axis) InRange(bin int) bool {
	return bin >= 1 && bin <= a.Bins
}

// Contains reports whether the interval of b lies inside the interval of a.
func (a Axis) Contains(b Axis) bool {
	return b.Low >= a.Low && b.High <= a.High
}

func (a Axis) String() string {
	return fmt.Sprintf("%d bins [%g, %g)", a.Bins, a.Low, a.High)
}
