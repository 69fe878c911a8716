// Package crop turns a selection made over a displayed image into a
// circular avatar at a fixed output size.
//
// Three coordinate spaces are involved: display space (the image as shown,
// where the selection lives), natural space (the image's own pixels) and
// output space (the square destination, sized in device pixels).
package crop

import (
	"errors"
	"image"
	"math"
)

var (
	ErrEmptySelection = errors.New("crop: empty selection")
	ErrDecode         = errors.New("crop: image could not be decoded")
)

type Unit string

const (
	Pixels  Unit = "px"
	Percent Unit = "%"
)

// Size is a width and height in any one space.
type Size struct {
	W, H float64
}

// SizeOf returns the natural size of img.
func SizeOf(img image.Image) Size {
	b := img.Bounds()
	return Size{W: float64(b.Dx()), H: float64(b.Dy())}
}

// Scale returns s multiplied by f.
func (s Size) Scale(f float64) Size { return Size{W: s.W * f, H: s.H * f} }

func (s Size) empty() bool { return s.W <= 0 || s.H <= 0 }

type Rect struct {
	X, Y, W, H float64
}

// Selection is the user's crop region in display space.
type Selection struct {
	Unit   Unit
	X      float64
	Y      float64
	Width  float64
	Height float64
	Aspect float64
}

// Pixels converts a percentage selection to display pixels.
func (s Selection) Pixels(display Size) Selection {
	if s.Unit != Percent {
		s.Unit = Pixels
		return s
	}
	return Selection{
		Unit:   Pixels,
		X:      s.X / 100 * display.W,
		Y:      s.Y / 100 * display.H,
		Width:  s.Width / 100 * display.W,
		Height: s.Height / 100 * display.H,
		Aspect: s.Aspect,
	}
}

// InitialSelection returns a centred square covering the smaller of the
// image's shorter side and twice the target output size, measured in
// natural pixels and expressed in display space. Capping at twice the
// target keeps the final render a downscale.
func InitialSelection(natural, display Size, target int) Selection {
	side := math.Min(natural.W, natural.H)
	if t := 2 * float64(target); t > 0 && t < side {
		side = t
	}
	k := math.Min(display.W/natural.W, display.H/natural.H)
	d := side * k
	return Selection{
		Unit:   Pixels,
		X:      (display.W - d) / 2,
		Y:      (display.H - d) / 2,
		Width:  d,
		Height: d,
		Aspect: 1,
	}
}

// Clamp keeps the selection inside the displayed image, shrinking it if
// needed. A selection with an aspect keeps that aspect.
func (s Selection) Clamp(display Size) Selection {
	s = s.Pixels(display)
	s.Width = math.Max(0, math.Min(s.Width, display.W))
	s.Height = math.Max(0, math.Min(s.Height, display.H))
	if s.Aspect > 0 {
		w := math.Min(s.Width, s.Height*s.Aspect)
		s.Width, s.Height = w, w/s.Aspect
	}
	s.X = math.Max(0, math.Min(s.X, display.W-s.Width))
	s.Y = math.Max(0, math.Min(s.Y, display.H-s.Height))
	return s
}

// DrawPlan is everything needed to render one crop.
type DrawPlan struct {
	ScaleX float64
	ScaleY float64
	// Source is the selection mapped into natural space.
	Source Rect
	// Dest is the output square in device pixels.
	Dest image.Rectangle
	// Circle clip, in Dest coordinates.
	CenterX float64
	CenterY float64
	Radius  float64
}

// Plan maps sel from display space to natural space and sizes the output
// square as outSize logical pixels at the given device pixel ratio.
func Plan(natural, display Size, sel Selection, dpr float64, outSize int) (DrawPlan, error) {
	if natural.empty() || display.empty() {
		return DrawPlan{}, ErrEmptySelection
	}
	sel = sel.Pixels(display)
	if sel.Width <= 0 || sel.Height <= 0 || outSize <= 0 {
		return DrawPlan{}, ErrEmptySelection
	}
	if dpr <= 0 {
		dpr = 1
	}

	sx := natural.W / display.W
	sy := natural.H / display.H
	px := int(math.Round(float64(outSize) * dpr))
	if px < 1 {
		px = 1
	}
	r := float64(px) / 2

	return DrawPlan{
		ScaleX: sx,
		ScaleY: sy,
		Source: Rect{
			X: sel.X * sx,
			Y: sel.Y * sy,
			W: sel.Width * sx,
			H: sel.Height * sy,
		},
		Dest:    image.Rect(0, 0, px, px),
		CenterX: r,
		CenterY: r,
		Radius:  r,
	}, nil
}
