package crop

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	_ "golang.org/x/image/webp"
)

// Backdrop fills the area outside the circle. JPEG has no alpha channel.
var Backdrop = color.White

// Decode reads any registered image format (PNG, JPEG, GIF, WebP).
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(bufio.NewReader(r))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, format, nil
}

// Render draws p.Source of src into a new p.Dest sized image, clipped to
// the plan's circle over Backdrop.
func Render(src image.Image, p DrawPlan) *image.RGBA {
	dst := image.NewRGBA(p.Dest)
	draw.Draw(dst, dst.Bounds(), image.NewUniform(Backdrop), image.Point{}, draw.Src)
	if p.Source.W <= 0 || p.Source.H <= 0 {
		return dst
	}

	scaled := image.NewRGBA(p.Dest)
	b := src.Bounds()
	kx := float64(p.Dest.Dx()) / p.Source.W
	ky := float64(p.Dest.Dy()) / p.Source.H
	s2d := f64.Aff3{
		kx, 0, -(p.Source.X + float64(b.Min.X)) * kx,
		0, ky, -(p.Source.Y + float64(b.Min.Y)) * ky,
	}
	draw.CatmullRom.Transform(scaled, s2d, src, b, draw.Src, nil)

	mask := circle{cx: p.CenterX, cy: p.CenterY, r: p.Radius, bounds: p.Dest}
	draw.DrawMask(dst, dst.Bounds(), scaled, image.Point{}, mask, image.Point{}, draw.Over)
	return dst
}

// circle is an anti-aliased disc used as an alpha mask.
type circle struct {
	cx, cy, r float64
	bounds    image.Rectangle
}

func (c circle) ColorModel() color.Model { return color.AlphaModel }

func (c circle) Bounds() image.Rectangle { return c.bounds }

func (c circle) At(x, y int) color.Color {
	dx := float64(x) + 0.5 - c.cx
	dy := float64(y) + 0.5 - c.cy
	cover := c.r - math.Hypot(dx, dy) + 0.5
	switch {
	case cover <= 0:
		return color.Alpha{}
	case cover >= 1:
		return color.Alpha{A: 0xff}
	default:
		return color.Alpha{A: uint8(cover * 0xff)}
	}
}

// EncodeJPEG writes img as JPEG. quality is a fraction in (0, 1].
func EncodeJPEG(w io.Writer, img image.Image, quality float64) error {
	q := int(math.Round(quality * 100))
	q = max(1, min(q, 100))
	return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
}
