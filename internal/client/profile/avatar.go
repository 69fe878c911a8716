package profile

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
)

// AvatarSize is the edge of the built-in avatar images.
const AvatarSize = 256

// Avatar is one of the built-in pictures offered on the avatar tab.
type Avatar struct {
	Name       string
	Background color.RGBA
	Foreground color.RGBA
	Rings      int
}

var avatars = []Avatar{
	{Name: "ocean", Background: color.RGBA{0x1e, 0x3a, 0x8a, 0xff}, Foreground: color.RGBA{0x93, 0xc5, 0xfd, 0xff}, Rings: 3},
	{Name: "forest", Background: color.RGBA{0x14, 0x53, 0x2d, 0xff}, Foreground: color.RGBA{0x86, 0xef, 0xac, 0xff}, Rings: 2},
	{Name: "sunset", Background: color.RGBA{0x9a, 0x34, 0x12, 0xff}, Foreground: color.RGBA{0xfd, 0xba, 0x74, 0xff}, Rings: 4},
	{Name: "plum", Background: color.RGBA{0x58, 0x1c, 0x87, 0xff}, Foreground: color.RGBA{0xd8, 0xb4, 0xfe, 0xff}, Rings: 1},
	{Name: "slate", Background: color.RGBA{0x1f, 0x29, 0x37, 0xff}, Foreground: color.RGBA{0xd1, 0xd5, 0xdb, 0xff}, Rings: 5},
}

// Avatars lists the built-in avatars.
func Avatars() []Avatar {
	return append([]Avatar(nil), avatars...)
}

// Image draws the avatar as concentric rings.
func (a Avatar) Image() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, AvatarSize, AvatarSize))
	c := float64(AvatarSize) / 2
	band := c / float64(2*a.Rings+1)
	for y := 0; y < AvatarSize; y++ {
		for x := 0; x < AvatarSize; x++ {
			d := math.Hypot(float64(x)+0.5-c, float64(y)+0.5-c)
			if int(d/band)%2 == 0 {
				img.SetRGBA(x, y, a.Foreground)
			} else {
				img.SetRGBA(x, y, a.Background)
			}
		}
	}
	return img
}

// ChooseAvatar uploads built-in avatar i exactly as a user photo would be.
func (e *Editor) ChooseAvatar(ctx context.Context, i int) error {
	if err := e.loaded(); err != nil {
		return err
	}
	if i < 0 || i >= len(avatars) {
		return fmt.Errorf("avatar %d does not exist", i)
	}
	a := avatars[i]

	var buf bytes.Buffer
	if err := png.Encode(&buf, a.Image()); err != nil {
		return err
	}
	return e.uploadPhoto(ctx, "avatar-"+a.Name+".png", "image/png", buf.Bytes())
}
