package profile

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/client/crop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) *bytes.Reader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return bytes.NewReader(buf.Bytes())
}

func TestOpenCrop_InitialSelectionAndPreview(t *testing.T) {
	fx := newFixture(t)
	fx.mount(t)
	lock := &countingLock{}

	s, err := fx.ed.OpenCrop(pngOf(t, 200, 160), lock)
	require.NoError(t, err)
	assert.Equal(t, 1, lock.Suspends)

	assert.Equal(t, crop.Size{W: 100, H: 80}, s.Display())
	sel := s.Selection()
	assert.InDelta(t, 50.0, sel.Width, 1e-9, "100 natural px (2x output) at display scale 0.5")
	assert.Equal(t, image.Rect(0, 0, 100, 100), s.Preview().Bounds(), "output size x dpr")
	assert.Same(t, s, fx.ed.Crop())
}

func TestOpenCrop_DecodeFailure(t *testing.T) {
	fx := newFixture(t)
	fx.mount(t)
	lock := &countingLock{}

	_, err := fx.ed.OpenCrop(bytes.NewReader([]byte("garbage")), lock)
	require.ErrorIs(t, err, crop.ErrDecode)
	assert.NotEmpty(t, fx.ed.Error())
	assert.Zero(t, lock.Suspends)
	assert.Nil(t, fx.ed.Crop())

	p, _ := fx.ed.Profile()
	assert.Equal(t, "alice", p.Username)
}

func TestCrop_AdjustClampsAndRerenders(t *testing.T) {
	fx := newFixture(t)
	fx.mount(t)
	s, err := fx.ed.OpenCrop(pngOf(t, 200, 160), nil)
	require.NoError(t, err)

	prev, err := s.Adjust(crop.Selection{X: 90, Y: 70, Width: 40, Height: 40, Aspect: 1})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 100), prev.Bounds())

	sel := s.Selection()
	assert.InDelta(t, 60.0, sel.X, 1e-9)
	assert.InDelta(t, 40.0, sel.Y, 1e-9)

	_, err = s.Adjust(crop.Selection{Width: 0, Height: 0})
	require.ErrorIs(t, err, crop.ErrEmptySelection)
}

func TestCrop_UploadSendsJPEGAndCloses(t *testing.T) {
	fx := newFixture(t)
	fx.mount(t)
	lock := &countingLock{}
	s, err := fx.ed.OpenCrop(pngOf(t, 200, 160), lock)
	require.NoError(t, err)
	s.Complete()

	require.NoError(t, s.Upload(context.Background()))
	assert.Equal(t, "image/jpeg", fx.api.LastContentType)
	img, err := jpeg.Decode(bytes.NewReader(fx.api.LastUpload))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 100), img.Bounds())

	p, _ := fx.ed.Profile()
	assert.Equal(t, "/uploads/1-profile.jpg", p.ProfilePhoto)
	assert.True(t, s.Closed())
	assert.Nil(t, fx.ed.Crop())
	assert.Equal(t, 1, lock.Resumes)

	s.Cancel()
	s.Escape()
	assert.Equal(t, 1, lock.Resumes, "released exactly once")
	require.ErrorIs(t, s.Upload(context.Background()), ErrCropClosed)
}

func TestCrop_UploadFailureKeepsDialog(t *testing.T) {
	fx := newFixture(t)
	fx.mount(t)
	lock := &countingLock{}
	s, err := fx.ed.OpenCrop(pngOf(t, 200, 160), lock)
	require.NoError(t, err)

	fx.api.UploadErr = errors.New("network")
	require.Error(t, s.Upload(context.Background()))
	assert.False(t, s.Closed())
	assert.Zero(t, lock.Resumes)
	assert.Equal(t, "Failed to upload photo.", fx.ed.Error())

	s.Escape()
	assert.True(t, s.Closed())
	assert.Equal(t, 1, lock.Resumes)
}

func TestCrop_CancelSendsNothing(t *testing.T) {
	fx := newFixture(t)
	fx.mount(t)
	lock := &countingLock{}
	s, err := fx.ed.OpenCrop(pngOf(t, 200, 160), lock)
	require.NoError(t, err)

	s.Cancel()
	s.Cancel()
	assert.Zero(t, fx.api.Uploads)
	assert.Equal(t, 1, lock.Resumes)
}

func TestCrop_ReopenClosesPrevious(t *testing.T) {
	fx := newFixture(t)
	fx.mount(t)
	first := &countingLock{}
	second := &countingLock{}

	s1, err := fx.ed.OpenCrop(pngOf(t, 50, 50), first)
	require.NoError(t, err)
	_, err = fx.ed.OpenCrop(pngOf(t, 60, 60), second)
	require.NoError(t, err)

	assert.True(t, s1.Closed())
	assert.Equal(t, 1, first.Resumes)
	assert.Zero(t, second.Resumes)
}

func TestChooseAvatar(t *testing.T) {
	fx := newFixture(t)
	fx.mount(t)

	require.Error(t, fx.ed.ChooseAvatar(context.Background(), len(Avatars())))
	require.NoError(t, fx.ed.ChooseAvatar(context.Background(), 1))

	assert.Equal(t, "avatar-forest.png", fx.api.LastFilename)
	assert.Equal(t, "image/png", fx.api.LastContentType)
	img, err := png.Decode(bytes.NewReader(fx.api.LastUpload))
	require.NoError(t, err)
	assert.Equal(t, AvatarSize, img.Bounds().Dx())

	p, _ := fx.ed.Profile()
	assert.Equal(t, "/uploads/1-avatar-forest.png", p.ProfilePhoto)
}
