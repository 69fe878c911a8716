package profile

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/client/crop"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// JPEGQuality is the encoder quality of uploaded crops.
const JPEGQuality = 0.95

var ErrCropClosed = errors.New("crop dialog is closed")

// ScrollLock suspends background activity while the crop dialog is open.
// Resume is called exactly once per Suspend.
type ScrollLock interface {
	Suspend()
	Resume()
}

// CropSession is an open crop dialog over one decoded image. Selections are
// kept in display space; the natural-space mapping is recomputed for every
// render.
type CropSession struct {
	ed      *Editor
	lock    ScrollLock
	release sync.Once

	mu        sync.Mutex
	img       image.Image
	natural   crop.Size
	display   crop.Size
	sel       crop.Selection
	completed *crop.Selection
	preview   *image.RGBA
	closed    bool
}

// OpenCrop decodes r and opens the crop dialog with a centred square
// selection. A decode failure is reported and leaves everything else as
// it was.
func (e *Editor) OpenCrop(r io.Reader, lock ScrollLock) (*CropSession, error) {
	if err := e.loaded(); err != nil {
		return nil, err
	}
	img, _, err := crop.Decode(r)
	if err != nil {
		e.setError("Failed to load image. Please choose a PNG, JPEG, GIF or WebP file.")
		return nil, err
	}

	natural := crop.SizeOf(img)
	display := natural.Scale(e.opts.PreviewWidth / natural.W)
	s := &CropSession{
		ed:      e,
		lock:    lock,
		img:     img,
		natural: natural,
		display: display,
		sel:     crop.InitialSelection(natural, display, e.opts.OutputSize),
	}
	if err := s.render(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	prev := e.crop
	e.crop = s
	e.mu.Unlock()
	if prev != nil {
		prev.Cancel()
	}

	if lock != nil {
		lock.Suspend()
	}
	return s, nil
}

// Crop returns the open crop dialog, or nil.
func (e *Editor) Crop() *CropSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.crop
}

func (s *CropSession) render() error {
	p, err := crop.Plan(s.natural, s.display, s.sel, s.ed.opts.DevicePixelRatio, s.ed.opts.OutputSize)
	if err != nil {
		return err
	}
	s.preview = crop.Render(s.img, p)
	return nil
}

func (s *CropSession) Natural() crop.Size { return s.natural }

func (s *CropSession) Display() crop.Size { return s.display }

func (s *CropSession) Selection() crop.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// Preview is the circular render of the current selection.
func (s *CropSession) Preview() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

func (s *CropSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Adjust moves or resizes the selection, clamped to the displayed image,
// and re-renders the preview.
func (s *CropSession) Adjust(sel crop.Selection) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrCropClosed
	}
	next := sel.Clamp(s.display)
	if next.Width <= 0 || next.Height <= 0 {
		return nil, crop.ErrEmptySelection
	}
	s.sel = next
	s.completed = nil
	if err := s.render(); err != nil {
		return nil, err
	}
	return s.preview, nil
}

// Complete finalizes the current selection, as on pointer release.
func (s *CropSession) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.sel
	s.completed = &c
}

// Upload renders the completed selection (or the current one) as a JPEG,
// posts it and closes the dialog. On failure the dialog stays open.
func (s *CropSession) Upload(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrCropClosed
	}
	sel := s.sel
	if s.completed != nil {
		sel = *s.completed
	}
	p, err := crop.Plan(s.natural, s.display, sel, s.ed.opts.DevicePixelRatio, s.ed.opts.OutputSize)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	out := crop.Render(s.img, p)
	s.mu.Unlock()

	var buf bytes.Buffer
	if err := crop.EncodeJPEG(&buf, out, JPEGQuality); err != nil {
		return err
	}
	if err := s.ed.uploadPhoto(ctx, "profile.jpg", "image/jpeg", buf.Bytes()); err != nil {
		return err
	}
	s.close()
	return nil
}

// Cancel discards the selection and closes the dialog without contacting
// the server.
func (s *CropSession) Cancel() { s.close() }

// Escape is the keyboard dismissal; it behaves like Cancel.
func (s *CropSession) Escape() { s.Cancel() }

func (s *CropSession) close() {
	s.mu.Lock()
	s.closed = true
	s.img = nil
	s.preview = nil
	s.completed = nil
	s.mu.Unlock()

	s.release.Do(func() {
		if s.lock != nil {
			s.lock.Resume()
		}
	})

	s.ed.mu.Lock()
	if s.ed.crop == s {
		s.ed.crop = nil
	}
	s.ed.mu.Unlock()
}

// uploadPhoto posts image bytes and mirrors the returned URL.
func (e *Editor) uploadPhoto(ctx context.Context, filename, contentType string, data []byte) error {
	resp, err := e.api.UploadPhoto(ctx, filename, contentType, data)
	if err != nil {
		e.log.Warn(ctx, "photo upload failed", "error", err)
		e.setError(common.UserMessage(err, "Failed to upload photo."))
		return err
	}

	e.mu.Lock()
	if e.profile != nil {
		e.profile.ProfilePhoto = resp.ProfilePhoto
	}
	e.mu.Unlock()

	msg := resp.Message
	if msg == "" {
		msg = "Profile photo updated."
	}
	e.notify(msg, 0)
	return nil
}
