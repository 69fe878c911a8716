package cli

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/client/profile"
	"github.com/dmitrijs2005/gophauth/internal/filex"
)

// PreviewFileName is where the crop dialog writes its live preview.
const PreviewFileName = "gophauth-crop-preview.png"

const cropHelp = "Crop commands: move <x> <y>, size <side>, preview, upload, cancel (or esc)"

// Photo opens path in the crop dialog. Selections are in display pixels of
// an image shown PreviewWidth wide.
func (a *App) Photo(ctx context.Context, path string) error {
	ed, err := a.mountedEditor(ctx)
	if err != nil {
		return err
	}
	ed.SelectTab(profile.TabAvatar)

	f, err := os.Open(path)
	if err != nil {
		printlnFn("Cannot open", path)
		return err
	}
	s, err := ed.OpenCrop(f, noticeLock{a})
	_ = f.Close()
	if err != nil {
		return outcome(ed, err)
	}

	d := s.Display()
	printlnFn(fmt.Sprintf("Image shown at %.0fx%.0f.", d.W, d.H))
	a.describeSelection(s)
	a.writePreview(s)
	printlnFn(cropHelp)

	for !s.Closed() {
		line, err := getSimpleText(a.reader, "crop", a.out)
		if err != nil {
			s.Cancel()
			return err
		}
		if err := a.cropCommand(ctx, ed, s, strings.Fields(line)); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) cropCommand(ctx context.Context, ed *profile.Editor, s *profile.CropSession, f []string) error {
	if len(f) == 0 {
		return nil
	}
	sel := s.Selection()

	switch f[0] {
	case "move":
		x, y, ok := twoFloats(f[1:])
		if !ok {
			printlnFn("Usage: move <x> <y>")
			return nil
		}
		sel.X, sel.Y = x, y
	case "size":
		side, err := strconv.ParseFloat(strings.Join(f[1:], ""), 64)
		if err != nil {
			printlnFn("Usage: size <side>")
			return nil
		}
		sel.Width, sel.Height = side, side
	case "preview":
		a.writePreview(s)
		return nil
	case "upload":
		s.Complete()
		_ = outcome(ed, s.Upload(ctx))
		return nil
	case "cancel", "esc":
		s.Escape()
		printlnFn("Photo discarded.")
		return nil
	default:
		printlnFn(cropHelp)
		return nil
	}

	if _, err := s.Adjust(sel); err != nil {
		printlnFn("Selection is empty.")
		return nil
	}
	a.describeSelection(s)
	a.writePreview(s)
	return nil
}

func twoFloats(args []string) (float64, float64, bool) {
	if len(args) != 2 {
		return 0, 0, false
	}
	x, err1 := strconv.ParseFloat(args[0], 64)
	y, err2 := strconv.ParseFloat(args[1], 64)
	return x, y, err1 == nil && err2 == nil
}

func (a *App) describeSelection(s *profile.CropSession) {
	sel := s.Selection()
	printlnFn(fmt.Sprintf("Selection: %.0f,%.0f %.0fx%.0f", sel.X, sel.Y, sel.Width, sel.Height))
}

func (a *App) writePreview(s *profile.CropSession) {
	img := s.Preview()
	if img == nil {
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		a.log.Warn(context.Background(), "preview not rendered", "error", err)
		return
	}
	path, err := filex.WriteUserFile(a.config.OutputDir, PreviewFileName, buf.Bytes())
	if err != nil {
		a.log.Warn(context.Background(), "preview not written", "error", err)
		return
	}
	printlnFn("Preview saved to", path)
}
