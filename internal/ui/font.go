// Package ui is the Ebitengine front end: a board you can play on against
// the search engine or another person, with a side panel for game controls.
package ui

import (
	"bytes"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	regularSource *text.GoTextFaceSource
	boldSource    *text.GoTextFaceSource
)

const (
	defaultFontSize = 14.0
	titleFontSize   = 16.0
	coordFontSize   = 11.0
)

func init() {
	var err error
	if regularSource, err = text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF)); err != nil {
		slog.Warn("load regular font", "err", err)
	}
	if boldSource, err = text.NewGoTextFaceSource(bytes.NewReader(gobold.TTF)); err != nil {
		slog.Warn("load bold font", "err", err)
	}
}

// GetRegularFace returns the regular face at the default size.
func GetRegularFace() *text.GoTextFace {
	return GetFaceWithSize(defaultFontSize)
}

// GetBoldFace returns the bold face used for titles.
func GetBoldFace() *text.GoTextFace {
	if boldSource == nil {
		return GetRegularFace()
	}
	return &text.GoTextFace{Source: boldSource, Size: titleFontSize * UIScale}
}

// GetFaceWithSize returns the regular face at size logical points.
func GetFaceWithSize(size float64) *text.GoTextFace {
	if regularSource == nil {
		return nil
	}
	return &text.GoTextFace{Source: regularSource, Size: size * UIScale}
}

// MeasureText returns the width and height of s in device pixels.
func MeasureText(s string, face *text.GoTextFace) (width, height float64) {
	if face == nil {
		return 0, 0
	}
	return text.Measure(s, face, 0)
}

// drawText draws s with its top-left corner at logical (x, y).
func drawText(screen *ebiten.Image, s string, x, y int, face *text.GoTextFace, c color.Color) {
	if face == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x)*UIScale, float64(y)*UIScale)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)
}

// drawTextCentered centers s on logical (cx, cy).
func drawTextCentered(screen *ebiten.Image, s string, cx, cy int, face *text.GoTextFace, c color.Color) {
	if face == nil {
		return
	}
	w, h := MeasureText(s, face)
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(cx)*UIScale-w/2, float64(cy)*UIScale-h/2)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)
}
