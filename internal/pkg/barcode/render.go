package barcode

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// WatermarkText is stamped across images rendered for non-paid subscribers.
const WatermarkText = "SAMPLE"

// Renderer turns an element string into an image file.
type Renderer interface {
	// Render encodes payload as a symbol and prints caption below it.
	Render(payload, caption string, watermark bool) ([]byte, error)
	ContentType() string
}

// Code128Renderer draws a Code 128 symbol as PNG.
type Code128Renderer struct {
	ModuleWidth int // pixels per narrow bar
	BarHeight   int
	Margin      int
}

func NewCode128Renderer() *Code128Renderer {
	return &Code128Renderer{ModuleWidth: 2, BarHeight: 120, Margin: 20}
}

func (r *Code128Renderer) ContentType() string { return "image/png" }

func (r *Code128Renderer) Render(payload, caption string, watermark bool) ([]byte, error) {
	bc, err := code128.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode code128: %w", err)
	}

	width := bc.Bounds().Dx() * r.ModuleWidth
	scaled, err := barcode.Scale(bc, width, r.BarHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to scale barcode: %w", err)
	}

	face := basicfont.Face7x13
	captionHeight := 0
	if caption != "" {
		captionHeight = face.Metrics().Height.Ceil() + r.Margin/2
	}

	canvasW := width + 2*r.Margin
	if cw := font.MeasureString(face, caption).Ceil() + 2*r.Margin; cw > canvasW {
		canvasW = cw
	}
	canvasH := r.BarHeight + 2*r.Margin + captionHeight

	canvas := imaging.New(canvasW, canvasH, color.White)
	canvas = imaging.Paste(canvas, scaled, image.Pt((canvasW-width)/2, r.Margin))

	if caption != "" {
		drawText(canvas, face, caption, color.Black, r.Margin+r.BarHeight+r.Margin/2+face.Ascent)
	}
	if watermark {
		canvas = stampWatermark(canvas)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// drawText centers s horizontally with its baseline at y.
func drawText(dst *image.NRGBA, face font.Face, s string, c color.Color, y int) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face}
	x := (dst.Bounds().Dx() - d.MeasureString(s).Ceil()) / 2
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}

func stampWatermark(img *image.NRGBA) *image.NRGBA {
	face := basicfont.Face7x13
	w := font.MeasureString(face, WatermarkText).Ceil() + 4
	h := face.Metrics().Height.Ceil() + 2

	mark := imaging.New(w, h, color.Transparent)
	drawText(mark, face, WatermarkText, color.NRGBA{R: 200, G: 0, B: 0, A: 255}, face.Ascent+1)

	b := img.Bounds()
	mark = imaging.Resize(mark, b.Dx()*2/3, 0, imaging.NearestNeighbor)
	pos := image.Pt((b.Dx()-mark.Bounds().Dx())/2, (b.Dy()-mark.Bounds().Dy())/2)
	return imaging.Overlay(img, mark, pos, 0.45)
}
