package barcode

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode128Renderer_Render(t *testing.T) {
	r := NewCode128Renderer()

	plain, err := r.Render("0110012345678902", "(01)10012345678902", false)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(plain))
	require.NoError(t, err)
	b := img.Bounds()
	assert.Greater(t, b.Dx(), 2*r.Margin)
	assert.Greater(t, b.Dy(), r.BarHeight+2*r.Margin)

	// the quiet zone stays white
	cr, cg, cb, _ := img.At(1, 1).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{cr, cg, cb})

	marked, err := r.Render("0110012345678902", "(01)10012345678902", true)
	require.NoError(t, err)
	assert.NotEqual(t, plain, marked)
	assert.Equal(t, "image/png", r.ContentType())
}

func TestCode128Renderer_LongCaptionWidensCanvas(t *testing.T) {
	r := NewCode128Renderer()
	caption := "(01)10012345678902(17)261231(10)ABCDEFGHIJKLMNOPQRST(30)99999999"

	out, err := r.Render("01", caption, false)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, img.Bounds().Dx(), len(caption)*7)
}
