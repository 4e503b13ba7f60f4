package tesseract

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"os/exec"
	"strings"
	"testing"

	"github.com/fyerfyer/pdf-search/internal/ocr"
	"github.com/stretchr/testify/require"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ensureTesseractAvailable 检查tesseract是否安装
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

func TestEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	img := image.NewRGBA(image.Rect(0, 0, 240, 80))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 50),
	}
	d.DrawString("HELLO 12345")

	// 放大四倍，模拟高DPI扫描
	scaled := image.NewRGBA(image.Rect(0, 0, 960, 320))
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	data, err := ocr.EncodePNG(scaled)
	require.NoError(t, err)

	in := ocr.Input{ID: "page-1", Image: data, Page: 1}
	ocr.WithLanguages("eng")(&in)
	ocr.WithPageSegMode(7)(&in)
	ocr.WithCharWhitelist("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ ")(&in)

	res, err := New().Recognize(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, "page-1", res.InputID)
	require.Equal(t, 1, res.Page)
	if !strings.Contains(strings.ReplaceAll(res.Text, " ", ""), "12345") {
		t.Fatalf("expected OCR text to contain 12345, got %q", res.Text)
	}
}

func TestEngineCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Recognize(ctx, ocr.Input{})
	require.ErrorIs(t, err, context.Canceled)
}
