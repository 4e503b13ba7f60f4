package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func uniformGray(w, h int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

func TestInputOptions(t *testing.T) {
	in := Input{}
	WithPageSegMode(7)(&in)
	WithCharWhitelist("ABC")(&in)
	WithLanguages("por", "eng")(&in)
	WithDPI(300)(&in)

	assert.Equal(t, "7", in.Variables[VarPageSegMode])
	assert.Equal(t, "ABC", in.Variables[VarCharWhitelist])
	assert.Equal(t, []string{"por", "eng"}, in.Languages)
	assert.Equal(t, 300, in.DPI)

	empty := Input{}
	WithPageSegMode(0)(&empty)
	WithCharWhitelist("")(&empty)
	assert.Nil(t, empty.Variables)
}

func TestPreprocessorPresets(t *testing.T) {
	for _, preset := range []string{"none", "grayscale", "sharpen", "median", ""} {
		p, err := NewPreprocessor(preset, 0)
		require.NoError(t, err, preset)
		out := p.Process(uniformGray(4, 4, 100))
		assert.Equal(t, image.Rect(0, 0, 4, 4), out.Bounds(), preset)
	}

	_, err := NewPreprocessor("sepia", 0)
	assert.Error(t, err)

	p, _ := NewPreprocessor("", 0)
	assert.Equal(t, "sharpen", p.Name())
}

func TestSharpenPresetBinarizes(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 6, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			v := uint8(90)
			if x >= 3 {
				v = 170
			}
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	p, _ := NewPreprocessor("sharpen", 0)
	out := p.Process(img).(*image.Gray)
	for _, v := range out.Pix {
		assert.Contains(t, []uint8{0, 255}, v)
	}
	assert.Equal(t, uint8(0), out.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), out.GrayAt(5, 5).Y)
}

func TestContrast(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 1))
	g.Pix[0], g.Pix[1] = 100, 140
	out := Contrast(3)(g)
	// 平均值120，偏差放大三倍
	assert.Equal(t, []uint8{60, 180}, out.Pix)
}

func TestMedianRemovesSpeck(t *testing.T) {
	g := uniformGray(5, 5, 255)
	g.SetGray(2, 2, color.Gray{Y: 0})
	out := Median(g)
	assert.Equal(t, uint8(255), out.GrayAt(2, 2).Y)
}

func TestBinarize(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 3, 1))
	g.Pix[0], g.Pix[1], g.Pix[2] = 127, 128, 200
	assert.Equal(t, []uint8{0, 255, 255}, Binarize(128)(g).Pix)
}

func TestDownscale(t *testing.T) {
	img := uniformGray(400, 200, 10)
	out := Downscale(img, 100)
	assert.Equal(t, 100, out.Bounds().Dx())
	assert.Equal(t, 50, out.Bounds().Dy())
	assert.Same(t, img, Downscale(img, 0))
	assert.Same(t, img, Downscale(img, 1000))
}

func TestPageRanges(t *testing.T) {
	assert.Nil(t, pageRanges(nil))
	assert.Equal(t, [][2]int{{1, 3}, {5, 5}, {7, 8}}, pageRanges([]int{3, 1, 2, 5, 8, 7}))
	assert.Equal(t, [][2]int{{2, 2}}, pageRanges([]int{2, 2}))
}

func TestExtractedImagePattern(t *testing.T) {
	m := extractedImagePattern.FindStringSubmatch("my_scan_12_Im0.png")
	require.NotNil(t, m)
	assert.Equal(t, "12", m[1])
	assert.Nil(t, extractedImagePattern.FindStringSubmatch("notes.txt"))
}

func TestRecognizer(t *testing.T) {
	ctx := context.Background()
	raster := NewMockRasterizer(t)
	engine := NewMockEngine(t)

	raster.On("Rasterize", mock.Anything, "scan.pdf", []int{2}, 300).Return([]PageImage{
		{Page: 2, Image: uniformGray(8, 8, 200)},
	}, nil)
	engine.On("Recognize", mock.Anything, mock.MatchedBy(func(in Input) bool {
		return in.Page == 2 &&
			in.DPI == 300 &&
			in.Variables[VarPageSegMode] == "6" &&
			len(in.Image) > 0 &&
			in.Languages[0] == "por"
	})).Return(Result{InputID: "page-2", Text: "NF 12345"}, nil)

	pre, err := NewPreprocessor("median", 0)
	require.NoError(t, err)
	r := NewRecognizer(raster, pre, engine, Config{DPI: 300, Languages: []string{"por"}, PageSegMode: 6})

	results, err := r.Recognize(ctx, "scan.pdf", []int{2})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Page)
	assert.Equal(t, "NF 12345", results[0].Text)
	assert.Equal(t, "mock", r.Engine())
}

func TestRecognizerErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("rasterize failure", func(t *testing.T) {
		raster := NewMockRasterizer(t)
		raster.On("Rasterize", mock.Anything, "bad.pdf", []int(nil), 400).Return(nil, errors.New("corrupt"))
		r := NewRecognizer(raster, nil, NewMockEngine(t), Config{})
		_, err := r.Recognize(ctx, "bad.pdf", nil)
		assert.ErrorContains(t, err, "corrupt")
	})

	t.Run("no images", func(t *testing.T) {
		raster := NewMockRasterizer(t)
		raster.On("Rasterize", mock.Anything, "empty.pdf", []int(nil), 400).Return([]PageImage{}, nil)
		r := NewRecognizer(raster, nil, NewMockEngine(t), Config{})
		_, err := r.Recognize(ctx, "empty.pdf", nil)
		assert.ErrorContains(t, err, "no page images")
	})

	t.Run("engine failure", func(t *testing.T) {
		raster := NewMockRasterizer(t)
		engine := NewMockEngine(t)
		raster.On("Rasterize", mock.Anything, "x.pdf", []int(nil), 400).Return([]PageImage{{Page: 1, Image: uniformGray(2, 2, 0)}}, nil)
		engine.On("Recognize", mock.Anything, mock.Anything).Return(Result{}, errors.New("engine down"))
		r := NewRecognizer(raster, nil, engine, Config{})
		_, err := r.Recognize(ctx, "x.pdf", nil)
		assert.ErrorContains(t, err, "engine down")
	})
}

func TestPdftoppmRasterizer(t *testing.T) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		t.Skip("pdftoppm not installed in PATH")
	}

	path := filepath.Join(t.TempDir(), "two-pages.pdf")
	pdf := gofpdf.New("P", "mm", "A4", "")
	for _, text := range []string{"PAGE ONE", "PAGE TWO"} {
		pdf.AddPage()
		pdf.SetFont("Arial", "", 24)
		pdf.Cell(40, 10, text)
	}
	require.NoError(t, pdf.OutputFileAndClose(path))

	r := NewPdftoppmRasterizer("")
	require.True(t, r.Available())

	images, err := r.Rasterize(context.Background(), path, []int{2}, 50)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, 2, images[0].Page)

	images, err = r.Rasterize(context.Background(), path, nil, 50)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, 1, images[0].Page)
}
