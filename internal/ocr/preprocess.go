package ocr

import (
	"fmt"
	"image"
	"sort"
	"strings"

	"golang.org/x/image/draw"
)

// Preprocessing 预处理预设
type Preprocessing string

const (
	// PreprocessNone 不做处理
	PreprocessNone Preprocessing = "none"
	// PreprocessGrayscale 只转灰度
	PreprocessGrayscale Preprocessing = "grayscale"
	// PreprocessSharpen 灰度 -> 对比度x3 -> 锐化 -> 二值化
	PreprocessSharpen Preprocessing = "sharpen"
	// PreprocessMedian 灰度 -> 对比度x2 -> 3x3中值滤波
	PreprocessMedian Preprocessing = "median"
)

// DefaultThreshold 二值化阈值
const DefaultThreshold = 128

// Filter 单个图像滤镜
type Filter func(*image.Gray) *image.Gray

// Preprocessor 由若干滤镜组成的预处理流水线
type Preprocessor struct {
	name         Preprocessing
	maxDimension int
	filters      []Filter
}

// NewPreprocessor 根据预设创建预处理器
// maxDimension > 0 时先将过大的图片等比缩小
func NewPreprocessor(preset string, maxDimension int) (*Preprocessor, error) {
	p := &Preprocessor{name: Preprocessing(strings.ToLower(preset)), maxDimension: maxDimension}
	switch p.name {
	case PreprocessNone, PreprocessGrayscale:
	case PreprocessSharpen, "":
		p.name = PreprocessSharpen
		p.filters = []Filter{Contrast(3), Sharpen, Binarize(DefaultThreshold)}
	case PreprocessMedian:
		p.filters = []Filter{Contrast(2), Median}
	default:
		return nil, fmt.Errorf("unsupported preprocessing preset %q", preset)
	}
	return p, nil
}

// Name 返回预设名
func (p *Preprocessor) Name() string {
	return string(p.name)
}

// Process 执行预处理
func (p *Preprocessor) Process(img image.Image) image.Image {
	img = Downscale(img, p.maxDimension)
	if p.name == PreprocessNone {
		return img
	}
	g := Grayscale(img)
	for _, f := range p.filters {
		g = f(g)
	}
	return g
}

// Downscale 当最长边超过 maxDim 时等比缩小
func Downscale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}
	scale := float64(maxDim) / float64(max(w, h))
	tw := max(1, int(float64(w)*scale))
	th := max(1, int(float64(h)*scale))
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// Grayscale 转为8位灰度图，原点移到(0,0)
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) && g.Stride == g.Rect.Dx() {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}

// Contrast 以平均灰度为中心拉伸对比度
func Contrast(factor float64) Filter {
	return func(g *image.Gray) *image.Gray {
		if len(g.Pix) == 0 {
			return g
		}
		var sum int
		for _, v := range g.Pix {
			sum += int(v)
		}
		mean := float64(sum)/float64(len(g.Pix)) + 0.5
		mean = float64(int(mean))

		out := image.NewGray(g.Rect)
		for i, v := range g.Pix {
			out.Pix[i] = clamp(mean + factor*(float64(v)-mean))
		}
		return out
	}
}

// Sharpen 3x3锐化卷积，中心权重32，邻域权重-2，除以16
func Sharpen(g *image.Gray) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			acc := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					v := int(grayAt(g, x+dx, y+dy))
					if dx == 0 && dy == 0 {
						acc += 32 * v
					} else {
						acc -= 2 * v
					}
				}
			}
			out.Pix[out.PixOffset(x, y)] = clamp(float64(acc) / 16)
		}
	}
	return out
}

// Median 3x3中值滤波，用于去除OCR前的椒盐噪声
func Median(g *image.Gray) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(b)
	window := make([]int, 0, 9)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			window = window[:0]
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					window = append(window, int(grayAt(g, x+dx, y+dy)))
				}
			}
			sort.Ints(window)
			out.Pix[out.PixOffset(x, y)] = uint8(window[4])
		}
	}
	return out
}

// Binarize 小于阈值的像素置黑，其余置白
func Binarize(threshold uint8) Filter {
	return func(g *image.Gray) *image.Gray {
		out := image.NewGray(g.Rect)
		for i, v := range g.Pix {
			if v < threshold {
				out.Pix[i] = 0
			} else {
				out.Pix[i] = 255
			}
		}
		return out
	}
}

// grayAt 读取像素，越界时取最近的边缘像素
func grayAt(g *image.Gray, x, y int) uint8 {
	b := g.Bounds()
	x = min(max(x, b.Min.X), b.Max.X-1)
	y = min(max(y, b.Min.Y), b.Max.Y-1)
	return g.Pix[g.PixOffset(x, y)]
}

func clamp(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
