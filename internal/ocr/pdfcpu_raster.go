package ocr

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"
)

// PdfcpuRasterizer 提取扫描页中嵌入的图片，不需要外部程序
// 适用于每页一张扫描图的PDF；矢量内容不会被渲染
type PdfcpuRasterizer struct {
	conf *model.Configuration
}

// NewPdfcpuRasterizer 创建基于pdfcpu的光栅化器
func NewPdfcpuRasterizer() *PdfcpuRasterizer {
	return &PdfcpuRasterizer{conf: model.NewDefaultConfiguration()}
}

func (r *PdfcpuRasterizer) Name() string { return "pdfcpu" }

// pdfcpu 输出文件名形如 <文件名>_<页码>_<资源名>.<扩展名>
var extractedImagePattern = regexp.MustCompile(`^.*_(\d+)_[^_]+\.(png|jpg|jpeg|tif|tiff)$`)

// Rasterize 提取指定页面的图片，同一页有多张图片时取面积最大的一张
// dpi 只用于后续OCR提示，提取的图片保持原始分辨率
func (r *PdfcpuRasterizer) Rasterize(ctx context.Context, path string, pages []int, dpi int) ([]PageImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "pdfsearch-images-")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temp dir")
	}
	defer os.RemoveAll(tmpDir)

	var selected []string
	for _, p := range pages {
		selected = append(selected, strconv.Itoa(p))
	}
	if err := api.ExtractImagesFile(path, tmpDir, selected, r.conf); err != nil {
		return nil, errors.Wrap(err, "failed to extract images from PDF")
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read extracted images")
	}

	best := make(map[int]PageImage)
	for _, entry := range entries {
		m := extractedImagePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		page, _ := strconv.Atoi(m[1])
		img, err := decodeFile(filepath.Join(tmpDir, entry.Name()))
		if err != nil {
			// 无法解码的图片（例如JBIG2）跳过
			continue
		}
		if cur, ok := best[page]; ok && area(cur) >= img.Bounds().Dx()*img.Bounds().Dy() {
			continue
		}
		best[page] = PageImage{Page: page, Image: img}
	}

	images := make([]PageImage, 0, len(best))
	for _, img := range best {
		images = append(images, img)
	}
	sortPages(images)
	return images, nil
}

func area(p PageImage) int {
	b := p.Image.Bounds()
	return b.Dx() * b.Dy()
}
