package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	_ "golang.org/x/image/tiff"
)

// PdftoppmRasterizer 调用poppler的pdftoppm渲染页面
type PdftoppmRasterizer struct {
	binary string
}

// NewPdftoppmRasterizer 创建pdftoppm光栅化器，binary 为空时在PATH中查找
func NewPdftoppmRasterizer(binary string) *PdftoppmRasterizer {
	if binary == "" {
		binary = "pdftoppm"
	}
	return &PdftoppmRasterizer{binary: binary}
}

func (r *PdftoppmRasterizer) Name() string { return "pdftoppm" }

// Available 检查pdftoppm是否可用
func (r *PdftoppmRasterizer) Available() bool {
	_, err := exec.LookPath(r.binary)
	return err == nil
}

// pdftoppm 输出文件名形如 page-01.png、page-123.png
var pageFilePattern = regexp.MustCompile(`-(\d+)\.png$`)

// Rasterize 将页面渲染为PNG后解码
// 每个连续页面区间调用一次pdftoppm
func (r *PdftoppmRasterizer) Rasterize(ctx context.Context, path string, pages []int, dpi int) ([]PageImage, error) {
	tmpDir, err := os.MkdirTemp("", "pdfsearch-raster-")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temp dir")
	}
	defer os.RemoveAll(tmpDir)

	ranges := pageRanges(pages)
	if len(ranges) == 0 {
		ranges = [][2]int{{0, 0}}
	}
	for _, rg := range ranges {
		args := []string{"-r", strconv.Itoa(dpi), "-png"}
		if rg[0] > 0 {
			args = append(args, "-f", strconv.Itoa(rg[0]), "-l", strconv.Itoa(rg[1]))
		}
		args = append(args, path, filepath.Join(tmpDir, "page"))

		var stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, r.binary, args...)
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("pdftoppm failed: %v, stderr: %s", err, stderr.String())
		}
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read rasterized pages")
	}

	var images []PageImage
	for _, entry := range entries {
		m := pageFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		page, _ := strconv.Atoi(m[1])
		img, err := decodeFile(filepath.Join(tmpDir, entry.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "decode page %d", page)
		}
		images = append(images, PageImage{Page: page, Image: img})
	}
	sortPages(images)
	return images, nil
}

// pageRanges 将页码列表合并为连续区间
func pageRanges(pages []int) [][2]int {
	if len(pages) == 0 {
		return nil
	}
	sorted := append([]int(nil), pages...)
	sort.Ints(sorted)

	var ranges [][2]int
	start, prev := sorted[0], sorted[0]
	for _, p := range sorted[1:] {
		if p == prev || p == prev+1 {
			prev = p
			continue
		}
		ranges = append(ranges, [2]int{start, prev})
		start, prev = p, p
	}
	return append(ranges, [2]int{start, prev})
}

func sortPages(images []PageImage) {
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].Page < images[j].Page
	})
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// EncodePNG 将图片编码为PNG，供OCR引擎使用
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "encode png")
	}
	return buf.Bytes(), nil
}
