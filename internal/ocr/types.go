// Package ocr 将扫描页光栅化、预处理并交给OCR引擎识别
package ocr

import (
	"context"
	"image"
	"strconv"
)

// Tesseract 引擎变量名
const (
	VarPageSegMode   = "tessedit_pageseg_mode"
	VarCharWhitelist = "tessedit_char_whitelist"
)

// Input 提交给OCR引擎的一张图片
type Input struct {
	// ID 调用方标识，原样返回到 Result
	ID string
	// Image PNG编码的图片
	Image []byte
	// Page 图片对应的PDF页码（从1开始）
	Page int
	// DPI 光栅化分辨率，0 表示未知
	DPI int
	// Languages 语言模型，例如 "por"
	Languages []string
	// Variables 引擎专用参数，例如页面分割模式和字符白名单
	Variables map[string]string
}

// Result 一张图片的识别结果
type Result struct {
	InputID string
	Page    int
	Text    string
}

// Engine OCR引擎接口
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

// PageImage 一页光栅化后的图片
type PageImage struct {
	Page  int // 从1开始
	Image image.Image
}

// Rasterizer 将PDF页面转为图片
type Rasterizer interface {
	Name() string
	// Rasterize 光栅化指定页面，pages 为空表示全部页面
	Rasterize(ctx context.Context, path string, pages []int, dpi int) ([]PageImage, error)
}

// InputOption 修改OCR输入
type InputOption func(*Input)

// WithLanguages 设置语言模型
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithDPI 设置图片分辨率
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithPageSegMode 设置Tesseract页面分割模式，0 表示使用引擎默认值
func WithPageSegMode(mode int) InputOption {
	return func(in *Input) {
		if mode <= 0 {
			return
		}
		setVariable(in, VarPageSegMode, strconv.Itoa(mode))
	}
}

// WithCharWhitelist 限制可识别的字符，空字符串表示不限制
func WithCharWhitelist(chars string) InputOption {
	return func(in *Input) {
		if chars == "" {
			return
		}
		setVariable(in, VarCharWhitelist, chars)
	}
}

func setVariable(in *Input, key, value string) {
	if in.Variables == nil {
		in.Variables = make(map[string]string)
	}
	in.Variables[key] = value
}
