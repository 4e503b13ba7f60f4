// Package tesseract 基于gosseract的OCR引擎
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyerfyer/pdf-search/internal/ocr"
	"github.com/otiai10/gosseract/v2"
)

// Engine 使用libtesseract识别图片
// 每次识别创建独立的client，可以并发调用
type Engine struct {
	clientFactory func() *gosseract.Client
}

// New 创建Tesseract引擎
func New() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Version 返回libtesseract版本
func (e *Engine) Version() string {
	return gosseract.Version()
}

// Recognize 识别单张图片
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}

	c := e.clientFactory()
	defer c.Close()

	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if mode, ok := in.Variables[ocr.VarPageSegMode]; ok {
		var psm int
		if _, err := fmt.Sscanf(mode, "%d", &psm); err == nil {
			if err := c.SetPageSegMode(gosseract.PageSegMode(psm)); err != nil {
				return ocr.Result{}, fmt.Errorf("set page segmentation mode: %w", err)
			}
		}
	}
	if chars, ok := in.Variables[ocr.VarCharWhitelist]; ok {
		if err := c.SetWhitelist(chars); err != nil {
			return ocr.Result{}, fmt.Errorf("set whitelist: %w", err)
		}
	}
	for k, v := range in.Variables {
		if k == ocr.VarPageSegMode || k == ocr.VarCharWhitelist {
			continue
		}
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return ocr.Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	if err := c.SetImageFromBytes(in.Image); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}

	return ocr.Result{
		InputID: in.ID,
		Page:    in.Page,
		Text:    strings.TrimSpace(text),
	}, nil
}
