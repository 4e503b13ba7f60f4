package ocr

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Config OCR流程配置
type Config struct {
	DPI           int      // 光栅化分辨率
	Languages     []string // 语言模型
	PageSegMode   int      // 页面分割模式，0 表示引擎默认
	CharWhitelist string   // 字符白名单，空表示不限制
}

// DefaultConfig 返回默认OCR配置
func DefaultConfig() Config {
	return Config{
		DPI:           400,
		Languages:     []string{"por"},
		PageSegMode:   7,
		CharWhitelist: "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ",
	}
}

// Recognizer 光栅化 -> 预处理 -> 识别
type Recognizer struct {
	rasterizer   Rasterizer
	preprocessor *Preprocessor
	engine       Engine
	cfg          Config
}

// NewRecognizer 创建识别流程，preprocessor 为空时不做预处理
func NewRecognizer(rasterizer Rasterizer, preprocessor *Preprocessor, engine Engine, cfg Config) *Recognizer {
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultConfig().DPI
	}
	return &Recognizer{
		rasterizer:   rasterizer,
		preprocessor: preprocessor,
		engine:       engine,
		cfg:          cfg,
	}
}

// Engine 返回底层引擎名
func (r *Recognizer) Engine() string {
	return r.engine.Name()
}

// Recognize 对指定页面执行OCR，pages 为空表示全部页面
// 结果按页码排序
func (r *Recognizer) Recognize(ctx context.Context, path string, pages []int) ([]Result, error) {
	images, err := r.rasterizer.Rasterize(ctx, path, pages, r.cfg.DPI)
	if err != nil {
		return nil, errors.Wrapf(err, "rasterize with %s", r.rasterizer.Name())
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%s produced no page images", r.rasterizer.Name())
	}

	results := make([]Result, 0, len(images))
	for _, pi := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := r.recognizeImage(ctx, pi)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Recognizer) recognizeImage(ctx context.Context, pi PageImage) (Result, error) {
	img := pi.Image
	if r.preprocessor != nil {
		img = r.preprocessor.Process(img)
	}
	data, err := EncodePNG(img)
	if err != nil {
		return Result{}, err
	}

	in := Input{
		ID:    fmt.Sprintf("page-%d", pi.Page),
		Image: data,
		Page:  pi.Page,
	}
	for _, opt := range []InputOption{
		WithDPI(r.cfg.DPI),
		WithLanguages(r.cfg.Languages...),
		WithPageSegMode(r.cfg.PageSegMode),
		WithCharWhitelist(r.cfg.CharWhitelist),
	} {
		opt(&in)
	}

	res, err := r.engine.Recognize(ctx, in)
	if err != nil {
		return Result{}, errors.Wrapf(err, "%s page %d", r.engine.Name(), pi.Page)
	}
	res.Page = pi.Page
	return res, nil
}
