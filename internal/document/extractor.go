package document

import (
	"context"
	"strings"

	"github.com/fyerfyer/pdf-search/internal/diagnostics"
	"github.com/fyerfyer/pdf-search/internal/matcher"
	"github.com/fyerfyer/pdf-search/internal/models"
	"github.com/fyerfyer/pdf-search/internal/ocr"
	"github.com/pkg/errors"
)

// Mode 提取粒度
type Mode string

const (
	// ModeDocument 整个文档作为一段文本，页码未知
	ModeDocument Mode = "document"
	// ModePage 逐页提取，每页单独标记来源
	ModePage Mode = "page"
)

// DefaultPreviewLength 诊断中文本预览的默认长度
const DefaultPreviewLength = 300

// ParseMode 解析提取模式，空字符串为文档模式
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeDocument:
		return ModeDocument, nil
	case ModePage:
		return ModePage, nil
	default:
		return "", &models.InputError{Field: "mode", Reason: "unknown extraction mode " + s}
	}
}

// OCR 识别整页图片的能力，由 ocr.Recognizer 实现
type OCR interface {
	Recognize(ctx context.Context, path string, pages []int) ([]ocr.Result, error)
}

// Extractor 读取文档文本，内嵌文本为空时回退到OCR
type Extractor struct {
	parser     Parser
	ocr        OCR
	mode       Mode
	sink       diagnostics.Sink
	previewLen int
}

// ExtractorOption 提取器配置项
type ExtractorOption func(*Extractor)

// WithMode 设置提取模式
func WithMode(mode Mode) ExtractorOption {
	return func(e *Extractor) {
		e.mode = mode
	}
}

// WithSink 设置诊断输出
func WithSink(sink diagnostics.Sink) ExtractorOption {
	return func(e *Extractor) {
		if sink != nil {
			e.sink = sink
		}
	}
}

// WithPreviewLength 设置诊断预览长度
func WithPreviewLength(n int) ExtractorOption {
	return func(e *Extractor) {
		if n > 0 {
			e.previewLen = n
		}
	}
}

// NewExtractor 创建提取器，recognizer 为空时扫描件会提取失败
func NewExtractor(parser Parser, recognizer OCR, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		parser:     parser,
		ocr:        recognizer,
		mode:       ModeDocument,
		sink:       diagnostics.Discard,
		previewLen: DefaultPreviewLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mode 返回提取模式
func (e *Extractor) Mode() Mode {
	return e.mode
}

// Extract 提取文档文本
// 所有失败都以 *models.ExtractionError 返回
func (e *Extractor) Extract(ctx context.Context, doc models.Document) (*Extraction, error) {
	layer, err := e.parser.ReadText(doc.Path)
	if err != nil {
		return nil, e.fail(ctx, doc, 0, errors.Wrap(err, "read text layer"))
	}

	if !layer.Blank() {
		return e.fromTextLayer(ctx, doc, layer), nil
	}

	if e.ocr == nil {
		return nil, e.fail(ctx, doc, 0, models.ErrNoText)
	}
	if e.mode == ModePage {
		return e.ocrPages(ctx, doc, layer)
	}
	return e.ocrDocument(ctx, doc)
}

func (e *Extractor) fromTextLayer(ctx context.Context, doc models.Document, layer *TextLayer) *Extraction {
	out := &Extraction{Embedded: true}
	if e.mode == ModeDocument {
		text := layer.Text()
		out.Pages = []PageText{{Text: text, Source: models.SourceEmbeddedText}}
		e.emit(ctx, diagnostics.KindEmbedded, doc, 0, models.SourceEmbeddedText, text)
		return out
	}

	// 文本层存在时，无文本的页面视为空白页，不做OCR
	for i, text := range layer.Pages {
		if strings.TrimSpace(text) == "" {
			continue
		}
		out.Pages = append(out.Pages, PageText{
			Page:   models.IntPtr(i + 1),
			Text:   text,
			Source: models.SourceEmbeddedText,
		})
		e.emit(ctx, diagnostics.KindEmbedded, doc, i+1, models.SourceEmbeddedText, text)
	}
	return out
}

func (e *Extractor) ocrDocument(ctx context.Context, doc models.Document) (*Extraction, error) {
	results, err := e.ocr.Recognize(ctx, doc.Path, nil)
	if err != nil {
		return nil, e.fail(ctx, doc, 0, errors.Wrap(err, "ocr"))
	}

	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Text)
	}
	text := strings.Join(texts, "\n")
	e.emit(ctx, diagnostics.KindOCR, doc, 0, models.SourceOCR, text)

	return &Extraction{
		Pages: []PageText{{Text: text, Source: models.SourceOCR}},
	}, nil
}

func (e *Extractor) ocrPages(ctx context.Context, doc models.Document, layer *TextLayer) (*Extraction, error) {
	if layer.PageCount() == 0 {
		// 页数未知，一次识别所有页面
		results, err := e.ocr.Recognize(ctx, doc.Path, nil)
		if err != nil {
			return nil, e.fail(ctx, doc, 0, errors.Wrap(err, "ocr"))
		}
		out := &Extraction{}
		for _, r := range results {
			out.Pages = append(out.Pages, PageText{Page: models.IntPtr(r.Page), Text: r.Text, Source: models.SourceOCR})
			e.emit(ctx, diagnostics.KindOCR, doc, r.Page, models.SourceOCR, r.Text)
		}
		return out, nil
	}

	out := &Extraction{Pages: make([]PageText, 0, layer.PageCount())}
	for i, embedded := range layer.Pages {
		page := i + 1
		if strings.TrimSpace(embedded) != "" {
			out.Pages = append(out.Pages, PageText{Page: models.IntPtr(page), Text: embedded, Source: models.SourceEmbeddedText})
			e.emit(ctx, diagnostics.KindEmbedded, doc, page, models.SourceEmbeddedText, embedded)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, e.fail(ctx, doc, page, err)
		}

		results, err := e.ocr.Recognize(ctx, doc.Path, []int{page})
		if err != nil {
			return nil, e.fail(ctx, doc, page, errors.Wrap(err, "ocr"))
		}
		texts := make([]string, 0, len(results))
		for _, r := range results {
			texts = append(texts, r.Text)
		}
		text := strings.Join(texts, "\n")
		out.Pages = append(out.Pages, PageText{Page: models.IntPtr(page), Text: text, Source: models.SourceOCR})
		e.emit(ctx, diagnostics.KindOCR, doc, page, models.SourceOCR, text)
	}
	return out, nil
}

func (e *Extractor) fail(ctx context.Context, doc models.Document, page int, err error) error {
	xerr := &models.ExtractionError{Document: doc.Name, Page: page, Err: err}
	diagnostics.For(ctx, e.sink).Emit(diagnostics.Entry{
		Kind:     diagnostics.KindError,
		Document: doc.Name,
		Page:     page,
		Err:      xerr.Error(),
	})
	return xerr
}

func (e *Extractor) emit(ctx context.Context, kind diagnostics.Kind, doc models.Document, page int, src models.Source, text string) {
	diagnostics.For(ctx, e.sink).Emit(diagnostics.Entry{
		Kind:     kind,
		Document: doc.Name,
		Page:     page,
		Source:   src.String(),
		Preview:  matcher.Prefix(matcher.CleanText(text), e.previewLen),
	})
}
