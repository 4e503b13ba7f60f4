package document

import (
	"fmt"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pkg/errors"
)

// PDFParser PDF文本层解析器
// 使用 ledongthuc/pdf 逐页提取文本，页数无法确定时用 pdfcpu 校验
type PDFParser struct {
	// countPages 返回文档页数，默认使用pdfcpu
	countPages func(path string) (int, error)
}

// NewPDFParser 创建一个新的PDF解析器
func NewPDFParser() *PDFParser {
	return &PDFParser{countPages: api.PageCountFile}
}

// ReadText 打开PDF，读取每一页的文本后关闭文件
func (p *PDFParser) ReadText(filePath string) (layer *TextLayer, err error) {
	// ledongthuc/pdf 在遇到损坏的对象时可能panic
	defer func() {
		if r := recover(); r != nil {
			layer = nil
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF")
	}
	defer f.Close()

	numPages := reader.NumPage()
	if numPages == 0 && p.countPages != nil {
		// 页面树无法解析时，仍需要页数以便后续OCR
		n, cerr := p.countPages(filePath)
		if cerr != nil {
			return nil, errors.Wrap(cerr, "failed to count pages")
		}
		return &TextLayer{Pages: make([]string, n)}, nil
	}

	layer = &TextLayer{Pages: make([]string, numPages)}
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// 单页失败视为该页没有文本层
			continue
		}
		layer.Pages[i-1] = text
	}
	return layer, nil
}
