// Package export 将搜索结果写成CSV或XLSX文件
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fyerfyer/pdf-search/internal/matcher"
	"github.com/fyerfyer/pdf-search/internal/models"
	"github.com/pkg/errors"
)

// Header 导出文件的列名
var Header = []string{"Arquivo", "Página", "Trecho", "Origem"}

// 页码未知时可能出现的写法
var unknownPageLabels = map[string]bool{"?": true, "": true, "OCR batch": true}

// Format 导出格式
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat 解析导出格式，空字符串为CSV
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", &models.InputError{Field: "format", Reason: "unsupported export format " + strconv.Quote(s)}
	}
}

// FormatForPath 根据文件扩展名选择格式
func FormatForPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// ContentType HTTP下载时使用的MIME类型
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Write 按格式写出结果
func Write(w io.Writer, format Format, results []models.PageResult) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, results)
	case FormatXLSX:
		return WriteXLSX(w, results)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// row 导出前清理文本：csv.Reader 会把 \r\n 读成 \n，XML 不接受控制字符
func row(r models.PageResult) []string {
	return []string{matcher.CleanText(r.DocumentName), r.PageLabel(), matcher.CleanText(r.Excerpt), r.Source.Label()}
}

// WriteCSV 以UTF-8写出表头和每条结果
func WriteCSV(w io.Writer, results []models.PageResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, r := range results {
		if err := cw.Write(row(r)); err != nil {
			return errors.Wrapf(err, "write csv row for %s", r.DocumentName)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV 读取 WriteCSV 写出的文件
func ReadCSV(r io.Reader) ([]models.PageResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	head, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty csv: missing header")
	}
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}
	if len(head) > 0 {
		head[0] = strings.TrimPrefix(head[0], "\ufeff")
	}
	for i, name := range Header {
		if head[i] != name {
			return nil, fmt.Errorf("unexpected csv header %q, want %q", strings.Join(head, ","), strings.Join(Header, ","))
		}
	}

	var results []models.PageResult
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read csv line %d", line)
		}
		res, err := parseRecord(rec)
		if err != nil {
			return nil, errors.Wrapf(err, "csv line %d", line)
		}
		results = append(results, res)
	}
	return results, nil
}

func parseRecord(rec []string) (models.PageResult, error) {
	res := models.PageResult{DocumentName: rec[0], Excerpt: rec[2]}

	page := strings.TrimSpace(rec[1])
	if !unknownPageLabels[page] {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return res, fmt.Errorf("invalid page %q", rec[1])
		}
		res.Page = models.IntPtr(n)
	}

	src, ok := models.ParseSource(rec[3])
	if !ok {
		return res, fmt.Errorf("invalid source %q", rec[3])
	}
	res.Source = src
	return res, nil
}
