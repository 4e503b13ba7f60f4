package models

import (
	"errors"
	"fmt"
)

var (
	// ErrSearchNotFound 搜索结果不存在或已过期
	ErrSearchNotFound = errors.New("search result not found")

	// ErrNoText 文档中没有可提取的文本
	ErrNoText = errors.New("no text content found in PDF")
)

// InputError 调用方提供的参数无效，搜索开始前即被拒绝
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// FolderError 文件夹不存在或无法读取，整个搜索失败
type FolderError struct {
	Folder string
	Err    error
}

func (e *FolderError) Error() string {
	return fmt.Sprintf("cannot list folder %s: %v", e.Folder, e.Err)
}

func (e *FolderError) Unwrap() error { return e.Err }

// ExtractionError 单个文档无法打开、解析或OCR失败
// 只影响该文档，搜索继续
type ExtractionError struct {
	Document string
	Page     int // 0 表示文档级
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("extract %s page %d: %v", e.Document, e.Page, e.Err)
	}
	return fmt.Sprintf("extract %s: %v", e.Document, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// IsInputError 判断是否为输入错误
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// IsFolderError 判断是否为文件夹错误
func IsFolderError(err error) bool {
	var fe *FolderError
	return errors.As(err, &fe)
}

// IsExtractionError 判断是否为提取错误
func IsExtractionError(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee)
}
