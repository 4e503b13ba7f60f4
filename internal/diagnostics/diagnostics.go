// Package diagnostics 记录每个文档的读取过程，供排查问题使用
package diagnostics

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Kind 诊断条目类型
type Kind string

const (
	KindEmbedded Kind = "embedded" // 读取到内嵌文本
	KindOCR      Kind = "ocr"      // OCR识别完成
	KindCache    Kind = "cache"    // 命中提取缓存
	KindError    Kind = "error"    // 文档处理失败
)

// Entry 一条诊断信息
type Entry struct {
	Kind     Kind   `json:"kind"`
	Document string `json:"document"`
	Page     int    `json:"page,omitempty"` // 0 表示文档级
	Source   string `json:"source,omitempty"`
	Preview  string `json:"preview,omitempty"`
	Err      string `json:"error,omitempty"`
}

// String 返回便于阅读的单行描述
func (e Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Kind, e.Document)
	if e.Page > 0 {
		fmt.Fprintf(&b, " | page %d", e.Page)
	} else {
		b.WriteString(" | page ?")
	}
	if e.Source != "" {
		fmt.Fprintf(&b, " | source %s", e.Source)
	}
	if e.Err != "" {
		fmt.Fprintf(&b, " | error: %s", e.Err)
	}
	if e.Preview != "" {
		b.WriteString("\n")
		b.WriteString(e.Preview)
	}
	return b.String()
}

// Sink 诊断输出接口，实现必须可以并发调用
type Sink interface {
	Emit(e Entry)
}

// Discard 丢弃所有诊断
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(Entry) {}

// Collector 在内存中收集诊断条目
type Collector struct {
	mu      sync.Mutex
	entries []Entry
}

// NewCollector 创建收集器
func NewCollector() *Collector {
	return &Collector{}
}

// Emit 记录一条诊断
func (c *Collector) Emit(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
}

// Entries 返回已收集条目的副本
func (c *Collector) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// WriterSink 将诊断以文本行写到 io.Writer
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink 创建文本输出
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Emit 写出一条诊断，后跟空行
func (s *WriterSink) Emit(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "%s\n\n", e.String())
}

// LogSink 将诊断写入logrus
type LogSink struct {
	logger *logrus.Logger
}

// NewLogSink 创建日志输出
func NewLogSink(logger *logrus.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Emit 以结构化字段记录一条诊断，错误使用Warn级别
func (s *LogSink) Emit(e Entry) {
	entry := s.logger.WithFields(logrus.Fields{
		"kind":     e.Kind,
		"document": e.Document,
		"page":     e.Page,
		"source":   e.Source,
	})
	if e.Err != "" {
		entry.WithField("error", e.Err).Warn("Document extraction failed")
		return
	}
	entry.WithField("preview", e.Preview).Debug("Document text read")
}

// Multi 将诊断同时发送给多个输出
func Multi(sinks ...Sink) Sink {
	var out multi
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type multi []Sink

func (m multi) Emit(e Entry) {
	for _, s := range m {
		s.Emit(e)
	}
}

type contextKey struct{}

// NewContext 返回携带额外诊断输出的上下文
// 用于为单次搜索收集诊断，不影响全局输出
func NewContext(ctx context.Context, sink Sink) context.Context {
	return context.WithValue(ctx, contextKey{}, sink)
}

// FromContext 取出上下文中的诊断输出，不存在时返回 nil
func FromContext(ctx context.Context) Sink {
	sink, _ := ctx.Value(contextKey{}).(Sink)
	return sink
}

// For 组合基础输出和上下文中的输出
func For(ctx context.Context, base Sink) Sink {
	extra := FromContext(ctx)
	if extra == nil {
		return base
	}
	return Multi(base, extra)
}
