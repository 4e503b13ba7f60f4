package services

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fyerfyer/pdf-search/internal/cache"
	"github.com/fyerfyer/pdf-search/internal/diagnostics"
	"github.com/fyerfyer/pdf-search/internal/document"
	"github.com/fyerfyer/pdf-search/internal/matcher"
	"github.com/fyerfyer/pdf-search/internal/models"
	"github.com/fyerfyer/pdf-search/internal/normalize"
	"github.com/fyerfyer/pdf-search/pkg/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultExcerptLength 摘录的默认长度（字符数）
const DefaultExcerptLength = 500

// Extractor 读取单个文档的文本
type Extractor interface {
	Extract(ctx context.Context, doc models.Document) (*document.Extraction, error)
	Mode() document.Mode
}

// FolderLister 枚举文件夹中的PDF文件
type FolderLister func(folder string) ([]storage.FileInfo, error)

// ListPDFFolder 使用本地存储枚举文件夹
func ListPDFFolder(folder string) ([]storage.FileInfo, error) {
	fs, err := storage.NewPDFFolder(folder)
	if err != nil {
		return nil, err
	}
	return fs.List()
}

// SearchService 搜索服务
// 负责枚举文件、提取文本、匹配并生成结果
type SearchService struct {
	extractor     Extractor        // 文本提取器
	list          FolderLister     // 文件枚举
	cache         cache.Cache      // 提取结果缓存，为空时不缓存
	cacheTTL      time.Duration    // 缓存过期时间
	ocrProfile    cache.OCRProfile // 参与缓存键的OCR参数
	searchRoot    string           // 允许搜索的根目录，为空表示不限制
	sink          diagnostics.Sink // 诊断输出
	policy        matcher.Policy   // 默认匹配策略
	excerptLength int              // 默认摘录长度
	workers       int              // 并发处理的文档数
	logger        *logrus.Logger   // 日志记录器
}

// SearchOption 搜索服务配置选项
type SearchOption func(*SearchService)

// NewSearchService 创建搜索服务
func NewSearchService(extractor Extractor, opts ...SearchOption) *SearchService {
	srv := &SearchService{
		extractor:     extractor,
		list:          ListPDFFolder,
		sink:          diagnostics.Discard,
		policy:        matcher.Substring,
		excerptLength: DefaultExcerptLength,
		workers:       1,
		logger:        logrus.New(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) SearchOption {
	return func(s *SearchService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFolderLister 替换文件枚举方式
func WithFolderLister(list FolderLister) SearchOption {
	return func(s *SearchService) {
		if list != nil {
			s.list = list
		}
	}
}

// WithCache 启用提取结果缓存
func WithCache(c cache.Cache, ttl time.Duration) SearchOption {
	return func(s *SearchService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithOCRProfile 设置参与缓存键的OCR参数
// 参数变化后旧的OCR结果不会被复用
func WithOCRProfile(profile cache.OCRProfile) SearchOption {
	return func(s *SearchService) {
		s.ocrProfile = profile
	}
}

// WithSearchRoot 限制只能搜索 root 之内的文件夹
func WithSearchRoot(root string) SearchOption {
	return func(s *SearchService) {
		s.searchRoot = root
	}
}

// WithSink 设置诊断输出
func WithSink(sink diagnostics.Sink) SearchOption {
	return func(s *SearchService) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithMatchPolicy 设置默认匹配策略
func WithMatchPolicy(policy matcher.Policy) SearchOption {
	return func(s *SearchService) {
		if policy != "" {
			s.policy = policy
		}
	}
}

// WithExcerptLength 设置默认摘录长度
func WithExcerptLength(n int) SearchOption {
	return func(s *SearchService) {
		if n > 0 {
			s.excerptLength = n
		}
	}
}

// WithWorkers 设置并发处理的文档数
func WithWorkers(n int) SearchOption {
	return func(s *SearchService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// query 一次搜索中不变的参数
type query struct {
	term          string
	compiled      matcher.Query
	excerptLength int
}

// Search 在文件夹的所有PDF中搜索
// 单个文档提取失败不影响其它文档，只计入 Failed
func (s *SearchService) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error) {
	q, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	files, err := s.list(req.Folder)
	if err != nil {
		return nil, &models.FolderError{Folder: req.Folder, Err: err}
	}
	docs := make([]models.Document, 0, len(files))
	for _, f := range files {
		docs = append(docs, models.Document{Name: f.Name, Path: f.Path, Size: f.Size, ModTime: f.ModTime})
	}

	s.logger.WithFields(logrus.Fields{
		"folder":    req.Folder,
		"term":      q.term,
		"documents": len(docs),
		"workers":   s.workers,
		"mode":      s.extractor.Mode(),
	}).Info("Starting search")
	start := time.Now()

	perDoc := make([][]models.PageResult, len(docs))
	var failed int64
	process := func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		results, err := s.searchDocument(ctx, docs[i], q)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			atomic.AddInt64(&failed, 1)
			return nil
		}
		perDoc[i] = results
		return nil
	}

	if s.workers <= 1 {
		for i := range docs {
			if err := process(ctx, i); err != nil {
				return nil, errors.Wrap(err, "search canceled")
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.workers)
		for i := range docs {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error { return process(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, errors.Wrap(err, "search canceled")
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "search canceled")
		}
	}

	result := &models.SearchResult{
		Term:      q.term,
		Results:   []models.PageResult{},
		Documents: len(docs),
		Failed:    int(failed),
	}
	for _, rs := range perDoc {
		result.Results = append(result.Results, rs...)
	}

	s.logger.WithFields(logrus.Fields{
		"folder":   req.Folder,
		"term":     q.term,
		"matches":  len(result.Results),
		"failed":   result.Failed,
		"duration": time.Since(start).String(),
	}).Info("Search completed")

	return result, nil
}

// prepare 校验请求，此时还没有访问文件系统
func (s *SearchService) prepare(req models.SearchRequest) (query, error) {
	if strings.TrimSpace(req.Folder) == "" {
		return query{}, &models.InputError{Field: "folder", Reason: "must not be empty"}
	}
	if ok, err := storage.Within(s.searchRoot, req.Folder); err != nil || !ok {
		return query{}, &models.InputError{Field: "folder", Reason: "must be inside the search root"}
	}
	term := strings.TrimSpace(req.Term)
	if term == "" {
		return query{}, &models.InputError{Field: "term", Reason: "must not be empty"}
	}
	if normalize.Compact(term) == "" {
		return query{}, &models.InputError{Field: "term", Reason: "must contain at least one letter or digit"}
	}

	policy := string(s.policy)
	if req.MatchPolicy != "" {
		policy = req.MatchPolicy
	}
	m, err := matcher.New(policy)
	if err != nil {
		return query{}, err
	}

	excerpt := s.excerptLength
	switch {
	case req.ExcerptLength < 0:
		return query{}, &models.InputError{Field: "excerpt_length", Reason: "must not be negative"}
	case req.ExcerptLength > 0:
		excerpt = req.ExcerptLength
	}

	return query{term: term, compiled: m.Compile(term), excerptLength: excerpt}, nil
}

// searchDocument 提取并匹配单个文档
func (s *SearchService) searchDocument(ctx context.Context, doc models.Document, q query) ([]models.PageResult, error) {
	status := newDocumentStatus(doc.Name, s.logger)
	defer status.finish()

	ex, err := s.extract(ctx, doc)
	if err != nil {
		status.advance(models.DocStateErrored)
		s.logger.WithFields(logrus.Fields{
			"document": doc.Name,
			"error":    err.Error(),
		}).Warn("Skipping document")
		return nil, err
	}

	status.advance(models.DocStateEmbeddedTextTried)
	if !ex.Embedded {
		status.advance(models.DocStateOCRFallback)
	}

	var results []models.PageResult
	for _, p := range ex.Pages {
		if !q.compiled.Match(p.Text) {
			continue
		}
		results = append(results, models.PageResult{
			DocumentName: doc.Name,
			Page:         p.Page,
			Excerpt:      matcher.Highlight(p.Text, q.term, q.excerptLength),
			Source:       p.Source,
		})
	}

	if len(results) > 0 {
		status.advance(models.DocStateMatched)
	} else {
		status.advance(models.DocStateNotMatched)
	}
	return results, nil
}

// extract 优先使用缓存的提取结果
func (s *SearchService) extract(ctx context.Context, doc models.Document) (*document.Extraction, error) {
	if s.cache == nil {
		return s.extractor.Extract(ctx, doc)
	}

	key := cache.ExtractionKey(doc, string(s.extractor.Mode()), s.ocrProfile)
	var cached document.Extraction
	found, err := cache.GetJSON(s.cache, key, &cached)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read extraction cache")
	}
	if found {
		diagnostics.For(ctx, s.sink).Emit(diagnostics.Entry{Kind: diagnostics.KindCache, Document: doc.Name})
		return &cached, nil
	}

	ex, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(s.cache, key, ex, s.cacheTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to write extraction cache")
	}
	return ex, nil
}

// SaveResult 保存已完成的搜索结果，返回搜索ID
func (s *SearchService) SaveResult(result *models.SearchResult) (string, error) {
	if s.cache == nil {
		return "", errors.New("result cache disabled")
	}
	id := uuid.New().String()
	if err := cache.SetJSON(s.cache, cache.SearchKey(id), result, s.cacheTTL); err != nil {
		return "", err
	}
	return id, nil
}

// GetResult 读取已保存的搜索结果
func (s *SearchService) GetResult(id string) (*models.SearchResult, error) {
	if s.cache == nil {
		return nil, models.ErrSearchNotFound
	}
	var result models.SearchResult
	found, err := cache.GetJSON(s.cache, cache.SearchKey(id), &result)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrSearchNotFound
	}
	return &result, nil
}
