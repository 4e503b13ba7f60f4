package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fyerfyer/pdf-search/api"
	"github.com/fyerfyer/pdf-search/api/handler"
	"github.com/fyerfyer/pdf-search/api/middleware"
	appconfig "github.com/fyerfyer/pdf-search/config"
	"github.com/fyerfyer/pdf-search/internal/cache"
	"github.com/fyerfyer/pdf-search/internal/diagnostics"
	"github.com/fyerfyer/pdf-search/internal/document"
	"github.com/fyerfyer/pdf-search/internal/export"
	"github.com/fyerfyer/pdf-search/internal/matcher"
	"github.com/fyerfyer/pdf-search/internal/models"
	"github.com/fyerfyer/pdf-search/internal/ocr"
	"github.com/fyerfyer/pdf-search/internal/ocr/tesseract"
	"github.com/fyerfyer/pdf-search/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// 命令行选项，非空时覆盖配置文件
type options struct {
	ConfigFile string // 配置文件路径
	Folder     string // 搜索的文件夹
	Term       string // 搜索词
	Policy     string // 匹配策略
	Mode       string // 提取粒度
	Export     string // 导出文件路径，扩展名决定格式
	Workers    int    // 并发处理的文档数
	LogLevel   string // 日志级别
	Serve      bool   // 以HTTP服务方式运行
	Port       int    // 服务端口
	Quiet      bool   // 不在stderr输出诊断
	NoOCR      bool   // 禁用OCR
}

func main() {
	opts := parseFlags()
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode 输入错误返回2，其他错误返回1
func exitCode(err error) int {
	if models.IsInputError(err) {
		return 2
	}
	return 1
}

func parseFlags() options {
	opts := options{}

	flag.StringVar(&opts.ConfigFile, "config", "", "Path to config file")
	flag.StringVar(&opts.Folder, "folder", "", "Folder containing the PDF files")
	flag.StringVar(&opts.Term, "term", "", "Search term")
	flag.StringVar(&opts.Policy, "policy", "", "Match policy (substring/word_boundary)")
	flag.StringVar(&opts.Mode, "mode", "", "Extraction granularity (document/page)")
	flag.StringVar(&opts.Export, "export", "", "Export results to a .csv or .xlsx file")
	flag.IntVar(&opts.Workers, "workers", 0, "Number of documents processed concurrently")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug/info/warn/error)")
	flag.BoolVar(&opts.Serve, "serve", false, "Run the HTTP API instead of a single search")
	flag.IntVar(&opts.Port, "port", 0, "Server port")
	flag.BoolVar(&opts.Quiet, "quiet", false, "Do not print per-document diagnostics")
	flag.BoolVar(&opts.NoOCR, "no-ocr", false, "Disable the OCR fallback")

	flag.Parse()
	return opts
}

// applyFlags 用命令行选项覆盖配置
func applyFlags(cfg *appconfig.Config, opts options) {
	if opts.Policy != "" {
		cfg.Search.MatchPolicy = opts.Policy
	}
	if opts.Mode != "" {
		cfg.Search.Mode = opts.Mode
	}
	if opts.Workers > 0 {
		cfg.Search.Workers = opts.Workers
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}
	if opts.NoOCR {
		cfg.OCR.Enable = false
	}
}

func run(opts options) error {
	// .env 文件是可选的
	_ = godotenv.Load()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if err := middleware.ConfigureLogger(cfg.Log); err != nil {
		return fmt.Errorf("failed to configure logger: %w", err)
	}
	logger := middleware.GetLogger()

	if !opts.Serve {
		// 命令行输入错误在任何I/O之前报告
		if strings.TrimSpace(opts.Folder) == "" {
			return &models.InputError{Field: "folder", Reason: "must not be empty"}
		}
		if strings.TrimSpace(opts.Term) == "" {
			return &models.InputError{Field: "term", Reason: "must not be empty"}
		}
	}

	resultCache, err := setupCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	if closer, ok := resultCache.(io.Closer); ok {
		defer closer.Close()
	}

	var sink diagnostics.Sink = diagnostics.NewLogSink(logger)
	if !opts.Serve && !opts.Quiet {
		sink = diagnostics.Multi(sink, diagnostics.NewWriterSink(os.Stderr))
	}

	srv, err := setupSearchService(cfg, resultCache, sink, opts.Serve, logger)
	if err != nil {
		return err
	}

	if opts.Serve {
		return serve(cfg, srv, logger)
	}
	return searchOnce(opts, srv, logger)
}

func loadConfig(opts options) (*appconfig.Config, error) {
	var (
		cfg *appconfig.Config
		err error
	)
	if opts.ConfigFile != "" {
		cfg, err = appconfig.Load(opts.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = appconfig.Default()
	}

	applyFlags(cfg, opts)
	if err := appconfig.Validate(cfg); err != nil {
		return nil, &models.InputError{Field: "config", Reason: err.Error()}
	}
	return cfg, nil
}

func setupCache(cfg appconfig.CacheConfig) (cache.Cache, error) {
	if !cfg.Enable {
		return nil, nil
	}
	cacheCfg := cache.DefaultConfig()
	cacheCfg.Type = cfg.Type
	cacheCfg.RedisAddr = cfg.Address
	cacheCfg.RedisPassword = cfg.Password
	cacheCfg.RedisDB = cfg.DB
	cacheCfg.DefaultTTL = cfg.TTLDuration()
	if cfg.CleanupInterval > 0 {
		cacheCfg.CleanupInterval = time.Duration(cfg.CleanupInterval) * time.Second
	}
	return cache.NewCache(cacheCfg)
}

// setupOCR 构建OCR流程，禁用时返回 nil
func setupOCR(cfg appconfig.OCRConfig, logger *logrus.Logger) (document.OCR, error) {
	if !cfg.Enable {
		logger.Info("OCR fallback disabled, scanned documents will be reported as failed")
		return nil, nil
	}

	var rasterizer ocr.Rasterizer
	switch cfg.Rasterizer {
	case "pdfcpu":
		rasterizer = ocr.NewPdfcpuRasterizer()
	default:
		r := ocr.NewPdftoppmRasterizer(cfg.PdftoppmPath)
		if !r.Available() {
			logger.Warn("pdftoppm not found, scanned documents will fail to rasterize")
		}
		rasterizer = r
	}

	preprocessor, err := ocr.NewPreprocessor(cfg.Preprocessing, cfg.MaxDimension)
	if err != nil {
		return nil, err
	}

	engine := tesseract.New()
	logger.WithFields(logrus.Fields{
		"engine":        engine.Name(),
		"version":       engine.Version(),
		"rasterizer":    rasterizer.Name(),
		"dpi":           cfg.DPI,
		"language":      cfg.Language,
		"preprocessing": preprocessor.Name(),
	}).Info("OCR fallback enabled")

	return ocr.NewRecognizer(rasterizer, preprocessor, engine, ocr.Config{
		DPI:           cfg.DPI,
		Languages:     cfg.Languages(),
		PageSegMode:   cfg.PageSegmentationMode,
		CharWhitelist: cfg.CharWhitelist,
	}), nil
}

func setupSearchService(cfg *appconfig.Config, resultCache cache.Cache, sink diagnostics.Sink, serving bool, logger *logrus.Logger) (*services.SearchService, error) {
	mode, err := document.ParseMode(cfg.Search.Mode)
	if err != nil {
		return nil, err
	}

	recognizer, err := setupOCR(cfg.OCR, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OCR: %w", err)
	}

	extractor := document.NewExtractor(document.NewPDFParser(), recognizer,
		document.WithMode(mode),
		document.WithSink(sink),
		document.WithPreviewLength(cfg.Search.PreviewLength),
	)

	opts := []services.SearchOption{
		services.WithLogger(logger),
		services.WithSink(sink),
		services.WithMatchPolicy(matcher.Policy(cfg.Search.MatchPolicy)),
		services.WithExcerptLength(cfg.Search.ExcerptLength),
		services.WithWorkers(cfg.Search.Workers),
		services.WithOCRProfile(cache.OCRProfile{
			Rasterizer:    cfg.OCR.Rasterizer,
			DPI:           cfg.OCR.DPI,
			Languages:     cfg.OCR.Languages(),
			PageSegMode:   cfg.OCR.PageSegmentationMode,
			CharWhitelist: cfg.OCR.CharWhitelist,
			Preprocessing: cfg.OCR.Preprocessing,
		}),
	}
	// 根目录限制只约束HTTP调用方，命令行用户可以搜索任意路径
	if serving && cfg.Server.SearchRoot != "" {
		opts = append(opts, services.WithSearchRoot(cfg.Server.SearchRoot))
	}
	if resultCache != nil {
		opts = append(opts, services.WithCache(resultCache, cfg.Cache.TTLDuration()))
	}
	return services.NewSearchService(extractor, opts...), nil
}

// searchOnce 执行一次搜索并打印结果
func searchOnce(opts options, srv *services.SearchService, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := srv.Search(ctx, models.SearchRequest{
		Folder: opts.Folder,
		Term:   opts.Term,
	})
	if err != nil {
		return err
	}

	printResults(os.Stdout, result)

	if opts.Export == "" {
		return nil
	}
	if len(result.Results) == 0 {
		logger.WithField("path", opts.Export).Warn("No results to export, skipping")
		return nil
	}
	return exportResults(opts.Export, result)
}

func printResults(w io.Writer, result *models.SearchResult) {
	for i, r := range result.Results {
		fmt.Fprintf(w, "[%d] Arquivo: %s | Página: %s | Origem: %s\n%s\n\n",
			i+1, r.DocumentName, r.PageLabel(), r.Source.Label(), r.Excerpt)
	}
	fmt.Fprintf(w, "%d match(es) in %d document(s), %d failed\n",
		len(result.Results), result.Documents, result.Failed)
}

func exportResults(path string, result *models.SearchResult) error {
	format, err := export.FormatForPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := export.Write(f, format, result.Results); err != nil {
		f.Close()
		return fmt.Errorf("failed to export results: %w", err)
	}
	return f.Close()
}

// serve 启动HTTP服务，收到信号后优雅退出
func serve(cfg *appconfig.Config, srv *services.SearchService, logger *logrus.Logger) error {
	if logger.Level < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	searchHandler := handler.NewSearchHandler(srv, time.Duration(cfg.Server.Timeout)*time.Second)
	r := api.SetupRouter(searchHandler, cfg.Server)

	httpServer := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     r,
		ReadTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Server is running on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}
