package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalStorage 本地文件夹，只读取顶层目录
type LocalStorage struct {
	basePath   string          // 文件夹路径
	extensions map[string]bool // 允许的扩展名（小写），为空表示不过滤
}

// LocalConfig 本地存储配置
type LocalConfig struct {
	Path       string   // 文件夹路径
	Extensions []string // 允许的扩展名，例如 ".pdf"
}

// NewLocalStorage 创建本地存储实例
// 文件夹必须已经存在
func NewLocalStorage(cfg LocalConfig) (*LocalStorage, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("storage path is empty")
	}

	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", absPath)
	}

	exts := make(map[string]bool, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		exts[strings.ToLower(ext)] = true
	}

	return &LocalStorage{
		basePath:   absPath,
		extensions: exts,
	}, nil
}

// NewPDFFolder 创建只列出PDF文件的本地存储
func NewPDFFolder(path string) (*LocalStorage, error) {
	return NewLocalStorage(LocalConfig{Path: path, Extensions: []string{".pdf"}})
}

// Path 返回文件夹的绝对路径
func (s *LocalStorage) Path() string {
	return s.basePath
}

// List 列出文件夹中的文件，跳过子目录
// 扩展名比较不区分大小写
func (s *LocalStorage) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !s.accept(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// 列出后被删除的文件直接跳过
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		files = append(files, FileInfo{
			Name:    entry.Name(),
			Path:    filepath.Join(s.basePath, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	// os.ReadDir 已按文件名排序，这里显式保证结果可复现
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

func (s *LocalStorage) accept(name string) bool {
	if len(s.extensions) == 0 {
		return true
	}
	return s.extensions[strings.ToLower(filepath.Ext(name))]
}
