package storage

import (
	"path/filepath"
	"strings"
	"time"
)

// FileInfo 文件元数据结构
type FileInfo struct {
	Name    string    // 文件名
	Path    string    // 完整路径
	Size    int64     // 文件大小(字节)
	ModTime time.Time // 修改时间
}

// Within 判断 path 是否位于 root 之内（含 root 本身）
// 只做路径比较，不访问文件系统；root 为空表示不限制
func Within(root, path string) (bool, error) {
	if root == "" {
		return true, nil
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false, err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return false, nil
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)), nil
}
