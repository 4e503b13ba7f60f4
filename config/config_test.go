package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Empty(t, cfg.Server.SearchRoot)
	assert.Equal(t, "document", cfg.Search.Mode)
	assert.Equal(t, "substring", cfg.Search.MatchPolicy)
	assert.Equal(t, 500, cfg.Search.ExcerptLength)
	assert.Equal(t, 300, cfg.Search.PreviewLength)
	assert.Equal(t, 1, cfg.Search.Workers)

	assert.Equal(t, 400, cfg.OCR.DPI)
	assert.Equal(t, []string{"por"}, cfg.OCR.Languages())
	assert.Equal(t, 7, cfg.OCR.PageSegmentationMode)
	assert.Equal(t, "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ", cfg.OCR.CharWhitelist)
	assert.Equal(t, "sharpen", cfg.OCR.Preprocessing)

	assert.Equal(t, time.Hour, cfg.Cache.TTLDuration())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
search:
  mode: page
  match_policy: word_boundary
  workers: 4
ocr:
  language: por+eng
  preprocessing: median
cache:
  type: redis
  password: ${TEST_PDFSEARCH_REDIS_PASSWORD}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("PDFSEARCH_OCR_DPI", "300")
	t.Setenv("PDFSEARCH_SERVER_SEARCH_ROOT", "/srv/pdfs")
	t.Setenv("TEST_PDFSEARCH_REDIS_PASSWORD", "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "page", cfg.Search.Mode)
	assert.Equal(t, "word_boundary", cfg.Search.MatchPolicy)
	assert.Equal(t, 4, cfg.Search.Workers)
	assert.Equal(t, []string{"por", "eng"}, cfg.OCR.Languages())
	assert.Equal(t, "median", cfg.OCR.Preprocessing)
	assert.Equal(t, 300, cfg.OCR.DPI)
	assert.Equal(t, "/srv/pdfs", cfg.Server.SearchRoot)
	assert.Equal(t, "s3cret", cfg.Cache.Password)
	// 未设置的项保留默认值
	assert.Equal(t, 500, cfg.Search.ExcerptLength)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  mode: chapter\nocr:\n  dpi: 10\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mode")
	assert.Contains(t, err.Error(), "DPI")

	broken := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("search: [unclosed"), 0644))
	_, err = Load(broken)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "pdftoppm", cfg.OCR.Rasterizer)
	assert.True(t, cfg.Cache.Enable)
}
