package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	appconfig "github.com/fyerfyer/pdf-search/config"
	"github.com/fyerfyer/pdf-search/internal/export"
	"github.com/fyerfyer/pdf-search/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *models.SearchResult {
	return &models.SearchResult{
		Term:      "12345",
		Documents: 2,
		Results: []models.PageResult{
			{DocumentName: "a.pdf", Page: models.IntPtr(2), Excerpt: "Nota >>>12345<<<", Source: models.SourceEmbeddedText},
			{DocumentName: "scan.pdf", Excerpt: "NF >>>12345<<<", Source: models.SourceOCR},
		},
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(&models.InputError{Field: "term", Reason: "must not be empty"}))
	assert.Equal(t, 1, exitCode(&models.FolderError{Folder: "/x", Err: errors.New("missing")}))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}

func TestApplyFlags(t *testing.T) {
	cfg := appconfig.Default()
	applyFlags(cfg, options{Policy: "word_boundary", Mode: "page", Workers: 4, NoOCR: true, Port: 9090})

	assert.Equal(t, "word_boundary", cfg.Search.MatchPolicy)
	assert.Equal(t, "page", cfg.Search.Mode)
	assert.Equal(t, 4, cfg.Search.Workers)
	assert.False(t, cfg.OCR.Enable)
	assert.Equal(t, 9090, cfg.Server.Port)

	_, err := loadConfig(options{Mode: "chapter"})
	assert.True(t, models.IsInputError(err))
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	printResults(&buf, sampleResult())

	out := buf.String()
	assert.Contains(t, out, "[1] Arquivo: a.pdf | Página: 2 | Origem: Texto embutido\nNota >>>12345<<<")
	assert.Contains(t, out, "[2] Arquivo: scan.pdf | Página: ? | Origem: OCR")
	assert.Contains(t, out, "2 match(es) in 2 document(s), 0 failed")
}

func TestExportResults(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "out.csv")
	require.NoError(t, exportResults(csvPath, sampleResult()))
	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := export.ReadCSV(f)
	require.NoError(t, err)
	assert.Equal(t, sampleResult().Results, rows)

	xlsxPath := filepath.Join(dir, "out.xlsx")
	require.NoError(t, exportResults(xlsxPath, sampleResult()))
	assert.FileExists(t, xlsxPath)

	err = exportResults(filepath.Join(dir, "out.pdf"), sampleResult())
	assert.True(t, models.IsInputError(err))
}
