package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTempPDF 生成测试用PDF，空字符串表示没有文本的页面
func createTempPDF(t *testing.T, pages ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	for _, text := range pages {
		pdf.AddPage()
		if text == "" {
			continue
		}
		pdf.SetFont("Arial", "", 12)
		pdf.MultiCell(0, 10, text, "", "", false)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("Failed to write PDF: %v", err)
	}
	return path
}

func TestPDFParser(t *testing.T) {
	file := createTempPDF(t, "This is a PDF test.\nSecond line.")

	parser := NewPDFParser()
	layer, err := parser.ReadText(file)
	if err != nil {
		t.Fatalf("PDFParser.ReadText failed: %v", err)
	}
	if text := layer.Text(); !strings.Contains(text, "PDF test") {
		t.Errorf("Expected content not found in parsed PDF text: %s", text)
	}
}

func TestPDFParserPages(t *testing.T) {
	file := createTempPDF(t, "Invoice 12345", "", "Page three total")

	layer, err := NewPDFParser().ReadText(file)
	require.NoError(t, err)
	require.Equal(t, 3, layer.PageCount())

	assert.Contains(t, layer.Pages[0], "12345")
	assert.Empty(t, strings.TrimSpace(layer.Pages[1]))
	assert.Contains(t, layer.Pages[2], "three")
	assert.False(t, layer.Blank())
}

func TestPDFParserBlankDocument(t *testing.T) {
	file := createTempPDF(t, "", "")

	layer, err := NewPDFParser().ReadText(file)
	require.NoError(t, err)
	assert.Equal(t, 2, layer.PageCount())
	assert.True(t, layer.Blank())
}

func TestPDFParserErrors(t *testing.T) {
	_, err := NewPDFParser().ReadText(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)

	junk := filepath.Join(t.TempDir(), "junk.pdf")
	require.NoError(t, os.WriteFile(junk, []byte("definitely not a pdf"), 0644))
	_, err = NewPDFParser().ReadText(junk)
	assert.Error(t, err)
}

func TestTextLayer(t *testing.T) {
	layer := &TextLayer{Pages: []string{"a", " \n", "b"}}
	assert.Equal(t, "a\f \n\fb", layer.Text())
	assert.False(t, layer.Blank())
	assert.True(t, (&TextLayer{Pages: []string{"", "\t"}}).Blank())
	assert.True(t, (&TextLayer{}).Blank())
}
