package models

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomy(t *testing.T) {
	wrapped := fmt.Errorf("search: %w", &FolderError{Folder: "/nope", Err: os.ErrNotExist})
	assert.True(t, IsFolderError(wrapped))
	assert.False(t, IsInputError(wrapped))
	assert.ErrorIs(t, wrapped, os.ErrNotExist)

	ee := &ExtractionError{Document: "a.pdf", Page: 2, Err: ErrNoText}
	assert.True(t, IsExtractionError(ee))
	assert.Equal(t, "extract a.pdf page 2: no text content found in PDF", ee.Error())
	assert.ErrorIs(t, ee, ErrNoText)

	ie := &InputError{Field: "term", Reason: "must not be empty"}
	assert.True(t, IsInputError(ie))
	assert.Equal(t, "invalid term: must not be empty", ie.Error())
}

func TestSourceLabels(t *testing.T) {
	assert.Equal(t, "Texto embutido", SourceEmbeddedText.Label())
	assert.Equal(t, "OCR", SourceOCR.Label())

	for _, label := range []string{"Texto embutido", "EmbeddedText"} {
		src, ok := ParseSource(label)
		require.True(t, ok, label)
		assert.Equal(t, SourceEmbeddedText, src)
	}
	_, ok := ParseSource("scanner")
	assert.False(t, ok)
}

func TestPageResultJSON(t *testing.T) {
	r := PageResult{DocumentName: "nota.pdf", Page: IntPtr(3), Excerpt: "x", Source: SourceOCR}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"document_name":"nota.pdf","page":3,"excerpt":"x","source":"OCR"}`, string(data))

	var back PageResult
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r, back)

	assert.Equal(t, "3", r.PageLabel())
	assert.Equal(t, "?", PageResult{}.PageLabel())
}

func TestValidateStateTransition(t *testing.T) {
	trail := []DocumentState{
		DocStatePending, DocStateEmbeddedTextTried, DocStateOCRFallback, DocStateMatched, DocStateDone,
	}
	for i := 1; i < len(trail); i++ {
		assert.NoError(t, ValidateStateTransition(trail[i-1], trail[i]))
	}

	assert.NoError(t, ValidateStateTransition(DocStatePending, DocStateErrored))
	assert.Error(t, ValidateStateTransition(DocStatePending, DocStateMatched))
	assert.Error(t, ValidateStateTransition(DocStateDone, DocStatePending))
}
