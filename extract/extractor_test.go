package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/loricahq/corpus/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextExtractorSupports(t *testing.T) {
	e := NewTextExtractor()

	for _, ft := range []string{"txt", "md", "markdown", "text", ".md", "TXT", " .Markdown "} {
		assert.True(t, e.Supports(ft), "should support %q", ft)
	}
	for _, ft := range []string{"pdf", "docx", "html", "", "exe"} {
		assert.False(t, e.Supports(ft), "should not support %q", ft)
	}
}

func TestTextExtractorExtract(t *testing.T) {
	e := NewTextExtractor()

	text, err := e.Extract(context.Background(), []byte("# Title\n\nBody paragraph."), "md")
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody paragraph.", text)
}

func TestTextExtractorStripsBOM(t *testing.T) {
	e := NewTextExtractor()

	text, err := e.Extract(context.Background(), []byte("\xEF\xBB\xBFhello"), "txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestTextExtractorNormalizesLineEndings(t *testing.T) {
	e := NewTextExtractor()

	text, err := e.Extract(context.Background(), []byte("line one\r\nline two\r\n"), "txt")
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", text)
}

func TestTextExtractorUnsupportedFormat(t *testing.T) {
	e := NewTextExtractor()

	_, err := e.Extract(context.Background(), []byte("%PDF-1.7"), "pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.False(t, core.IsTransient(err), "format errors must not be retried")
}

func TestTextExtractorCorruptFile(t *testing.T) {
	e := NewTextExtractor()

	_, err := e.Extract(context.Background(), []byte{0xFF, 0xFE, 0x00, 0x41}, "txt")
	assert.ErrorIs(t, err, ErrCorruptFile)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestTextExtractorCancelledContext(t *testing.T) {
	e := NewTextExtractor()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, []byte("hello"), "txt")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTextExtractorEmptyDocument(t *testing.T) {
	e := NewTextExtractor()

	for _, data := range [][]byte{nil, []byte(""), []byte("   \n\t\n")} {
		_, err := e.Extract(context.Background(), data, "txt")
		assert.True(t, errors.Is(err, core.ErrEmptyDocument), "data %q", data)
	}
}
