package chunk

import (
	"errors"
	"strings"
	"testing"

	"github.com/loricahq/corpus/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSplitter_Validation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{name: "valid", size: 1000, overlap: 200},
		{name: "zero overlap", size: 100, overlap: 0},
		{name: "zero size", size: 0, overlap: 0, wantErr: true},
		{name: "negative size", size: -1, overlap: 0, wantErr: true},
		{name: "negative overlap", size: 100, overlap: -1, wantErr: true},
		{name: "overlap equals size", size: 100, overlap: 100, wantErr: true},
		{name: "overlap exceeds size", size: 100, overlap: 150, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSplitter(tt.size, tt.overlap)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, core.ErrValidation))
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, s)
		})
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	s, err := NewSplitter(100, 20)
	require.NoError(t, err)

	spans := s.Split("")
	assert.Empty(t, spans, "empty input should produce zero chunks, not an error")
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	s, err := NewSplitter(100, 20)
	require.NoError(t, err)

	spans := s.Split("short text")
	require.Len(t, spans, 1)
	assert.Equal(t, 0, spans[0].Index)
	assert.Equal(t, "short text", spans[0].Text)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, len([]rune("short text")), spans[0].End)
}

func TestSplit_ExactSizeSingleChunk(t *testing.T) {
	s, err := NewSplitter(10, 2)
	require.NoError(t, err)

	spans := s.Split("0123456789")
	require.Len(t, spans, 1)
}

// reconstruct rebuilds the original text from spans by dropping each span's
// overlap with its predecessor.
func reconstruct(spans []Span) string {
	var b strings.Builder
	prevEnd := 0
	for _, span := range spans {
		runes := []rune(span.Text)
		skip := prevEnd - span.Start
		b.WriteString(string(runes[skip:]))
		prevEnd = span.End
	}
	return b.String()
}

func TestSplit_Reconstruction(t *testing.T) {
	texts := []string{
		strings.Repeat("a", 537),
		"First paragraph of the employee handbook.\n\nSecond paragraph with more detail.\n\nThird paragraph that keeps going for a while so the splitter has something to do.",
		strings.Repeat("word boundary test ", 200),
		strings.Repeat("une ligne accentuée\n", 100),
		"no separators" + strings.Repeat("x", 2000),
	}

	configs := []struct{ size, overlap int }{
		{100, 0},
		{100, 20},
		{50, 10},
		{1000, 200},
	}

	for _, cfg := range configs {
		s, err := NewSplitter(cfg.size, cfg.overlap)
		require.NoError(t, err)
		for _, text := range texts {
			spans := s.Split(text)
			assert.Equal(t, text, reconstruct(spans),
				"size=%d overlap=%d", cfg.size, cfg.overlap)
		}
	}
}

func TestSplit_CoverageAndOrdering(t *testing.T) {
	s, err := NewSplitter(80, 16)
	require.NoError(t, err)

	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 40)
	spans := s.Split(text)
	require.NotEmpty(t, spans)

	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, len([]rune(text)), spans[len(spans)-1].End)

	for i, span := range spans {
		assert.Equal(t, i, span.Index, "indices must be sequential with no gaps")
		assert.LessOrEqual(t, span.End-span.Start, 80, "no span may exceed size")
		assert.Greater(t, span.End, span.Start)
		if i > 0 {
			prev := spans[i-1]
			assert.Greater(t, span.Start, prev.Start, "spans must advance left to right")
			assert.LessOrEqual(t, span.Start, prev.End, "no gap between consecutive spans")
		}
	}
}

// Hard cuts advance by exactly size-overlap, so separator-free text obeys
// the closed-form chunk count.
func TestSplit_HardCutChunkCount(t *testing.T) {
	tests := []struct {
		length  int
		size    int
		overlap int
	}{
		{537, 100, 20},
		{1000, 100, 0},
		{999, 100, 0},
		{1001, 100, 0},
		{5000, 1000, 200},
		{150, 100, 50},
	}

	for _, tt := range tests {
		s, err := NewSplitter(tt.size, tt.overlap)
		require.NoError(t, err)

		text := strings.Repeat("x", tt.length)
		spans := s.Split(text)

		stride := tt.size - tt.overlap
		want := (tt.length - tt.overlap + stride - 1) / stride
		if want < 1 {
			want = 1
		}
		assert.Len(t, spans, want, "length=%d size=%d overlap=%d", tt.length, tt.size, tt.overlap)
	}
}

func TestSplit_PrefersWordBoundaries(t *testing.T) {
	s, err := NewSplitter(30, 10)
	require.NoError(t, err)

	text := strings.Repeat("alpha beta gamma delta epsilon ", 10)
	spans := s.Split(text)
	require.Greater(t, len(spans), 1)

	for _, span := range spans[:len(spans)-1] {
		assert.True(t, strings.HasSuffix(span.Text, " "),
			"span %d should end at a word boundary: %q", span.Index, span.Text)
	}
}

func TestSplit_PrefersWordBoundariesWithZeroOverlap(t *testing.T) {
	s, err := NewSplitter(30, 0)
	require.NoError(t, err)

	text := strings.Repeat("one two six ten ", 20)
	spans := s.Split(text)
	require.Greater(t, len(spans), 1)

	for _, span := range spans[:len(spans)-1] {
		assert.True(t, strings.HasSuffix(span.Text, " "),
			"span %d should end at a word boundary even without overlap: %q", span.Index, span.Text)
	}
}

func TestSplit_PrefersParagraphBreaks(t *testing.T) {
	s, err := NewSplitter(120, 60)
	require.NoError(t, err)

	para := strings.Repeat("sentence one here. ", 5)
	text := para + "\n\n" + para + "\n\n" + para
	spans := s.Split(text)
	require.Greater(t, len(spans), 1)

	// At least one cut should land on a paragraph break rather than mid-word.
	var paragraphCuts int
	for _, span := range spans[:len(spans)-1] {
		if strings.HasSuffix(span.Text, "\n\n") {
			paragraphCuts++
		}
	}
	assert.Greater(t, paragraphCuts, 0)
}

func TestSplit_MultiByteRunesNeverSplit(t *testing.T) {
	s, err := NewSplitter(10, 2)
	require.NoError(t, err)

	text := strings.Repeat("héllo wörld ", 30)
	spans := s.Split(text)
	for _, span := range spans {
		assert.True(t, len([]rune(span.Text)) <= 10)
		// Round-tripping through runes detects torn encodings.
		assert.Equal(t, span.Text, string([]rune(span.Text)))
	}
	assert.Equal(t, text, reconstruct(spans))
}
