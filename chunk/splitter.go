// Copyright 2025 Lorica Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package chunk

import (
	"fmt"

	"github.com/loricahq/corpus/core"
)

// Default chunking parameters for knowledge-base documents.
const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// Span is one bounded segment of a split text. Start and End are rune
// offsets into the original input, so consecutive spans reconstruct the
// input exactly once their overlap is removed.
type Span struct {
	Index int
	Start int
	End   int
	Text  string
}

// Splitter splits extracted text into overlapping, size-bounded segments
// with stable indices. It cuts on a priority list of separators (paragraph
// break, line break, space) to avoid breaking words where possible, and
// falls back to hard character cuts when no separator is in reach.
//
// Sizes and offsets are measured in runes so multi-byte characters are
// never split.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter creates a Splitter. size must be positive and overlap must
// satisfy 0 <= overlap < size.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", core.ErrValidation, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap must be in [0,%d), got %d", core.ErrValidation, size, overlap)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Size returns the configured chunk size in runes.
func (s *Splitter) Size() int { return s.size }

// Overlap returns the configured overlap in runes.
func (s *Splitter) Overlap() int { return s.overlap }

// Split splits text into spans. Empty input yields zero spans. Text no
// longer than the chunk size yields exactly one span. Span indices are
// assigned in strictly increasing order starting at 0, covering the text
// left to right with no gaps; the last span may be shorter than size.
func (s *Splitter) Split(text string) []Span {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	var spans []Span
	start := 0
	for {
		end := start + s.size
		if end >= n {
			spans = append(spans, s.span(runes, len(spans), start, n))
			return spans
		}

		cut := end
		if snapped, ok := s.snapToSeparator(runes, start, end); ok {
			cut = snapped
		}
		spans = append(spans, s.span(runes, len(spans), start, cut))

		next := cut - s.overlap
		if next <= start {
			// Forced progress when overlap would revisit the whole span.
			next = start + 1
		}
		start = next
	}
}

func (s *Splitter) span(runes []rune, index, start, end int) Span {
	return Span{
		Index: index,
		Start: start,
		End:   end,
		Text:  string(runes[start:end]),
	}
}

// snapToSeparator searches backward from the hard cut position for the
// highest-priority separator, so chunks end on a paragraph break, line
// break, or space where one is in reach. The lookback window is the larger
// of the overlap and a fifth of the chunk size, so chunks stay close to
// the configured size but separator preference survives an overlap of
// zero.
func (s *Splitter) snapToSeparator(runes []rune, start, end int) (int, bool) {
	window := s.overlap
	if floor := s.size / 5; window < floor {
		window = floor
	}
	if window < 1 {
		window = 1
	}
	lookback := end - window
	if lookback <= start {
		lookback = start + 1
	}

	// Paragraph break: cut after the blank line.
	for i := end - 1; i > lookback; i-- {
		if runes[i-1] == '\n' && runes[i] == '\n' {
			return i + 1, true
		}
	}
	// Line break.
	for i := end - 1; i >= lookback; i-- {
		if runes[i] == '\n' {
			return i + 1, true
		}
	}
	// Word boundary.
	for i := end - 1; i >= lookback; i-- {
		if runes[i] == ' ' {
			return i + 1, true
		}
	}
	return 0, false
}
