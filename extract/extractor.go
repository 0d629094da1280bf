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


// Package extract turns uploaded file bytes into plain text suitable
// for chunking. Format failures are permanent: an unsupported or
// corrupt file never becomes readable on retry, so extraction errors
// are classified as validation errors rather than transient ones.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/loricahq/corpus/core"
)

var (
	// ErrUnsupportedFormat indicates a file type no extractor handles.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported file format", core.ErrValidation)

	// ErrCorruptFile indicates file bytes that do not decode as the
	// declared format.
	ErrCorruptFile = fmt.Errorf("%w: corrupt file", core.ErrValidation)
)

// Extractor converts raw file bytes into plain text.
type Extractor interface {
	// Extract returns the text content of data. fileType is the
	// lowercase file extension without the dot ("txt", "md").
	// Implementations backed by external tooling honor ctx deadlines.
	Extract(ctx context.Context, data []byte, fileType string) (string, error)

	// Supports reports whether the extractor handles the given file type.
	Supports(fileType string) bool
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TextExtractor extracts plain-text formats: txt, md and markdown.
// Markdown is passed through as-is; heading and list markers carry
// structure the chunker's separator scan makes use of.
type TextExtractor struct{}

var _ Extractor = (*TextExtractor)(nil)

// NewTextExtractor creates a new TextExtractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Supports reports whether the extractor handles the given file type.
func (e *TextExtractor) Supports(fileType string) bool {
	switch NormalizeFileType(fileType) {
	case "txt", "md", "markdown", "text":
		return true
	}
	return false
}

// Extract decodes data as UTF-8 text.
func (e *TextExtractor) Extract(ctx context.Context, data []byte, fileType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !e.Supports(fileType) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, fileType)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: invalid utf-8 in %s file", ErrCorruptFile, fileType)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return "", core.ErrEmptyDocument
	}
	return text, nil
}

// NormalizeFileType lowercases a file type and strips a leading dot,
// so ".TXT", "txt" and "TXT" all resolve to the same extractor.
func NormalizeFileType(fileType string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(fileType), "."))
}
