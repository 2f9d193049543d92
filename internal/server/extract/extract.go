// Package extract turns uploaded files into plain text.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/common"
)

// DefaultTimeout bounds a single extraction.
const DefaultTimeout = 30 * time.Second

// Extraction is the text recovered from one file.
type Extraction struct {
	Text  string
	Pages int
}

// Extractor recovers text from file contents. filename is only used to pick
// a format.
type Extractor interface {
	Extract(ctx context.Context, data []byte, filename string) (*Extraction, error)
}

var supported = map[string]bool{
	".pdf": true,
	".txt": true,
	".md":  true,
}

// Extension returns the lower-cased extension of filename when it is one of
// the supported formats.
func Extension(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext, supported[ext]
}

// Router dispatches on file extension.
type Router struct {
	PDF  Extractor
	Text Extractor
}

// NewRouter returns a Router backed by the built-in extractors.
func NewRouter() *Router {
	return &Router{PDF: &PDFExtractor{}, Text: &TextExtractor{}}
}

func (r *Router) Extract(ctx context.Context, data []byte, filename string) (*Extraction, error) {
	ext, ok := Extension(filename)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file type %q", common.ErrInvalidInput, ext)
	}
	if ext == ".pdf" {
		return r.PDF.Extract(ctx, data, filename)
	}
	return r.Text.Extract(ctx, data, filename)
}

type result struct {
	ex  *Extraction
	err error
}

// WithTimeout runs ex in its own goroutine and gives up after timeout. A
// late result is discarded. Every failure wraps common.ErrExtractionFailed;
// a timeout also wraps common.ErrTimeout.
func WithTimeout(ctx context.Context, timeout time.Duration, ex Extractor, data []byte, filename string) (*Extraction, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// buffered so the worker can always finish its send
	done := make(chan result, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- result{err: fmt.Errorf("extractor panic: %v", p)}
			}
		}()
		r, err := ex.Extract(ctx, data, filename)
		done <- result{ex: r, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrExtractionFailed, r.err)
		}
		return r.ex, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w after %s", common.ErrExtractionFailed, common.ErrTimeout, timeout)
	}
}
