package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor reads text page by page. Pages whose text cannot be decoded
// are skipped.
type PDFExtractor struct{}

func (e *PDFExtractor) Extract(ctx context.Context, data []byte, _ string) (ex *Extraction, err error) {
	// the pdf package panics on some malformed inputs
	defer func() {
		if p := recover(); p != nil {
			ex, err = nil, fmt.Errorf("malformed pdf: %v", p)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	total := reader.NumPage()
	pages := make([]string, 0, total)
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(strings.ReplaceAll(text, "\x00", ""))
		if text != "" {
			pages = append(pages, text)
		}
	}

	return &Extraction{Text: strings.Join(pages, "\n"), Pages: total}, nil
}
