package extract

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/studyvault/internal/common"
)

// TextExtractor accepts UTF-8 plain text and markdown as-is.
type TextExtractor struct{}

func (e *TextExtractor) Extract(_ context.Context, data []byte, _ string) (*Extraction, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", common.ErrInvalidInput)
	}
	return &Extraction{Text: string(data), Pages: 1}, nil
}
