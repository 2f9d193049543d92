package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	delay time.Duration
	out   *Extraction
	err   error
	panic bool
	calls int
}

func (s *stubExtractor) Extract(ctx context.Context, _ []byte, _ string) (*Extraction, error) {
	s.calls++
	if s.panic {
		panic("bad input")
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.out, s.err
}

func TestExtension(t *testing.T) {
	tests := []struct {
		filename string
		ext      string
		ok       bool
	}{
		{"notes.PDF", ".pdf", true},
		{"a.b.txt", ".txt", true},
		{"README.md", ".md", true},
		{"evil.exe", ".exe", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			ext, ok := Extension(tt.filename)
			assert.Equal(t, tt.ext, ext)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestRouter_Dispatch(t *testing.T) {
	pdfStub := &stubExtractor{out: &Extraction{Text: "pdf", Pages: 3}}
	textStub := &stubExtractor{out: &Extraction{Text: "txt", Pages: 1}}
	r := &Router{PDF: pdfStub, Text: textStub}
	ctx := context.Background()

	got, err := r.Extract(ctx, nil, "lecture.pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf", got.Text)

	got, err = r.Extract(ctx, nil, "notes.md")
	require.NoError(t, err)
	assert.Equal(t, "txt", got.Text)

	_, err = r.Extract(ctx, nil, "image.png")
	require.ErrorIs(t, err, common.ErrInvalidInput)

	assert.Equal(t, 1, pdfStub.calls)
	assert.Equal(t, 1, textStub.calls)
}

func TestTextExtractor(t *testing.T) {
	e := &TextExtractor{}

	got, err := e.Extract(context.Background(), []byte("Cells divide."), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, &Extraction{Text: "Cells divide.", Pages: 1}, got)

	_, err = e.Extract(context.Background(), []byte{0xff, 0xfe, 0xfd}, "a.txt")
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestPDFExtractor_RejectsGarbage(t *testing.T) {
	e := &PDFExtractor{}

	_, err := e.Extract(context.Background(), []byte("definitely not a pdf"), "x.pdf")
	require.Error(t, err)

	_, err = e.Extract(context.Background(), nil, "x.pdf")
	require.Error(t, err)
}

func TestWithTimeout_Success(t *testing.T) {
	stub := &stubExtractor{out: &Extraction{Text: "ok", Pages: 1}}

	got, err := WithTimeout(context.Background(), time.Second, stub, nil, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Text)
}

func TestWithTimeout_Error(t *testing.T) {
	boom := errors.New("boom")
	stub := &stubExtractor{err: boom}

	_, err := WithTimeout(context.Background(), time.Second, stub, nil, "a.txt")
	require.ErrorIs(t, err, common.ErrExtractionFailed)
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, common.ErrTimeout)
}

func TestWithTimeout_Timeout(t *testing.T) {
	stub := &stubExtractor{delay: 300 * time.Millisecond, out: &Extraction{Text: "late"}}

	start := time.Now()
	_, err := WithTimeout(context.Background(), 20*time.Millisecond, stub, nil, "a.pdf")
	require.ErrorIs(t, err, common.ErrExtractionFailed)
	require.ErrorIs(t, err, common.ErrTimeout)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestWithTimeout_Panic(t *testing.T) {
	stub := &stubExtractor{panic: true}

	_, err := WithTimeout(context.Background(), time.Second, stub, nil, "a.pdf")
	require.ErrorIs(t, err, common.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "panic")
}
