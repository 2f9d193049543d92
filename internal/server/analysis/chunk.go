// Package analysis holds the text heuristics used during ingestion and
// question answering: sentence chunking, subject classification, keyword
// extraction, Bloom's level detection and answer accuracy scoring.
package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/studyvault/internal/server/models"
)

// DefaultChunkSize is the target chunk length in characters.
const DefaultChunkSize = 1000

// A sentence is a run of non-terminators followed by any terminators.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]*`)

// Sentences splits text into trimmed, non-blank sentences, keeping their
// terminal punctuation.
func Sentences(text string) []string {
	raw := sentencePattern.FindAllString(text, -1)
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" || strings.Trim(s, ".!?") == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Chunker groups sentences into chunks of at least Size characters.
type Chunker struct {
	Size int
}

func NewChunker(size int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &Chunker{Size: size}
}

// Split accumulates whole sentences, separated by a single space, and
// closes a chunk as soon as it reaches Size characters. Only the last chunk
// may be shorter. Sentences are never split.
func (c *Chunker) Split(text string) []models.Chunk {
	size := c.Size
	if size <= 0 {
		size = DefaultChunkSize
	}

	var (
		chunks []models.Chunk
		b      strings.Builder
	)
	flush := func() {
		t := b.String()
		chunks = append(chunks, models.Chunk{
			ID:     models.ChunkID(len(chunks)),
			Text:   t,
			Length: utf8.RuneCountInString(t),
		})
		b.Reset()
	}

	for _, s := range Sentences(text) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
		if utf8.RuneCountInString(b.String()) >= size {
			flush()
		}
	}
	if b.Len() > 0 {
		flush()
	}
	return chunks
}
