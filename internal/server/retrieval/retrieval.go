// Package retrieval scores stored document chunks against a question by
// keyword overlap and assembles the reference prompt handed to the model.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/records"
)

const (
	DefaultMaxResults = 3
	// MaxPromptChunkRunes caps each chunk's text inside the prompt.
	MaxPromptChunkRunes = 800
	minTokenRunes       = 4
)

// ScoredChunk is one chunk matched by a query.
type ScoredChunk struct {
	DocumentID   string `json:"documentId"`
	DocumentName string `json:"documentName"`
	ChunkID      string `json:"chunkId"`
	Text         string `json:"text"`
	Score        int    `json:"score"`
}

type Engine struct {
	store *records.Store
}

func NewEngine(store *records.Store) *Engine {
	return &Engine{store: store}
}

// Tokens splits a query on whitespace and keeps distinct lower-cased words
// longer than three characters, in first-seen order.
func Tokens(query string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(w) < minTokenRunes {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// Score counts the tokens contained in text.
func Score(tokens []string, text string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			n++
		}
	}
	return n
}

// Rank scores every chunk of docs and returns the best maxResults with a
// positive score. Equal scores keep document then chunk order.
func Rank(docs []*models.Document, query string, maxResults int) []ScoredChunk {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	tokens := Tokens(query)
	if len(tokens) == 0 {
		return nil
	}

	var hits []ScoredChunk
	for _, d := range docs {
		for _, c := range d.Chunks {
			s := Score(tokens, c.Text)
			if s == 0 {
				continue
			}
			hits = append(hits, ScoredChunk{
				DocumentID:   d.ID,
				DocumentName: d.OriginalName,
				ChunkID:      c.ID,
				Text:         c.Text,
				Score:        s,
			})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	return hits
}

// Retrieve ranks the owner's stored chunks against query.
func (e *Engine) Retrieve(ctx context.Context, owner, query string, maxResults int) ([]ScoredChunk, error) {
	set, err := records.Get(ctx, e.store, owner, models.RecordDocuments, models.NewDocumentSet)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	return Rank(set.Sorted(), query, maxResults), nil
}

// BuildPrompt frames the question with the retrieved chunks. Without chunks
// the question is returned unchanged.
func BuildPrompt(question string, chunks []ScoredChunk) string {
	if len(chunks) == 0 {
		return question
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = fmt.Sprintf("From \"%s\": %s", c.DocumentName, truncate(c.Text, MaxPromptChunkRunes))
	}

	var b strings.Builder
	b.WriteString("Use this reference material to help answer the question:\n\n")
	b.WriteString(strings.Join(parts, "\n\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nPlease provide a comprehensive answer using the reference material above.")
	return b.String()
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
