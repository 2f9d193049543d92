package retrieval

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/dmitrijs2005/studyvault/internal/server/extract"
	"github.com/dmitrijs2005/studyvault/internal/server/ingest"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/blobs"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/records"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "fedcba9876543210fedcba9876543210"

func newStore(t *testing.T) *records.Store {
	t.Helper()
	backend, err := records.NewFileBackend(t.TempDir(), logging.Discard())
	require.NoError(t, err)
	return records.NewStore(backend, logging.Discard())
}

func doc(id, name string, uploaded time.Time, texts ...string) *models.Document {
	d := &models.Document{ID: id, OriginalName: name, UploadedAt: uploaded}
	for i, t := range texts {
		d.Chunks = append(d.Chunks, models.Chunk{ID: models.ChunkID(i), Text: t, Length: len(t)})
	}
	return d
}

func TestTokens(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"what is the powerhouse of the cell", []string{"what", "powerhouse", "cell"}},
		{"Cell cell CELL", []string{"cell"}},
		{"a an the", nil},
		{"", nil},
		{"  énergie   über ", []string{"énergie", "über"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokens(tt.query))
		})
	}
}

func TestScore_CountsDistinctTokens(t *testing.T) {
	assert.Equal(t, 2, Score([]string{"cell", "powerhouse", "nucleus"}, "The Powerhouse of the cell, cell, cell"))
	assert.Equal(t, 0, Score(nil, "anything"))
}

func TestRank_OrderAndLimit(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	docs := []*models.Document{
		doc("a", "a.txt", base, "gravity only", "gravity and energy"),
		doc("b", "b.txt", base.Add(time.Hour), "energy and gravity and mass", "nothing here"),
	}

	got := Rank(docs, "gravity energy mass", 10)
	want := []ScoredChunk{
		{DocumentID: "b", DocumentName: "b.txt", ChunkID: "chunk-0", Text: "energy and gravity and mass", Score: 3},
		{DocumentID: "a", DocumentName: "a.txt", ChunkID: "chunk-1", Text: "gravity and energy", Score: 2},
		{DocumentID: "a", DocumentName: "a.txt", ChunkID: "chunk-0", Text: "gravity only", Score: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rank mismatch (-want +got):\n%s", diff)
	}

	assert.Len(t, Rank(docs, "gravity energy mass", 0), DefaultMaxResults)
	assert.Len(t, Rank(docs, "gravity energy mass", 1), 1)
}

func TestRank_TiesKeepDocumentOrder(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	docs := []*models.Document{
		doc("first", "1.txt", base, "photosynthesis"),
		doc("second", "2.txt", base.Add(time.Minute), "photosynthesis"),
	}
	got := Rank(docs, "photosynthesis", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].DocumentID)
	assert.Equal(t, "second", got[1].DocumentID)
}

func TestRank_NoUsableTokens(t *testing.T) {
	docs := []*models.Document{doc("a", "a.txt", time.Now(), "the cat sat")}
	assert.Empty(t, Rank(docs, "the cat", 3))
}

func TestRank_DroppingMatchedTokenNeverRaisesScore(t *testing.T) {
	docs := []*models.Document{doc("a", "a.txt", time.Now(), "enzymes speed up reactions in every living cell")}
	queries := []string{
		"enzymes reactions living cell",
		"enzymes reactions living",
		"enzymes reactions",
		"enzymes",
	}

	prev := -1
	for i := len(queries) - 1; i >= 0; i-- {
		got := Rank(docs, queries[i], 3)
		require.Len(t, got, 1, queries[i])
		assert.GreaterOrEqual(t, got[0].Score, prev, queries[i])
		prev = got[0].Score
	}
}

func TestRetrieve_AfterIngest(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	backend, err := records.NewFileBackend(root, logging.Discard())
	require.NoError(t, err)
	store := records.NewStore(backend, logging.Discard())
	bs, err := blobs.NewFileStore(root)
	require.NoError(t, err)

	p := ingest.NewPipeline(store, bs, extract.NewRouter(), logging.Discard())
	d, err := p.Ingest(ctx, owner, ingest.Upload{
		Data:     []byte("The mitochondria is the powerhouse of the cell. Cells divide through mitosis."),
		Filename: "cells.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, "biology", d.Subject)

	got, err := NewEngine(store).Retrieve(ctx, owner, "what is the powerhouse of the cell", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, d.ID, got[0].DocumentID)
	assert.Equal(t, "cells.txt", got[0].DocumentName)
	assert.GreaterOrEqual(t, got[0].Score, 2)
}

func TestRetrieve_EmptyStore(t *testing.T) {
	got, err := NewEngine(newStore(t)).Retrieve(context.Background(), owner, "anything goes", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBuildPrompt(t *testing.T) {
	chunks := []ScoredChunk{
		{DocumentName: "cells.txt", Text: "Cells divide."},
		{DocumentName: "atoms.pdf", Text: "Atoms bond."},
	}
	want := "Use this reference material to help answer the question:\n\n" +
		"From \"cells.txt\": Cells divide.\n\n" +
		"From \"atoms.pdf\": Atoms bond.\n\n" +
		"Question: How?\n\n" +
		"Please provide a comprehensive answer using the reference material above."
	assert.Equal(t, want, BuildPrompt("How?", chunks))
}

func TestBuildPrompt_NoChunks(t *testing.T) {
	assert.Equal(t, "How?", BuildPrompt("How?", nil))
}

func TestBuildPrompt_TruncatesChunkText(t *testing.T) {
	long := strings.Repeat("ж", MaxPromptChunkRunes+50)
	got := BuildPrompt("q", []ScoredChunk{{DocumentName: "x", Text: long}})
	assert.Contains(t, got, strings.Repeat("ж", MaxPromptChunkRunes)+"\n\nQuestion: q")
	assert.NotContains(t, got, strings.Repeat("ж", MaxPromptChunkRunes+1))
}
