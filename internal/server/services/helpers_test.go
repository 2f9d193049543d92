package services

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/dmitrijs2005/studyvault/internal/server/llm"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/records"
	"github.com/dmitrijs2005/studyvault/internal/server/retrieval"
	"github.com/stretchr/testify/require"
)

const testOwner = "00112233445566778899aabbccddeeff"

func newStore(t *testing.T) *records.Store {
	t.Helper()
	backend, err := records.NewFileBackend(t.TempDir(), logging.Discard())
	require.NoError(t, err)
	return records.NewStore(backend, logging.Discard())
}

type llmCall struct {
	system llm.SystemPrompt
	prompt string
}

type fakeLLM struct {
	mu      sync.Mutex
	calls   []llmCall
	replies []string
	err     error
}

func (f *fakeLLM) Generate(_ context.Context, system llm.SystemPrompt, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, llmCall{system: system, prompt: prompt})
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	r := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return r, nil
}

type fakeRetriever struct {
	chunks []retrieval.ScoredChunk
	err    error
}

func (f fakeRetriever) Retrieve(context.Context, string, string, int) ([]retrieval.ScoredChunk, error) {
	return f.chunks, f.err
}
