package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_CapEvictsOldest(t *testing.T) {
	s := NewHistoryService(newStore(t))
	ctx := context.Background()

	for i := 0; i < 105; i++ {
		_, err := s.Append(ctx, testOwner, fmt.Sprintf("q%d", i), "a", nil)
		require.NoError(t, err)
	}

	all, err := s.Recent(ctx, testOwner, 1000)
	require.NoError(t, err)
	require.Len(t, all, 100)
	assert.Equal(t, "q5", all[0].Question)
	assert.Equal(t, "q104", all[99].Question)
}

func TestHistory_Recent(t *testing.T) {
	s := NewHistoryService(newStore(t))
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := s.Append(ctx, testOwner, fmt.Sprintf("q%d", i), "a", map[string]any{"n": i})
		require.NoError(t, err)
	}

	def, err := s.Recent(ctx, testOwner, 0)
	require.NoError(t, err)
	require.Len(t, def, DefaultRecentHistory)
	assert.Equal(t, "q5", def[0].Question)

	last, err := s.Recent(ctx, testOwner, 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "q23", last[0].Question)
	assert.Equal(t, "q24", last[1].Question)
	assert.EqualValues(t, 24, last[1].Metadata["n"])
}

func TestHistory_AppendFillsEntry(t *testing.T) {
	s := NewHistoryService(newStore(t))

	e, err := s.Append(context.Background(), testOwner, "q", "a", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.NotNil(t, e.Metadata)
}

func TestHistory_EmptyOwnerHistory(t *testing.T) {
	s := NewHistoryService(newStore(t))
	got, err := s.Recent(context.Background(), testOwner, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
