package records

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logging.Logger {
	return logging.Discard()
}

func newFileStore(t *testing.T) (*Store, *FileBackend) {
	t.Helper()
	b := newFileBackend(t)
	return NewStore(b, testLogger()), b
}

func TestStore_RoundTrip(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "abc", "profile", []byte(`{"name":"x"}`)))

	got, err := s.Load(ctx, "abc", "profile")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"x"}`, string(got))
}

func TestStore_LoadMissing(t *testing.T) {
	s, _ := newFileStore(t)

	_, err := s.Load(context.Background(), "abc", "profile")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestStore_BackupFallback(t *testing.T) {
	s, b := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "abc", "documents", []byte(`{"v":1}`)))
	require.NoError(t, s.Save(ctx, "abc", "documents", []byte(`{"v":2}`)))

	primary := filepath.Join(b.OwnerDir("abc"), "documents.json")
	require.NoError(t, os.WriteFile(primary, []byte(`{"v":`), 0o660))

	got, err := s.Load(ctx, "abc", "documents")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(got))
}

func TestStore_BackupUsedWhenPrimaryMissing(t *testing.T) {
	s, b := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "abc", "history", []byte(`{"v":1}`)))
	require.NoError(t, s.Save(ctx, "abc", "history", []byte(`{"v":2}`)))
	require.NoError(t, os.Remove(filepath.Join(b.OwnerDir("abc"), "history.json")))

	got, err := s.Load(ctx, "abc", "history")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(got))
}

func TestStore_BothCorrupt(t *testing.T) {
	s, b := newFileStore(t)
	ctx := context.Background()

	dir := b.OwnerDir("abc")
	_, err := os.Stat(dir)
	require.True(t, errors.Is(err, os.ErrNotExist))
	require.NoError(t, os.MkdirAll(dir, 0o770))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profile.json"), []byte("nope"), 0o660))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profile.json.backup"), []byte("{"), 0o660))

	_, err = s.Load(ctx, "abc", "profile")
	require.ErrorIs(t, err, common.ErrNotFound)
	require.ErrorIs(t, err, common.ErrCorrupt)

	err = s.Update(ctx, "abc", "profile", func([]byte) ([]byte, error) { return []byte(`{}`), nil })
	require.ErrorIs(t, err, common.ErrCorrupt)

	primary, err := os.ReadFile(filepath.Join(dir, "profile.json"))
	require.NoError(t, err)
	assert.Equal(t, "nope", string(primary), "unreadable record left in place")
}

func TestStore_SaveFailureIsStorageFailure(t *testing.T) {
	s, b := newFileStore(t)
	b.writeFile = func(string, []byte) error { return errors.New("io") }

	err := s.Save(context.Background(), "abc", "profile", []byte(`{}`))
	require.ErrorIs(t, err, common.ErrStorageFailure)
}

func TestStore_InvalidKeys(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		owner string
		rec   string
	}{
		{name: "traversal owner", owner: "..", rec: "profile"},
		{name: "slash owner", owner: "a/b", rec: "profile"},
		{name: "backslash owner", owner: `a\b`, rec: "profile"},
		{name: "empty record", owner: "abc", rec: ""},
		{name: "slash record", owner: "abc", rec: "../x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, s.Save(ctx, tt.owner, tt.rec, []byte(`{}`)), common.ErrInvalidInput)
			_, err := s.Load(ctx, tt.owner, tt.rec)
			require.ErrorIs(t, err, common.ErrInvalidInput)
		})
	}
}

func TestStore_EmptyOwnerHoldsOnlySessions(t *testing.T) {
	s, b := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "", "sessions", []byte(`{}`)))

	for _, rec := range []string{"profile", "history", "documents", "bookmarks", "flashcards"} {
		t.Run(rec, func(t *testing.T) {
			require.ErrorIs(t, s.Save(ctx, "", rec, []byte(`{}`)), common.ErrInvalidInput)
			_, err := s.Load(ctx, "", rec)
			require.ErrorIs(t, err, common.ErrInvalidInput)
			_, err = Update(ctx, s, "", rec, func() *counter { return &counter{} }, func(*counter) error { return nil })
			require.ErrorIs(t, err, common.ErrInvalidInput)

			_, err = os.Stat(filepath.Join(b.Root(), rec+".json"))
			assert.True(t, errors.Is(err, os.ErrNotExist))
		})
	}
	require.ErrorIs(t, ValidateOwner(""), common.ErrInvalidInput)
}

func TestStore_Update_AbortsWithoutWriting(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "abc", "profile", []byte(`{"v":1}`)))

	boom := errors.New("boom")
	err := s.Update(ctx, "abc", "profile", func([]byte) ([]byte, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	got, err := s.Load(ctx, "abc", "profile")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(got))
}

func TestStore_Update_NilCurrentWhenAbsent(t *testing.T) {
	s, _ := newFileStore(t)

	var seen []byte = []byte("sentinel")
	err := s.Update(context.Background(), "abc", "flashcards", func(cur []byte) ([]byte, error) {
		seen = cur
		return []byte(`{}`), nil
	})
	require.NoError(t, err)
	assert.Nil(t, seen)
}

type counter struct {
	N int `json:"n"`
}

func TestUpdate_ConcurrentWritersDoNotLoseUpdates(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()

	const writers = 40
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Update(ctx, s, "abc", "profile", func() *counter { return &counter{} }, func(c *counter) error {
				c.N++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := Get(ctx, s, "abc", "profile", func() *counter { return &counter{} })
	require.NoError(t, err)
	assert.Equal(t, writers, got.N)
}
