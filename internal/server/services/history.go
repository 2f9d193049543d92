package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/records"
	"github.com/google/uuid"
)

// DefaultRecentHistory is the number of entries Recent returns when asked
// for none in particular.
const DefaultRecentHistory = 20

type HistoryService struct {
	store *records.Store
	now   func() time.Time
}

func NewHistoryService(store *records.Store) *HistoryService {
	return &HistoryService{store: store, now: time.Now}
}

// Append stores one question/answer pair. Entries beyond
// models.HistoryLimit are evicted oldest first.
func (s *HistoryService) Append(ctx context.Context, owner, question, answer string, metadata map[string]any) (*models.HistoryEntry, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	e := models.HistoryEntry{
		ID:        uuid.New().String(),
		Timestamp: s.now().UTC(),
		Question:  question,
		Answer:    answer,
		Metadata:  metadata,
	}
	_, err := records.Update(ctx, s.store, owner, models.RecordHistory, models.NewHistory,
		func(h *models.History) error {
			h.Append(e)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Recent returns up to n of the newest entries, oldest first.
func (s *HistoryService) Recent(ctx context.Context, owner string, n int) ([]models.HistoryEntry, error) {
	if n <= 0 {
		n = DefaultRecentHistory
	}
	h, err := records.Get(ctx, s.store, owner, models.RecordHistory, models.NewHistory)
	if err != nil {
		return nil, err
	}
	return h.Recent(n), nil
}
