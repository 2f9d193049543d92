package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/records"
	"github.com/google/uuid"
)

// BookmarkInput is the caller-supplied part of a bookmark.
type BookmarkInput struct {
	Type     string         `json:"type"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Tags     []string       `json:"tags"`
	Subject  string         `json:"subject"`
}

type BookmarkService struct {
	store *records.Store
	now   func() time.Time
}

func NewBookmarkService(store *records.Store) *BookmarkService {
	return &BookmarkService{store: store, now: time.Now}
}

func (s *BookmarkService) Add(ctx context.Context, owner string, in BookmarkInput) (*models.Bookmark, error) {
	if strings.TrimSpace(in.Type) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: bookmark type and content are required", common.ErrInvalidInput)
	}
	b := models.Bookmark{
		ID:        uuid.New().String(),
		Type:      in.Type,
		Content:   in.Content,
		Metadata:  in.Metadata,
		CreatedAt: s.now().UTC(),
		Tags:      in.Tags,
		Subject:   in.Subject,
	}
	if b.Metadata == nil {
		b.Metadata = map[string]any{}
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	if b.Subject == "" {
		b.Subject = models.DefaultSubject
	}

	_, err := records.Update(ctx, s.store, owner, models.RecordBookmarks, models.NewBookmarkList,
		func(l *models.BookmarkList) error {
			l.Items = append(l.Items, b)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns the bookmarks in insertion order, restricted to subject when
// it is not empty.
func (s *BookmarkService) List(ctx context.Context, owner, subject string) ([]models.Bookmark, error) {
	l, err := records.Get(ctx, s.store, owner, models.RecordBookmarks, models.NewBookmarkList)
	if err != nil {
		return nil, err
	}
	if subject == "" {
		return l.Items, nil
	}
	out := []models.Bookmark{}
	for _, b := range l.Items {
		if b.Subject == subject {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *BookmarkService) Remove(ctx context.Context, owner, id string) error {
	_, err := records.Update(ctx, s.store, owner, models.RecordBookmarks, models.NewBookmarkList,
		func(l *models.BookmarkList) error {
			for i, b := range l.Items {
				if b.ID == id {
					l.Items = append(l.Items[:i], l.Items[i+1:]...)
					return nil
				}
			}
			return fmt.Errorf("%w: bookmark %s", common.ErrNotFound, id)
		})
	return err
}
