package models

import (
	"fmt"
	"time"
)

// Bookmark is a saved answer, passage or note.
type Bookmark struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"createdAt"`
	Tags      []string       `json:"tags"`
	Subject   string         `json:"subject"`
}

// BookmarkList is the per-owner bookmarks record in insertion order.
type BookmarkList struct {
	SchemaVersion int        `json:"schemaVersion"`
	Items         []Bookmark `json:"items"`
}

func NewBookmarkList() *BookmarkList {
	return &BookmarkList{SchemaVersion: SchemaVersion, Items: []Bookmark{}}
}

func (l *BookmarkList) Validate() error {
	if l.SchemaVersion > SchemaVersion {
		return fmt.Errorf("bookmarks: unsupported schema version %d", l.SchemaVersion)
	}
	if l.Items == nil {
		l.Items = []Bookmark{}
	}
	if l.SchemaVersion == 0 {
		l.SchemaVersion = SchemaVersion
	}
	return nil
}
