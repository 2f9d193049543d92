package models

import (
	"fmt"
	"sort"
	"time"
)

// Document is the metadata kept for one ingested upload.
type Document struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalName"`
	Filename     string    `json:"filename"`
	UploadedAt   time.Time `json:"uploadedAt"`
	Size         int64     `json:"size"`
	Pages        int       `json:"pages"`
	Subject      string    `json:"subject"`
	Keywords     []string  `json:"keywords"`
	Chunks       []Chunk   `json:"chunks"`
	TextLength   int       `json:"textLength"`
}

// Chunk is a contiguous run of whole sentences from a document's text.
type Chunk struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Length int    `json:"length"`
}

// ChunkID returns the identifier of the n-th chunk of a document.
func ChunkID(n int) string {
	return fmt.Sprintf("chunk-%d", n)
}

// DocumentSet is the per-owner documents record keyed by document ID.
type DocumentSet struct {
	SchemaVersion int                  `json:"schemaVersion"`
	Documents     map[string]*Document `json:"documents"`
}

// NewDocumentSet returns an empty documents record.
func NewDocumentSet() *DocumentSet {
	return &DocumentSet{SchemaVersion: SchemaVersion, Documents: map[string]*Document{}}
}

// Validate rejects entries whose key disagrees with the document ID.
func (s *DocumentSet) Validate() error {
	if s.SchemaVersion > SchemaVersion {
		return fmt.Errorf("documents: unsupported schema version %d", s.SchemaVersion)
	}
	if s.Documents == nil {
		s.Documents = map[string]*Document{}
	}
	for id, d := range s.Documents {
		if d == nil {
			delete(s.Documents, id)
			continue
		}
		if d.ID != id {
			return fmt.Errorf("documents: key %q holds document %q", id, d.ID)
		}
	}
	if s.SchemaVersion == 0 {
		s.SchemaVersion = SchemaVersion
	}
	return nil
}

// Sorted returns the documents ordered by upload time, then ID.
func (s *DocumentSet) Sorted() []*Document {
	out := make([]*Document, 0, len(s.Documents))
	for _, d := range s.Documents {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.Before(out[j].UploadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
