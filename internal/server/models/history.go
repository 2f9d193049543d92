package models

import (
	"fmt"
	"time"
)

// HistoryLimit is the number of entries kept; older ones are evicted first.
const HistoryLimit = 100

// HistoryEntry is one answered question.
type HistoryEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Question  string         `json:"question"`
	Answer    string         `json:"answer"`
	Metadata  map[string]any `json:"metadata"`
}

// History is the per-owner chat history record, oldest first.
type History struct {
	SchemaVersion int            `json:"schemaVersion"`
	Entries       []HistoryEntry `json:"entries"`
}

func NewHistory() *History {
	return &History{SchemaVersion: SchemaVersion, Entries: []HistoryEntry{}}
}

func (h *History) Validate() error {
	if h.SchemaVersion > SchemaVersion {
		return fmt.Errorf("history: unsupported schema version %d", h.SchemaVersion)
	}
	if h.Entries == nil {
		h.Entries = []HistoryEntry{}
	}
	if h.SchemaVersion == 0 {
		h.SchemaVersion = SchemaVersion
	}
	return nil
}

// Append adds e and evicts the oldest entries beyond HistoryLimit.
func (h *History) Append(e HistoryEntry) {
	h.Entries = append(h.Entries, e)
	if over := len(h.Entries) - HistoryLimit; over > 0 {
		h.Entries = append([]HistoryEntry(nil), h.Entries[over:]...)
	}
}

// Recent returns up to n of the newest entries, oldest first.
func (h *History) Recent(n int) []HistoryEntry {
	if n <= 0 || n > len(h.Entries) {
		n = len(h.Entries)
	}
	out := make([]HistoryEntry, n)
	copy(out, h.Entries[len(h.Entries)-n:])
	return out
}
