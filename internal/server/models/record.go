// Package models defines the JSON records persisted per owner and the
// process-wide session set, together with their default constructors.
package models

// Record names as stored by the record store.
const (
	RecordProfile    = "profile"
	RecordDocuments  = "documents"
	RecordBookmarks  = "bookmarks"
	RecordFlashcards = "flashcards"
	RecordHistory    = "history"
	RecordSessions   = "sessions"
)

// SchemaVersion is written into every record produced by this build.
const SchemaVersion = 1

// DefaultSubject is used wherever a subject is optional.
const DefaultSubject = "general"
