// Package cli is an interactive operator console for a studyvault data
// directory. It drives the server's services in-process: accounts,
// document upload and search, tutoring questions, bookmarks, flashcards
// and statistics.
package cli
