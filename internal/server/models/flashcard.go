package models

import (
	"fmt"
	"time"
)

// DefaultDifficulty is used for cards created without one.
const DefaultDifficulty = 5

// Flashcard is a question/answer pair for spaced review.
type Flashcard struct {
	ID             string     `json:"id"`
	Question       string     `json:"question"`
	Answer         string     `json:"answer"`
	Subject        string     `json:"subject"`
	Difficulty     int        `json:"difficulty"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastReviewed   *time.Time `json:"lastReviewed"`
	ReviewCount    int        `json:"reviewCount"`
	CorrectCount   int        `json:"correctCount"`
	Tags           []string   `json:"tags"`
	SourceDocument string     `json:"sourceDocument,omitempty"`
}

// FlashcardDeck separates hand-written cards from generated ones.
type FlashcardDeck struct {
	SchemaVersion int         `json:"schemaVersion"`
	UserMade      []Flashcard `json:"userMade"`
	AIGenerated   []Flashcard `json:"aiGenerated"`
}

func NewFlashcardDeck() *FlashcardDeck {
	return &FlashcardDeck{SchemaVersion: SchemaVersion, UserMade: []Flashcard{}, AIGenerated: []Flashcard{}}
}

func (d *FlashcardDeck) Validate() error {
	if d.SchemaVersion > SchemaVersion {
		return fmt.Errorf("flashcards: unsupported schema version %d", d.SchemaVersion)
	}
	if d.UserMade == nil {
		d.UserMade = []Flashcard{}
	}
	if d.AIGenerated == nil {
		d.AIGenerated = []Flashcard{}
	}
	if d.SchemaVersion == 0 {
		d.SchemaVersion = SchemaVersion
	}
	return nil
}
