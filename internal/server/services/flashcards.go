package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/dmitrijs2005/studyvault/internal/server/llm"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/records"
	"github.com/google/uuid"
)

const (
	// DefaultGeneratedCards is the number of cards generated when the
	// caller does not ask for a specific count.
	DefaultGeneratedCards = 5
	flashcardSourceRunes  = 500
	generatedTag          = "ai-generated"
)

// FlashcardInput is the caller-supplied part of a hand-written card.
type FlashcardInput struct {
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Subject    string   `json:"subject"`
	Difficulty int      `json:"difficulty"`
	Tags       []string `json:"tags"`
}

type FlashcardService struct {
	store  *records.Store
	llm    llm.Client
	logger logging.Logger
	now    func() time.Time
}

func NewFlashcardService(store *records.Store, client llm.Client, logger logging.Logger) *FlashcardService {
	return &FlashcardService{store: store, llm: client, logger: logger, now: time.Now}
}

func (s *FlashcardService) newCard(question, answer, subject string, difficulty int, tags []string) models.Flashcard {
	if subject == "" {
		subject = models.DefaultSubject
	}
	if difficulty <= 0 {
		difficulty = models.DefaultDifficulty
	}
	if tags == nil {
		tags = []string{}
	}
	return models.Flashcard{
		ID:         uuid.New().String(),
		Question:   question,
		Answer:     answer,
		Subject:    subject,
		Difficulty: difficulty,
		CreatedAt:  s.now().UTC(),
		Tags:       tags,
	}
}

// CreateUserFlashcard stores a hand-written card.
func (s *FlashcardService) CreateUserFlashcard(ctx context.Context, owner string, in FlashcardInput) (*models.Flashcard, error) {
	if strings.TrimSpace(in.Question) == "" || strings.TrimSpace(in.Answer) == "" {
		return nil, fmt.Errorf("%w: question and answer are required", common.ErrInvalidInput)
	}
	card := s.newCard(in.Question, in.Answer, in.Subject, in.Difficulty, in.Tags)

	_, err := records.Update(ctx, s.store, owner, models.RecordFlashcards, models.NewFlashcardDeck,
		func(d *models.FlashcardDeck) error {
			d.UserMade = append(d.UserMade, card)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// List returns the owner's deck.
func (s *FlashcardService) List(ctx context.Context, owner string) (*models.FlashcardDeck, error) {
	return records.Get(ctx, s.store, owner, models.RecordFlashcards, models.NewFlashcardDeck)
}

func flashcardPrompt(text string) string {
	if utf8.RuneCountInString(text) > flashcardSourceRunes {
		text = string([]rune(text)[:flashcardSourceRunes])
	}
	return "Based on this text, create a flashcard question and answer:\n\n" +
		"Text: " + text + "\n\n" +
		"Create a clear, educational question and concise answer. Format as:\n" +
		"Q: [question]\n" +
		"A: [answer]"
}

// parseFlashcard picks the first "Q:" and "A:" lines of a model response.
func parseFlashcard(resp string) (question, answer string, ok bool) {
	var haveQ, haveA bool
	for _, line := range strings.Split(resp, "\n") {
		switch {
		case !haveQ && strings.HasPrefix(line, "Q:"):
			question, haveQ = strings.TrimSpace(line[2:]), true
		case !haveA && strings.HasPrefix(line, "A:"):
			answer, haveA = strings.TrimSpace(line[2:]), true
		}
	}
	return question, answer, haveQ && haveA
}

// GenerateFromDocument asks the model for one card per chunk of the
// document, for at most count chunks. Responses without both a question
// and an answer line are skipped. Nothing is saved if a model call fails.
func (s *FlashcardService) GenerateFromDocument(ctx context.Context, owner, docID string, count int) ([]models.Flashcard, error) {
	if count <= 0 {
		count = DefaultGeneratedCards
	}
	set, err := records.Get(ctx, s.store, owner, models.RecordDocuments, models.NewDocumentSet)
	if err != nil {
		return nil, err
	}
	doc, ok := set.Documents[docID]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", common.ErrNotFound, docID)
	}

	chunks := doc.Chunks
	if len(chunks) > count {
		chunks = chunks[:count]
	}
	system := llm.BuildSystemPrompt(models.Preferences{AnswerLength: models.AnswerShort}, llm.ModeNormal)

	cards := []models.Flashcard{}
	for _, c := range chunks {
		resp, err := s.llm.Generate(ctx, system, flashcardPrompt(c.Text))
		if err != nil {
			s.logger.Warn(ctx, "flashcard generation failed", "owner", owner, "document", docID, "chunk", c.ID, "error", err)
			return nil, fmt.Errorf("generate flashcards: %w", err)
		}
		q, a, ok := parseFlashcard(resp)
		if !ok {
			s.logger.Debug(ctx, "unparseable flashcard response", "document", docID, "chunk", c.ID)
			continue
		}
		card := s.newCard(q, a, doc.Subject, models.DefaultDifficulty, []string{generatedTag, doc.Subject})
		card.SourceDocument = docID
		cards = append(cards, card)
	}

	_, err = records.Update(ctx, s.store, owner, models.RecordFlashcards, models.NewFlashcardDeck,
		func(d *models.FlashcardDeck) error {
			d.AIGenerated = append(d.AIGenerated, cards...)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return cards, nil
}
