package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/dmitrijs2005/studyvault/internal/server/analysis"
	"github.com/dmitrijs2005/studyvault/internal/server/llm"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/records"
	"github.com/dmitrijs2005/studyvault/internal/server/retrieval"
)

// Answer sources reported with every answer.
const (
	SourceDataset         = "Local Dataset"
	SourceDatasetFallback = "Local Dataset (AI unavailable)"
	SourceAIWithDocuments = "AI + PDF Reference"
	SourceAI              = "AI Assistant"
)

const (
	datasetConfidence  = 90
	fallbackConfidence = 60
	modelConfidence    = 75
	// a dataset answer is used directly above this confidence
	datasetThreshold = 70
)

// Retriever finds stored chunks relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, owner, query string, maxResults int) ([]retrieval.ScoredChunk, error)
}

// AskRequest is one tutoring question.
type AskRequest struct {
	Question   string `json:"question"`
	Mode       string `json:"mode"`
	Subject    string `json:"subject"`
	Difficulty int    `json:"difficulty"`
}

// SourceRef names a document that contributed context.
type SourceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AskResult is the answer with the scores computed for it.
type AskResult struct {
	Answer        string      `json:"answer"`
	Confidence    int         `json:"confidence"`
	Source        string      `json:"source"`
	BloomsLevel   string      `json:"bloomsLevel"`
	AccuracyScore int         `json:"accuracyScore"`
	Question      string      `json:"question"`
	Mode          llm.Mode    `json:"mode"`
	Subject       string      `json:"subject"`
	Sources       []SourceRef `json:"pdfSources"`
}

// TutorService answers questions from the owner's documents, the curated
// dataset and the language model, and records the outcome.
type TutorService struct {
	store      *records.Store
	retriever  Retriever
	llm        llm.Client
	dataset    Dataset
	analytics  *AnalyticsService
	history    *HistoryService
	logger     logging.Logger
	maxContext int
}

func NewTutorService(store *records.Store, retriever Retriever, client llm.Client, dataset Dataset,
	analytics *AnalyticsService, history *HistoryService, logger logging.Logger, maxContext int) *TutorService {
	if maxContext <= 0 {
		maxContext = retrieval.DefaultMaxResults
	}
	if dataset == nil {
		dataset = Dataset{}
	}
	return &TutorService{
		store:      store,
		retriever:  retriever,
		llm:        client,
		dataset:    dataset,
		analytics:  analytics,
		history:    history,
		logger:     logger,
		maxContext: maxContext,
	}
}

// Ask answers req for owner.
//
// A dataset answer is returned as is when no document context was found.
// Otherwise the model is asked; if it fails the dataset answer is used as a
// fallback and, without one, common.ErrUnavailable is returned. Analytics
// and history are updated for every answered question.
func (s *TutorService) Ask(ctx context.Context, owner string, req AskRequest) (*AskResult, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", common.ErrInvalidInput)
	}
	mode := llm.ParseMode(req.Mode)
	log := s.logger.With("owner", owner)

	chunks, err := s.retriever.Retrieve(ctx, owner, question, s.maxContext)
	if err != nil {
		return nil, err
	}
	hasContext := len(chunks) > 0
	level := analysis.BloomsLevel(question)

	datasetAnswer, inDataset := s.dataset.Lookup(req.Subject, question)
	confidence := 0
	if inDataset {
		confidence = datasetConfidence
	}

	var answer, source string
	if inDataset && confidence > datasetThreshold && !hasContext {
		answer, source = datasetAnswer, SourceDataset
	} else {
		profile, err := records.Get(ctx, s.store, owner, models.RecordProfile, profileDefault(owner))
		if err != nil {
			return nil, err
		}
		system := llm.BuildSystemPrompt(profile.Preferences, mode)

		answer, err = s.llm.Generate(ctx, system, retrieval.BuildPrompt(question, chunks))
		switch {
		case err == nil:
			source = SourceAI
			if hasContext {
				source = SourceAIWithDocuments
			}
			confidence = analysis.AccuracyScore(answer, modelConfidence, source, hasContext)
		case inDataset:
			log.Warn(ctx, "model unavailable, answering from dataset", "error", err)
			answer, source, confidence = datasetAnswer, SourceDatasetFallback, fallbackConfidence
		default:
			log.Error(ctx, "model unavailable", "error", err)
			return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
		}
	}

	subject := req.Subject
	if subject == "" {
		subject = models.DefaultSubject
	}
	difficulty := req.Difficulty
	if difficulty <= 0 {
		difficulty = models.DefaultDifficulty
	}
	sources := make([]SourceRef, len(chunks))
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		sources[i] = SourceRef{ID: c.DocumentID, Name: c.DocumentName}
		ids[i] = c.DocumentID
	}

	if err := s.analytics.RecordAsk(ctx, owner, req.Subject, level, confidence); err != nil {
		return nil, err
	}
	meta := map[string]any{
		"mode":        string(mode),
		"subject":     subject,
		"source":      source,
		"accuracy":    confidence,
		"bloomsLevel": level,
		"difficulty":  difficulty,
		"pdfSources":  ids,
	}
	if _, err := s.history.Append(ctx, owner, question, answer, meta); err != nil {
		log.Error(ctx, "history append failed", "error", err)
		return nil, err
	}

	return &AskResult{
		Answer:        answer,
		Confidence:    confidence,
		Source:        source,
		BloomsLevel:   level,
		AccuracyScore: analysis.AccuracyScore(answer, confidence, source, hasContext),
		Question:      question,
		Mode:          mode,
		Subject:       subject,
		Sources:       sources,
	}, nil
}
