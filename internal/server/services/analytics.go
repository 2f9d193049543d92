// Package services contains the server-side operations built on top of the
// record store: accounts, analytics, history, bookmarks, flashcards and the
// tutor's ask flow.
package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/records"
)

// AnalyticsService accumulates per-owner question statistics in the profile
// record. Every call rewrites the whole profile under its record lock.
type AnalyticsService struct {
	store  *records.Store
	logger logging.Logger
}

func NewAnalyticsService(store *records.Store, logger logging.Logger) *AnalyticsService {
	return &AnalyticsService{store: store, logger: logger}
}

func profileDefault(owner string) func() *models.Profile {
	return func() *models.Profile { return models.NewProfile(owner) }
}

func checkQuestion(subject, bloomsLevel string) error {
	if strings.TrimSpace(subject) == "" {
		return fmt.Errorf("%w: empty subject", common.ErrInvalidInput)
	}
	if !models.IsBloomLevel(bloomsLevel) {
		return fmt.Errorf("%w: unknown bloom's level %q", common.ErrInvalidInput, bloomsLevel)
	}
	return nil
}

// recordSubject bumps the subject counter, folds accuracy into the running
// mean and tallies the level.
func recordSubject(a *models.Analytics, subject, bloomsLevel string, accuracy int) {
	sa := a.Subject(subject)
	sa.QuestionsAsked++
	sa.AverageAccuracy += (float64(accuracy) - sa.AverageAccuracy) / float64(sa.QuestionsAsked)
	sa.BloomsLevels[bloomsLevel]++
}

// RecordQuestion adds one answered question with the given accuracy to the
// subject's statistics.
func (s *AnalyticsService) RecordQuestion(ctx context.Context, owner, subject, bloomsLevel string, accuracy int) error {
	if err := checkQuestion(subject, bloomsLevel); err != nil {
		return err
	}
	_, err := records.Update(ctx, s.store, owner, models.RecordProfile, profileDefault(owner),
		func(p *models.Profile) error {
			recordSubject(&p.Analytics, subject, bloomsLevel, accuracy)
			return nil
		})
	return err
}

// RecordAsk updates the profile-wide totals for one question and, when a
// subject is given, the subject statistics as RecordQuestion does. Both
// land in a single write.
func (s *AnalyticsService) RecordAsk(ctx context.Context, owner, subject, bloomsLevel string, accuracy int) error {
	if !models.IsBloomLevel(bloomsLevel) {
		return fmt.Errorf("%w: unknown bloom's level %q", common.ErrInvalidInput, bloomsLevel)
	}
	_, err := records.Update(ctx, s.store, owner, models.RecordProfile, profileDefault(owner),
		func(p *models.Profile) error {
			a := &p.Analytics
			a.QuestionsAsked++
			a.BloomsLevels[bloomsLevel]++
			if subject == "" {
				return nil
			}
			if !slices.Contains(a.ConceptsLearned, subject) {
				a.ConceptsLearned = append(a.ConceptsLearned, subject)
			}
			recordSubject(a, subject, bloomsLevel, accuracy)
			return nil
		})
	if err != nil {
		s.logger.Error(ctx, "analytics update failed", "owner", owner, "error", err)
	}
	return err
}

// Get returns the owner's analytics; an owner with no profile gets empty
// statistics.
func (s *AnalyticsService) Get(ctx context.Context, owner string) (*models.Analytics, error) {
	p, err := records.Get(ctx, s.store, owner, models.RecordProfile, profileDefault(owner))
	if err != nil {
		return nil, err
	}
	return &p.Analytics, nil
}
