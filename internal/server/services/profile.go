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

// PreferencesUpdate carries the preference fields to change; nil fields are
// left as they are.
type PreferencesUpdate struct {
	AnswerLength *string `json:"answerLength,omitempty"`
	AnalogyStyle *string `json:"analogyStyle,omitempty"`
	BloomsLevel  *string `json:"bloomsLevel,omitempty"`
	FocusLevel   *string `json:"focusLevel,omitempty"`
	Theme        *string `json:"theme,omitempty"`
}

func (u PreferencesUpdate) validate() error {
	if u.AnswerLength != nil {
		switch *u.AnswerLength {
		case models.AnswerShort, models.AnswerMedium, models.AnswerLong:
		default:
			return fmt.Errorf("%w: answer length %q", common.ErrInvalidInput, *u.AnswerLength)
		}
	}
	if u.BloomsLevel != nil && !models.IsBloomLevel(*u.BloomsLevel) {
		return fmt.Errorf("%w: bloom's level %q", common.ErrInvalidInput, *u.BloomsLevel)
	}
	return nil
}

func (u PreferencesUpdate) apply(p *models.Preferences) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.AnswerLength, u.AnswerLength)
	set(&p.AnalogyStyle, u.AnalogyStyle)
	set(&p.BloomsLevel, u.BloomsLevel)
	set(&p.FocusLevel, u.FocusLevel)
	set(&p.Theme, u.Theme)
}

// ProfileService edits the preference part of a registered profile.
type ProfileService struct {
	store *records.Store
	now   func() time.Time
}

func NewProfileService(store *records.Store) *ProfileService {
	return &ProfileService{store: store, now: time.Now}
}

func (s *ProfileService) updateRegistered(ctx context.Context, owner string, fn func(*models.Profile) error) (*models.Profile, error) {
	return records.Update(ctx, s.store, owner, models.RecordProfile, profileDefault(owner),
		func(p *models.Profile) error {
			if !p.Registered() {
				return fmt.Errorf("%w: profile %s", common.ErrNotFound, owner)
			}
			return fn(p)
		})
}

// UpdatePreferences merges u into the owner's preferences.
func (s *ProfileService) UpdatePreferences(ctx context.Context, owner string, u PreferencesUpdate) (*models.Preferences, error) {
	if err := u.validate(); err != nil {
		return nil, err
	}
	p, err := s.updateRegistered(ctx, owner, func(p *models.Profile) error {
		u.apply(&p.Preferences)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p.Preferences, nil
}

// AddCustomSubject appends a subject to the preferences and starts its
// progress counters. Names are unique ignoring case.
func (s *ProfileService) AddCustomSubject(ctx context.Context, owner, name, color string) (*models.CustomSubject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty subject name", common.ErrInvalidInput)
	}
	if color == "" {
		color = models.DefaultSubjectColor
	}
	subj := models.CustomSubject{
		ID:        uuid.New().String(),
		Name:      name,
		Color:     color,
		CreatedAt: s.now().UTC(),
	}

	_, err := s.updateRegistered(ctx, owner, func(p *models.Profile) error {
		for _, cs := range p.Preferences.CustomSubjects {
			if strings.EqualFold(cs.Name, name) {
				return fmt.Errorf("%w: subject %q", common.ErrAlreadyExists, name)
			}
		}
		p.Preferences.CustomSubjects = append(p.Preferences.CustomSubjects, subj)
		p.Analytics.Subject(name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &subj, nil
}
