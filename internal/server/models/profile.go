package models

import (
	"fmt"
	"time"
)

// Answer lengths understood by the answer generator.
const (
	AnswerShort  = "short"
	AnswerMedium = "medium"
	AnswerLong   = "long"
)

// DefaultSubjectColor is assigned to custom subjects created without one.
const DefaultSubjectColor = "#8B5CF6"

// Profile is the per-owner account record.
type Profile struct {
	SchemaVersion int         `json:"schemaVersion"`
	UserID        string      `json:"userId"`
	Email         string      `json:"email"`
	Username      string      `json:"username"`
	PasswordHash  string      `json:"passwordHash"`
	PasswordSalt  string      `json:"passwordSalt"`
	CreatedAt     time.Time   `json:"createdAt"`
	LastLogin     *time.Time  `json:"lastLogin"`
	Preferences   Preferences `json:"preferences"`
	Analytics     Analytics   `json:"analytics"`
}

// Preferences drive how answers are generated and displayed.
type Preferences struct {
	AnswerLength   string          `json:"answerLength"`
	AnalogyStyle   string          `json:"analogyStyle"`
	BloomsLevel    string          `json:"bloomsLevel"`
	StudyStreak    int             `json:"studyStreak"`
	FocusLevel     string          `json:"focusLevel"`
	Theme          string          `json:"theme"`
	CustomSubjects []CustomSubject `json:"customSubjects"`
}

// CustomSubject is a user-defined subject label.
type CustomSubject struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// Analytics aggregates an owner's question activity.
type Analytics struct {
	QuestionsAsked  int                          `json:"questionsAsked"`
	ConceptsLearned []string                     `json:"conceptsLearned"`
	WeakAreas       []string                     `json:"weakAreas"`
	StudyTime       int                          `json:"studyTime"`
	SubjectProgress map[string]*SubjectAnalytics `json:"subjectProgress"`
	BloomsLevels    BloomsTally                  `json:"bloomsLevels"`
}

// SubjectAnalytics holds per-subject counters. AverageAccuracy is the mean
// of every accuracy recorded for the subject.
type SubjectAnalytics struct {
	QuestionsAsked  int         `json:"questionsAsked"`
	AverageAccuracy float64     `json:"averageAccuracy"`
	TimeSpent       int         `json:"timeSpent"`
	BloomsLevels    BloomsTally `json:"bloomsLevels"`
}

// NewPreferences returns the defaults applied to new accounts.
func NewPreferences() Preferences {
	return Preferences{
		AnswerLength:   AnswerMedium,
		AnalogyStyle:   "general",
		BloomsLevel:    BloomAnalyze,
		StudyStreak:    0,
		FocusLevel:     "medium",
		Theme:          "dark",
		CustomSubjects: []CustomSubject{},
	}
}

// NewAnalytics returns empty analytics with every collection initialised.
func NewAnalytics() Analytics {
	return Analytics{
		ConceptsLearned: []string{},
		WeakAreas:       []string{},
		SubjectProgress: map[string]*SubjectAnalytics{},
		BloomsLevels:    NewBloomsTally(),
	}
}

// NewSubjectAnalytics returns zeroed per-subject counters.
func NewSubjectAnalytics() *SubjectAnalytics {
	return &SubjectAnalytics{BloomsLevels: NewBloomsTally()}
}

// NewProfile returns the default profile for owner.
func NewProfile(owner string) *Profile {
	return &Profile{
		SchemaVersion: SchemaVersion,
		UserID:        owner,
		CreatedAt:     time.Now().UTC(),
		Preferences:   NewPreferences(),
		Analytics:     NewAnalytics(),
	}
}

// Validate checks the profile and fills collections that older records may
// have left null.
func (p *Profile) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("profile: empty userId")
	}
	if p.SchemaVersion > SchemaVersion {
		return fmt.Errorf("profile: unsupported schema version %d", p.SchemaVersion)
	}
	p.normalize()
	return nil
}

func (p *Profile) normalize() {
	def := NewPreferences()
	if p.Preferences.AnswerLength == "" {
		p.Preferences.AnswerLength = def.AnswerLength
	}
	if p.Preferences.AnalogyStyle == "" {
		p.Preferences.AnalogyStyle = def.AnalogyStyle
	}
	if p.Preferences.BloomsLevel == "" {
		p.Preferences.BloomsLevel = def.BloomsLevel
	}
	if p.Preferences.FocusLevel == "" {
		p.Preferences.FocusLevel = def.FocusLevel
	}
	if p.Preferences.Theme == "" {
		p.Preferences.Theme = def.Theme
	}
	if p.Preferences.CustomSubjects == nil {
		p.Preferences.CustomSubjects = []CustomSubject{}
	}

	a := &p.Analytics
	if a.ConceptsLearned == nil {
		a.ConceptsLearned = []string{}
	}
	if a.WeakAreas == nil {
		a.WeakAreas = []string{}
	}
	if a.SubjectProgress == nil {
		a.SubjectProgress = map[string]*SubjectAnalytics{}
	}
	if a.BloomsLevels == nil {
		a.BloomsLevels = NewBloomsTally()
	}
	for name, s := range a.SubjectProgress {
		if s == nil {
			a.SubjectProgress[name] = NewSubjectAnalytics()
			continue
		}
		if s.BloomsLevels == nil {
			s.BloomsLevels = NewBloomsTally()
		}
	}
	if p.SchemaVersion == 0 {
		p.SchemaVersion = SchemaVersion
	}
}

// Registered reports whether the profile belongs to a registered account.
func (p *Profile) Registered() bool {
	return p.Email != ""
}

// Subject returns the analytics for name, creating them if absent.
func (a *Analytics) Subject(name string) *SubjectAnalytics {
	if a.SubjectProgress == nil {
		a.SubjectProgress = map[string]*SubjectAnalytics{}
	}
	s, ok := a.SubjectProgress[name]
	if !ok || s == nil {
		s = NewSubjectAnalytics()
		a.SubjectProgress[name] = s
	}
	return s
}
