package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/cryptox"
	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/records"
	"github.com/dmitrijs2005/studyvault/internal/server/sessions"
	"github.com/dmitrijs2005/studyvault/internal/timex"
)

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token   string
	Profile *models.Profile
}

// UserService handles registration, login and session checks.
type UserService struct {
	store    *records.Store
	sessions *sessions.Registry
	logger   logging.Logger
	now      func() time.Time
	loc      *time.Location
}

func NewUserService(store *records.Store, registry *sessions.Registry, logger logging.Logger) *UserService {
	return &UserService{
		store:    store,
		sessions: registry,
		logger:   logger,
		now:      time.Now,
		loc:      time.UTC,
	}
}

// Register creates the account for email. The owner ID is derived from the
// email, so a second registration with the same address fails with
// common.ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, email, password, username string) (*models.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" || strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: email, password and username are required", common.ErrInvalidInput)
	}
	owner := cryptox.OwnerID(email)

	p, err := records.Update(ctx, s.store, owner, models.RecordProfile, profileDefault(owner),
		func(p *models.Profile) error {
			if p.Registered() {
				return fmt.Errorf("%w: account %s", common.ErrAlreadyExists, email)
			}
			p.Email = email
			p.Username = username
			p.PasswordHash, p.PasswordSalt = cryptox.HashPassword(password)
			p.CreatedAt = s.now().UTC()
			return nil
		})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "user registered", "owner", owner)
	return p, nil
}

// Login verifies the credentials, updates the study streak and issues a
// session. Unknown accounts and wrong passwords both yield
// common.ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	owner := cryptox.OwnerID(email)

	p, err := records.Get(ctx, s.store, owner, models.RecordProfile, profileDefault(owner))
	if err != nil {
		return nil, err
	}
	if !p.Registered() {
		return nil, common.ErrUnauthorized
	}
	ok, err := cryptox.VerifyPassword(password, p.PasswordHash, p.PasswordSalt)
	if err != nil {
		s.logger.Warn(ctx, "stored credential unusable", "owner", owner, "error", err)
		return nil, common.ErrUnauthorized
	}
	if !ok {
		return nil, common.ErrUnauthorized
	}

	now := s.now().UTC()
	p, err = records.Update(ctx, s.store, owner, models.RecordProfile, profileDefault(owner),
		func(p *models.Profile) error {
			p.Preferences.StudyStreak = nextStreak(p.Preferences.StudyStreak, p.LastLogin, now, s.loc)
			p.LastLogin = &now
			return nil
		})
	if err != nil {
		return nil, err
	}

	token, err := s.sessions.Issue(ctx, owner, p.Email, p.Username)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "user logged in", "owner", owner)
	return &LoginResult{Token: token, Profile: p}, nil
}

// nextStreak extends the streak for a login on the day after the previous
// one, keeps it on the same day and restarts it otherwise.
func nextStreak(streak int, last *time.Time, now time.Time, loc *time.Location) int {
	if last == nil {
		return 1
	}
	switch days := timex.DaysBetween(*last, now, loc); {
	case days == 0:
		if streak == 0 {
			return 1
		}
		return streak
	case days == 1:
		return streak + 1
	default:
		return 1
	}
}

// Logout revokes token. Unknown tokens are not an error.
func (s *UserService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// Authenticate resolves a session token to its owner.
func (s *UserService) Authenticate(token string) (string, error) {
	sess, ok := s.sessions.Validate(token)
	if !ok {
		return "", common.ErrUnauthorized
	}
	return sess.UserID, nil
}

// Profile returns the registered profile of owner.
func (s *UserService) Profile(ctx context.Context, owner string) (*models.Profile, error) {
	p, err := records.Get(ctx, s.store, owner, models.RecordProfile, profileDefault(owner))
	if err != nil {
		return nil, err
	}
	if !p.Registered() {
		return nil, fmt.Errorf("%w: profile %s", common.ErrNotFound, owner)
	}
	return p, nil
}
