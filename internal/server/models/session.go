package models

import (
	"fmt"
	"time"
)

// Session is an authenticated login keyed by its opaque token.
type Session struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// Expired reports whether more than ttl has passed since the last activity.
// A session idle for exactly ttl is still live.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastActivity) > ttl
}

// SessionSet is the process-wide sessions record keyed by token.
type SessionSet struct {
	SchemaVersion int                 `json:"schemaVersion"`
	Sessions      map[string]*Session `json:"sessions"`
}

func NewSessionSet() *SessionSet {
	return &SessionSet{SchemaVersion: SchemaVersion, Sessions: map[string]*Session{}}
}

func (s *SessionSet) Validate() error {
	if s.SchemaVersion > SchemaVersion {
		return fmt.Errorf("sessions: unsupported schema version %d", s.SchemaVersion)
	}
	if s.Sessions == nil {
		s.Sessions = map[string]*Session{}
	}
	for token, sess := range s.Sessions {
		if sess == nil || sess.UserID == "" {
			delete(s.Sessions, token)
		}
	}
	if s.SchemaVersion == 0 {
		s.SchemaVersion = SchemaVersion
	}
	return nil
}
