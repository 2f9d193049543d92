package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
)

// Store serializes access per (owner, name) and implements the load
// fallback from primary to backup on top of a Backend.
type Store struct {
	backend Backend
	logger  logging.Logger
	locks   *keyedMutex
}

func NewStore(backend Backend, logger logging.Logger) *Store {
	return &Store{backend: backend, logger: logger, locks: newKeyedMutex()}
}

// ValidateOwner accepts any single path segment that is not "." or "..".
func ValidateOwner(owner string) error {
	if owner == "" {
		return fmt.Errorf("%w: empty owner", common.ErrInvalidInput)
	}
	return validateSegment("owner", owner)
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty record name", common.ErrInvalidInput)
	}
	return validateSegment("record name", name)
}

func validateSegment(what, s string) error {
	if s == "." || s == ".." || strings.ContainsAny(s, "/\\\x00") {
		return fmt.Errorf("%w: bad %s %q", common.ErrInvalidInput, what, s)
	}
	return nil
}

// validateKey checks owner and name. The empty owner is the process-wide
// namespace and holds only the sessions record.
func validateKey(owner, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if owner == "" {
		if name != models.RecordSessions {
			return fmt.Errorf("%w: record %q needs an owner", common.ErrInvalidInput, name)
		}
		return nil
	}
	return ValidateOwner(owner)
}

func lockKey(owner, name string) string {
	return owner + "\x00" + name
}

// acceptFunc reports whether a stored copy is usable.
type acceptFunc func(data []byte) error

func validJSON(data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("%w: invalid json", common.ErrCorrupt)
	}
	return nil
}

// Load returns the newest readable copy of the record. A primary that is
// missing or not valid JSON is replaced by the backup; when neither copy is
// usable Load returns common.ErrNotFound.
func (s *Store) Load(ctx context.Context, owner, name string) ([]byte, error) {
	if err := validateKey(owner, name); err != nil {
		return nil, err
	}
	return s.load(ctx, owner, name, validJSON)
}

// load returns the primary when accept takes it and the backup otherwise.
// When both copies are missing the error is common.ErrNotFound; when a copy
// exists but neither is accepted it also matches common.ErrCorrupt.
func (s *Store) load(ctx context.Context, owner, name string, accept acceptFunc) ([]byte, error) {
	log := s.logger.With("owner", owner, "record", name)

	primary, perr := s.backend.ReadPrimary(ctx, owner, name)
	if perr == nil {
		if perr = accept(primary); perr == nil {
			return primary, nil
		}
	}

	backup, berr := s.backend.ReadBackup(ctx, owner, name)
	if berr == nil {
		if berr = accept(backup); berr == nil {
			if errors.Is(perr, common.ErrCorrupt) {
				log.Warn(ctx, "primary corrupt, using backup", "error", perr)
			} else {
				log.Warn(ctx, "primary unreadable, using backup", "error", perr)
			}
			return backup, nil
		}
	}

	if errors.Is(perr, common.ErrNotFound) && errors.Is(berr, common.ErrNotFound) {
		log.Debug(ctx, "record not found")
		return nil, common.ErrNotFound
	}
	log.Error(ctx, "record unreadable", "primary_error", perr, "backup_error", berr)
	return nil, fmt.Errorf("%w: %w: %s/%s", common.ErrNotFound, common.ErrCorrupt, owner, name)
}

// Save writes data as the new primary, keeping the previous primary as the
// backup. Any backend failure is reported as common.ErrStorageFailure.
func (s *Store) Save(ctx context.Context, owner, name string, data []byte) error {
	if err := validateKey(owner, name); err != nil {
		return err
	}
	unlock := s.locks.Lock(lockKey(owner, name))
	defer unlock()

	return s.save(ctx, owner, name, data)
}

func (s *Store) save(ctx context.Context, owner, name string, data []byte) error {
	if err := s.backend.Commit(ctx, owner, name, data); err != nil {
		s.logger.Error(ctx, "record save failed", "owner", owner, "record", name, "error", err)
		return fmt.Errorf("%w: %s/%s: %v", common.ErrStorageFailure, owner, name, err)
	}
	return nil
}

// Update runs a read-modify-write cycle while holding the record's lock.
// fn receives the current bytes (nil when absent) and returns the new value;
// an error from fn aborts the cycle without writing. A record whose copies
// are both unreadable is left alone and the error matches common.ErrCorrupt.
func (s *Store) Update(ctx context.Context, owner, name string, fn func(current []byte) ([]byte, error)) error {
	if err := validateKey(owner, name); err != nil {
		return err
	}
	return s.update(ctx, owner, name, validJSON, fn)
}

func (s *Store) update(ctx context.Context, owner, name string, accept acceptFunc, fn func(current []byte) ([]byte, error)) error {
	unlock := s.locks.Lock(lockKey(owner, name))
	defer unlock()

	current, err := s.load(ctx, owner, name, accept)
	if errors.Is(err, common.ErrCorrupt) {
		return err
	}
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.save(ctx, owner, name, next)
}

// replace writes the value built by fn under the record's lock without
// reading the stored copies.
func (s *Store) replace(ctx context.Context, owner, name string, fn func() ([]byte, error)) error {
	unlock := s.locks.Lock(lockKey(owner, name))
	defer unlock()

	next, err := fn()
	if err != nil {
		return err
	}
	return s.save(ctx, owner, name, next)
}
