package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/studyvault/internal/common"
)

// Validator is implemented by record types that check themselves on load.
type Validator interface {
	Validate() error
}

// decodeInto returns an acceptFunc that takes a copy only when it decodes
// into a T that passes Validate. The accepted value is stored in *out.
func decodeInto[T any](out **T) acceptFunc {
	return func(data []byte) error {
		v := new(T)
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("%w: decode: %v", common.ErrCorrupt, err)
		}
		if val, ok := any(v).(Validator); ok {
			if err := val.Validate(); err != nil {
				return fmt.Errorf("%w: %v", common.ErrCorrupt, err)
			}
		}
		*out = v
		return nil
	}
}

func encode[T any](v *T) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", common.ErrInvalidInput, err)
	}
	return data, nil
}

// Get loads and decodes a record. A primary that does not decode or
// validate is replaced by the backup; when neither copy is usable, or the
// record is absent, def() is returned. Only an invalid key is reported as an
// error.
func Get[T any](ctx context.Context, s *Store, owner, name string, def func() *T) (*T, error) {
	if err := validateKey(owner, name); err != nil {
		return nil, err
	}

	var v *T
	if _, err := s.load(ctx, owner, name, decodeInto(&v)); err != nil {
		if errors.Is(err, common.ErrCorrupt) {
			s.logger.Warn(ctx, "record unusable, using default", "owner", owner, "record", name, "error", err)
		}
		return def(), nil
	}
	return v, nil
}

// Put encodes v and saves it.
func Put[T any](ctx context.Context, s *Store, owner, name string, v *T) error {
	data, err := encode(v)
	if err != nil {
		return err
	}
	return s.Save(ctx, owner, name, data)
}

// Update loads the record (or def() when absent), applies fn and saves the
// result, all under the record's lock. Nothing is written when fn fails or
// when both stored copies are unusable; the latter is reported as
// common.ErrCorrupt. The value returned is the one that was saved.
func Update[T any](ctx context.Context, s *Store, owner, name string, def func() *T, fn func(*T) error) (*T, error) {
	if err := validateKey(owner, name); err != nil {
		return nil, err
	}

	var v *T
	err := s.update(ctx, owner, name, decodeInto(&v), func(current []byte) ([]byte, error) {
		if current == nil {
			v = def()
		}
		if err := fn(v); err != nil {
			return nil, err
		}
		return encode(v)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Replace saves the value returned by build under the record's lock without
// reading the stored copies. It suits writers whose in-memory state is
// authoritative.
func Replace[T any](ctx context.Context, s *Store, owner, name string, build func() *T) error {
	if err := validateKey(owner, name); err != nil {
		return err
	}
	return s.replace(ctx, owner, name, func() ([]byte, error) {
		return encode(build())
	})
}
