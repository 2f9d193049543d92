// Package records implements the backup-safe per-owner record store.
//
// Every record is a named JSON document owned by an owner ID (or by the
// process when the owner is empty). Each write first preserves the previous
// primary copy as the backup, so a torn or corrupted primary can always be
// recovered from the value that preceded it.
package records

import (
	"context"
)

// Backend persists the primary and backup copies of records.
//
// ReadPrimary and ReadBackup return common.ErrNotFound when the copy does
// not exist. Commit replaces the primary with data after moving the current
// primary into the backup slot; on failure the previous primary must be left
// (or put back) in place.
type Backend interface {
	ReadPrimary(ctx context.Context, owner, name string) ([]byte, error)
	ReadBackup(ctx context.Context, owner, name string) ([]byte, error)
	Commit(ctx context.Context, owner, name string, data []byte) error
}
