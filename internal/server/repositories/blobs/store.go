// Package blobs stores raw uploads and their extracted text per owner, on
// the local filesystem or in an S3-compatible bucket.
package blobs

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/dmitrijs2005/studyvault/internal/common"
)

// Blob areas.
const (
	AreaDocuments     = "documents"
	AreaExtractedText = "extracted-text"
)

// Store is a flat key/value area per owner.
//
// Get returns common.ErrNotFound for a missing key. Delete of a missing key
// succeeds.
type Store interface {
	Put(ctx context.Context, area, owner, key string, data []byte) error
	Get(ctx context.Context, area, owner, key string) ([]byte, error)
	Delete(ctx context.Context, area, owner, key string) error
}

func checkSegment(what, s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, "/\\\x00") {
		return fmt.Errorf("%w: bad blob %s %q", common.ErrInvalidInput, what, s)
	}
	return nil
}

// objectPath returns the slash-separated location of a blob relative to the
// store root.
func objectPath(area, owner, key string) (string, error) {
	for _, c := range [][2]string{{"area", area}, {"owner", owner}, {"key", key}} {
		if err := checkSegment(c[0], c[1]); err != nil {
			return "", err
		}
	}
	return path.Join("users", owner, area, key), nil
}
