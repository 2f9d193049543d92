package records

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/filex"
	"github.com/dmitrijs2005/studyvault/internal/logging"
)

const (
	usersDir     = "users"
	recordExt    = ".json"
	backupSuffix = ".backup"
)

// FileBackend stores records as files below a root directory:
//
//	<root>/<name>.json                      process-wide records
//	<root>/users/<owner>/<name>.json        per-owner records
//	<path>.backup                           previous primary
type FileBackend struct {
	root   string
	logger logging.Logger

	writeFile func(path string, data []byte) error
	copyFile  func(src, dst string) error
}

// NewFileBackend creates root if needed and returns a backend rooted there.
func NewFileBackend(root string, logger logging.Logger) (*FileBackend, error) {
	if _, err := filex.EnsureDir(root); err != nil {
		return nil, fmt.Errorf("storage root: %w", err)
	}
	return &FileBackend{
		root:      root,
		logger:    logger,
		writeFile: filex.WriteFile,
		copyFile:  filex.CopyFile,
	}, nil
}

// Root returns the storage root directory.
func (b *FileBackend) Root() string {
	return b.root
}

// OwnerDir returns the directory holding owner's records.
func (b *FileBackend) OwnerDir(owner string) string {
	if owner == "" {
		return b.root
	}
	return filepath.Join(b.root, usersDir, owner)
}

func (b *FileBackend) primaryPath(owner, name string) string {
	return filepath.Join(b.OwnerDir(owner), name+recordExt)
}

func (b *FileBackend) ReadPrimary(_ context.Context, owner, name string) ([]byte, error) {
	return readFile(b.primaryPath(owner, name))
}

func (b *FileBackend) ReadBackup(_ context.Context, owner, name string) ([]byte, error) {
	return readFile(b.primaryPath(owner, name) + backupSuffix)
}

func (b *FileBackend) Commit(ctx context.Context, owner, name string, data []byte) error {
	if _, err := filex.EnsureDir(b.OwnerDir(owner)); err != nil {
		return err
	}

	primary := b.primaryPath(owner, name)
	backup := primary + backupSuffix

	hadPrimary, err := filex.Exists(primary)
	if err != nil {
		return err
	}
	if hadPrimary {
		if err := b.copyFile(primary, backup); err != nil {
			return fmt.Errorf("backup: %w", err)
		}
	}

	if err := b.writeFile(primary, data); err != nil {
		b.restore(ctx, primary, backup, hadPrimary)
		return err
	}
	return nil
}

// restore puts the backup back after a failed write. Failures are logged
// only; the caller already reports the write error.
func (b *FileBackend) restore(ctx context.Context, primary, backup string, hadPrimary bool) {
	var err error
	if hadPrimary {
		err = b.copyFile(backup, primary)
	} else if rerr := os.Remove(primary); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
		err = rerr
	}
	if err != nil {
		b.logger.Error(ctx, "restore from backup failed", "path", primary, "error", err)
	}
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}
