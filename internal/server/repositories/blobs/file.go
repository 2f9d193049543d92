package blobs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/filex"
)

// FileStore keeps blobs under <root>/users/<owner>/<area>/<key>.
type FileStore struct {
	root string
}

func NewFileStore(root string) (*FileStore, error) {
	if _, err := filex.EnsureDir(root); err != nil {
		return nil, err
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) path(area, owner, key string) (string, error) {
	p, err := objectPath(area, owner, key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(p)), nil
}

func (s *FileStore) Put(_ context.Context, area, owner, key string, data []byte) error {
	p, err := s.path(area, owner, key)
	if err != nil {
		return err
	}
	if _, err := filex.EnsureDir(filepath.Dir(p)); err != nil {
		return err
	}
	return filex.WriteFile(p, data)
}

func (s *FileStore) Get(_ context.Context, area, owner, key string) ([]byte, error) {
	p, err := s.path(area, owner, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, common.ErrNotFound
	}
	return data, err
}

func (s *FileStore) Delete(_ context.Context, area, owner, key string) error {
	p, err := s.path(area, owner, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
