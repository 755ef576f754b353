package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// LocalStore keeps blobs on disk under <root>/<category>/<name> and serves
// them from <baseURL>/uploads/<category>/<name>.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(root, CategoryReports), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: root, baseURL: baseURL}, nil
}

func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) path(category, name string) string {
	return filepath.Join(s.root, category, name)
}

// Put writes to a temp file first so a failed copy never leaves a partial blob.
func (s *LocalStore) Put(ctx context.Context, category, name string, body io.Reader, contentType string) error {
	if err := validate(category, name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Join(s.root, category)
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close blob: %w", err)
	}
	return os.Rename(tmp.Name(), s.path(category, name))
}

func (s *LocalStore) Exists(ctx context.Context, category, name string) (bool, error) {
	if err := validate(category, name); err != nil {
		return false, err
	}
	info, err := os.Stat(s.path(category, name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func (s *LocalStore) Delete(ctx context.Context, category, name string) error {
	if err := validate(category, name); err != nil {
		return err
	}
	err := os.Remove(s.path(category, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *LocalStore) List(ctx context.Context, category string) ([]string, error) {
	if category != CategoryReports {
		return nil, ErrUnknownCategory
	}
	entries, err := os.ReadDir(filepath.Join(s.root, category))
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, e := range entries {
		if e.Type().IsRegular() && e.Name()[0] != '.' {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *LocalStore) URL(category, name string) string {
	return fmt.Sprintf("%s/uploads/%s/%s", s.baseURL, category, name)
}
