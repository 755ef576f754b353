// Package blob stores uploaded files under a category segment and
// computes their public URLs.
package blob

import (
	"context"
	"errors"
	"io"
	"strings"
)

const CategoryReports = "reports"

var (
	ErrInvalidName     = errors.New("invalid blob name")
	ErrUnknownCategory = errors.New("unknown blob category")
)

type Store interface {
	Put(ctx context.Context, category, name string, body io.Reader, contentType string) error
	Exists(ctx context.Context, category, name string) (bool, error)
	// Delete removes the blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, category, name string) error
	List(ctx context.Context, category string) ([]string, error)
	URL(category, name string) string
}

func validate(category, name string) error {
	if category != CategoryReports {
		return ErrUnknownCategory
	}
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}
