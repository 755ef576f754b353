package blob

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"labtest-be/internal/utils"
)

var (
	ErrUnsupportedType = errors.New("only JPEG, PNG and PDF files are allowed")
	ErrTooLarge        = errors.New("file exceeds the upload size limit")
	ErrEmptyFile       = errors.New("file is empty")
)

var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// Upload is a file that passed the filter and is ready to store.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        *bytes.Reader
}

// Accept buffers at most maxBytes of r, sniffs the content type and
// assigns a fresh unique name. The declared client content type is ignored.
func Accept(r io.Reader, maxBytes int64) (*Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedType
	}

	return &Upload{
		Name:        utils.GenerateFilename("upload" + ext),
		ContentType: contentType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	}, nil
}
