package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateFilename returns "<unixmillis>-<uuid><ext>" for a stored upload.
// The extension is taken from original and lower-cased.
func GenerateFilename(original string) string {
	return fmt.Sprintf("%d-%s%s",
		time.Now().UTC().UnixMilli(),
		uuid.NewString(),
		strings.ToLower(filepath.Ext(original)),
	)
}
