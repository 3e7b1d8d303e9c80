package content

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/voxcast/voxcast/errors"
	"github.com/voxcast/voxcast/internal/domain/entities"
)

// Loader turns a source reference into a document ready for script
// generation.
type Loader interface {
	Load(ctx context.Context, source string) (*entities.Document, error)
}

// FileLoader reads documents from the local filesystem. The file name
// (without extension) becomes the document title unless the content's
// first markdown heading supplies one.
type FileLoader struct{}

// NewFileLoader creates a filesystem content loader
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load reads the source file into a document
func (l *FileLoader) Load(_ context.Context, source string) (*entities.Document, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.ErrNotFound("content source " + source)
		}
		return nil, apperrors.ErrInternal(err)
	}

	text := string(data)
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ErrInvalidArgument("content source is empty: " + source)
	}

	return &entities.Document{
		Title:   documentTitle(source, text),
		Content: text,
		Metadata: map[string]interface{}{
			"source": source,
		},
	}, nil
}

func documentTitle(source, text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
		if line != "" {
			break
		}
	}
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
