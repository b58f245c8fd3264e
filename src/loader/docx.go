package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lu4p/cat"

	"askdoc/src/core/document"
)

// loadDocx extracts the full text of a .docx file as a single unit.
func loadDocx(path string) ([]document.Unit, error) {
	content, err := cat.File(path)
	if err != nil {
		return nil, &document.LoadError{Source: path, Err: fmt.Errorf("extract docx: %w", err)}
	}
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	return []document.Unit{{
		Text: content,
		Metadata: map[string]any{
			document.MetaSource: filepath.Base(path),
		},
	}}, nil
}
