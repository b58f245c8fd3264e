// Package loader turns downloaded document files into parsed text units for
// the ingestion pipeline. Formats are dispatched on file extension.
package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"askdoc/src/core/document"
)

// Registry dispatches a local file to the loader for its format.
type Registry struct{}

var _ document.Loader = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{}
}

// Load parses the file into units. PDF yields one unit per page with page
// provenance; DOCX and EML yield a single unit. Unknown extensions fail with
// a LoadError.
func (r *Registry) Load(path string) ([]document.Unit, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return loadPDF(path)
	case ".docx":
		return loadDocx(path)
	case ".eml":
		return loadEmail(path)
	default:
		return nil, &document.LoadError{
			Source: path,
			Err:    fmt.Errorf("unsupported file type %q", filepath.Ext(path)),
		}
	}
}
