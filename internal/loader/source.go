package loader

import (
	"context"

	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/record"
)

// FileSource loads the catalog from a file on every call.
type FileSource struct {
	path   string
	format string
	schema attribute.Schema
}

// NewFileSource creates a file-backed catalog source.
func NewFileSource(path, format string, schema attribute.Schema) *FileSource {
	return &FileSource{path: path, format: format, schema: schema}
}

// Load reads the file.
func (s *FileSource) Load(_ context.Context) ([]record.Record, error) {
	return ReadFile(s.path, s.format, s.schema)
}
