package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/record"
)

// Formats supported by ReadFile.
const (
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

// DetectFormat infers the catalog format from the file extension.
func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported catalog file extension %q", filepath.Ext(path))
	}
}

// ReadFile reads a catalog file. An empty format is inferred from the extension.
func ReadFile(path, format string, schema attribute.Schema) ([]record.Record, error) {
	if format == "" {
		var err error
		if format, err = DetectFormat(path); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch format {
	case FormatCSV:
		return ReadCSV(f, schema)
	case FormatYAML:
		return ReadYAML(f, schema)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
}
