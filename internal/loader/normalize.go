// Package loader reads catalog files (CSV or YAML) into validated records.
package loader

import "github.com/kailas-cloud/casematch/internal/domain/value"

// normalizeCell normalizes every catalog cell, keys and descriptions included,
// the same way categorical values are normalized.
func normalizeCell(s string) string {
	return value.NormalizeText(s)
}
