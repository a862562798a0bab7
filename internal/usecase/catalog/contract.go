package catalog

import (
	"context"

	"github.com/kailas-cloud/casematch/internal/domain/record"
)

// Source supplies the full catalog. Implementations: file loader, Valkey repository.
type Source interface {
	Load(ctx context.Context) ([]record.Record, error)
}
