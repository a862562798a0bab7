package rank

import (
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/weight"
)

// CatalogReader provides read access to the loaded catalog.
type CatalogReader interface {
	Snapshot() ([]record.Record, error)
	Get(key string) (record.Record, error)
}

// WeightSource provides a consistent weight configuration for one pass.
type WeightSource interface {
	Snapshot() weight.Set
}
