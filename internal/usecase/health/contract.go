package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CatalogChecker reports whether a catalog is loaded and servable.
type CatalogChecker interface {
	Ready(ctx context.Context) error
}
