package rawdata

import "context"

// Repository archives raw payloads. Rows are keyed by
// (source, entity_type, entity_key); an upsert replaces the older body.
type Repository interface {
	UpsertMany(ctx context.Context, items []Payload) error
}
