package rawdata

import "context"

// Repository appends history rows and refreshes the latest row per
// (source, entity type, entity key).
type Repository interface {
	Archive(ctx context.Context, items []Payload) error
}
