package store

import (
	"context"

	"github.com/fakhrymubarak/weather-tracker/internal/model"
)

// RecordStore is the append-only log of fetched observations. Records are
// never updated or deleted; pincodes are matched exactly as stored.
type RecordStore interface {
	Append(ctx context.Context, pincode string, obs model.Observation) error
	QueryRecent(ctx context.Context, pincode string, limit int) ([]model.Record, error)
	Close() error
}
