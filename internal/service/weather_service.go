package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fakhrymubarak/weather-tracker/internal/model"
	"github.com/fakhrymubarak/weather-tracker/internal/repository"
	"github.com/fakhrymubarak/weather-tracker/internal/snapshot"
	"github.com/fakhrymubarak/weather-tracker/internal/store"
)

// FetchResult reports what happened to the two persistence sinks for one
// successful fetch. The sinks are independent and best-effort: one failing
// never rolls back the other.
type FetchResult struct {
	Observation  *model.Observation
	SnapshotPath string // empty if the snapshot write failed
	Saved        bool   // record appended to the store
}

type WeatherService struct {
	WeatherRepo  repository.WeatherRepository
	Records      store.RecordStore
	Snapshots    *snapshot.Writer
	historyLimit int
	log          *zap.SugaredLogger
}

func NewWeatherService(repo repository.WeatherRepository, records store.RecordStore, snapshots *snapshot.Writer, historyLimit int, log *zap.SugaredLogger) *WeatherService {
	if historyLimit <= 0 {
		historyLimit = 5
	}
	return &WeatherService{
		WeatherRepo:  repo,
		Records:      records,
		Snapshots:    snapshots,
		historyLimit: historyLimit,
		log:          log,
	}
}

// FetchAndRecord fetches current conditions for a validated pincode and, on
// success, archives the raw payload and appends a store record. A fetch
// failure is returned as-is; nothing is persisted for it. Persistence
// failures are logged and reported in the result, never returned.
func (s *WeatherService) FetchAndRecord(ctx context.Context, pincode string) (*FetchResult, error) {
	obs, raw, err := s.WeatherRepo.FetchCurrent(ctx, pincode)
	if err != nil {
		return nil, err
	}

	result := &FetchResult{Observation: obs}

	path, err := s.Snapshots.Write(pincode, raw, time.Now())
	if err != nil {
		s.log.Warnw("failed to write snapshot", "pincode", pincode, "error", err)
	} else {
		result.SnapshotPath = path
	}

	if err := s.Records.Append(ctx, pincode, *obs); err != nil {
		s.log.Warnw("failed to save weather record", "pincode", pincode, "error", err)
	} else {
		result.Saved = true
	}

	return result, nil
}

// History returns up to the configured number of recent records for a
// pincode, most recent first. A read failure is logged and treated as no
// history; it never propagates.
func (s *WeatherService) History(ctx context.Context, pincode string) []model.Record {
	records, err := s.Records.QueryRecent(ctx, pincode, s.historyLimit)
	if err != nil {
		s.log.Errorw("failed to read weather history", "pincode", pincode, "error", err)
		return nil
	}
	return records
}
