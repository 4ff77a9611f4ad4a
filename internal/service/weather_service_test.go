package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/fakhrymubarak/weather-tracker/internal/model"
	"github.com/fakhrymubarak/weather-tracker/internal/repository"
	"github.com/fakhrymubarak/weather-tracker/internal/snapshot"
)

// Mock repository for testing
type mockWeatherRepository struct {
	shouldError bool
	mockObs     *model.Observation
	mockRaw     []byte
}

func (m *mockWeatherRepository) FetchCurrent(ctx context.Context, pincode string) (*model.Observation, []byte, error) {
	if m.shouldError {
		return nil, nil, repository.ErrExternalAPI
	}
	return m.mockObs, m.mockRaw, nil
}

// Mock record store for testing
type mockRecordStore struct {
	appendErr error
	queryErr  error
	appended  []model.Observation
	records   []model.Record
	lastLimit int
}

func (m *mockRecordStore) Append(ctx context.Context, pincode string, obs model.Observation) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, obs)
	return nil
}

func (m *mockRecordStore) QueryRecent(ctx context.Context, pincode string, limit int) ([]model.Record, error) {
	m.lastLimit = limit
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.records, nil
}

func (m *mockRecordStore) Close() error { return nil }

func sampleObservation() *model.Observation {
	return &model.Observation{
		Pincode:      "560001",
		Location:     "Bengaluru",
		TemperatureC: 24.5,
		Humidity:     60,
		Description:  "clear sky",
		WindSpeed:    3.1,
	}
}

func TestFetchAndRecord(t *testing.T) {
	tests := []struct {
		name        string
		repoError   bool
		appendErr   error
		raw         []byte
		expectError bool
		expectSaved bool
		expectSnap  bool
	}{
		{
			name:        "Successful fetch persists to both sinks",
			raw:         []byte(`{"name":"Bengaluru"}`),
			expectSaved: true,
			expectSnap:  true,
		},
		{
			name:        "Fetch failure persists nothing",
			repoError:   true,
			expectError: true,
		},
		{
			name:        "Store failure does not fail the fetch",
			appendErr:   errors.New("disk full"),
			raw:         []byte(`{"name":"Bengaluru"}`),
			expectSaved: false,
			expectSnap:  true,
		},
		{
			name:        "Snapshot failure does not block the store",
			raw:         []byte("not-json"),
			expectSaved: true,
			expectSnap:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapDir := filepath.Join(t.TempDir(), "weather_data")
			mockRepo := &mockWeatherRepository{
				shouldError: tt.repoError,
				mockObs:     sampleObservation(),
				mockRaw:     tt.raw,
			}
			mockStore := &mockRecordStore{appendErr: tt.appendErr}

			svc := NewWeatherService(mockRepo, mockStore, snapshot.NewWriter(snapDir), 5, zap.NewNop().Sugar())

			result, err := svc.FetchAndRecord(context.Background(), "560001")

			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error but got none")
				}
				if len(mockStore.appended) != 0 {
					t.Error("Expected no store insert on fetch failure")
				}
				if entries, _ := os.ReadDir(snapDir); len(entries) != 0 {
					t.Error("Expected no snapshot file on fetch failure")
				}
				return
			}

			if err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			if result.Saved != tt.expectSaved {
				t.Errorf("Expected Saved=%v, got %v", tt.expectSaved, result.Saved)
			}
			if tt.expectSaved && len(mockStore.appended) != 1 {
				t.Errorf("Expected exactly one store insert, got %d", len(mockStore.appended))
			}
			if tt.expectSnap {
				if result.SnapshotPath == "" {
					t.Error("Expected a snapshot path")
				}
				if _, statErr := os.Stat(result.SnapshotPath); statErr != nil {
					t.Errorf("Expected snapshot file to exist: %v", statErr)
				}
			} else if result.SnapshotPath != "" {
				t.Errorf("Expected no snapshot path, got %s", result.SnapshotPath)
			}
		})
	}
}

func TestHistory(t *testing.T) {
	records := []model.Record{
		{ID: 2, Pincode: "560001", Description: "light rain"},
		{ID: 1, Pincode: "560001", Description: "clear sky"},
	}
	mockStore := &mockRecordStore{records: records}
	svc := NewWeatherService(&mockWeatherRepository{}, mockStore, snapshot.NewWriter(t.TempDir()), 5, zap.NewNop().Sugar())

	got := svc.History(context.Background(), "560001")
	if len(got) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(got))
	}
	if mockStore.lastLimit != 5 {
		t.Errorf("Expected configured limit 5, got %d", mockStore.lastLimit)
	}
}

func TestHistoryReadFailureYieldsEmpty(t *testing.T) {
	mockStore := &mockRecordStore{queryErr: errors.New("database is locked")}
	svc := NewWeatherService(&mockWeatherRepository{}, mockStore, snapshot.NewWriter(t.TempDir()), 5, zap.NewNop().Sugar())

	got := svc.History(context.Background(), "560001")
	if len(got) != 0 {
		t.Fatalf("Expected empty history on read failure, got %d records", len(got))
	}
}
