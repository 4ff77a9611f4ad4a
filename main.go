package main

import (
	"context"
	"os"

	"github.com/fakhrymubarak/weather-tracker/internal/app"
	"github.com/fakhrymubarak/weather-tracker/internal/cache"
	"github.com/fakhrymubarak/weather-tracker/internal/config"
	"github.com/fakhrymubarak/weather-tracker/internal/repository"
	"github.com/fakhrymubarak/weather-tracker/internal/service"
	"github.com/fakhrymubarak/weather-tracker/internal/snapshot"
	"github.com/fakhrymubarak/weather-tracker/internal/store"
)

func main() {
	cfg := config.Load()
	log := config.GetLogger()

	records, err := store.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		log.Fatalw("failed to open weather record store", "path", cfg.DatabasePath, "error", err)
	}
	defer records.Close()

	payloads := cache.New(cfg.RedisAddr, cfg.CacheExpiration)
	defer payloads.Close()

	weatherRepo := repository.NewWeatherRepository(cfg, payloads)
	snapshots := snapshot.NewWriter(cfg.SnapshotDir)
	weatherService := service.NewWeatherService(weatherRepo, records, snapshots, cfg.HistoryLimit, log)

	app.New(weatherService, os.Stdin, os.Stdout, log).Run(context.Background())
}
