package config

import (
	"flag"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var once sync.Once
var logger *zap.SugaredLogger
var loggerOnce sync.Once

// Settings is the explicit configuration handed to the components at
// construction time. Nothing outside this package reads viper directly.
type Settings struct {
	APIURL          string
	APIKey          string
	CountryCode     string
	HTTPTimeout     time.Duration
	RedisAddr       string
	CacheExpiration time.Duration
	DatabasePath    string
	SnapshotDir     string
	HistoryLimit    int
}

// isTestRun returns true if the current process is a Go test binary.
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || filepath.Ext(os.Args[0]) == ".test"
}

func initConfig() {
	once.Do(func() {
		root, err := getProjectRoot()
		if err != nil {
			GetLogger().Errorw("Error finding project root", "error", err)
		}
		viper.SetConfigType("yaml")

		viper.SetConfigName("config")
		viper.AddConfigPath(root)
		if err = viper.ReadInConfig(); err != nil {
			GetLogger().Errorw("Error reading config file", "error", err)
		}

		if isTestRun() {
			viper.SetConfigName("config_test")
			viper.AddConfigPath(root)
		}

		err = viper.MergeInConfig()
		if err != nil {
			GetLogger().Errorw("Error reading config file", "error", err)
		}
	})
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// Load assembles the Settings struct from the yaml config and environment.
func Load() Settings {
	return Settings{
		APIURL:          GetOpenWeatherApiUrl(),
		APIKey:          GetOpenWeatherMapAPIKey(),
		CountryCode:     GetCountryCode(),
		HTTPTimeout:     GetHTTPTimeout(),
		RedisAddr:       GetRedisAddr(),
		CacheExpiration: GetCacheExpiration(),
		DatabasePath:    GetDatabasePath(),
		SnapshotDir:     GetSnapshotDir(),
		HistoryLimit:    GetHistoryLimit(),
	}
}

func GetOpenWeatherApiUrl() string {
	initConfig()
	return viper.GetString("openweathermap.api_url")
}

func GetOpenWeatherMapAPIKey() string {
	_ = godotenv.Load()
	return os.Getenv("OPENWEATHERMAP_API_KEY")
}

// GetCountryCode returns the country suffix for zip lookups. Defaults to IN.
func GetCountryCode() string {
	initConfig()
	cc := viper.GetString("openweathermap.country_code")
	if cc == "" {
		cc = "IN"
	}
	return cc
}

// GetHTTPTimeout returns the outbound request timeout. Defaults to 10s.
func GetHTTPTimeout() time.Duration {
	initConfig()
	durStr := viper.GetString("openweathermap.timeout")
	if durStr == "" {
		durStr = "10s"
	}
	dur, err := time.ParseDuration(durStr)
	if err != nil {
		return 10 * time.Second
	}
	return dur
}

func GetRedisAddr() string {
	initConfig()
	return viper.GetString("redis.addr")
}

// GetCacheExpiration returns the cache TTL. Defaults to 10m.
func GetCacheExpiration() time.Duration {
	initConfig()
	durStr := viper.GetString("cache.expiration")
	if durStr == "" {
		durStr = "10m"
	}
	dur, err := time.ParseDuration(durStr)
	if err != nil {
		return 10 * time.Minute
	}
	return dur
}

func GetDatabasePath() string {
	initConfig()
	path := viper.GetString("database.path")
	if path == "" {
		path = "weather_data.db"
	}
	return path
}

func GetSnapshotDir() string {
	initConfig()
	dir := viper.GetString("snapshot.dir")
	if dir == "" {
		dir = "weather_data"
	}
	return dir
}

// GetHistoryLimit returns how many records the history view shows. Defaults to 5.
func GetHistoryLimit() int {
	initConfig()
	limit := viper.GetInt("history.limit")
	if limit <= 0 {
		limit = 5
	}
	return limit
}

// ReloadConfigForTest resets the config singleton and reloads Viper config. Use only in tests.
func ReloadConfigForTest() {
	once = sync.Once{}
	initConfig()
}

func GetLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		logger = l.Sugar()
	})
	return logger
}
