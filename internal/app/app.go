package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/fakhrymubarak/weather-tracker/internal/model"
	"github.com/fakhrymubarak/weather-tracker/internal/repository"
	"github.com/fakhrymubarak/weather-tracker/internal/service"
)

// ErrInvalidPincode signals a pincode that is not exactly 6 digits.
var ErrInvalidPincode = errors.New("invalid pincode")

var pincodePattern = regexp.MustCompile(`^\d{6}$`)

// WeatherProvider is the slice of the service the menu loop consumes.
type WeatherProvider interface {
	FetchAndRecord(ctx context.Context, pincode string) (*service.FetchResult, error)
	History(ctx context.Context, pincode string) []model.Record
}

type state int

const (
	stateMenu state = iota
	stateFetching
	stateHistory
	stateExit
)

// App drives the interactive menu over an injected reader and writer.
type App struct {
	svc WeatherProvider
	in  *bufio.Scanner
	out io.Writer
	log *zap.SugaredLogger
}

func New(svc WeatherProvider, in io.Reader, out io.Writer, log *zap.SugaredLogger) *App {
	return &App{
		svc: svc,
		in:  bufio.NewScanner(in),
		out: out,
		log: log,
	}
}

// ValidatePincode checks that a pincode is exactly 6 numeric characters.
func ValidatePincode(pincode string) error {
	if !pincodePattern.MatchString(pincode) {
		return ErrInvalidPincode
	}
	return nil
}

// Run executes the menu loop until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	st := stateMenu
	for st != stateExit {
		switch st {
		case stateMenu:
			a.printMenu()
			choice, ok := a.readLine()
			if !ok {
				return
			}
			st = nextState(choice)
			if st == stateMenu {
				fmt.Fprintln(a.out, "\nInvalid choice. Please try again.")
			}
		case stateFetching:
			a.handleFetch(ctx)
			st = stateMenu
		case stateHistory:
			a.handleHistory(ctx)
			st = stateMenu
		}
	}
	fmt.Fprintln(a.out, "\nThank you for using the Weather Information System!")
}

func nextState(choice string) state {
	switch strings.TrimSpace(choice) {
	case "1":
		return stateFetching
	case "2":
		return stateHistory
	case "3":
		return stateExit
	default:
		return stateMenu
	}
}

func (a *App) printMenu() {
	fmt.Fprintln(a.out, "\nWeather Information System")
	fmt.Fprintln(a.out, "1. Get current weather")
	fmt.Fprintln(a.out, "2. View weather history")
	fmt.Fprintln(a.out, "3. Exit")
	fmt.Fprint(a.out, "\nEnter your choice (1-3): ")
}

func (a *App) readLine() (string, bool) {
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

// handleFetch validates the pincode before any network call; an invalid
// pincode consumes no API quota.
func (a *App) handleFetch(ctx context.Context) {
	fmt.Fprint(a.out, "Enter pincode: ")
	pincode, ok := a.readLine()
	if !ok {
		return
	}

	if err := ValidatePincode(pincode); err != nil {
		a.log.Warnw("rejected pincode", "pincode", pincode)
		fmt.Fprintln(a.out, "Error: Please enter a valid 6-digit pincode")
		return
	}

	result, err := a.svc.FetchAndRecord(ctx, pincode)
	if err != nil {
		a.log.Errorw("fetch failed", "pincode", pincode, "error", err)
		fmt.Fprintf(a.out, "Error: %s\n", fetchErrorMessage(err))
		return
	}

	a.displayWeather(result.Observation)
	if result.SnapshotPath != "" {
		fmt.Fprintf(a.out, "Data saved to %s\n", result.SnapshotPath)
	}
	if result.Saved {
		fmt.Fprintln(a.out, "Weather data saved to database")
	}
}

func (a *App) handleHistory(ctx context.Context) {
	fmt.Fprint(a.out, "Enter pincode: ")
	pincode, ok := a.readLine()
	if !ok {
		return
	}

	a.displayHistory(a.svc.History(ctx, pincode))
}

func fetchErrorMessage(err error) string {
	switch {
	case errors.Is(err, repository.ErrPincodeNotFound):
		return "No weather data found for this pincode"
	case errors.Is(err, repository.ErrAPIKeyMissing):
		return "OpenWeatherMap API key is not configured"
	case errors.Is(err, repository.ErrMalformedResponse):
		return "Received an unreadable response from the weather service"
	default:
		return "Failed to fetch weather data"
	}
}

func (a *App) displayWeather(obs *model.Observation) {
	fmt.Fprintln(a.out, "\n=== Current Weather ===")
	fmt.Fprintf(a.out, "Location: %s\n", obs.Location)
	fmt.Fprintf(a.out, "Temperature: %.1f°C\n", obs.TemperatureC)
	fmt.Fprintf(a.out, "Humidity: %d%%\n", obs.Humidity)
	fmt.Fprintf(a.out, "Weather: %s\n", capitalize(obs.Description))
	fmt.Fprintf(a.out, "Wind Speed: %.1f m/s\n", obs.WindSpeed)
	fmt.Fprintln(a.out, "=====================")
}

func (a *App) displayHistory(records []model.Record) {
	if len(records) == 0 {
		fmt.Fprintln(a.out, "\nNo weather history available for this pincode")
		return
	}

	fmt.Fprintln(a.out, "\n=== Weather History ===")
	for _, rec := range records {
		fmt.Fprintf(a.out, "\nDate: %s\n", rec.RecordedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(a.out, "Temperature: %.1f°C\n", rec.TemperatureC)
		fmt.Fprintf(a.out, "Humidity: %d%%\n", rec.Humidity)
		fmt.Fprintf(a.out, "Conditions: %s\n", rec.Description)
	}
	fmt.Fprintln(a.out, "=====================")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
