package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Writer archives one raw API payload per fetch as a pretty-printed JSON
// file, independent of the record store.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write stores raw under <dir>/weather_<pincode>_<YYYYMMDD_HHMMSS>.json and
// returns the written path. The directory is created on first use.
func (w *Writer) Write(pincode string, raw []byte, now time.Time) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "    "); err != nil {
		return "", fmt.Errorf("snapshot payload is not valid JSON: %w", err)
	}

	name := fmt.Sprintf("weather_%s_%s.json", pincode, now.Format("20060102_150405"))
	path := filepath.Join(w.dir, name)

	if err := os.WriteFile(path, pretty.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return path, nil
}
