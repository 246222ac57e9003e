package output

import (
	"io"
	"os"
	"time"

	"github.com/ajurgis/repotally/internal/history"
)

const (
	reportDateLayout     = "2006-01-02"
	reportDateTimeLayout = "2006-01-02T15:04:05"
)

func limitTop[T any](items []T, top int) []T {
	if top <= 0 || top >= len(items) {
		return items
	}
	return items[:top]
}

// shortID abbreviates a commit id for table display. Opaque non-hash ids
// shorter than the cutoff pass through unchanged.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func actorName(a *history.Actor) string {
	if a == nil {
		return ""
	}
	return a.Name
}

func actorID(a *history.Actor) string {
	if a == nil {
		return ""
	}
	return a.ID
}

// formatCSVTime renders a timestamp, or an empty cell for the zero time.
func formatCSVTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(reportDateTimeLayout)
}

func openOutputWriter(outputPath string) (io.Writer, *os.File, error) {
	if outputPath == "" {
		return os.Stdout, nil, nil
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return file, file, nil
}
