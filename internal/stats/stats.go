// Package stats derives summary counts from a history snapshot.
package stats

import (
	"time"

	"github.com/evewatch/evewatch/internal/models"
)

const recentWindow = 24 * time.Hour

// Summarize computes totals over a snapshot of the alert history.
// Severity values are opaque grouping keys. Recent24h counts records
// whose sensor timestamp falls inside the trailing 24-hour window ending
// at now; records with a missing or unparseable sensor timestamp count
// toward Total and BySeverity but never toward Recent24h.
func Summarize(records []models.AlertRecord, now time.Time) models.AlertStats {
	out := models.AlertStats{
		Total:      len(records),
		BySeverity: make(map[string]int),
	}

	for _, rec := range records {
		out.BySeverity[rec.Severity()]++

		ts, ok := rec.SensorTime()
		if !ok {
			continue
		}
		if now.Sub(ts) < recentWindow {
			out.Recent24h++
		}
	}

	return out
}
