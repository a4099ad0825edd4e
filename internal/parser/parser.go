// Package parser decodes newly read source-log bytes into alert records.
package parser

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/evewatch/evewatch/internal/models"
)

// ParseLines decodes a batch of newline-delimited JSON documents into
// alert records. Each line is decoded independently: a line that is not
// valid JSON is counted as malformed and skipped, and lines that decode
// but carry no "alert" object (flow, dns, stats, ...) are dropped
// silently. Neither aborts the rest of the batch.
//
// StoredAt is now for every record in the batch; sub-batch ordering is
// carried by slice position.
func ParseLines(data []byte, now time.Time) ([]models.AlertRecord, int) {
	var records []models.AlertRecord
	malformed := 0

	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var raw map[string]interface{}
		if err := json.Unmarshal(line, &raw); err != nil {
			malformed++
			continue
		}

		if !isAlert(raw) {
			continue
		}

		records = append(records, models.AlertRecord{
			ID:       uuid.New().String(),
			StoredAt: now,
			Raw:      raw,
		})
	}

	return records, malformed
}

// isAlert reports whether the decoded line carries an alert
// classification object.
func isAlert(raw map[string]interface{}) bool {
	v, ok := raw["alert"]
	return ok && v != nil
}
