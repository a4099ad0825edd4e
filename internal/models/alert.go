package models

import (
	"fmt"
	"time"
)

// Suricata writes EVE timestamps with microsecond precision and a
// zone offset without a colon. RFC 3339 variants show up when logs
// are replayed through other tooling, so both are accepted.
var sensorTimeLayouts = []string{
	"2006-01-02T15:04:05.999999-0700",
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
}

// AlertRecord is one detected security event as stored in history.
// Raw preserves the sensor's payload verbatim; its schema belongs to
// the sensor, not this engine. StoredAt is assigned at ingestion time.
type AlertRecord struct {
	ID       string                 `json:"id"`
	StoredAt time.Time              `json:"stored_at"`
	Raw      map[string]interface{} `json:"raw"`
}

// SensorTime returns the sensor-assigned event timestamp from the raw
// payload. ok is false when the field is missing or unparseable.
func (r AlertRecord) SensorTime() (time.Time, bool) {
	v, exists := r.Raw["timestamp"]
	if !exists {
		return time.Time{}, false
	}
	s, isString := v.(string)
	if !isString {
		return time.Time{}, false
	}
	for _, layout := range sensorTimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Severity returns the raw severity value as an opaque grouping key.
// Records without a severity are grouped under "unknown".
func (r AlertRecord) Severity() string {
	alert, ok := r.Raw["alert"].(map[string]interface{})
	if !ok {
		return "unknown"
	}
	sev, exists := alert["severity"]
	if !exists || sev == nil {
		return "unknown"
	}
	// JSON numbers decode as float64; render 2.0 as "2".
	if f, isFloat := sev.(float64); isFloat && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprint(sev)
}

// Checkpoint records how far into the source log ingestion has advanced.
// It is mutated only after the corresponding records are durably stored.
type Checkpoint struct {
	Offset int64 `json:"offset"`
}
