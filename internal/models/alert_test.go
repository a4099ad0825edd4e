package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSensorTime(t *testing.T) {
	tests := []struct {
		name   string
		raw    map[string]interface{}
		wantOK bool
	}{
		{"suricata microsecond format", map[string]interface{}{"timestamp": "2025-06-01T10:00:00.123456+0000"}, true},
		{"rfc3339", map[string]interface{}{"timestamp": "2025-06-01T10:00:00Z"}, true},
		{"no fractional seconds", map[string]interface{}{"timestamp": "2025-06-01T10:00:00+0200"}, true},
		{"missing field", map[string]interface{}{}, false},
		{"non-string value", map[string]interface{}{"timestamp": float64(1717236000)}, false},
		{"unparseable string", map[string]interface{}{"timestamp": "last tuesday"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ok := AlertRecord{Raw: tt.raw}.SensorTime()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, 2025, ts.Year())
			}
		})
	}
}

func TestSensorTime_PreservesZone(t *testing.T) {
	rec := AlertRecord{Raw: map[string]interface{}{"timestamp": "2025-06-01T10:00:00.000000+0700"}}
	ts, ok := rec.SensorTime()
	require.True(t, ok)
	assert.True(t, ts.Equal(time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)))
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]interface{}
		want string
	}{
		{
			name: "numeric severity rendered without decimals",
			raw:  map[string]interface{}{"alert": map[string]interface{}{"severity": float64(2)}},
			want: "2",
		},
		{
			name: "string severity passed through",
			raw:  map[string]interface{}{"alert": map[string]interface{}{"severity": "critical"}},
			want: "critical",
		},
		{
			name: "missing severity",
			raw:  map[string]interface{}{"alert": map[string]interface{}{"signature": "x"}},
			want: "unknown",
		},
		{
			name: "null severity",
			raw:  map[string]interface{}{"alert": map[string]interface{}{"severity": nil}},
			want: "unknown",
		},
		{
			name: "no alert object",
			raw:  map[string]interface{}{"event_type": "flow"},
			want: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AlertRecord{Raw: tt.raw}.Severity())
		})
	}
}
