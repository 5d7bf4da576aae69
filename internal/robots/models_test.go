package robots

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusActive, StatusInactive, StatusOnMission, StatusMaintenance, StatusError} {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus("online"))
	assert.False(t, ValidStatus(""))
}

func TestBatteryLevel(t *testing.T) {
	tests := []struct {
		name    string
		sensors map[string]any
		want    float64
		wantOK  bool
	}{
		{"json number", map[string]any{"bateria": 42.5}, 42.5, true},
		{"integer", map[string]any{"bateria": 10}, 10, true},
		{"absent", map[string]any{"temperatura": 21.0}, 0, false},
		{"non-numeric", map[string]any{"bateria": "full"}, 0, false},
		{"empty snapshot", map[string]any{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := batteryLevel(tt.sensors)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
