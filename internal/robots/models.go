package robots

import "time"

// Robot status values as reported on the wire. The fleet firmware predates
// this server, so the Portuguese identifiers are kept for compatibility.
const (
	StatusActive      = "ativo"
	StatusInactive    = "inativo"
	StatusOnMission   = "em_missao"
	StatusMaintenance = "manutencao"
	StatusError       = "erro"
)

// ValidStatus reports whether s is one of the five robot statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusOnMission, StatusMaintenance, StatusError:
		return true
	}
	return false
}

// LowBatteryThreshold is the battery percentage at or below which a
// reporting robot is considered inactive.
const LowBatteryThreshold = 5.0

// BatterySensorKey is the sensor snapshot field carrying battery charge.
const BatterySensorKey = "bateria"

type Robot struct {
	ID          string
	Identifier  string
	WarehouseID string
	Model       string
	Status      string
	Enabled     bool
	Sensors     map[string]any
	Config      map[string]any
	LastContact time.Time
}
