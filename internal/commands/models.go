package commands

import "time"

// Command kinds as provisioned into the fleet firmware.
const (
	KindShutdown      = "desligar"
	KindRestart       = "reiniciar"
	KindPause         = "pausar"
	KindResume        = "retomar"
	KindEmergencyStop = "emergencia"
)

// ValidKind reports whether kind is one of the five command kinds.
func ValidKind(kind string) bool {
	switch kind {
	case KindShutdown, KindRestart, KindPause, KindResume, KindEmergencyStop:
		return true
	}
	return false
}

type Command struct {
	ID         string
	RobotID    string
	Kind       string
	IssuedBy   string
	Executed   bool
	CreatedAt  time.Time
	ExecutedAt *time.Time
}
