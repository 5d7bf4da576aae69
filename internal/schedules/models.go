package schedules

import "time"

const (
	StatusWaiting    = "aguardando"
	StatusInProgress = "em_andamento"
	StatusDone       = "concluido"
	StatusAlert      = "alerta"
	StatusProblem    = "problema"
	StatusCancelled  = "cancelado"
)

const (
	KindFull      = "completo"
	KindPartial   = "parcial"
	KindEmergency = "emergencial"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusWaiting, StatusInProgress, StatusDone, StatusAlert, StatusProblem, StatusCancelled:
		return true
	}
	return false
}

func ValidKind(k string) bool {
	switch k {
	case KindFull, KindPartial, KindEmergency:
		return true
	}
	return false
}

// Schedule is one planned inventory run for a robot inside a warehouse.
// Partial runs carry the list of cities to sweep.
type Schedule struct {
	ID          string
	RobotID     string
	WarehouseID string
	UserID      string
	Status      string
	Kind        string
	StartsAt    time.Time
	EndsAt      time.Time
	Description string
	Cities      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedBy   string
	DeletedAt   *time.Time
}

const (
	NotificationInfo  = "info"
	NotificationAlert = "alerta"
	NotificationError = "erro"
)

type Notification struct {
	ID         string
	ScheduleID string
	Message    string
	Kind       string
	Read       bool
	CreatedAt  time.Time
}
