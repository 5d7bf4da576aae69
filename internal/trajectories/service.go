// Package trajectories stores the location path a robot reports while
// running an inventory schedule, plus the points of interest it flags.
// Location codes follow the warehouse addressing grid:
// cidade:bairro:rua:predio:nivel:apto.
package trajectories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrTrajectoryNotFound = errors.New("trajectory not found")

const (
	PointStart      = "inicio"
	PointEnd        = "fim"
	PointCheckpoint = "checkpoint"
	PointObstacle   = "obstaculo"
)

func ValidPointKind(k string) bool {
	switch k {
	case PointStart, PointEnd, PointCheckpoint, PointObstacle:
		return true
	}
	return false
}

type Trajectory struct {
	ID           string
	ScheduleID   string
	LocationCode string
	Sensors      map[string]any
	RecordedAt   time.Time
}

type Point struct {
	ID           string
	TrajectoryID string
	Code         string
	Kind         string
	Payload      map[string]any
	RecordedAt   time.Time
}

type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

func (s *Service) Record(ctx context.Context, scheduleID, locationCode string, sensors map[string]any) (*Trajectory, error) {
	if locationCode == "" {
		return nil, fmt.Errorf("location code is required")
	}
	if sensors == nil {
		sensors = map[string]any{}
	}

	var tr Trajectory
	err := s.pool.QueryRow(ctx, `
		INSERT INTO trajectories (schedule_id, location_code, sensors)
		VALUES ($1, $2, $3)
		RETURNING id, schedule_id, location_code, sensors, recorded_at`,
		scheduleID, locationCode, sensors,
	).Scan(&tr.ID, &tr.ScheduleID, &tr.LocationCode, &tr.Sensors, &tr.RecordedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, fmt.Errorf("unknown schedule: %s", scheduleID)
		}
		return nil, fmt.Errorf("record trajectory: %w", err)
	}
	return &tr, nil
}

// AddPoint attaches a point of interest (RFID or QR code read) to a
// trajectory record.
func (s *Service) AddPoint(ctx context.Context, trajectoryID, code, kind string, payload map[string]any, recordedAt time.Time) (*Point, error) {
	if !ValidPointKind(kind) {
		return nil, fmt.Errorf("invalid point kind: %s", kind)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	var p Point
	err := s.pool.QueryRow(ctx, `
		INSERT INTO trajectory_points (trajectory_id, code, kind, payload, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, trajectory_id, code, kind, payload, recorded_at`,
		trajectoryID, code, kind, payload, recordedAt,
	).Scan(&p.ID, &p.TrajectoryID, &p.Code, &p.Kind, &p.Payload, &p.RecordedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrTrajectoryNotFound
		}
		return nil, fmt.Errorf("add trajectory point: %w", err)
	}
	return &p, nil
}

func (s *Service) ListBySchedule(ctx context.Context, scheduleID string) ([]Trajectory, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, schedule_id, location_code, sensors, recorded_at
		FROM trajectories WHERE schedule_id = $1
		ORDER BY recorded_at DESC`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list trajectories: %w", err)
	}
	defer rows.Close()
	return collectTrajectories(rows)
}

func (s *Service) ListByLocation(ctx context.Context, locationCode string) ([]Trajectory, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, schedule_id, location_code, sensors, recorded_at
		FROM trajectories WHERE location_code = $1
		ORDER BY recorded_at DESC`, locationCode)
	if err != nil {
		return nil, fmt.Errorf("list trajectories by location: %w", err)
	}
	defer rows.Close()
	return collectTrajectories(rows)
}

func (s *Service) Points(ctx context.Context, trajectoryID string) ([]Point, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, trajectory_id, code, kind, payload, recorded_at
		FROM trajectory_points WHERE trajectory_id = $1
		ORDER BY recorded_at`, trajectoryID)
	if err != nil {
		return nil, fmt.Errorf("list trajectory points: %w", err)
	}
	defer rows.Close()

	var result []Point
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.ID, &p.TrajectoryID, &p.Code, &p.Kind, &p.Payload, &p.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan trajectory point: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func collectTrajectories(rows pgx.Rows) ([]Trajectory, error) {
	var result []Trajectory
	for rows.Next() {
		var tr Trajectory
		if err := rows.Scan(&tr.ID, &tr.ScheduleID, &tr.LocationCode, &tr.Sensors, &tr.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan trajectory: %w", err)
		}
		result = append(result, tr)
	}
	return result, rows.Err()
}
