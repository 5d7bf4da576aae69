// Package errorlog records robot and system faults. Entries are append-only
// and never mutated after creation.
package errorlog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Entry struct {
	ID        string
	RobotID   string
	Origin    string
	Message   string
	CreatedAt time.Time
}

type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Append records one error. robotID may be empty for faults with no robot
// attached.
func (s *Service) Append(ctx context.Context, robotID, origin, message string) (*Entry, error) {
	if origin == "" {
		origin = "desconhecida"
	}

	var robot any
	if robotID != "" {
		robot = robotID
	}

	var e Entry
	err := s.pool.QueryRow(ctx, `
		INSERT INTO error_logs (robot_id, origin, message)
		VALUES ($1, $2, $3)
		RETURNING id, COALESCE(robot_id::text, ''), origin, message, created_at`,
		robot, origin, message,
	).Scan(&e.ID, &e.RobotID, &e.Origin, &e.Message, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("append error log: %w", err)
	}
	return &e, nil
}

type Filter struct {
	RobotID string
	From    time.Time
	To      time.Time
	Limit   int
}

// List returns entries newest first, filtered by robot and time range.
func (s *Service) List(ctx context.Context, filter Filter) ([]Entry, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 200
	}

	query := `
		SELECT id, COALESCE(robot_id::text, ''), origin, message, created_at
		FROM error_logs WHERE 1=1`
	args := []any{}

	if filter.RobotID != "" {
		args = append(args, filter.RobotID)
		query += fmt.Sprintf(" AND robot_id = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list error logs: %w", err)
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.RobotID, &e.Origin, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error log: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
