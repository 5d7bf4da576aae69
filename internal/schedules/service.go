package schedules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sia-robotics/sia-server/internal/robots"
)

var (
	ErrScheduleNotFound     = errors.New("schedule not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrScheduleConflict     = errors.New("robot already scheduled in this period")
	ErrRobotWarehouse       = errors.New("robot does not belong to this warehouse")
	ErrInvalidPeriod        = errors.New("end must be after start")
)

type Service struct {
	pool   *pgxpool.Pool
	robots *robots.Service
}

func NewService(pool *pgxpool.Pool, robotService *robots.Service) *Service {
	return &Service{pool: pool, robots: robotService}
}

type CreateParams struct {
	RobotID     string
	WarehouseID string
	UserID      string
	Kind        string
	StartsAt    time.Time
	EndsAt      time.Time
	Description string
	Cities      []string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Schedule, error) {
	if !params.EndsAt.After(params.StartsAt) {
		return nil, ErrInvalidPeriod
	}
	kind := params.Kind
	if kind == "" {
		kind = KindFull
	}
	if !ValidKind(kind) {
		return nil, fmt.Errorf("invalid schedule kind: %s", kind)
	}

	robot, err := s.robots.GetByID(ctx, params.RobotID)
	if err != nil {
		return nil, err
	}
	if robot.WarehouseID != params.WarehouseID {
		return nil, ErrRobotWarehouse
	}

	// Overlap check against runs still waiting or underway. Cancelled and
	// finished runs never conflict.
	var conflicts int
	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM schedules
		WHERE robot_id = $1 AND deleted_at IS NULL
		  AND status IN ($2, $3)
		  AND starts_at < $5 AND ends_at > $4`,
		params.RobotID, StatusWaiting, StatusInProgress, params.StartsAt, params.EndsAt,
	).Scan(&conflicts)
	if err != nil {
		return nil, fmt.Errorf("check schedule conflicts: %w", err)
	}
	if conflicts > 0 {
		return nil, ErrScheduleConflict
	}

	cities := params.Cities
	if cities == nil {
		cities = []string{}
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO schedules (robot_id, warehouse_id, user_id, kind, starts_at, ends_at, description, cities)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, robot_id, warehouse_id, user_id, status, kind, starts_at, ends_at, description, cities,
		          created_at, updated_at, COALESCE(deleted_by::text, ''), deleted_at`,
		params.RobotID, params.WarehouseID, params.UserID, kind,
		params.StartsAt, params.EndsAt, params.Description, cities,
	)

	schedule, err := scanSchedule(row)
	if err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}
	return schedule, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Schedule, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, robot_id, warehouse_id, user_id, status, kind, starts_at, ends_at, description, cities,
		       created_at, updated_at, COALESCE(deleted_by::text, ''), deleted_at
		FROM schedules WHERE id = $1 AND deleted_at IS NULL`, id)

	schedule, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return schedule, nil
}

type ListFilter struct {
	WarehouseID string
	RobotID     string
	Status      string
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Schedule, error) {
	query := `
		SELECT id, robot_id, warehouse_id, user_id, status, kind, starts_at, ends_at, description, cities,
		       created_at, updated_at, COALESCE(deleted_by::text, ''), deleted_at
		FROM schedules WHERE deleted_at IS NULL`
	args := []any{}

	if filter.WarehouseID != "" {
		args = append(args, filter.WarehouseID)
		query += fmt.Sprintf(" AND warehouse_id = $%d", len(args))
	}
	if filter.RobotID != "" {
		args = append(args, filter.RobotID)
		query += fmt.Sprintf(" AND robot_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY starts_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var result []Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		result = append(result, *schedule)
	}
	return result, rows.Err()
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*Schedule, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("invalid schedule status: %s", status)
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE schedules SET status = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING id, robot_id, warehouse_id, user_id, status, kind, starts_at, ends_at, description, cities,
		          created_at, updated_at, COALESCE(deleted_by::text, ''), deleted_at`,
		id, status,
	)

	schedule, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("update schedule status: %w", err)
	}
	return schedule, nil
}

// Cancel soft-deletes a run, keeping who cancelled it and when.
func (s *Service) Cancel(ctx context.Context, id, userID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE schedules SET status = $3, deleted_by = $2, deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		id, userID, StatusCancelled)
	if err != nil {
		return fmt.Errorf("cancel schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

// Notify appends a notification to a schedule.
func (s *Service) Notify(ctx context.Context, scheduleID, message, kind string) (*Notification, error) {
	if kind != NotificationInfo && kind != NotificationAlert && kind != NotificationError {
		return nil, fmt.Errorf("invalid notification kind: %s", kind)
	}

	var n Notification
	err := s.pool.QueryRow(ctx, `
		INSERT INTO schedule_notifications (schedule_id, message, kind)
		VALUES ($1, $2, $3)
		RETURNING id, schedule_id, message, kind, read, created_at`,
		scheduleID, message, kind,
	).Scan(&n.ID, &n.ScheduleID, &n.Message, &n.Kind, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return &n, nil
}

func (s *Service) Notifications(ctx context.Context, scheduleID string) ([]Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, schedule_id, message, kind, read, created_at
		FROM schedule_notifications WHERE schedule_id = $1
		ORDER BY created_at DESC`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var result []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.ScheduleID, &n.Message, &n.Kind, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (s *Service) MarkNotificationRead(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE schedule_notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func scanSchedule(row pgx.Row) (*Schedule, error) {
	var sc Schedule
	var deletedAt pgtype.Timestamptz
	err := row.Scan(&sc.ID, &sc.RobotID, &sc.WarehouseID, &sc.UserID, &sc.Status, &sc.Kind,
		&sc.StartsAt, &sc.EndsAt, &sc.Description, &sc.Cities,
		&sc.CreatedAt, &sc.UpdatedAt, &sc.DeletedBy, &deletedAt)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		sc.DeletedAt = &deletedAt.Time
	}
	return &sc, nil
}
