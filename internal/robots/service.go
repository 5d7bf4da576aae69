package robots

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrRobotNotFound       = errors.New("robot not found")
	ErrDuplicateIdentifier = errors.New("robot identifier already in use")
	ErrInvalidStatus       = errors.New("invalid robot status")
)

type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

type CreateParams struct {
	Identifier  string
	WarehouseID string
	Model       string
	Config      map[string]any
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Robot, error) {
	if strings.TrimSpace(params.Identifier) == "" || strings.TrimSpace(params.Model) == "" {
		return nil, fmt.Errorf("identifier and model are required")
	}
	config := params.Config
	if config == nil {
		config = map[string]any{}
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO robots (identifier, warehouse_id, model, config)
		VALUES ($1, $2, $3, $4)
		RETURNING id, identifier, warehouse_id, model, status, enabled, sensors, config, last_contact`,
		strings.TrimSpace(params.Identifier), params.WarehouseID, strings.TrimSpace(params.Model), config,
	)

	robot, err := scanRobot(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, ErrDuplicateIdentifier
			case "23503":
				return nil, fmt.Errorf("unknown warehouse: %s", params.WarehouseID)
			}
		}
		return nil, fmt.Errorf("create robot: %w", err)
	}
	return robot, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Robot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, identifier, warehouse_id, model, status, enabled, sensors, config, last_contact
		FROM robots WHERE id = $1`, id)
	return s.scanOne(row, "get robot")
}

func (s *Service) GetByIdentifier(ctx context.Context, identifier string) (*Robot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, identifier, warehouse_id, model, status, enabled, sensors, config, last_contact
		FROM robots WHERE identifier = $1`, identifier)
	return s.scanOne(row, "get robot by identifier")
}

// List returns all robots, optionally restricted to one warehouse.
func (s *Service) List(ctx context.Context, warehouseID string) ([]Robot, error) {
	query := `
		SELECT id, identifier, warehouse_id, model, status, enabled, sensors, config, last_contact
		FROM robots ORDER BY identifier`
	args := []any{}
	if warehouseID != "" {
		query = `
		SELECT id, identifier, warehouse_id, model, status, enabled, sensors, config, last_contact
		FROM robots WHERE warehouse_id = $1 ORDER BY identifier`
		args = append(args, warehouseID)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list robots: %w", err)
	}
	defer rows.Close()

	var result []Robot
	for rows.Next() {
		robot, err := scanRobot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan robot: %w", err)
		}
		result = append(result, *robot)
	}
	return result, rows.Err()
}

type UpdateParams struct {
	Status  *string
	Enabled *bool
	Config  map[string]any
}

// Update applies administrative changes. Robots are never deleted; fleet
// retirement is Enabled=false.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Robot, error) {
	if params.Status != nil && !ValidStatus(*params.Status) {
		return nil, ErrInvalidStatus
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE robots SET
			status = COALESCE($2, status),
			enabled = COALESCE($3, enabled),
			config = COALESCE($4, config)
		WHERE id = $1
		RETURNING id, identifier, warehouse_id, model, status, enabled, sensors, config, last_contact`,
		id, params.Status, params.Enabled, params.Config,
	)
	return s.scanOne(row, "update robot")
}

// ApplyStatus ingests one telemetry report: the sensor snapshot replaces the
// stored one, the contact timestamp is bumped, and the robot goes active only
// when it reports a battery charge above the low-battery threshold.
func (s *Service) ApplyStatus(ctx context.Context, robotID string, sensors map[string]any) (string, error) {
	if sensors == nil {
		sensors = map[string]any{}
	}

	status := StatusInactive
	if battery, ok := batteryLevel(sensors); ok && battery > LowBatteryThreshold {
		status = StatusActive
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE robots SET status = $2, sensors = $3, last_contact = NOW() WHERE id = $1`,
		robotID, status, sensors,
	)
	if err != nil {
		return "", fmt.Errorf("apply status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return "", ErrRobotNotFound
	}
	return status, nil
}

// batteryLevel pulls the battery reading out of a free-form sensor snapshot.
// JSON numbers arrive as float64; integers are tolerated for direct callers.
func batteryLevel(sensors map[string]any) (float64, bool) {
	raw, ok := sensors[BatterySensorKey]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func (s *Service) scanOne(row pgx.Row, op string) (*Robot, error) {
	robot, err := scanRobot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRobotNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return robot, nil
}

func scanRobot(row pgx.Row) (*Robot, error) {
	var r Robot
	err := row.Scan(&r.ID, &r.Identifier, &r.WarehouseID, &r.Model, &r.Status,
		&r.Enabled, &r.Sensors, &r.Config, &r.LastContact)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
