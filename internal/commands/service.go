package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sia-robotics/sia-server/internal/metrics"
	"github.com/sia-robotics/sia-server/internal/robots"
)

var (
	ErrCommandNotFound = errors.New("command not found")
	ErrInvalidKind     = errors.New("invalid command kind")
)

// Broadcaster pushes a frame to every live connection of one robot,
// returning the number of deliveries attempted.
type Broadcaster interface {
	Broadcast(robotIdentifier string, frame any) int
}

type Service struct {
	pool        *pgxpool.Pool
	robots      *robots.Service
	broadcaster Broadcaster
}

func NewService(pool *pgxpool.Pool, robotService *robots.Service, broadcaster Broadcaster) *Service {
	return &Service{
		pool:        pool,
		robots:      robotService,
		broadcaster: broadcaster,
	}
}

// Issue persists a command for a robot and pushes it to any live session.
// Persistence is the contract; push delivery is best effort and a robot with
// no live connection picks the command up through the pending query.
func (s *Service) Issue(ctx context.Context, robotID, kind, issuerID string) (*Command, error) {
	if !ValidKind(kind) {
		return nil, ErrInvalidKind
	}

	robot, err := s.robots.GetByID(ctx, robotID)
	if err != nil {
		return nil, err
	}

	var issuedBy any
	if issuerID != "" {
		issuedBy = issuerID
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO robot_commands (robot_id, kind, issued_by)
		VALUES ($1, $2, $3)
		RETURNING id, robot_id, kind, COALESCE(issued_by::text, ''), executed, created_at, executed_at`,
		robot.ID, kind, issuedBy,
	)

	command, err := scanCommand(row)
	if err != nil {
		return nil, fmt.Errorf("create command: %w", err)
	}

	metrics.CommandsIssued.WithLabelValues(kind).Inc()

	if s.broadcaster != nil {
		delivered := s.broadcaster.Broadcast(robot.Identifier, CommandFrame{
			Command:   command.Kind,
			CommandID: command.ID,
		})
		if delivered == 0 {
			slog.Info("No live connection for robot, command left pending",
				"robot", robot.Identifier, "command_id", command.ID, "kind", kind)
		} else {
			slog.Debug("Command pushed", "robot", robot.Identifier,
				"command_id", command.ID, "deliveries", delivered)
		}
	}

	return command, nil
}

// CommandFrame is the outbound event written to a robot's channel.
type CommandFrame struct {
	Command   string `json:"command"`
	CommandID string `json:"command_id"`
}

// Pending lists unexecuted commands for a robot, oldest first.
func (s *Service) Pending(ctx context.Context, robotID string) ([]Command, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, robot_id, kind, COALESCE(issued_by::text, ''), executed, created_at, executed_at
		FROM robot_commands WHERE robot_id = $1 AND NOT executed
		ORDER BY created_at`, robotID)
	if err != nil {
		return nil, fmt.Errorf("list pending commands: %w", err)
	}
	defer rows.Close()
	return collectCommands(rows)
}

// Consume returns the robot's pending commands and marks them executed.
// Used by the poll-style pull path for robots without a live connection.
func (s *Service) Consume(ctx context.Context, robotID string) ([]Command, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE robot_commands SET executed = TRUE, executed_at = NOW()
		WHERE robot_id = $1 AND NOT executed
		RETURNING id, robot_id, kind, COALESCE(issued_by::text, ''), executed, created_at, executed_at`,
		robotID)
	if err != nil {
		return nil, fmt.Errorf("consume commands: %w", err)
	}
	defer rows.Close()
	return collectCommands(rows)
}

// MarkExecuted flips a command's executed flag. The flag transitions
// false to true exactly once; acknowledging twice is not an error for the
// robot but does not touch the row again.
func (s *Service) MarkExecuted(ctx context.Context, commandID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE robot_commands SET executed = TRUE, executed_at = NOW()
		WHERE id = $1 AND NOT executed`, commandID)
	if err != nil {
		return fmt.Errorf("mark command executed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM robot_commands WHERE id = $1)`, commandID).Scan(&exists); err != nil {
			return fmt.Errorf("check command: %w", err)
		}
		if !exists {
			return ErrCommandNotFound
		}
	}
	return nil
}

// History lists every command for a robot, newest first.
func (s *Service) History(ctx context.Context, robotID string, limit int) ([]Command, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, robot_id, kind, COALESCE(issued_by::text, ''), executed, created_at, executed_at
		FROM robot_commands WHERE robot_id = $1
		ORDER BY created_at DESC LIMIT $2`, robotID, limit)
	if err != nil {
		return nil, fmt.Errorf("list command history: %w", err)
	}
	defer rows.Close()
	return collectCommands(rows)
}

func collectCommands(rows pgx.Rows) ([]Command, error) {
	var result []Command
	for rows.Next() {
		command, err := scanCommand(rows)
		if err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		result = append(result, *command)
	}
	return result, rows.Err()
}

func scanCommand(row pgx.Row) (*Command, error) {
	var c Command
	var executedAt pgtype.Timestamptz
	err := row.Scan(&c.ID, &c.RobotID, &c.Kind, &c.IssuedBy, &c.Executed, &c.CreatedAt, &executedAt)
	if err != nil {
		return nil, err
	}
	if executedAt.Valid {
		c.ExecutedAt = &executedAt.Time
	}
	return &c, nil
}
