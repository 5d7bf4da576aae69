package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrRegistrationExists = errors.New("registration already in use")
	ErrWrongPassword      = errors.New("current password does not match")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrSamePassword       = errors.New("new password must differ from current one")
)

type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

type CreateParams struct {
	Name         string
	Email        string
	Registration string
	Department   string
	Position     string
	Role         string
	Password     string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*User, error) {
	if !ValidRole(params.Role) {
		return nil, fmt.Errorf("invalid role: %s", params.Role)
	}
	if len(params.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var registration pgtype.Text
	if r := strings.TrimSpace(params.Registration); r != "" {
		registration = pgtype.Text{String: r, Valid: true}
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, registration, department, position, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, name, email, COALESCE(registration, ''), department, position, role, password_hash, active, created_at`,
		strings.TrimSpace(params.Name),
		strings.ToLower(strings.TrimSpace(params.Email)),
		registration,
		strings.TrimSpace(params.Department),
		strings.TrimSpace(params.Position),
		params.Role,
		hash,
	)

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "registration") {
				return nil, ErrRegistrationExists
			}
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, COALESCE(registration, ''), department, position, role, password_hash, active, created_at
		FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetByLogin resolves a user by email or, failing that, by registration number.
func (s *Service) GetByLogin(ctx context.Context, login string) (*User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, COALESCE(registration, ''), department, position, role, password_hash, active, created_at
		FROM users WHERE email = $1 OR registration = $1`,
		strings.ToLower(strings.TrimSpace(login)))

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by login: %w", err)
	}
	return user, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, email, COALESCE(registration, ''), department, position, role, password_hash, active, created_at
		FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func (s *Service) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if next == current {
		return ErrSamePassword
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !CheckPassword(current, user.PasswordHash) {
		return ErrWrongPassword
	}

	hash, err := HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.pool.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, userID); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// EnsureMaster creates a bootstrap Master account when no Master exists yet.
// Called once at startup so a fresh deployment is reachable.
func (s *Service) EnsureMaster(ctx context.Context, name, email, password string) error {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, RoleMaster).Scan(&count); err != nil {
		return fmt.Errorf("count master users: %w", err)
	}
	if count > 0 {
		return nil
	}

	_, err := s.Create(ctx, CreateParams{
		Name:     name,
		Email:    email,
		Role:     RoleMaster,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("create bootstrap master: %w", err)
	}

	slog.Info("Bootstrap Master user created", "email", email)
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Registration, &u.Department,
		&u.Position, &u.Role, &u.PasswordHash, &u.Active, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
