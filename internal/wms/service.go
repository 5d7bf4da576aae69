// Package wms receives pallet notifications pushed by the external
// warehouse-management system and reconciles them against the locally
// recorded inventory. Callers authenticate with provisioned API tokens,
// not user credentials.
package wms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EntityPallet is the only entity the WMS currently notifies about.
const EntityPallet = "palete"

var (
	ErrTokenExists  = errors.New("api token already registered")
	ErrTokenInvalid = errors.New("api token invalid or expired")
)

type Token struct {
	ID        string
	Token     string
	Active    bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Checklist is one reconciliation record written per webhook delivery.
type Checklist struct {
	ID           string
	Reference    string
	Entity       string
	FoundLocally bool
	Divergence   string
	CreatedAt    time.Time
}

// VerifyResult is what the WMS gets back for one notification.
type VerifyResult struct {
	Verified   bool
	Divergence string
}

// PalletLookup answers whether a pallet code was seen during any
// inventory run.
type PalletLookup interface {
	HasPallet(ctx context.Context, palletCode string) (bool, error)
}

type Service struct {
	pool    *pgxpool.Pool
	pallets PalletLookup
}

func NewService(pool *pgxpool.Pool, pallets PalletLookup) *Service {
	return &Service{pool: pool, pallets: pallets}
}

// CreateToken registers a credential the external WMS will present on
// webhook calls. Tokens are opaque strings agreed with the WMS operator.
func (s *Service) CreateToken(ctx context.Context, token string, expiresAt time.Time) (*Token, error) {
	var t Token
	err := s.pool.QueryRow(ctx, `
		INSERT INTO wms_tokens (token, expires_at)
		VALUES ($1, $2)
		RETURNING id, token, active, expires_at, created_at`,
		token, expiresAt,
	).Scan(&t.ID, &t.Token, &t.Active, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrTokenExists
		}
		return nil, fmt.Errorf("create wms token: %w", err)
	}
	return &t, nil
}

// Authorize checks that a presented token is registered, active and not
// past its expiry.
func (s *Service) Authorize(ctx context.Context, token string) error {
	var ok bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM wms_tokens
			WHERE token = $1 AND active AND expires_at >= NOW()
		)`, token).Scan(&ok)
	if err != nil {
		return fmt.Errorf("authorize wms token: %w", err)
	}
	if !ok {
		return ErrTokenInvalid
	}
	return nil
}

// ProcessWebhook reconciles one pallet notification: the code is looked
// up in the recorded inventory and a checklist row records the outcome,
// divergence included.
func (s *Service) ProcessWebhook(ctx context.Context, palletCode string) (*VerifyResult, error) {
	found, err := s.pallets.HasPallet(ctx, palletCode)
	if err != nil {
		return nil, fmt.Errorf("lookup pallet: %w", err)
	}

	divergence := ""
	if !found {
		divergence = "palete nao encontrado no inventario local"
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO wms_checklists (reference, entity, found_locally, divergence)
		VALUES ($1, $2, $3, $4)`,
		palletCode, EntityPallet, found, divergence,
	)
	if err != nil {
		return nil, fmt.Errorf("record checklist: %w", err)
	}

	return &VerifyResult{Verified: true, Divergence: divergence}, nil
}

type ChecklistFilter struct {
	Reference string
	Entity    string
	Divergent *bool
	Limit     int
}

// ListChecklists returns reconciliation records newest first.
func (s *Service) ListChecklists(ctx context.Context, filter ChecklistFilter) ([]Checklist, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, reference, entity, found_locally, divergence, created_at
		FROM wms_checklists WHERE 1=1`
	args := []any{}

	if filter.Reference != "" {
		args = append(args, "%"+filter.Reference+"%")
		query += fmt.Sprintf(" AND reference ILIKE $%d", len(args))
	}
	if filter.Entity != "" {
		args = append(args, filter.Entity)
		query += fmt.Sprintf(" AND entity = $%d", len(args))
	}
	if filter.Divergent != nil {
		if *filter.Divergent {
			query += " AND divergence <> ''"
		} else {
			query += " AND divergence = ''"
		}
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list checklists: %w", err)
	}
	defer rows.Close()

	var result []Checklist
	for rows.Next() {
		var c Checklist
		if err := rows.Scan(&c.ID, &c.Reference, &c.Entity, &c.FoundLocally, &c.Divergence, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan checklist: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
