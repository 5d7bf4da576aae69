package warehouses

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
	ErrWarehouseNotFound = errors.New("warehouse not found")
	ErrDuplicateCode     = errors.New("warehouse code already in use")
)

type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

type CreateParams struct {
	Code               string
	Name               string
	Levels             string
	Cities             int
	DistrictsPerCity   int
	StreetsPerDistrict int
	BuildingsPerStreet int
	Barcode            string
}

func (p CreateParams) validate() error {
	if strings.TrimSpace(p.Code) == "" || strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Levels) == "" {
		return fmt.Errorf("code, name and levels are required")
	}
	if p.Cities < 0 || p.DistrictsPerCity < 0 || p.StreetsPerDistrict < 0 || p.BuildingsPerStreet < 0 {
		return fmt.Errorf("dimension counts cannot be negative")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Warehouse, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	barcode := params.Barcode
	if barcode == "" {
		barcode = fmt.Sprintf("%s-%s-%d-%d-%d-%d",
			params.Code, params.Levels, params.Cities,
			params.DistrictsPerCity, params.StreetsPerDistrict, params.BuildingsPerStreet)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO warehouses (code, name, levels, cities, districts_per_city, streets_per_district, buildings_per_street, barcode)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, code, name, levels, cities, districts_per_city, streets_per_district, buildings_per_street, barcode, active, created_at, updated_at`,
		strings.TrimSpace(params.Code), strings.TrimSpace(params.Name), strings.TrimSpace(params.Levels),
		params.Cities, params.DistrictsPerCity, params.StreetsPerDistrict, params.BuildingsPerStreet, barcode,
	)

	warehouse, err := scanWarehouse(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateCode
		}
		return nil, fmt.Errorf("create warehouse: %w", err)
	}
	return warehouse, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Warehouse, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, code, name, levels, cities, districts_per_city, streets_per_district, buildings_per_street, barcode, active, created_at, updated_at
		FROM warehouses WHERE id = $1 AND active`, id)

	warehouse, err := scanWarehouse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWarehouseNotFound
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return warehouse, nil
}

func (s *Service) List(ctx context.Context) ([]Warehouse, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, levels, cities, districts_per_city, streets_per_district, buildings_per_street, barcode, active, created_at, updated_at
		FROM warehouses WHERE active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()

	var result []Warehouse
	for rows.Next() {
		warehouse, err := scanWarehouse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		result = append(result, *warehouse)
	}
	return result, rows.Err()
}

type UpdateParams struct {
	Name               *string
	Levels             *string
	Cities             *int
	DistrictsPerCity   *int
	StreetsPerDistrict *int
	BuildingsPerStreet *int
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Warehouse, error) {
	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}
	for _, n := range []*int{params.Cities, params.DistrictsPerCity, params.StreetsPerDistrict, params.BuildingsPerStreet} {
		if n != nil && *n < 0 {
			return nil, fmt.Errorf("dimension counts cannot be negative")
		}
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE warehouses SET
			name = COALESCE($2, name),
			levels = COALESCE($3, levels),
			cities = COALESCE($4, cities),
			districts_per_city = COALESCE($5, districts_per_city),
			streets_per_district = COALESCE($6, streets_per_district),
			buildings_per_street = COALESCE($7, buildings_per_street),
			updated_at = NOW()
		WHERE id = $1 AND active
		RETURNING id, code, name, levels, cities, districts_per_city, streets_per_district, buildings_per_street, barcode, active, created_at, updated_at`,
		id, params.Name, params.Levels, params.Cities,
		params.DistrictsPerCity, params.StreetsPerDistrict, params.BuildingsPerStreet,
	)

	warehouse, err := scanWarehouse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWarehouseNotFound
		}
		return nil, fmt.Errorf("update warehouse: %w", err)
	}
	return warehouse, nil
}

// Deactivate soft-deletes a warehouse. Robots and historical records keep
// their references.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE warehouses SET active = FALSE, updated_at = NOW() WHERE id = $1 AND active`, id)
	if err != nil {
		return fmt.Errorf("deactivate warehouse: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWarehouseNotFound
	}
	return nil
}

func scanWarehouse(row pgx.Row) (*Warehouse, error) {
	var w Warehouse
	err := row.Scan(&w.ID, &w.Code, &w.Name, &w.Levels, &w.Cities, &w.DistrictsPerCity,
		&w.StreetsPerDistrict, &w.BuildingsPerStreet, &w.Barcode, &w.Active, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
