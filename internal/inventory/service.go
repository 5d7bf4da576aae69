// Package inventory stores the pallet readings collected during inventory
// runs and derives per-warehouse occupancy statistics from them.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Item struct {
	ID          string
	ScheduleID  string
	PalletCode  string
	AddressCode string
	RecordedAt  time.Time
}

// Slice is one bucket of the occupancy breakdown.
type Slice struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Stats is the occupancy summary for one warehouse.
type Stats struct {
	WarehouseID string           `json:"warehouse_id"`
	Total       int              `json:"total"`
	ByCity      map[string]Slice `json:"by_city"`
	ByDistrict  map[string]Slice `json:"by_district"`
	ComputedAt  time.Time        `json:"computed_at"`
}

type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

func (s *Service) Record(ctx context.Context, scheduleID, palletCode, addressCode string) (*Item, error) {
	if palletCode == "" || addressCode == "" {
		return nil, fmt.Errorf("pallet code and address code are required")
	}

	var item Item
	err := s.pool.QueryRow(ctx, `
		INSERT INTO inventory_items (schedule_id, pallet_code, address_code)
		VALUES ($1, $2, $3)
		RETURNING id, schedule_id, pallet_code, address_code, recorded_at`,
		scheduleID, palletCode, addressCode,
	).Scan(&item.ID, &item.ScheduleID, &item.PalletCode, &item.AddressCode, &item.RecordedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, fmt.Errorf("unknown schedule: %s", scheduleID)
		}
		return nil, fmt.Errorf("record inventory item: %w", err)
	}
	return &item, nil
}

func (s *Service) ListBySchedule(ctx context.Context, scheduleID string) ([]Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, schedule_id, pallet_code, address_code, recorded_at
		FROM inventory_items WHERE schedule_id = $1
		ORDER BY recorded_at DESC`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()

	var result []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.ScheduleID, &item.PalletCode, &item.AddressCode, &item.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

// HasPallet reports whether a pallet code was recorded during any run.
func (s *Service) HasPallet(ctx context.Context, palletCode string) (bool, error) {
	var found bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM inventory_items WHERE pallet_code = $1)`,
		palletCode).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("lookup pallet: %w", err)
	}
	return found, nil
}

// WarehouseStats computes the occupancy breakdown for a warehouse from all
// item readings recorded against its schedules.
func (s *Service) WarehouseStats(ctx context.Context, warehouseID string) (*Stats, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT i.address_code
		FROM inventory_items i
		JOIN schedules sc ON sc.id = i.schedule_id
		WHERE sc.warehouse_id = $1`, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("load inventory addresses: %w", err)
	}
	defer rows.Close()

	var addresses []string
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		addresses = append(addresses, addr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats := buildStats(warehouseID, addresses)
	return stats, nil
}

// buildStats aggregates address codes (cidade:bairro:rua:predio:nivel:apto)
// into per-city and per-district counts with percentages of the total.
func buildStats(warehouseID string, addresses []string) *Stats {
	stats := &Stats{
		WarehouseID: warehouseID,
		Total:       len(addresses),
		ByCity:      make(map[string]Slice),
		ByDistrict:  make(map[string]Slice),
	}

	cityCounts := make(map[string]int)
	districtCounts := make(map[string]int)
	for _, addr := range addresses {
		city, district := splitAddress(addr)
		cityCounts[city]++
		districtCounts[district]++
	}

	for city, count := range cityCounts {
		stats.ByCity[city] = Slice{Count: count, Percentage: percentage(count, stats.Total)}
	}
	for district, count := range districtCounts {
		stats.ByDistrict[district] = Slice{Count: count, Percentage: percentage(count, stats.Total)}
	}

	stats.ComputedAt = time.Now()
	return stats
}

// splitAddress extracts the city and the city-qualified district from an
// address code. Malformed codes fall into the "desconhecido" bucket.
func splitAddress(addr string) (city, district string) {
	parts := strings.Split(addr, ":")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "desconhecido", "desconhecido"
	}
	return parts[0], parts[0] + ":" + parts[1]
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
