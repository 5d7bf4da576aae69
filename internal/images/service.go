// Package images tracks the pictures robots capture while scanning shelves
// and the outcome of decoding them. Only URLs are stored; the image bytes
// live wherever the capture pipeline uploaded them.
package images

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrImageNotFound = errors.New("image not found")

const (
	ProcessingSuccess = "sucesso"
	ProcessingFailure = "falha"
	ProcessingNoCode  = "sem_codigo"
)

type Image struct {
	ID          string
	RobotID     string
	ImageURL    string
	DecodedCode string
	CapturedAt  time.Time
}

type ProcessingLog struct {
	ID        string
	ImageID   string
	Status    string
	Details   string
	CreatedAt time.Time
}

type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

func (s *Service) Record(ctx context.Context, robotID, imageURL, decodedCode string) (*Image, error) {
	if imageURL == "" {
		return nil, fmt.Errorf("image URL is required")
	}

	var img Image
	err := s.pool.QueryRow(ctx, `
		INSERT INTO captured_images (robot_id, image_url, decoded_code)
		VALUES ($1, $2, $3)
		RETURNING id, robot_id, image_url, decoded_code, captured_at`,
		robotID, imageURL, decodedCode,
	).Scan(&img.ID, &img.RobotID, &img.ImageURL, &img.DecodedCode, &img.CapturedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, fmt.Errorf("unknown robot: %s", robotID)
		}
		return nil, fmt.Errorf("record image: %w", err)
	}
	return &img, nil
}

func (s *Service) LogProcessing(ctx context.Context, imageID, status, details string) (*ProcessingLog, error) {
	if status != ProcessingSuccess && status != ProcessingFailure && status != ProcessingNoCode {
		return nil, fmt.Errorf("invalid processing status: %s", status)
	}

	var entry ProcessingLog
	err := s.pool.QueryRow(ctx, `
		INSERT INTO image_processing_logs (image_id, status, details)
		VALUES ($1, $2, $3)
		RETURNING id, image_id, status, details, created_at`,
		imageID, status, details,
	).Scan(&entry.ID, &entry.ImageID, &entry.Status, &entry.Details, &entry.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("log image processing: %w", err)
	}
	return &entry, nil
}

func (s *Service) ListByRobot(ctx context.Context, robotID string, limit int) ([]Image, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, robot_id, image_url, decoded_code, captured_at
		FROM captured_images WHERE robot_id = $1
		ORDER BY captured_at DESC LIMIT $2`, robotID, limit)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var result []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.RobotID, &img.ImageURL, &img.DecodedCode, &img.CapturedAt); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		result = append(result, img)
	}
	return result, rows.Err()
}
