package repository

import (
	"context"
	"fmt"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/pkg/database"

	"go.uber.org/zap"
)

type CinemaRepository interface {
	FindAll(ctx context.Context) ([]entity.CinemaSummary, error)
}

type cinemaRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCinemaRepository(db database.PgxIface, log *zap.Logger) CinemaRepository {
	return &cinemaRepository{
		db:  db,
		log: log.With(zap.String("repository", "cinema")),
	}
}

func (r *cinemaRepository) FindAll(ctx context.Context) ([]entity.CinemaSummary, error) {
	query := `
		SELECT id::text, name, COALESCE(city, ''), COALESCE(address, '')
		FROM cinemas
		WHERE deleted_at IS NULL
		ORDER BY city, name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find all cinemas", zap.Error(err))
		return nil, fmt.Errorf("find all cinemas: %w", err)
	}
	defer rows.Close()

	var cinemas []entity.CinemaSummary
	for rows.Next() {
		var cinema entity.CinemaSummary
		err := rows.Scan(
			&cinema.ID,
			&cinema.Name,
			&cinema.City,
			&cinema.Address,
		)
		if err != nil {
			r.log.Error("Failed to scan cinema row", zap.Error(err))
			return nil, fmt.Errorf("scan cinema row: %w", err)
		}
		cinemas = append(cinemas, cinema)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate cinema rows: %w", err)
	}

	return cinemas, nil
}
