package repository

import (
	"context"
	"fmt"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/pkg/database"

	"go.uber.org/zap"
)

type ComboRepository interface {
	FindActive(ctx context.Context) ([]entity.Combo, error)
}

type comboRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewComboRepository(db database.PgxIface, log *zap.Logger) ComboRepository {
	return &comboRepository{
		db:  db,
		log: log.With(zap.String("repository", "combo")),
	}
}

func (r *comboRepository) FindActive(ctx context.Context) ([]entity.Combo, error) {
	query := `
		SELECT id::text, name, COALESCE(description, ''), price, is_active
		FROM combos
		WHERE is_active = true
		ORDER BY price, name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find active combos", zap.Error(err))
		return nil, fmt.Errorf("find active combos: %w", err)
	}
	defer rows.Close()

	var combos []entity.Combo
	for rows.Next() {
		var combo entity.Combo
		if err := rows.Scan(&combo.ID, &combo.Name, &combo.Description, &combo.Price, &combo.IsActive); err != nil {
			r.log.Error("Failed to scan combo row", zap.Error(err))
			return nil, fmt.Errorf("scan combo row: %w", err)
		}
		combos = append(combos, combo)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate combo rows: %w", err)
	}

	return combos, nil
}
