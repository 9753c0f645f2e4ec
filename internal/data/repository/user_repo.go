package repository

import (
	"context"
	"errors"
	"fmt"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type UserRepository interface {
	FindByPhone(ctx context.Context, phone string) (*entity.Customer, error)
}

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

// FindByPhone returns nil without error when no active account has the phone.
func (ur *userRepository) FindByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	query := `
		SELECT id::text, COALESCE(full_name, username), phone, COALESCE(email, '')
		FROM users
		WHERE phone = $1 AND is_active = true AND deleted_at IS NULL
		LIMIT 1
	`

	var customer entity.Customer
	err := ur.db.QueryRow(ctx, query, phone).Scan(
		&customer.ID,
		&customer.FullName,
		&customer.Phone,
		&customer.Email,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user by phone", zap.Error(err))
		return nil, fmt.Errorf("find user by phone: %w", err)
	}

	return &customer, nil
}
