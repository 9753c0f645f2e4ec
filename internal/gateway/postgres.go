package gateway

import (
	"context"
	"errors"
	"fmt"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/data/repository"
)

// PostgresBackend reads the catalog and writes bookings straight to the
// cinema database. It does not verify payments; those always go through the
// backend API.
type PostgresBackend struct {
	repo *repository.Repository
}

func NewPostgresBackend(repo *repository.Repository) *PostgresBackend {
	return &PostgresBackend{repo: repo}
}

func (p *PostgresBackend) LookupCustomerByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	customer, err := p.repo.User.FindByPhone(ctx, phone)
	if err != nil {
		return nil, unavailable(err)
	}
	if customer == nil {
		return nil, fmt.Errorf("customer with phone %s: %w", phone, ErrNotFound)
	}
	return customer, nil
}

func (p *PostgresBackend) ListShowtimes(ctx context.Context, filter ShowtimeFilter) ([]entity.Showtime, error) {
	showtimes, err := p.repo.Showtime.FindAll(ctx, repository.ShowtimeQuery{
		MovieID:  filter.MovieID,
		CinemaID: filter.CinemaID,
		Day:      filter.Date,
	})
	if err != nil {
		return nil, unavailable(err)
	}
	return showtimes, nil
}

func (p *PostgresBackend) ListCinemas(ctx context.Context) ([]entity.CinemaSummary, error) {
	cinemas, err := p.repo.Cinema.FindAll(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	return cinemas, nil
}

func (p *PostgresBackend) ListCombos(ctx context.Context) ([]entity.Combo, error) {
	combos, err := p.repo.Combo.FindActive(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	return combos, nil
}

// CreateBooking checks the showtime before opening the booking transaction,
// so a screening that was removed or closed is reported without locking.
func (p *PostgresBackend) CreateBooking(ctx context.Context, req entity.NewBooking) (*entity.Booking, error) {
	st, err := p.repo.Showtime.FindByID(ctx, req.ShowtimeID)
	if err != nil {
		return nil, unavailable(err)
	}
	if st == nil {
		return nil, fmt.Errorf("showtime %s: %w", req.ShowtimeID, ErrNotFound)
	}
	if !st.Bookable() {
		return nil, fmt.Errorf("%w: showtime %s is %s", ErrRejected, st.ID, st.Status)
	}

	booking, err := p.repo.Booking.Create(ctx, req)
	switch {
	case err == nil:
		return booking, nil
	case errors.Is(err, repository.ErrSeatTaken):
		return nil, fmt.Errorf("%w: %v", ErrSeatConflict, err)
	case errors.Is(err, repository.ErrShowtimeClosed):
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	default:
		return nil, unavailable(err)
	}
}

func unavailable(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
}
