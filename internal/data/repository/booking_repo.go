package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/pkg/database"
	"cinema-ticketing/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// uniqueViolation is the Postgres code raised by the booking_seats
// (showtime_id, seat_row, seat_number) index when two bookings race.
const uniqueViolation = "23505"

type BookingRepository interface {
	Create(ctx context.Context, req entity.NewBooking) (*entity.Booking, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
	now func() time.Time
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
		now: time.Now,
	}
}

// Create books the requested seats and combos in one transaction. The
// showtime row is locked first so concurrent bookings for the same screening
// check seat availability one after the other.
func (r *bookingRepository) Create(ctx context.Context, req entity.NewBooking) (booking *entity.Booking, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin transaction", zap.Error(err))
		return nil, fmt.Errorf("begin booking transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	var (
		basePrice int64
		status    string
		isActive  bool
	)
	err = tx.QueryRow(ctx, `
		SELECT base_price, status, is_active
		FROM showtimes
		WHERE id::text = $1
		FOR UPDATE
	`, req.ShowtimeID).Scan(&basePrice, &status, &isActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("showtime %s: %w", req.ShowtimeID, ErrShowtimeClosed)
	}
	if err != nil {
		r.log.Error("Failed to lock showtime", zap.Error(err), zap.String("showtime_id", req.ShowtimeID))
		return nil, fmt.Errorf("lock showtime %s: %w", req.ShowtimeID, err)
	}
	open := entity.Showtime{Status: entity.ShowtimeStatus(status), IsActive: isActive}
	if !open.Bookable() {
		return nil, fmt.Errorf("showtime %s is %s: %w", req.ShowtimeID, status, ErrShowtimeClosed)
	}

	taken, err := r.takenSeats(ctx, tx, req.ShowtimeID)
	if err != nil {
		return nil, err
	}
	var clashes []string
	for _, s := range req.Seats {
		if taken[seatKey(s.Row, s.Number)] {
			clashes = append(clashes, entity.Seat{Row: s.Row, Number: s.Number}.Label())
		}
	}
	if len(clashes) > 0 {
		return nil, fmt.Errorf("seats %s: %w", strings.Join(clashes, ", "), ErrSeatTaken)
	}

	now := r.now()
	booking = &entity.Booking{
		ID:            utils.GenerateUUIDString(),
		OrderID:       utils.GenerateOrderID(now),
		ShowtimeID:    req.ShowtimeID,
		Channel:       req.Channel,
		CustomerPhone: req.CustomerPhone,
		CustomerName:  req.CustomerName,
		Status:        entity.BookingStatusPending,
		CreatedAt:     now,
	}
	seats := slices.Clone(req.Seats)
	for i := range seats {
		if seats[i].Price == 0 {
			seats[i].Price = basePrice
		}
		booking.TotalPrice += seats[i].Price
	}
	for _, c := range req.Combos {
		booking.TotalPrice += c.Price * int64(c.Quantity)
	}

	var userID *string
	if req.CustomerID != "" {
		userID = &req.CustomerID
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (id, order_id, showtime_id, user_id, booking_type, customer_phone, customer_name,
		                      total_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`,
		booking.ID,
		booking.OrderID,
		booking.ShowtimeID,
		userID,
		booking.Channel,
		booking.CustomerPhone,
		booking.CustomerName,
		booking.TotalPrice,
		booking.Status,
		booking.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to insert booking", zap.Error(err), zap.String("order_id", booking.OrderID))
		return nil, fmt.Errorf("create booking %s: %w", booking.OrderID, err)
	}

	for _, s := range seats {
		_, err = tx.Exec(ctx, `
			INSERT INTO booking_seats (booking_id, showtime_id, seat_row, seat_number, seat_type, price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, booking.ID, booking.ShowtimeID, s.Row, s.Number, s.Type, s.Price)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return nil, fmt.Errorf("seat %s: %w", entity.Seat{Row: s.Row, Number: s.Number}.Label(), ErrSeatTaken)
			}
			r.log.Error("Failed to insert booking seat", zap.Error(err), zap.String("booking_id", booking.ID))
			return nil, fmt.Errorf("create booking seat %s%d: %w", s.Row, s.Number, err)
		}
	}

	for _, c := range req.Combos {
		_, err = tx.Exec(ctx, `
			INSERT INTO booking_combos (booking_id, combo_id, name, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
		`, booking.ID, c.ComboID, c.Name, c.Quantity, c.Price)
		if err != nil {
			r.log.Error("Failed to insert booking combo", zap.Error(err), zap.String("booking_id", booking.ID))
			return nil, fmt.Errorf("create booking combo %s: %w", c.ComboID, err)
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE showtimes
		SET available_seats = GREATEST(available_seats - $2, 0), updated_at = $3
		WHERE id::text = $1
	`, booking.ShowtimeID, len(req.Seats), now)
	if err != nil {
		r.log.Error("Failed to update available seats", zap.Error(err), zap.String("showtime_id", booking.ShowtimeID))
		return nil, fmt.Errorf("update available seats of showtime %s: %w", booking.ShowtimeID, err)
	}

	if err = tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit booking", zap.Error(err), zap.String("order_id", booking.OrderID))
		return nil, fmt.Errorf("commit booking %s: %w", booking.OrderID, err)
	}

	r.log.Info("Booking created",
		zap.String("booking_id", booking.ID),
		zap.String("order_id", booking.OrderID),
		zap.Int("seats", len(req.Seats)),
	)
	return booking, nil
}

func (r *bookingRepository) takenSeats(ctx context.Context, tx pgx.Tx, showtimeID string) (map[string]bool, error) {
	rows, err := tx.Query(ctx, `
		SELECT bs.seat_row, bs.seat_number
		FROM booking_seats bs
		JOIN bookings b ON b.id = bs.booking_id
		WHERE bs.showtime_id::text = $1 AND b.status IN ('pending', 'confirmed')
	`, showtimeID)
	if err != nil {
		r.log.Error("Failed to find taken seats", zap.Error(err), zap.String("showtime_id", showtimeID))
		return nil, fmt.Errorf("find taken seats of showtime %s: %w", showtimeID, err)
	}
	defer rows.Close()

	taken := make(map[string]bool)
	for rows.Next() {
		var (
			row    string
			number int
		)
		if err := rows.Scan(&row, &number); err != nil {
			r.log.Error("Failed to scan seat row", zap.Error(err))
			return nil, fmt.Errorf("scan seat row: %w", err)
		}
		taken[seatKey(row, number)] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seat rows: %w", err)
	}
	return taken, nil
}

func seatKey(row string, number int) string {
	return fmt.Sprintf("%s-%d", strings.ToUpper(row), number)
}
