package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ShowtimeQuery narrows FindAll. Empty fields do not filter. Day selects the
// calendar day containing Day in Day's own location.
type ShowtimeQuery struct {
	MovieID  string
	CinemaID string
	Day      time.Time
}

type ShowtimeRepository interface {
	FindAll(ctx context.Context, q ShowtimeQuery) ([]entity.Showtime, error)
	FindByID(ctx context.Context, id string) (*entity.Showtime, error)
}

type showtimeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewShowtimeRepository(db database.PgxIface, log *zap.Logger) ShowtimeRepository {
	return &showtimeRepository{
		db:  db,
		log: log.With(zap.String("repository", "showtime")),
	}
}

const showtimeColumns = `
		s.id::text, s.start_time, s.status, s.is_active, s.available_seats, s.base_price,
		r.name, r.capacity,
		m.id::text, m.title, m.duration_minutes, COALESCE(m.genres, '{}'), COALESCE(m.poster_url, ''), COALESCE(m.age_rating, ''),
		c.id::text, c.name, COALESCE(c.city, ''), COALESCE(c.address, '')
	FROM showtimes s
	JOIN rooms r   ON r.id = s.room_id
	JOIN cinemas c ON c.id = r.cinema_id
	JOIN movies m  ON m.id = s.movie_id
`

func (r *showtimeRepository) FindAll(ctx context.Context, q ShowtimeQuery) ([]entity.Showtime, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT")
	queryBuilder.WriteString(showtimeColumns)
	queryBuilder.WriteString(" WHERE m.deleted_at IS NULL AND c.deleted_at IS NULL")

	args := []any{}
	argCount := 1

	if q.MovieID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND m.id::text = $%d", argCount))
		args = append(args, q.MovieID)
		argCount++
	}
	if q.CinemaID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.id::text = $%d", argCount))
		args = append(args, q.CinemaID)
		argCount++
	}
	if !q.Day.IsZero() {
		start := time.Date(q.Day.Year(), q.Day.Month(), q.Day.Day(), 0, 0, 0, 0, q.Day.Location())
		queryBuilder.WriteString(fmt.Sprintf(" AND s.start_time >= $%d AND s.start_time < $%d", argCount, argCount+1))
		args = append(args, start, start.AddDate(0, 0, 1))
	}

	queryBuilder.WriteString(" ORDER BY s.start_time, s.id")

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		r.log.Error("Failed to find showtimes",
			zap.Error(err),
			zap.String("movie_id", q.MovieID),
			zap.String("cinema_id", q.CinemaID),
		)
		return nil, fmt.Errorf("find showtimes: %w", err)
	}
	defer rows.Close()

	var showtimes []entity.Showtime
	for rows.Next() {
		st, err := scanShowtime(rows)
		if err != nil {
			r.log.Error("Failed to scan showtime row", zap.Error(err))
			return nil, fmt.Errorf("scan showtime row: %w", err)
		}
		showtimes = append(showtimes, st)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate showtime rows: %w", err)
	}

	return showtimes, nil
}

func (r *showtimeRepository) FindByID(ctx context.Context, id string) (*entity.Showtime, error) {
	query := "SELECT" + showtimeColumns + " WHERE s.id::text = $1"

	st, err := scanShowtime(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find showtime by ID",
			zap.Error(err),
			zap.String("showtime_id", id),
		)
		return nil, fmt.Errorf("find showtime by ID %s: %w", id, err)
	}

	return &st, nil
}

func scanShowtime(row pgx.Row) (entity.Showtime, error) {
	var (
		st     entity.Showtime
		movie  entity.MovieSummary
		cinema entity.CinemaSummary
		status string
	)
	err := row.Scan(
		&st.ID,
		&st.StartTime,
		&status,
		&st.IsActive,
		&st.AvailableSeatsCount,
		&st.BasePrice,
		&st.Room.Name,
		&st.Room.Capacity,
		&movie.ID,
		&movie.Title,
		&movie.DurationInMinutes,
		&movie.Genres,
		&movie.PosterURL,
		&movie.AgeRating,
		&cinema.ID,
		&cinema.Name,
		&cinema.City,
		&cinema.Address,
	)
	if err != nil {
		return entity.Showtime{}, err
	}

	st.Status = entity.ShowtimeStatus(status)
	st.Movie = &movie
	st.Cinema = &cinema
	return st, nil
}
