package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinema-ticketing/internal/booking"
	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/dto/request"
	"cinema-ticketing/internal/dto/response"
	"cinema-ticketing/internal/events"
	"cinema-ticketing/internal/gateway"
	"cinema-ticketing/internal/session"
	"cinema-ticketing/internal/showtime"
	"cinema-ticketing/pkg/metrics"
	"cinema-ticketing/pkg/utils"

	"go.uber.org/zap"
)

// Operations guarded by the in-flight lock.
const (
	opLookup    = "lookup"
	opShowtimes = "showtimes"
	opCombo     = "combo"
	opSubmit    = "submit"
)

// CounterService drives the counter booking wizard. Every call names the
// session and the staff member acting on it; a session is only visible to
// the staff member who started it.
type CounterService interface {
	Start(ctx context.Context, staffID string) (*response.SessionResponse, error)
	Get(ctx context.Context, staffID, sessionID string) (*response.SessionResponse, error)
	SubmitCustomer(ctx context.Context, staffID, sessionID string, req *request.CustomerRequest) (*response.SessionResponse, error)
	ListMovies(ctx context.Context, staffID, sessionID string) ([]entity.MovieSummary, error)
	ChooseMovie(ctx context.Context, staffID, sessionID string, req *request.ChooseMovieRequest) (*response.SessionResponse, error)
	ChooseShowtime(ctx context.Context, staffID, sessionID string, req *request.ChooseShowtimeRequest) (*response.SessionResponse, error)
	ToggleSeat(ctx context.Context, staffID, sessionID string, req *request.ToggleSeatRequest) (*response.SessionResponse, error)
	ListCombos(ctx context.Context, staffID, sessionID string) ([]entity.Combo, error)
	SetCombo(ctx context.Context, staffID, sessionID string, req *request.SetComboRequest) (*response.SessionResponse, error)
	Next(ctx context.Context, staffID, sessionID string) (*response.SessionResponse, error)
	Back(ctx context.Context, staffID, sessionID string) (*response.SessionResponse, error)
	Reset(ctx context.Context, staffID, sessionID string) (*response.SessionResponse, error)
	Submit(ctx context.Context, staffID, sessionID string) (*response.SubmitResponse, error)
	Delete(ctx context.Context, staffID, sessionID string) error
}

type counterService struct {
	backend   gateway.Backend
	sessions  session.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	timeout   time.Duration
	log       *zap.Logger
}

func NewCounterService(deps Deps, log *zap.Logger) CounterService {
	return &counterService{
		backend:   deps.Backend,
		sessions:  deps.Sessions,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		timeout:   deps.Timeout,
		log:       log.With(zap.String("service", "counter")),
	}
}

func (s *counterService) Start(ctx context.Context, staffID string) (*response.SessionResponse, error) {
	sess := session.Session{
		ID:      utils.GenerateUUIDString(),
		StaffID: staffID,
		Draft:   booking.NewDraft(),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		s.log.Error("Failed to create session", zap.Error(err), zap.String("staff_id", staffID))
		return nil, fmt.Errorf("create session: %w", err)
	}

	created, err := s.load(ctx, staffID, sess.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("Counter session started",
		zap.String("session_id", sess.ID),
		zap.String("staff_id", staffID),
	)
	resp := response.SessionToResponse(created)
	return &resp, nil
}

func (s *counterService) Get(ctx context.Context, staffID, sessionID string) (*response.SessionResponse, error) {
	sess, err := s.load(ctx, staffID, sessionID)
	if err != nil {
		return nil, err
	}
	resp := response.SessionToResponse(sess)
	return &resp, nil
}

// SubmitCustomer records the phone number, looks the customer up and moves
// on to movie selection. Any lookup failure, not only "not found", makes the
// customer a walk-in; the cause is logged and counted.
func (s *counterService) SubmitCustomer(ctx context.Context, staffID, sessionID string, req *request.CustomerRequest) (*response.SessionResponse, error) {
	if _, err := s.load(ctx, staffID, sessionID); err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx, sessionID, opLookup)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := s.mutate(ctx, staffID, sessionID, func(d booking.Draft) (booking.Draft, error) {
		return d.SubmitPhone(req.Phone, req.Name)
	})
	if err != nil {
		return nil, err
	}
	generation := sess.Draft.Generation
	phone := sess.Draft.CustomerPhone

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	customer, err := s.backend.Customers.LookupCustomerByPhone(callCtx, phone)
	cancel()
	if err != nil {
		customer = nil
		cause := lookupCause(err)
		s.metrics.WalkInFallbacks.WithLabelValues(cause).Inc()
		if cause == "not_found" {
			s.log.Info("No account for phone, continuing as walk-in", zap.String("session_id", sessionID))
		} else {
			s.log.Warn("Customer lookup failed, continuing as walk-in",
				zap.String("session_id", sessionID),
				zap.String("cause", cause),
				zap.Error(err),
			)
		}
	}

	sess, err = s.applyIfCurrent(ctx, staffID, sessionID, opLookup, generation, func(d booking.Draft) (booking.Draft, error) {
		return d.ResolveCustomer(customer)
	})
	if err != nil {
		return nil, err
	}

	resp := response.SessionToResponse(sess)
	return &resp, nil
}

// ListMovies lists the movies that currently have at least one bookable
// showtime.
func (s *counterService) ListMovies(ctx context.Context, staffID, sessionID string) ([]entity.MovieSummary, error) {
	if _, err := s.load(ctx, staffID, sessionID); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	showtimes, err := s.backend.Catalog.ListShowtimes(callCtx, gateway.ShowtimeFilter{})
	if err != nil {
		s.log.Error("Failed to list showtimes for movie picker", zap.Error(err), zap.String("session_id", sessionID))
		return nil, fmt.Errorf("list showtimes: %w", err)
	}

	movies := showtime.BookableMovies(showtimes)
	if movies == nil {
		movies = []entity.MovieSummary{}
	}
	return movies, nil
}

func (s *counterService) ChooseMovie(ctx context.Context, staffID, sessionID string, req *request.ChooseMovieRequest) (*response.SessionResponse, error) {
	sess, err := s.load(ctx, staffID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Draft.Step != booking.StepSelectMovie {
		return nil, fmt.Errorf("choose movie at %s: %w", sess.Draft.Step, booking.ErrWrongStep)
	}

	release, err := s.acquire(ctx, sessionID, opShowtimes)
	if err != nil {
		return nil, err
	}
	defer release()

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	showtimes, err := s.backend.Catalog.ListShowtimes(callCtx, gateway.ShowtimeFilter{MovieID: req.MovieID})
	cancel()
	if err != nil {
		s.log.Error("Failed to list showtimes for movie",
			zap.Error(err),
			zap.String("session_id", sessionID),
			zap.String("movie_id", req.MovieID),
		)
		return nil, fmt.Errorf("list showtimes for movie %s: %w", req.MovieID, err)
	}

	movie := entity.MovieSummary{ID: req.MovieID}
	for _, st := range showtimes {
		if st.Movie != nil && st.Movie.ID == req.MovieID {
			movie = *st.Movie
			break
		}
	}

	sess, err = s.applyIfCurrent(ctx, staffID, sessionID, opShowtimes, sess.Draft.Generation, func(d booking.Draft) (booking.Draft, error) {
		return d.ChooseMovie(movie, showtimes)
	})
	if err != nil {
		return nil, err
	}

	resp := response.SessionToResponse(sess)
	return &resp, nil
}

func (s *counterService) ChooseShowtime(ctx context.Context, staffID, sessionID string, req *request.ChooseShowtimeRequest) (*response.SessionResponse, error) {
	sess, err := s.mutate(ctx, staffID, sessionID, func(d booking.Draft) (booking.Draft, error) {
		st, ok := d.FindShowtime(req.ShowtimeID)
		if !ok && d.Step == booking.StepSelectShowtime {
			return d, fmt.Errorf("showtime %s: %w", req.ShowtimeID, ErrShowtimeNotFound)
		}
		return d.ChooseShowtime(st)
	})
	if err != nil {
		return nil, err
	}

	resp := response.SessionToResponse(sess)
	return &resp, nil
}

func (s *counterService) ToggleSeat(ctx context.Context, staffID, sessionID string, req *request.ToggleSeatRequest) (*response.SessionResponse, error) {
	sess, err := s.mutate(ctx, staffID, sessionID, func(d booking.Draft) (booking.Draft, error) {
		seat := booking.SeatSelection{
			Row:    req.Row,
			Number: req.Number,
			Type:   entity.SeatType(req.Type),
			Price:  req.Price,
		}
		if seat.Type == "" {
			seat.Type = entity.SeatTypeStandard
		}
		if seat.Price == 0 && d.Showtime != nil {
			seat.Price = d.Showtime.BasePrice
		}
		return d.ToggleSeat(seat)
	})
	if err != nil {
		return nil, err
	}

	resp := response.SessionToResponse(sess)
	return &resp, nil
}

func (s *counterService) ListCombos(ctx context.Context, staffID, sessionID string) ([]entity.Combo, error) {
	if _, err := s.load(ctx, staffID, sessionID); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	combos, err := s.backend.Catalog.ListCombos(callCtx)
	if err != nil {
		s.log.Error("Failed to list combos", zap.Error(err), zap.String("session_id", sessionID))
		return nil, fmt.Errorf("list combos: %w", err)
	}
	if combos == nil {
		combos = []entity.Combo{}
	}
	return combos, nil
}

// SetCombo takes name and price from the catalog, never from the request.
func (s *counterService) SetCombo(ctx context.Context, staffID, sessionID string, req *request.SetComboRequest) (*response.SessionResponse, error) {
	sess, err := s.load(ctx, staffID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Draft.Step != booking.StepSelectCombos {
		return nil, fmt.Errorf("set combo quantity at %s: %w", sess.Draft.Step, booking.ErrWrongStep)
	}

	release, err := s.acquire(ctx, sessionID, opCombo)
	if err != nil {
		return nil, err
	}
	defer release()

	var combo entity.Combo
	if req.Quantity == 0 {
		// Removing a line must work even after the combo left the menu.
		combo = entity.Combo{ID: req.ComboID}
	} else {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		combos, err := s.backend.Catalog.ListCombos(callCtx)
		cancel()
		if err != nil {
			s.log.Error("Failed to list combos", zap.Error(err), zap.String("session_id", sessionID))
			return nil, fmt.Errorf("list combos: %w", err)
		}
		found := false
		for _, c := range combos {
			if c.ID == req.ComboID {
				combo, found = c, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("combo %s: %w", req.ComboID, ErrComboNotFound)
		}
	}

	sess, err = s.applyIfCurrent(ctx, staffID, sessionID, opCombo, sess.Draft.Generation, func(d booking.Draft) (booking.Draft, error) {
		return d.SetComboQuantity(combo, req.Quantity)
	})
	if err != nil {
		return nil, err
	}

	resp := response.SessionToResponse(sess)
	return &resp, nil
}

func (s *counterService) Next(ctx context.Context, staffID, sessionID string) (*response.SessionResponse, error) {
	return s.transition(ctx, staffID, sessionID, booking.Draft.Next)
}

func (s *counterService) Back(ctx context.Context, staffID, sessionID string) (*response.SessionResponse, error) {
	return s.transition(ctx, staffID, sessionID, booking.Draft.Back)
}

// Reset clears the draft. Results of backend calls still outstanding for the
// old draft are dropped when they arrive.
func (s *counterService) Reset(ctx context.Context, staffID, sessionID string) (*response.SessionResponse, error) {
	resp, err := s.transition(ctx, staffID, sessionID, func(d booking.Draft) (booking.Draft, error) {
		return d.Reset(), nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Counter session reset",
		zap.String("session_id", sessionID),
		zap.Uint64("generation", resp.Generation),
	)
	return resp, nil
}

// Submit sends the confirmed draft to the booking backend. On success the
// draft is reset for the next customer. When the backend reports a seat as
// taken the seat selection is dropped and the wizard returns to seat
// selection with combos kept.
func (s *counterService) Submit(ctx context.Context, staffID, sessionID string) (*response.SubmitResponse, error) {
	if _, err := s.load(ctx, staffID, sessionID); err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx, sessionID, opSubmit)
	if err != nil {
		return nil, err
	}
	defer release()

	// Reload under the lock so we submit what is stored now.
	sess, err := s.load(ctx, staffID, sessionID)
	if err != nil {
		return nil, err
	}
	draft := sess.Draft

	req, err := draft.BookingRequest(entity.BookingChannelCounter)
	if err != nil {
		return nil, err
	}
	total := draft.Total()

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	created, err := s.backend.Bookings.CreateBooking(callCtx, req)
	cancel()
	if err != nil {
		s.metrics.BookingsRejected.WithLabelValues(rejectReason(err)).Inc()

		if errors.Is(err, gateway.ErrSeatConflict) {
			s.log.Warn("Booking refused, seats taken",
				zap.String("session_id", sessionID),
				zap.String("showtime_id", req.ShowtimeID),
				zap.Error(err),
			)
			if _, applyErr := s.applyIfCurrent(ctx, staffID, sessionID, opSubmit, draft.Generation, func(d booking.Draft) (booking.Draft, error) {
				return d.RejectSeats(), nil
			}); applyErr != nil && !errors.Is(applyErr, ErrStaleResponse) {
				return nil, applyErr
			}
			return nil, fmt.Errorf("create booking: %w", err)
		}

		s.log.Error("Failed to create booking",
			zap.String("session_id", sessionID),
			zap.String("showtime_id", req.ShowtimeID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.metrics.BookingsCreated.WithLabelValues(string(entity.BookingChannelCounter)).Inc()
	s.log.Info("Counter booking created",
		zap.String("session_id", sessionID),
		zap.String("booking_id", created.ID),
		zap.String("staff_id", staffID),
		zap.Int("seats", len(req.Seats)),
		zap.Int64("total", total),
	)

	event := events.NewBookingCreated(created, req, staffID, total)
	if err := s.publisher.PublishBookingCreated(ctx, event); err != nil {
		s.metrics.EventPublishFailures.Inc()
		s.log.Error("Failed to publish booking event",
			zap.String("booking_id", created.ID),
			zap.Error(err),
		)
	}

	// The booking exists either way. If the draft moved on meanwhile it is
	// left alone.
	after, err := s.applyIfCurrent(ctx, staffID, sessionID, opSubmit, draft.Generation, func(d booking.Draft) (booking.Draft, error) {
		return d.Reset(), nil
	})
	if err != nil {
		if !errors.Is(err, ErrStaleResponse) {
			s.log.Warn("Failed to reset draft after booking", zap.String("session_id", sessionID), zap.Error(err))
		}
		if after, err = s.load(ctx, staffID, sessionID); err != nil {
			return nil, err
		}
	}

	return &response.SubmitResponse{
		Booking: created,
		Total:   total,
		Session: response.SessionToResponse(after),
	}, nil
}

func (s *counterService) Delete(ctx context.Context, staffID, sessionID string) error {
	if _, err := s.load(ctx, staffID, sessionID); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return sessionErr(sessionID, err)
	}
	s.log.Info("Counter session closed", zap.String("session_id", sessionID))
	return nil
}

// load fetches a session the staff member owns. Another staff member's
// session looks the same as a missing one.
func (s *counterService) load(ctx context.Context, staffID, sessionID string) (session.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return session.Session{}, sessionErr(sessionID, err)
	}
	if sess.StaffID != staffID {
		s.log.Warn("Session access by another staff member",
			zap.String("session_id", sessionID),
			zap.String("staff_id", staffID),
		)
		return session.Session{}, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}
	return sess, nil
}

// mutate applies fn to the stored draft atomically. A failing fn leaves the
// stored draft untouched.
func (s *counterService) mutate(ctx context.Context, staffID, sessionID string, fn func(booking.Draft) (booking.Draft, error)) (session.Session, error) {
	sess, err := s.sessions.Update(ctx, sessionID, func(cur session.Session) (session.Session, error) {
		if cur.StaffID != staffID {
			return cur, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
		}
		next, err := fn(cur.Draft)
		if err != nil {
			return cur, err
		}
		cur.Draft = next
		return cur, nil
	})
	if err != nil {
		return session.Session{}, sessionErr(sessionID, err)
	}
	return sess, nil
}

// applyIfCurrent is mutate for results of backend calls: it refuses to apply
// them once the draft generation has moved past the one the call started
// from.
func (s *counterService) applyIfCurrent(ctx context.Context, staffID, sessionID, op string, generation uint64, fn func(booking.Draft) (booking.Draft, error)) (session.Session, error) {
	sess, err := s.mutate(ctx, staffID, sessionID, func(d booking.Draft) (booking.Draft, error) {
		if d.Generation != generation {
			return d, ErrStaleResponse
		}
		return fn(d)
	})
	if errors.Is(err, ErrStaleResponse) {
		s.metrics.StaleResponses.WithLabelValues(op).Inc()
		s.log.Info("Dropped stale backend result",
			zap.String("session_id", sessionID),
			zap.String("op", op),
			zap.Uint64("generation", generation),
		)
	}
	return sess, err
}

func (s *counterService) acquire(ctx context.Context, sessionID, op string) (func(), error) {
	release, err := s.sessions.Acquire(ctx, sessionID, op)
	if errors.Is(err, session.ErrBusy) {
		return nil, fmt.Errorf("%s for session %s: %w", op, sessionID, ErrOperationInFlight)
	}
	if err != nil {
		return nil, fmt.Errorf("lock session %s: %w", sessionID, err)
	}
	return release, nil
}

func (s *counterService) transition(ctx context.Context, staffID, sessionID string, fn func(booking.Draft) (booking.Draft, error)) (*response.SessionResponse, error) {
	sess, err := s.mutate(ctx, staffID, sessionID, fn)
	if err != nil {
		return nil, err
	}
	resp := response.SessionToResponse(sess)
	return &resp, nil
}

func sessionErr(sessionID string, err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}
	return err
}

func lookupCause(err error) string {
	switch {
	case errors.Is(err, gateway.ErrNotFound):
		return "not_found"
	case gateway.IsRetryable(err):
		return "unavailable"
	case errors.Is(err, gateway.ErrRejected):
		return "rejected"
	default:
		return "error"
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, gateway.ErrSeatConflict):
		return "seat_conflict"
	case gateway.IsRetryable(err):
		return "unavailable"
	case errors.Is(err, gateway.ErrRejected):
		return "rejected"
	default:
		return "error"
	}
}
