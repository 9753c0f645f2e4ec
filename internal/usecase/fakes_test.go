package usecase

import (
	"context"
	"sync"
	"time"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/events"
	"cinema-ticketing/internal/gateway"
	"cinema-ticketing/internal/session"
	"cinema-ticketing/pkg/metrics"

	"go.uber.org/zap"
)

type fakeBackend struct {
	mu sync.Mutex

	customer  *entity.Customer
	lookupErr error
	// onLookup runs while the lookup is outstanding.
	onLookup func()

	showtimes    []entity.Showtime
	showtimesErr error
	filters      []gateway.ShowtimeFilter

	cinemas    []entity.CinemaSummary
	cinemasErr error

	combos    []entity.Combo
	combosErr error

	booking     *entity.Booking
	bookingErr  error
	bookingReqs []entity.NewBooking

	verification *gateway.PaymentVerification
	verifyErr    error
	verified     []map[string]string
}

func (f *fakeBackend) LookupCustomerByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	if f.onLookup != nil {
		f.onLookup()
	}
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if f.customer == nil {
		return nil, gateway.ErrNotFound
	}
	return f.customer, nil
}

func (f *fakeBackend) ListShowtimes(ctx context.Context, filter gateway.ShowtimeFilter) ([]entity.Showtime, error) {
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	f.mu.Unlock()

	if f.showtimesErr != nil {
		return nil, f.showtimesErr
	}
	if filter.MovieID == "" {
		return f.showtimes, nil
	}
	var out []entity.Showtime
	for _, st := range f.showtimes {
		if st.MovieID() == filter.MovieID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (f *fakeBackend) ListCinemas(ctx context.Context) ([]entity.CinemaSummary, error) {
	return f.cinemas, f.cinemasErr
}

func (f *fakeBackend) ListCombos(ctx context.Context) ([]entity.Combo, error) {
	return f.combos, f.combosErr
}

func (f *fakeBackend) CreateBooking(ctx context.Context, req entity.NewBooking) (*entity.Booking, error) {
	f.mu.Lock()
	f.bookingReqs = append(f.bookingReqs, req)
	f.mu.Unlock()

	if f.bookingErr != nil {
		return nil, f.bookingErr
	}
	return f.booking, nil
}

func (f *fakeBackend) VerifyPaymentCallback(ctx context.Context, params map[string]string) (*gateway.PaymentVerification, error) {
	f.verified = append(f.verified, params)
	return f.verification, f.verifyErr
}

func (f *fakeBackend) asBackend() gateway.Backend {
	return gateway.Backend{Customers: f, Catalog: f, Bookings: f, Payments: f}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.BookingCreated
	err    error
}

func (p *fakePublisher) PublishBookingCreated(ctx context.Context, event events.BookingCreated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

var (
	ict     = time.FixedZone("ICT", 7*3600)
	mai     = entity.MovieSummary{ID: "m1", Title: "Mai", DurationInMinutes: 131}
	dune    = entity.MovieSummary{ID: "m2", Title: "Dune: Part Two"}
	galaxy  = entity.CinemaSummary{ID: "c1", Name: "Galaxy Nguyễn Du"}
	cgv     = entity.CinemaSummary{ID: "c2", Name: "CGV Vincom"}
	popcorn = entity.Combo{ID: "k1", Name: "Bắp nước", Price: 65000, IsActive: true}
)

func sampleShowtimes() []entity.Showtime {
	return []entity.Showtime{
		{ID: "s1", Movie: &mai, Cinema: &galaxy, StartTime: time.Date(2026, 10, 19, 19, 0, 0, 0, ict), Status: entity.ShowtimeStatusScheduled, IsActive: true, BasePrice: 90000},
		{ID: "s2", Movie: &mai, Cinema: &cgv, StartTime: time.Date(2026, 10, 19, 14, 0, 0, 0, ict), Status: entity.ShowtimeStatusScheduled, IsActive: true, BasePrice: 80000},
		{ID: "s3", Movie: &dune, Cinema: &galaxy, StartTime: time.Date(2026, 10, 20, 10, 0, 0, 0, ict), Status: entity.ShowtimeStatusScheduled, IsActive: true, BasePrice: 95000},
		{ID: "s4", Movie: &dune, Cinema: &cgv, StartTime: time.Date(2026, 10, 19, 21, 0, 0, 0, ict), Status: entity.ShowtimeStatusCancelled, IsActive: true, BasePrice: 95000},
	}
}

type fixture struct {
	backend   *fakeBackend
	sessions  *session.MemoryStore
	publisher *fakePublisher
	metrics   *metrics.Metrics
	service   *Service
}

func newFixture() *fixture {
	f := &fixture{
		backend: &fakeBackend{
			showtimes: sampleShowtimes(),
			cinemas:   []entity.CinemaSummary{galaxy, cgv},
			combos:    []entity.Combo{popcorn},
			booking: &entity.Booking{
				ID:      "b1",
				OrderID: "BK-20261019-190000-0001",
				Status:  entity.BookingStatusPending,
			},
		},
		sessions:  session.NewMemoryStore(time.Hour),
		publisher: &fakePublisher{},
		metrics:   metrics.New(),
	}
	f.service = NewService(Deps{
		Backend:   f.backend.asBackend(),
		Sessions:  f.sessions,
		Publisher: f.publisher,
		Metrics:   f.metrics,
		Location:  ict,
		Timeout:   time.Second,
	}, zap.NewNop())
	return f
}
