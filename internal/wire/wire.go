package wire

import (
	"net/http"

	"cinema-ticketing/internal/adaptor"
	"cinema-ticketing/internal/data/repository"
	"cinema-ticketing/internal/events"
	"cinema-ticketing/internal/gateway"
	"cinema-ticketing/internal/session"
	"cinema-ticketing/internal/usecase"
	"cinema-ticketing/pkg/database"
	"cinema-ticketing/pkg/metrics"
	"cinema-ticketing/pkg/middleware"
	"cinema-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Infra holds the connections opened by main. DB is only needed in postgres
// mode and Redis only for the redis session store or the catalog cache.
type Infra struct {
	DB        database.PgxIface
	Redis     redis.UniversalClient
	Publisher events.Publisher
}

type App struct {
	Router  *chi.Mux
	Metrics *metrics.Metrics
}

// Wiring builds services, handlers and routes from config.
func Wiring(infra Infra, config *utils.Config, logger *zap.Logger) *App {
	m := metrics.New()

	service := usecase.NewService(usecase.Deps{
		Backend:   newBackend(infra, config, logger),
		Sessions:  newSessionStore(infra, config, logger),
		Publisher: infra.Publisher,
		Metrics:   m,
		Location:  config.App.Location(),
		Timeout:   config.Backend.Timeout,
	}, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, m, config, logger)

	return &App{
		Router:  router,
		Metrics: m,
	}
}

// newBackend picks where catalog, customers and bookings come from. Payment
// verification always goes through the backend API since only it holds the
// VNPay secret.
func newBackend(infra Infra, config *utils.Config, logger *zap.Logger) gateway.Backend {
	api := gateway.NewAPIClient(config.Backend, logger)
	backend := gateway.Backend{
		Customers: api,
		Catalog:   api,
		Bookings:  api,
		Payments:  api,
	}

	if config.Backend.Mode == utils.BackendModePostgres && infra.DB != nil {
		pg := gateway.NewPostgresBackend(repository.NewRepository(infra.DB, logger))
		backend.Customers = pg
		backend.Catalog = pg
		backend.Bookings = pg
		logger.Info("Catalog and bookings served from postgres")
	}

	if config.Redis.CacheTTL > 0 && infra.Redis != nil {
		backend.Catalog = gateway.NewCachedCatalog(backend.Catalog, infra.Redis, config.Redis.CacheTTL, logger)
		logger.Info("Catalog cache enabled", zap.Duration("ttl", config.Redis.CacheTTL))
	}

	return backend
}

func newSessionStore(infra Infra, config *utils.Config, logger *zap.Logger) session.Store {
	if config.Redis.StoreDriver == utils.StoreDriverRedis && infra.Redis != nil {
		// A lock outlives the slowest backend call it guards.
		return session.NewRedisStore(infra.Redis, config.Redis.SessionTTL, 2*config.Backend.Timeout, logger)
	}
	return session.NewMemoryStore(config.Redis.SessionTTL)
}

func setupRouter(
	handler *adaptor.Handler,
	m *metrics.Metrics,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger, m))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireShowtime(r, handler.Showtime, config, logger)
	wirePayment(r, handler.Payment, config, logger)
	wireCounter(r, handler.Counter, config, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", m.Handler())

	return r
}
