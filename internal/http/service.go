package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/vending-machine/internal/config"
	"github.com/tuanvumaihuynh/vending-machine/internal/http/apierr"
	"github.com/tuanvumaihuynh/vending-machine/internal/http/metric"
	"github.com/tuanvumaihuynh/vending-machine/internal/http/middleware"
	"github.com/tuanvumaihuynh/vending-machine/internal/http/swagger"
	"github.com/tuanvumaihuynh/vending-machine/internal/service"
	"github.com/tuanvumaihuynh/vending-machine/internal/session"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg        config.HTTP
	sessionCfg config.Session
	logger     *slog.Logger
	metrics    *metric.Metrics
	gatherer   prometheus.Gatherer

	sessions  session.Store
	health    HealthChecker
	slotSvc   service.SlotService
	creditSvc service.CreditService
	orderSvc  service.OrderService
	authSvc   service.AuthService
}

type CleanupFunc func(ctx context.Context) error

type Services struct {
	Slot   service.SlotService
	Credit service.CreditService
	Order  service.OrderService
	Auth   service.AuthService
}

type Option func(*Service)

// WithRegistry registers metrics on reg and serves them from gatherer
// instead of the prometheus default registry.
func WithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) Option {
	return func(s *Service) {
		s.metrics = metric.New(reg)
		s.gatherer = gatherer
	}
}

func New(
	cfg config.HTTP,
	sessionCfg config.Session,
	log *slog.Logger,
	sessions session.Store,
	health HealthChecker,
	svcs Services,
	opts ...Option,
) *Service {
	s := &Service{
		cfg:        cfg,
		sessionCfg: sessionCfg,
		logger:     log.With(slog.String("service", "http")),
		sessions:   sessions,
		health:     health,
		slotSvc:    svcs.Slot,
		creditSvc:  svcs.Credit,
		orderSvc:   svcs.Order,
		authSvc:    svcs.Auth,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metric.New(prometheus.DefaultRegisterer)
		s.gatherer = prometheus.DefaultGatherer
	}

	return s
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	handler, err := s.Handler()
	if err != nil {
		return nil, err
	}

	return s.RunWithServer(ctx, handler)
}

// Handler builds the router with every middleware and route registered.
func (s *Service) Handler() (http.Handler, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		if err := swagger.Register(r); err != nil {
			return nil, fmt.Errorf("register swagger: %w", err)
		}
	}

	s.RegisterHandlers(r)

	return r, nil
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", s.cfg.Port, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server stopped", slog.Any("error", err))
		}
	}()

	s.logger.InfoContext(ctx, "http server listening", slog.String("addr", ln.Addr().String()))

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.AllowedOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	slots := newSlotHandler(s.slotSvc)
	buyer := newBuyerHandler(s.creditSvc, s.orderSvc, s.metrics)
	auth := newAuthHandler(s.sessionCfg, s.authSvc, s.sessions, s.logger)
	health := newHealthHandler(s.health)

	r.Get("/slots/", s.handle(slots.ListSlots))
	r.Get("/slots/matrix", s.handle(slots.GetSlotMatrix))
	r.Get("/slots/{id}", s.handle(slots.GetSlot))

	// Logout reads the cookie itself so it still succeeds when the session
	// store is down.
	r.Post("/logout/", s.handle(auth.Logout))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(s.sessions, s.sessionCfg.CookieName, s.handleResponseError))

		r.Post("/login/", s.handle(auth.Login))
		r.Get("/profile/", s.handle(auth.Profile))

		r.Post("/add-credit/", s.handle(buyer.AddCredit))
		r.Post("/refund/", s.handle(buyer.Refund))
		r.Post("/order/", s.handle(buyer.PlaceOrder))
	})

	r.Get("/healthcheck/", s.handle(health.HealthCheck))

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Service) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.handleResponseError(w, r, err)
		}
	}
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	w.Write(body)
	return nil
}
