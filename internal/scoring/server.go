package scoring

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/verte-zerg/typesprint/internal/model"
)

// Recorder persists best scores.
type Recorder interface {
	RecordScore(ctx context.Context, mode string, wpm, accuracy int) (best int, improved bool, err error)
	Bests(ctx context.Context) ([]model.Best, error)
	Ping(ctx context.Context) error
}

// Server is the scoring service.
type Server struct {
	app      *fiber.App
	store    Recorder
	validate *validator.Validate
	metrics  *Metrics
	log      *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	log          *slog.Logger
	metrics      *Metrics
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// WithLogger sets the request and error logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(o *serverOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics shares a metrics set with the caller.
func WithMetrics(m *Metrics) ServerOption {
	return func(o *serverOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTimeouts sets read and write timeouts.
func WithTimeouts(read, write time.Duration) ServerOption {
	return func(o *serverOptions) {
		o.readTimeout = read
		o.writeTimeout = write
	}
}

// saveScoreRequest mirrors the body of POST /api/save_score.
type saveScoreRequest struct {
	WPM      *int   `json:"wpm" validate:"required,gte=0"`
	Accuracy *int   `json:"accuracy" validate:"required,gte=0,lte=100"`
	Mode     string `json:"mode" validate:"required,mode"`
}

// NewServer wires routes over store.
func NewServer(store Recorder, opts ...ServerOption) *Server {
	o := serverOptions{log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = NewMetrics()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or nil func.
	_ = validate.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
		_, err := model.ParseMode(fl.Field().String())
		return err == nil
	})

	s := &Server{
		store:    store,
		validate: validate,
		metrics:  o.metrics,
		log:      o.log,
	}
	s.app = fiber.New(fiber.Config{
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ReadTimeout:           o.readTimeout,
		WriteTimeout:          o.writeTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(s.requestLog, s.noCache)

	api := s.app.Group("/api")
	api.Post("/save_score", s.handleSaveScore)
	api.Get("/bests", s.handleBests)

	s.app.Get("/healthz", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.log.Info("scoring service listening", "addr", addr)
	return s.app.Listen(addr)
}

// Serve serves on an existing listener until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("scoring service listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// Shutdown stops accepting requests and waits up to timeout for in-flight ones.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

func (s *Server) requestLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
	}
	elapsed := time.Since(start)
	route := c.Route().Path
	s.metrics.requestDuration.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Observe(elapsed.Seconds())
	s.log.Debug("request", "ip", c.IP(), "method", c.Method(), "path", c.Path(), "status", status, "duration", elapsed)
	return err
}

func (s *Server) noCache(c *fiber.Ctx) error {
	err := c.Next()
	c.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
	c.Set(fiber.HeaderPragma, "no-cache")
	c.Set(fiber.HeaderExpires, "0")
	return err
}

func (s *Server) handleSaveScore(c *fiber.Ctx) error {
	var req saveScoreRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return s.reject(c, err)
	}
	if err := s.validate.Struct(req); err != nil {
		return s.reject(c, err)
	}

	mode, _ := model.ParseMode(req.Mode)
	token := mode.String()
	best, improved, err := s.store.RecordScore(c.UserContext(), token, *req.WPM, *req.Accuracy)
	if err != nil {
		s.metrics.storeErrors.Inc()
		s.log.Error("failed to record score", "mode", token, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to record score")
	}
	s.metrics.scoresSaved.WithLabelValues(token).Inc()
	if improved {
		s.metrics.bestsImproved.WithLabelValues(token).Inc()
	}
	s.log.Info("score saved", "mode", token, "wpm", *req.WPM, "accuracy", *req.Accuracy, "best", best)
	return c.JSON(model.ScoreResponse{MaxWPM: &best})
}

func (s *Server) reject(c *fiber.Ctx, err error) error {
	s.metrics.rejected.Inc()
	s.log.Debug("invalid score request", "error", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid Request"})
}

func (s *Server) handleBests(c *fiber.Ctx) error {
	bests, err := s.store.Bests(c.UserContext())
	if err != nil {
		s.metrics.storeErrors.Inc()
		s.log.Error("failed to list bests", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list bests")
	}
	return c.JSON(bests)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	if err := s.store.Ping(c.UserContext()); err != nil {
		s.log.Warn("health check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal error"
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
