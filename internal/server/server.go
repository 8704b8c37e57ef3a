package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/claude/repcycle/internal/ingest"
	"github.com/claude/repcycle/internal/metrics"
	"github.com/claude/repcycle/internal/models"
	"github.com/claude/repcycle/internal/progress"
	"github.com/claude/repcycle/internal/storage"
)

// Store is the storage the handlers use. *storage.DB satisfies it.
type Store interface {
	progress.Store

	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)

	ListMuscles(ctx context.Context) ([]models.MuscleRow, error)
	ListPriorities(ctx context.Context, userID int) ([]models.MusclePriorityRow, error)
	UpsertPriorities(ctx context.Context, userID int, prios map[string]int) error

	ListWorkouts(ctx context.Context, userID int) ([]models.WorkoutRow, error)
	GetWorkout(ctx context.Context, id int64, userID int) (*models.WorkoutRow, error)
	CreateWorkout(ctx context.Context, userID int, in models.WorkoutInput) (*models.WorkoutRow, error)
	UpdateWorkout(ctx context.Context, id int64, userID int, in models.WorkoutInput) (*models.WorkoutRow, error)
	DeleteWorkout(ctx context.Context, id int64, userID int) error
	GetWorkoutStats(ctx context.Context, userID int) (*storage.WorkoutStats, error)

	QueryWorkoutLogs(ctx context.Context, userID int, start, end time.Time, workoutID int64) ([]models.WorkoutLogRow, error)
	CreateWorkoutLog(ctx context.Context, userID int, in models.WorkoutLogInput, source string) (*models.WorkoutLogRow, error)
	DeleteWorkoutLog(ctx context.Context, id uuid.UUID, userID int) error
	RecentlyLoggedWorkouts(ctx context.Context, userID int, since time.Time, limit int) ([]storage.RecentWorkout, error)
	DailyActivation(ctx context.Context, userID int, start, end time.Time) ([]storage.DayActivation, error)

	ListSplits(ctx context.Context, userID int) ([]models.SplitRow, error)
	GetSplitRow(ctx context.Context, id int64, userID int) (*models.SplitRow, error)
	GetActiveSplitRow(ctx context.Context, userID int) (*models.SplitRow, error)
	CreateSplit(ctx context.Context, userID int, in models.SplitInput) (*models.SplitRow, error)
	UpdateSplit(ctx context.Context, id int64, userID int, in models.SplitInput) (*models.SplitRow, error)
	DeleteSplit(ctx context.Context, id int64, userID int) error
	ActivateSplit(ctx context.Context, id int64, userID int, startDate time.Time) (*models.SplitRow, error)

	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
}

var _ Store = (*storage.DB)(nil)

// Options configures a Server.
type Options struct {
	APIKey   string
	// Metrics and Gatherer are optional; /metrics is served when Gatherer is set.
	Metrics  *metrics.Manager
	Gatherer prometheus.Gatherer
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       Store
	progress *progress.Service
	alpha    ingest.Provider
	log      *slog.Logger
	apiKey   string
	metrics  *metrics.Manager
	whois    WhoIsClient
	router   chi.Router

	// now is replaced in tests.
	now func() time.Time
}

// New creates a new Server with all routes configured.
func New(db Store, alphaProvider ingest.Provider, opts Options, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		progress: progress.NewService(db),
		alpha:    alphaProvider,
		log:      log,
		apiKey:   opts.APIKey,
		metrics:  opts.Metrics,
		router:   chi.NewRouter(),
		now:      time.Now,
	}
	s.routes(opts.Gatherer)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches request identity from the dev user to Tailscale WhoIs.
func (s *Server) SetTailscale(lc WhoIsClient) {
	s.whois = lc
}

// SetMCP mounts an MCP streamable HTTP handler at /mcp behind request identity.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Group(func(r chi.Router) {
		r.Use(s.identity)
		r.Handle("/mcp", h)
	})
}

func (s *Server) routes(gatherer prometheus.Gatherer) {
	s.router.Use(PanicRecovery(s.log, s.metrics))
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestMetrics(s.metrics))
	s.router.Use(CORS)

	if gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Ingest endpoints (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Use(s.identity)
		r.Post("/alpha", s.handleAlphaIngest)
	})

	// App endpoints (no API key; tsnet handles access)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identity)

		r.Get("/me", s.handleMe)
		r.Get("/muscles", s.handleListMuscles)
		r.Get("/muscle-priorities", s.handleListPriorities)
		r.Post("/muscle-priorities", s.handleUpsertPriorities)

		r.Get("/workouts", s.handleListWorkouts)
		r.Post("/workouts", s.handleCreateWorkout)
		r.Get("/workouts/logs", s.handleQueryLogs)
		r.Post("/workouts/logs", s.handleCreateLog)
		r.Delete("/workouts/logs/{logID}", s.handleDeleteLog)
		r.Get("/workouts/recent", s.handleRecentWorkouts)
		r.Get("/workouts/stats", s.handleWorkoutStats)
		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Put("/workouts/{id}", s.handleUpdateWorkout)
		r.Delete("/workouts/{id}", s.handleDeleteWorkout)

		r.Get("/splits", s.handleListSplits)
		r.Post("/splits", s.handleCreateSplit)
		r.Get("/splits/active", s.handleActiveSplit)
		r.Get("/splits/{id}", s.handleGetSplit)
		r.Put("/splits/{id}", s.handleUpdateSplit)
		r.Delete("/splits/{id}", s.handleDeleteSplit)
		r.Post("/splits/{id}/activate", s.handleActivateSplit)

		r.Get("/progress", s.handleProgress)
		r.Get("/progress/range", s.handleProgressRange)
		r.Get("/activation/daily", s.handleDailyActivation)

		r.Get("/import-logs", s.handleImportLogs)
	})
}
