package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/repcycle/internal/progress"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RepCycle", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepCycle training split server. Query which split day applies to a date and how the logged muscle activation compares with that day's targets and optimal ranges. All data is scoped to the authenticated user."),
	)

	h := newHandlers(ds, log)

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetSplitProgress, Handler: h.getSplitProgress},
		server.ServerTool{Tool: toolGetProgressRange, Handler: h.getProgressRange},
		server.ServerTool{Tool: toolGetActiveSplit, Handler: h.getActiveSplit},
		server.ServerTool{Tool: toolGetSplitAnalysis, Handler: h.getSplitAnalysis},
		server.ServerTool{Tool: toolGetWorkoutLogs, Handler: h.getWorkoutLogs},
		server.ServerTool{Tool: toolGetDailyActivation, Handler: h.getDailyActivation},
		server.ServerTool{Tool: toolListMuscles, Handler: h.listMuscles},
		server.ServerTool{Tool: toolGetMusclePriorities, Handler: h.getMusclePriorities},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resToday, Handler: h.todayReport},
		server.ServerResource{Resource: resActiveSplit, Handler: h.activeSplitResource},
		server.ServerResource{Resource: resMuscleCatalog, Handler: h.muscleCatalog},
	)

	return s
}

// NewHTTPHandler serves s over streamable HTTP. userID resolves the caller
// from the incoming request.
func NewHTTPHandler(s *server.MCPServer, userID func(*http.Request) int) http.Handler {
	return server.NewStreamableHTTPServer(s,
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return WithUserID(ctx, userID(r))
		}),
	)
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds       DataSource
	progress *progress.Service
	log      *slog.Logger
	now      func() time.Time
}

func newHandlers(ds DataSource, log *slog.Logger) *handlers {
	return &handlers{ds: ds, progress: progress.NewService(ds), log: log, now: time.Now}
}

// --- Resource definitions ---

var resToday = mcp.NewResource(
	"repcycle://today",
	"Today",
	mcp.WithResourceDescription("Today's split day with per-muscle progress and status, or null when no split is active"),
	mcp.WithMIMEType("application/json"),
)

var resActiveSplit = mcp.NewResource(
	"repcycle://active_split",
	"Active Split",
	mcp.WithResourceDescription("The active split with its days and muscle targets"),
	mcp.WithMIMEType("application/json"),
)

var resMuscleCatalog = mcp.NewResource(
	"repcycle://muscle_catalog",
	"Muscle Catalog",
	mcp.WithResourceDescription("All muscles grouped by muscle group"),
	mcp.WithMIMEType("application/json"),
)
