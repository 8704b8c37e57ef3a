package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/repcycle/internal/progress"
	"github.com/claude/repcycle/internal/split"
	"github.com/claude/repcycle/internal/storage"
)

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) todayReport(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	date := h.today()

	report, err := h.progress.DayProgress(ctx, UserIDFromContext(ctx), date)
	switch {
	case errors.Is(err, progress.ErrNoActiveSplit), errors.Is(err, split.ErrInvalidDateRange):
		report = nil
	case err != nil:
		return nil, err
	}

	return jsonContents(req.Params.URI, map[string]any{
		"date":   date.Format("2006-01-02"),
		"report": report,
	})
}

func (h *handlers) activeSplitResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	row, err := h.ds.GetActiveSplitRow(ctx, UserIDFromContext(ctx))
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, row)
}

func (h *handlers) muscleCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	muscles, err := h.ds.ListMuscles(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, storage.GroupMuscles(muscles))
}
