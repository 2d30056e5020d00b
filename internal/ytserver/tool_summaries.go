package ytserver

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/store"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
)

// SummaryItem is a saved summary as returned by the tools.
type SummaryItem struct {
	ID         string         `json:"id"`
	VideoID    string         `json:"videoId"`
	Title      string         `json:"title"`
	Source     string         `json:"source,omitempty"`
	CreatedAt  string         `json:"createdAt"`
	Summary    engine.Summary `json:"summary"`
	Transcript string         `json:"transcript,omitempty"`
}

// SummaryListOutput is the summary_list result.
type SummaryListOutput struct {
	Summaries []SummaryItem `json:"summaries"`
	Total     int           `json:"total"`
}

func toItem(r store.Record) SummaryItem {
	return SummaryItem{
		ID:         r.ID,
		VideoID:    r.VideoID,
		Title:      r.Title,
		Source:     r.Source,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		Summary:    r.Summary,
		Transcript: r.Transcript,
	}
}

func registerSummaryList(server *mcp.Server, svc *toolutil.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "summary_list",
		Description: "List saved video summaries, newest first.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.SummaryListInput) (*mcp.CallToolResult, *SummaryListOutput, error) {
		list, err := svc.ListSummaries(ctx, input.Limit)
		if err != nil {
			return nil, nil, err
		}
		out := &SummaryListOutput{Summaries: make([]SummaryItem, 0, len(list)), Total: len(list)}
		for _, r := range list {
			out.Summaries = append(out.Summaries, toItem(r))
		}
		return nil, out, nil
	})
}

func registerSummaryGet(server *mcp.Server, svc *toolutil.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "summary_get",
		Description: "Get one saved summary, including its transcript, by id (from summary_list).",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.SummaryIDInput) (*mcp.CallToolResult, *SummaryItem, error) {
		if input.ID == "" {
			return nil, nil, errors.New("id is required")
		}
		rec, err := svc.GetSummary(ctx, input.ID)
		if err != nil {
			return nil, nil, err
		}
		item := toItem(*rec)
		return nil, &item, nil
	})
}

func registerSummaryDelete(server *mcp.Server, svc *toolutil.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "summary_delete",
		Description: "Delete a saved summary by id.",
		Annotations: &mcp.ToolAnnotations{DestructiveHint: boolPtr(true)},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.SummaryIDInput) (*mcp.CallToolResult, *engine.DeleteOutput, error) {
		if input.ID == "" {
			return nil, nil, errors.New("id is required")
		}
		if err := svc.DeleteSummary(ctx, input.ID); err != nil {
			return nil, nil, err
		}
		return nil, &engine.DeleteOutput{Success: true, ID: input.ID}, nil
	})
}

func boolPtr(b bool) *bool { return &b }
