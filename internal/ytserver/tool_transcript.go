package ytserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
	"github.com/anatolykoptev/go_transcript/internal/engine/youtube"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
)

func registerTranscript(server *mcp.Server, svc *toolutil.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_transcript",
		Description: "Get the transcript of a YouTube video. Tries an external provider, the kkdai/youtube library, watch-page captions, the video's caption track (JSON3, XML, VTT), every listed caption language, secondary providers and a headless browser, in that order. Returns plain text, optionally with [MM:SS] timestamps, and the strategy that produced it.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.TranscriptInput) (*mcp.CallToolResult, *engine.TranscriptOutput, error) {
		if input.URL == "" && input.VideoID == "" {
			return nil, nil, errors.New("url or videoId is required")
		}
		out, err := svc.Transcript(ctx, input)
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, out, nil
	})
}

func registerSummarize(server *mcp.Server, svc *toolutil.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_summarize",
		Description: "Summarize a YouTube video from its transcript. Returns a TL;DR, key points, topics and takeaways. Settings: length (short, medium, long), format (bullets, detailed, paragraph), language, instructions. Set save=true to keep the summary for summary_list.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.SummarizeInput) (*mcp.CallToolResult, *engine.SummarizeOutput, error) {
		if input.URL == "" && input.VideoID == "" {
			return nil, nil, errors.New("url or videoId is required")
		}
		out, err := svc.Summarize(ctx, input)
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, out, nil
	})
}

func registerVideo(server *mcp.Server, svc *toolutil.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_video",
		Description: "Get YouTube video metadata: title, author, description, duration and available caption languages.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.VideoInput) (*mcp.CallToolResult, *youtube.Metadata, error) {
		in := input.URL
		if in == "" {
			in = input.VideoID
		}
		if in == "" {
			return nil, nil, errors.New("url or videoId is required")
		}
		md, err := svc.Video(ctx, in)
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, md, nil
	})
}

// toolError keeps the caller-facing message and drops internal detail.
func toolError(err error) error {
	var e *transcript.Error
	if errors.As(err, &e) {
		return fmt.Errorf("%s (%d)", e.Message, transcript.HTTPStatus(err))
	}
	return err
}
