// Package ytserver registers the transcript and summary MCP tools.
package ytserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_transcript/internal/toolutil"
)

// RegisterTools registers all tools on server:
// youtube_transcript, youtube_summarize, youtube_video,
// summary_list, summary_get, summary_delete.
func RegisterTools(server *mcp.Server, svc *toolutil.Service) {
	registerTranscript(server, svc)
	registerSummarize(server, svc)
	registerVideo(server, svc)
	registerSummaryList(server, svc)
	registerSummaryGet(server, svc)
	registerSummaryDelete(server, svc)
}

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 6
