package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
)

// getTranscriptRe extracts the continuation token from a raw /next JSON response.
var getTranscriptRe = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

type getTranscriptResp struct {
	Actions []struct {
		UpdateEngagementPanelAction *struct {
			Content struct {
				TranscriptRenderer struct {
					Content struct {
						TranscriptSearchPanelRenderer struct {
							Body struct {
								TranscriptSegmentListRenderer struct {
									InitialSegments []struct {
										TranscriptSegmentRenderer *struct {
											StartMs string `json:"startMs"`
											Snippet struct {
												SimpleText string `json:"simpleText"`
												Runs       []struct {
													Text string `json:"text"`
												} `json:"runs"`
											} `json:"snippet"`
										} `json:"transcriptSegmentRenderer"`
									} `json:"initialSegments"`
								} `json:"transcriptSegmentListRenderer"`
							} `json:"body"`
						} `json:"transcriptSearchPanelRenderer"`
					} `json:"content"`
				} `json:"transcriptRenderer"`
			} `json:"content"`
		} `json:"updateEngagementPanelAction"`
	} `json:"actions"`
}

func extractTranscriptToken(data []byte) (string, error) {
	m := getTranscriptRe.FindSubmatch(data)
	if len(m) < 2 {
		return "", errors.New("getTranscriptEndpoint not found in engagement panels")
	}
	// The params value in the /next JSON response is URL-encoded.
	// /get_transcript expects the decoded (raw base64) form.
	decoded, err := url.QueryUnescape(string(m[1]))
	if err != nil {
		return string(m[1]), nil
	}
	return decoded, nil
}

func parsePanelSegments(resp getTranscriptResp) []captions.Segment {
	var out []captions.Segment
	for _, action := range resp.Actions {
		if action.UpdateEngagementPanelAction == nil {
			continue
		}
		segs := action.UpdateEngagementPanelAction.Content.
			TranscriptRenderer.Content.
			TranscriptSearchPanelRenderer.Body.
			TranscriptSegmentListRenderer.InitialSegments
		for _, seg := range segs {
			r := seg.TranscriptSegmentRenderer
			if r == nil {
				continue
			}
			var sb strings.Builder
			sb.WriteString(r.Snippet.SimpleText)
			for _, run := range r.Snippet.Runs {
				sb.WriteString(run.Text)
			}
			text := captions.Normalize(sb.String())
			if text == "" {
				continue
			}
			start, _ := strconv.ParseInt(r.StartMs, 10, 64)
			out = append(out, captions.Segment{StartMs: max(start, 0), Text: text})
		}
	}
	return out
}

// PanelTranscript fetches a transcript via the engagement panel:
//  1. POST /next → engagementPanels containing the transcript continuation token
//  2. POST /get_transcript with the token → JSON segments
//
// This works from datacenter IPs where /player returns LOGIN_REQUIRED.
func (c *Client) PanelTranscript(ctx context.Context, id string) ([]captions.Segment, error) {
	visitorData := generateVisitorData()
	headers := webHeaders(visitorData)

	nextData, err := c.fetcher.PostJSON(ctx, c.ep.next, headers, map[string]any{
		"videoId": id,
		"context": webContext(visitorData, c.lang),
	})
	if err != nil {
		return nil, fmt.Errorf("/next: %w", err)
	}

	token, err := extractTranscriptToken(nextData)
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}

	data, err := c.fetcher.PostJSON(ctx, c.ep.getTranscript, headers, map[string]any{
		"params":  token,
		"context": webContext(visitorData, c.lang),
	})
	if err != nil {
		return nil, fmt.Errorf("/get_transcript: %w", err)
	}

	var resp getTranscriptResp
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	segs := parsePanelSegments(resp)
	if len(segs) == 0 {
		return nil, errors.New("empty transcript segments")
	}
	return segs, nil
}
