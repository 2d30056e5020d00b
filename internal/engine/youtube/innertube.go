package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// YouTube Innertube API: low-level constants, types, and request helpers.

const (
	youtubeBaseURL       = "https://www.youtube.com"
	webClientVersion     = "2.20250222.10.00"
	androidClientVersion = "20.10.38"
	androidUA            = "com.google.android.youtube/" + androidClientVersion + " (Linux; U; Android 11) gzip"
)

// --- ANDROID client types (/player endpoint) ---

type playerRequest struct {
	VideoID        string        `json:"videoId"`
	Context        playerContext `json:"context"`
	RacyCheckOk    bool          `json:"racyCheckOk"`
	ContentCheckOk bool          `json:"contentCheckOk"`
}

type playerContext struct {
	Client playerClient `json:"client"`
}

type playerClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

// PlayerResponse is the subset of ytInitialPlayerResponse / player API JSON we read.
type PlayerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails *struct {
		VideoID          string `json:"videoId"`
		Title            string `json:"title"`
		LengthSeconds    string `json:"lengthSeconds"`
		Author           string `json:"author"`
		ShortDescription string `json:"shortDescription"`
	} `json:"videoDetails"`
}

// Tracks returns the caption tracks declared in the response.
func (p *PlayerResponse) Tracks() []Track {
	if p == nil || p.Captions == nil {
		return nil
	}
	return toTracks(p.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks)
}

// unavailableReason explains a missing captions block, if the response says why.
func (p *PlayerResponse) unavailableReason() string {
	if p.PlayabilityStatus != nil && p.PlayabilityStatus.Status != "OK" {
		return p.PlayabilityStatus.Status + ": " + p.PlayabilityStatus.Reason
	}
	return ""
}

// --- WEB client types (/next and /get_transcript endpoints) ---

type webClientCtx struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	VisitorData   string `json:"visitorData,omitempty"`
	Hl            string `json:"hl,omitempty"`
	Gl            string `json:"gl,omitempty"`
}

// generateVisitorData creates a random 11-char visitor ID for Innertube requests.
func generateVisitorData() string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	b := make([]byte, 11)
	for i := range b {
		b[i] = chars[rand.IntN(len(chars))] //nolint:gosec // non-cryptographic use
	}
	return string(b)
}

// webContext builds the standard WEB client context for Innertube payloads.
func webContext(visitorData, hl string) map[string]any {
	if hl == "" {
		hl = "en"
	}
	return map[string]any{
		"client": webClientCtx{
			ClientName:    "WEB",
			ClientVersion: webClientVersion,
			VisitorData:   visitorData,
			Hl:            hl,
			Gl:            "US",
		},
		"user":    map[string]any{"enableSafetyMode": false},
		"request": map[string]any{"useSsl": true},
	}
}

func webHeaders(visitorData string) map[string]string {
	return map[string]string{
		"accept":                   "*/*",
		"user-agent":               engine.RandomUserAgent(),
		"x-youtube-client-name":    "1",
		"x-youtube-client-version": webClientVersion,
		"x-goog-visitor-id":        visitorData,
		"origin":                   "https://www.youtube.com",
		"referer":                  "https://www.youtube.com/",
	}
}

// endpoints holds the Innertube, timedtext and watch page URLs.
type endpoints struct {
	player        string
	next          string
	getTranscript string
	timedtext     string
	watch         string
}

var defaultEndpoints = endpointsAt(youtubeBaseURL)

func endpointsAt(base string) endpoints {
	base = strings.TrimRight(base, "/")
	return endpoints{
		player:        base + "/youtubei/v1/player?prettyPrint=false",
		next:          base + "/youtubei/v1/next?prettyPrint=false",
		getTranscript: base + "/youtubei/v1/get_transcript?prettyPrint=false",
		timedtext:     base + "/api/timedtext",
		watch:         base + "/watch",
	}
}

// FetchPlayer calls the ANDROID Innertube /player endpoint.
// Works from non-blocked (residential/cloud) IP addresses.
func (c *Client) FetchPlayer(ctx context.Context, id string) (*PlayerResponse, error) {
	body, err := c.fetcher.PostJSON(ctx, c.ep.player, map[string]string{
		"user-agent":               androidUA,
		"x-youtube-client-name":    "3",
		"x-youtube-client-version": androidClientVersion,
	}, playerRequest{
		VideoID: id,
		Context: playerContext{Client: playerClient{
			ClientName:        "ANDROID",
			ClientVersion:     androidClientVersion,
			AndroidSdkVersion: 30,
			Hl:                c.lang,
			Gl:                "US",
		}},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, fmt.Errorf("android innertube: %w", err)
	}
	var pr PlayerResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return &pr, nil
}

// PlayerTracks returns the caption tracks of the ANDROID player response.
func (c *Client) PlayerTracks(ctx context.Context, id string) ([]Track, error) {
	pr, err := c.FetchPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	tracks := pr.Tracks()
	if len(tracks) == 0 {
		if reason := pr.unavailableReason(); reason != "" {
			return nil, fmt.Errorf("captions unavailable: %s", reason)
		}
		return nil, errors.New("no captions in player response")
	}
	return tracks, nil
}
