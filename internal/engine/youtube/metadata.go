package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	ytlib "github.com/kkdai/youtube/v2"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
)

// Metadata is the descriptive information shown next to a summary.
type Metadata struct {
	VideoID         string   `json:"videoId"`
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	Author          string   `json:"author,omitempty"`
	Description     string   `json:"description,omitempty"`
	DurationSeconds int      `json:"durationSeconds"`
	Duration        string   `json:"duration"`
	Languages       []string `json:"languages,omitempty"`
}

// MetadataProvider returns title/duration/description for a video id.
type MetadataProvider interface {
	Metadata(ctx context.Context, id string) (*Metadata, error)
}

// Library wraps github.com/kkdai/youtube for metadata and transcript lookups.
type Library struct {
	yt       *ytlib.Client
	fallback *Client
}

// NewLibrary creates a Library. fallback, when non-nil, serves metadata from the
// Innertube player response if the library call fails.
func NewLibrary(httpClient *http.Client, fallback *Client) *Library {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Library{yt: &ytlib.Client{HTTPClient: httpClient}, fallback: fallback}
}

// Metadata implements MetadataProvider.
func (l *Library) Metadata(ctx context.Context, id string) (*Metadata, error) {
	engine.IncrMetadataRequest()
	video, err := l.yt.GetVideoContext(ctx, id)
	if err == nil {
		md := &Metadata{
			VideoID:         id,
			URL:             WatchURL(id),
			Title:           video.Title,
			Author:          video.Author,
			Description:     video.Description,
			DurationSeconds: int(video.Duration.Seconds()),
		}
		for _, t := range video.CaptionTracks {
			md.Languages = append(md.Languages, t.LanguageCode)
		}
		md.Duration = FormatDuration(md.DurationSeconds)
		return md, nil
	}
	if l.fallback == nil {
		return nil, fmt.Errorf("metadata %s: %w", id, err)
	}
	pr, perr := l.fallback.FetchPlayer(ctx, id)
	if perr != nil || pr.VideoDetails == nil {
		return nil, fmt.Errorf("metadata %s: %w", id, errors.Join(err, perr))
	}
	secs, _ := strconv.Atoi(pr.VideoDetails.LengthSeconds)
	md := &Metadata{
		VideoID:         id,
		URL:             WatchURL(id),
		Title:           pr.VideoDetails.Title,
		Author:          pr.VideoDetails.Author,
		Description:     pr.VideoDetails.ShortDescription,
		DurationSeconds: secs,
		Duration:        FormatDuration(secs),
	}
	for _, t := range pr.Tracks() {
		md.Languages = append(md.Languages, t.LanguageCode)
	}
	return md, nil
}

// Transcript fetches the transcript panel through the library, preferring a
// caption language that starts with lang.
func (l *Library) Transcript(ctx context.Context, id, lang string) ([]captions.Segment, error) {
	video, err := l.yt.GetVideoContext(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("library video: %w", err)
	}
	code := lang
	for _, t := range video.CaptionTracks {
		if strings.HasPrefix(t.LanguageCode, lang) {
			code = t.LanguageCode
			break
		}
	}
	tr, err := l.yt.GetTranscriptCtx(ctx, video, code)
	if err != nil {
		return nil, fmt.Errorf("library transcript: %w", err)
	}
	segs := make([]captions.Segment, 0, len(tr))
	for _, s := range tr {
		if text := captions.Normalize(s.Text); text != "" {
			segs = append(segs, captions.Segment{StartMs: int64(max(s.StartMs, 0)), Text: text})
		}
	}
	return segs, nil
}

// FormatDuration renders seconds as M:SS or H:MM:SS.
func FormatDuration(secs int) string {
	if secs < 0 {
		secs = 0
	}
	h, m, s := secs/3600, secs%3600/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
