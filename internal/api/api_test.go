package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
	"github.com/anatolykoptev/go_transcript/internal/engine/youtube"
	"github.com/anatolykoptev/go_transcript/internal/store"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
)

const testID = "jNQXAC9IVRw"

type stubSummarizer struct{}

func (stubSummarizer) Summarize(context.Context, engine.SummaryRequest) (*engine.Summary, error) {
	return &engine.Summary{TLDR: "Elephants."}, nil
}

type stubMetadata struct{}

func (stubMetadata) Metadata(_ context.Context, id string) (*youtube.Metadata, error) {
	return &youtube.Metadata{VideoID: id, Title: "Me at the zoo", Duration: "0:19"}, nil
}

type counted struct {
	name  transcript.Source
	segs  []captions.Segment
	calls int
}

func (c *counted) Name() transcript.Source { return c.name }

func (c *counted) Acquire(context.Context, transcript.Request) ([]captions.Segment, error) {
	c.calls++
	return c.segs, nil
}

func newTestRouter(t *testing.T, strategies ...transcript.Strategy) http.Handler {
	t.Helper()
	engine.InitCache("", time.Minute, 100, time.Minute)
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	svc := &toolutil.Service{
		Resolver:   transcript.NewResolver(strategies, transcript.WithMinChars(50), transcript.WithTimeout(time.Second)),
		Summarizer: stubSummarizer{},
		Metadata:   stubMetadata{},
		Store:      st,
	}
	return NewRouter(svc, nil)
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, bytes.NewBufferString(body)))
	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestTranscriptEndToEnd(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("caption ", 12)) + " " + strings.TrimSpace(strings.Repeat("text ", 11))
	require.Len(t, text, 150)

	scrape := &counted{name: transcript.SourceCaptionScrape}
	direct := &counted{name: transcript.SourceDirectTrack, segs: captions.FromText(text)}
	later := &counted{name: transcript.SourceAllLanguages, segs: captions.FromText(text)}
	h := newTestRouter(t, scrape, direct, later)

	rec, body := do(t, h, http.MethodPost, "/api/transcript", `{"url":"https://www.youtube.com/watch?v=`+testID+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, text, body["transcript"])
	assert.Equal(t, "direct_track", body["source"])
	assert.Equal(t, 0, later.calls)
}

func TestTranscriptUnavailable(t *testing.T) {
	h := newTestRouter(t,
		&counted{name: transcript.SourceExternal},
		&counted{name: transcript.SourceDirectTrack, segs: captions.FromText("short")},
	)
	rec, body := do(t, h, http.MethodGet, "/api/transcript/"+testID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Transcript unavailable", body["error"])
}

func TestTranscriptMalformed(t *testing.T) {
	h := newTestRouter(t)
	rec, body := do(t, h, http.MethodPost, "/api/transcript", `{"url":"https://example.com/nothing"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])

	rec, _ = do(t, h, http.MethodPost, "/api/transcript", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranscriptTimestampsQuery(t *testing.T) {
	segs := []captions.Segment{{StartMs: 0, Text: strings.Repeat("a", 30)}, {StartMs: 5000, Text: strings.Repeat("b", 30)}}
	h := newTestRouter(t, &counted{name: transcript.SourceDirectTrack, segs: segs})
	_, body := do(t, h, http.MethodGet, "/api/transcript/"+testID+"?timestamps=true&language=ts", "")
	assert.True(t, strings.HasPrefix(body["transcript"].(string), "[00:00] "))
}

func TestSummarizeSaveListDelete(t *testing.T) {
	h := newTestRouter(t, &counted{name: transcript.SourceDirectTrack, segs: captions.FromText(strings.Repeat("zoo ", 30))})

	rec, body := do(t, h, http.MethodPost, "/api/summarize", `{"videoId":"`+testID+`","language":"sum","save":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "Me at the zoo", body["title"])

	_, body = do(t, h, http.MethodGet, "/api/summaries", "")
	assert.EqualValues(t, 1, body["total"])

	rec, body = do(t, h, http.MethodGet, "/api/summaries/"+id, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testID, body["videoId"])

	rec, _ = do(t, h, http.MethodDelete, "/api/summaries/"+id, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = do(t, h, http.MethodGet, "/api/summaries/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "summary not found", body["error"])
}

func TestVideoAndHealth(t *testing.T) {
	h := newTestRouter(t)
	rec, body := do(t, h, http.MethodGet, "/api/video/"+testID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Me at the zoo", body["title"])

	rec, _ = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "transcript_requests")
}

func TestCORSOptions(t *testing.T) {
	o := corsOptions(nil)
	assert.Equal(t, []string{"*"}, o.AllowedOrigins)
	assert.False(t, o.AllowCredentials)

	o = corsOptions([]string{"chrome-extension://abc"})
	assert.True(t, o.AllowCredentials)
}
