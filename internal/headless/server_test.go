package headless

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
)

type fakeExtractor struct {
	res   *Extraction
	err   error
	gotID string
	calls int
}

func (f *fakeExtractor) Extract(_ context.Context, id, _ string) (*Extraction, error) {
	f.calls++
	f.gotID = id
	return f.res, f.err
}

func post(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, ExtractResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(body)))
	var resp ExtractResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestExtractHandler(t *testing.T) {
	x := &fakeExtractor{res: &Extraction{
		Segments: []captions.Segment{{StartMs: 0, Text: "Hello"}, {StartMs: 5000, Text: "World"}},
		Via:      "network",
	}}
	h := NewRouter(x, time.Second)

	rec, resp := post(t, h, `{"videoUrl":"https://youtu.be/jNQXAC9IVRw"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "Hello World", resp.Transcript)
	assert.Equal(t, "jNQXAC9IVRw", x.gotID)

	_, resp = post(t, h, `{"videoId":"jNQXAC9IVRw","timestamps":true}`)
	assert.Equal(t, "[00:00] Hello [00:05] World", resp.Transcript)
}

func TestExtractHandlerErrors(t *testing.T) {
	tests := []struct {
		name   string
		x      *fakeExtractor
		body   string
		status int
		msg    string
	}{
		{"bad json", &fakeExtractor{}, `{`, http.StatusBadRequest, "invalid request body"},
		{"bad id", &fakeExtractor{}, `{"videoUrl":"https://example.com/x"}`, http.StatusBadRequest, "Invalid YouTube URL or video id"},
		{"no transcript", &fakeExtractor{err: ErrNoTranscript}, `{"videoId":"jNQXAC9IVRw"}`, http.StatusNotFound, "Transcript unavailable"},
		{"empty", &fakeExtractor{res: &Extraction{}}, `{"videoId":"jNQXAC9IVRw"}`, http.StatusNotFound, "Transcript unavailable"},
		{"browser down", &fakeExtractor{err: errors.New("launch browser: boom")}, `{"videoId":"jNQXAC9IVRw"}`, http.StatusInternalServerError, "Internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := post(t, NewRouter(tt.x, time.Second), tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.msg, resp.Error)
		})
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(&fakeExtractor{}, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestClientAgainstService(t *testing.T) {
	x := &fakeExtractor{res: &Extraction{Segments: captions.FromText("recovered by the browser"), Via: "player_state"}}
	srv := httptest.NewServer(NewRouter(x, time.Second))
	defer srv.Close()

	c := NewClient(srv.URL+"/", engine.NewFetcher(engine.WithBackoffStep(time.Millisecond)))
	assert.Equal(t, "headless", c.Name())
	segs, err := c.Transcript(context.Background(), "jNQXAC9IVRw", "en")
	require.NoError(t, err)
	assert.Equal(t, "recovered by the browser", captions.Join(segs, false))
}

func TestClientUnavailable(t *testing.T) {
	srv := httptest.NewServer(NewRouter(&fakeExtractor{err: ErrNoTranscript}, time.Second))
	defer srv.Close()

	x := NewClient(srv.URL, engine.NewFetcher(engine.WithBackoffStep(time.Millisecond)))
	_, err := x.Transcript(context.Background(), "jNQXAC9IVRw", "en")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, engine.StatusOf(err))
}

func TestPoolCloseUnlaunched(t *testing.T) {
	assert.NoError(t, NewPool("").Close())
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, time.Minute), context.Canceled)
	assert.NoError(t, sleep(context.Background(), time.Millisecond))
}
