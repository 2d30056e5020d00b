package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
)

func testFetcher() *engine.Fetcher {
	return engine.NewFetcher(engine.WithBackoffStep(time.Millisecond), engine.WithAttemptTimeout(2*time.Second))
}

func TestExtractSegmentsShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		path string
		f    Fields
		want string
	}{
		{"string field", `{"transcript":"hello  world"}`, "transcript", Fields{}, "hello world"},
		{"string array", `{"transcript":["hello","","world"]}`, "transcript", Fields{}, "hello world"},
		{"object array seconds", `{"transcript":[{"text":"a","start":1.5},{"text":"b","start":"3"}]}`, "transcript", Fields{}, "[00:01] a [00:03] b"},
		{"root array ms", `[{"text":"x","offsetMs":61000}]`, "", Fields{}, "[01:01] x"},
		{"nested container", `{"data":{"segments":[{"subtitle":"deep"}]}}`, "", Fields{}, "deep"},
		{"indexed path", `[{"transcription":[{"subtitle":"one","start":"0"}]}]`, "0.transcription", Fields{}, "[00:00] one"},
		{"custom fields", `{"content":[{"t":"c","at":2000}]}`, "content", Fields{Text: "t", Start: "at", StartUnit: "ms"}, "[00:02] c"},
		{"entities", `{"transcript":"it&#39;s"}`, "transcript", Fields{}, "it's"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs, err := ExtractSegments([]byte(tt.raw), tt.path, tt.f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, captions.Join(segs, true))
		})
	}
}

func TestExtractSegmentsErrors(t *testing.T) {
	_, err := ExtractSegments([]byte("not json"), "", Fields{})
	assert.Error(t, err)
	_, err = ExtractSegments([]byte(`{"a":1}`), "transcript", Fields{})
	assert.Error(t, err)

	segs, err := ExtractSegments([]byte(`{"transcript":null}`), "transcript", Fields{})
	require.NoError(t, err)
	assert.Empty(t, segs)
}

func TestExternalProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "jNQXAC9IVRw", body["videoId"])
		io.WriteString(w, `{"transcript":["All right,","so here we are"]}`)
	}))
	defer srv.Close()

	p, err := New(ExternalEndpoint(srv.URL, "secret"), testFetcher())
	require.NoError(t, err)
	segs, err := p.Transcript(context.Background(), "jNQXAC9IVRw", "en")
	require.NoError(t, err)
	assert.Equal(t, "All right, so here we are", captions.Join(segs, false))
	assert.Equal(t, "external", p.Name())
}

func TestGenericProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, "yt.p.rapidapi.com", r.Header.Get("X-RapidAPI-Host"))
		assert.Equal(t, "jNQXAC9IVRw", r.URL.Query().Get("video_id"))
		assert.Equal(t, "de", r.URL.Query().Get("lang"))
		io.WriteString(w, `[{"text":"Hallo","start":0}]`)
	}))
	defer srv.Close()

	p, err := New(GenericEndpoint(srv.URL+"/transcript", "key", "yt.p.rapidapi.com"), testFetcher())
	require.NoError(t, err)
	segs, err := p.Transcript(context.Background(), "jNQXAC9IVRw", "de")
	require.NoError(t, err)
	assert.Equal(t, "Hallo", captions.Join(segs, false))
}

func TestProviderEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"transcript":[]}`)
	}))
	defer srv.Close()

	p, err := New(ExternalEndpoint(srv.URL, ""), testFetcher())
	require.NoError(t, err)
	_, err = p.Transcript(context.Background(), "jNQXAC9IVRw", "en")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestNewRequiresURL(t *testing.T) {
	_, err := New(Endpoint{Name: "x"}, nil)
	assert.Error(t, err)
}

type failingProvider struct {
	calls atomic.Int32
	err   error
}

func (f *failingProvider) Name() string { return "failing" }
func (f *failingProvider) Transcript(context.Context, string, string) ([]captions.Segment, error) {
	f.calls.Add(1)
	return nil, f.err
}

func TestGuardOpensAfterFailures(t *testing.T) {
	inner := &failingProvider{err: &engine.FetchError{URL: "u", Status: 503, Attempts: 3, Err: errors.New("HTTP 503")}}
	g := Guard(inner)
	for range 5 {
		_, err := g.Transcript(context.Background(), "id", "en")
		require.Error(t, err)
	}
	assert.Equal(t, "open", g.State())

	_, err := g.Transcript(context.Background(), "id", "en")
	require.Error(t, err)
	assert.EqualValues(t, 5, inner.calls.Load(), "open breaker must not call the provider")
}

func TestGuardIgnoresNotFound(t *testing.T) {
	inner := &failingProvider{err: &engine.FetchError{URL: "u", Status: 404, Attempts: 1, Err: errors.New("HTTP 404")}}
	g := Guard(inner)
	for range 10 {
		_, _ = g.Transcript(context.Background(), "id", "en")
	}
	assert.Equal(t, "closed", g.State())
	assert.EqualValues(t, 10, inner.calls.Load())
}

func TestParseFile(t *testing.T) {
	t.Setenv("SUPA_KEY", "k123")
	data := []byte(`
providers:
  - name: supadata
    url: "https://api.example.com/v1/transcript?videoId={id}&lang={lang}"
    headers:
      x-api-key: "${SUPA_KEY}"
    path: content
    text_field: text
    start_field: offset
    start_unit: ms
  - name: poster
    method: post
    url: "https://other.example.com/t"
    body: '{"id":"{id}"}'
`)
	eps, err := ParseFile(data)
	require.NoError(t, err)
	require.Len(t, eps, 2)
	assert.Equal(t, "k123", eps[0].Headers["x-api-key"])
	assert.Equal(t, "ms", eps[0].StartUnit)
	assert.Equal(t, "post", eps[1].Method)

	_, err = ParseFile([]byte("providers:\n  - name: broken\n"))
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "providers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("providers:\n  - name: a\n    url: https://a.example/{id}\n"), 0o600))

	set := FromConfig(engine.Config{
		ExternalTranscriptURL: "https://ext.example/t",
		GenericTranscriptURL:  "https://gen.example/t",
		ProvidersFile:         path,
	}, testFetcher())
	require.NotNil(t, set.External)
	require.Len(t, set.Secondary, 2)
	assert.Equal(t, "generic", set.Secondary[0].Name())
	assert.Equal(t, "a", set.Secondary[1].Name())

	empty := FromConfig(engine.Config{ProvidersFile: filepath.Join(dir, "missing.yaml")}, nil)
	assert.Nil(t, empty.External)
	assert.Empty(t, empty.Secondary)
}
