package youtube

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// newTestClient points every endpoint of a Client at one httptest server.
func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	f := engine.NewFetcher(engine.WithBackoffStep(time.Millisecond), engine.WithAttemptTimeout(2*time.Second))
	return NewClient(f, "en", WithBaseURL(srv.URL))
}

const watchPageTmpl = `<!DOCTYPE html><html><head><title>Me at the zoo</title></head><body>
<script nonce="x">var ytInitialData = {"a":1};</script>
<script nonce="y">var ytInitialPlayerResponse = {"videoDetails":{"videoId":"jNQXAC9IVRw","title":"Me at the zoo","lengthSeconds":"19","author":"jawed"},
"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
{"baseUrl":"%s/api/timedtext?v=jNQXAC9IVRw&lang=de","languageCode":"de","name":{"simpleText":"German"}},
{"baseUrl":"%s/api/timedtext?v=jNQXAC9IVRw&lang=en&kind=asr","languageCode":"en","kind":"asr","name":{"runs":[{"text":"English (auto)"}]}}
]}},"note":"brace } inside \"string\" {"};var meta = {};</script>
</body></html>`
