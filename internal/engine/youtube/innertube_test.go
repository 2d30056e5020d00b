package youtube

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestPlayerTracks(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req playerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Context.Client.ClientName != "ANDROID" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if r.Header.Get("X-Youtube-Client-Name") != "3" {
			http.Error(w, "missing client header", http.StatusBadRequest)
			return
		}
		if req.VideoID == "private0000" {
			io.WriteString(w, `{"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"Private video"}}`)
			return
		}
		io.WriteString(w, `{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
			{"baseUrl":"https://yt/api/timedtext?v=a&lang=en","languageCode":"en","vssId":"a.en"},
			{"baseUrl":"","languageCode":"xx"}
		]}}}`)
	}))

	tracks, err := c.PlayerTracks(context.Background(), "jNQXAC9IVRw")
	if err != nil {
		t.Fatalf("PlayerTracks() error = %v", err)
	}
	if len(tracks) != 1 || !tracks[0].IsAutoGenerated {
		t.Errorf("tracks = %+v", tracks)
	}

	_, err = c.PlayerTracks(context.Background(), "private0000")
	if err == nil || !strings.Contains(err.Error(), "Private video") {
		t.Errorf("err = %v, want playability reason", err)
	}
}

func TestGenerateVisitorData(t *testing.T) {
	v := generateVisitorData()
	if len(v) != 11 {
		t.Errorf("len = %d, want 11", len(v))
	}
}
