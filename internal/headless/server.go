package headless

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
	"github.com/anatolykoptev/go_transcript/internal/engine/youtube"
)

// TranscriptExtractor is what the service needs from an Extractor.
type TranscriptExtractor interface {
	Extract(ctx context.Context, id, lang string) (*Extraction, error)
}

// ExtractRequest is the /extract request body.
type ExtractRequest struct {
	VideoID    string `json:"videoId,omitempty"`
	VideoURL   string `json:"videoUrl,omitempty"`
	Language   string `json:"language,omitempty"`
	Timestamps bool   `json:"timestamps,omitempty"`
}

// ExtractResponse is the /extract response body.
type ExtractResponse struct {
	Success    bool   `json:"success"`
	Transcript string `json:"transcript,omitempty"`
	Via        string `json:"via,omitempty"`
	Error      string `json:"error,omitempty"`
}

// NewRouter returns the headless service routes: POST /extract and GET /health.
func NewRouter(x TranscriptExtractor, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	h := &handler{x: x, timeout: requestTimeout}
	r.Post("/extract", h.extract)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

type handler struct {
	x       TranscriptExtractor
	timeout time.Duration
}

func (h *handler) extract(w http.ResponseWriter, r *http.Request) {
	engine.IncrHeadlessRequest()
	var req ExtractRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ExtractResponse{Error: "invalid request body"})
		return
	}
	input := req.VideoID
	if input == "" {
		input = req.VideoURL
	}
	id, err := youtube.DeriveVideoID(input)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ExtractResponse{Error: "Invalid YouTube URL or video id"})
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	start := time.Now()
	res, err := h.x.Extract(ctx, id, req.Language)
	switch {
	case errors.Is(err, ErrNoTranscript) || (err == nil && (res == nil || len(res.Segments) == 0)):
		slog.Info("headless: no transcript", slog.String("id", id), slog.Duration("elapsed", time.Since(start)))
		writeJSON(w, http.StatusNotFound, ExtractResponse{Error: "Transcript unavailable"})
		return
	case err != nil:
		slog.Warn("headless: extract failed", slog.String("id", id), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, ExtractResponse{Error: "Internal error"})
		return
	}
	slog.Info("headless: extracted",
		slog.String("id", id),
		slog.String("via", res.Via),
		slog.Int("segments", len(res.Segments)),
		slog.Duration("elapsed", time.Since(start)))
	writeJSON(w, http.StatusOK, ExtractResponse{
		Success:    true,
		Transcript: captions.Join(res.Segments, req.Timestamps),
		Via:        res.Via,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
