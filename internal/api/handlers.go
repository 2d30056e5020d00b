package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
	"github.com/anatolykoptev/go_transcript/internal/store"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
)

type handler struct {
	svc *toolutil.Service
}

// errorResponse is the failure body: {success:false, error}.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (h *handler) postTranscript(w http.ResponseWriter, r *http.Request) {
	var in engine.TranscriptInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.transcript(w, r, in)
}

func (h *handler) getTranscript(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := engine.TranscriptInput{
		VideoID:  chi.URLParam(r, "videoID"),
		Language: q.Get("language"),
	}
	in.Timestamps, _ = strconv.ParseBool(q.Get("timestamps"))
	in.MinChars, _ = strconv.Atoi(q.Get("minChars"))
	h.transcript(w, r, in)
}

func (h *handler) transcript(w http.ResponseWriter, r *http.Request, in engine.TranscriptInput) {
	out, err := h.svc.Transcript(r.Context(), in)
	if err != nil {
		resolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) summarize(w http.ResponseWriter, r *http.Request) {
	var in engine.SummarizeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	out, err := h.svc.Summarize(r.Context(), in)
	switch {
	case errors.Is(err, engine.ErrLLMDisabled):
		jsonError(w, "summarization is not configured", http.StatusServiceUnavailable)
		return
	case errors.Is(err, toolutil.ErrStoreDisabled):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	case err != nil:
		resolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) video(w http.ResponseWriter, r *http.Request) {
	md, err := h.svc.Video(r.Context(), chi.URLParam(r, "videoID"))
	if err != nil {
		resolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, md)
}

func (h *handler) listSummaries(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := h.svc.ListSummaries(r.Context(), limit)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "summaries": list, "total": len(list)})
}

func (h *handler) getSummary(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.GetSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handler) deleteSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteSummary(r.Context(), id); err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, engine.DeleteOutput{Success: true, ID: id})
}

// resolveError writes a transcript/summarize failure with its mapped status.
func resolveError(w http.ResponseWriter, err error) {
	status := transcript.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("api: request failed", slog.Any("error", err))
	}
	jsonError(w, transcript.Message(err), status)
}

func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, "summary not found", http.StatusNotFound)
	case errors.Is(err, toolutil.ErrStoreDisabled):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		slog.Error("api: store failed", slog.Any("error", err))
		jsonError(w, "Internal error", http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
