package transcript

import (
	"context"
	"errors"
	"net/http"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/providers"
	"github.com/anatolykoptev/go_transcript/internal/engine/youtube"
)

// Kind classifies resolution and strategy failures.
type Kind string

// Only KindMalformedInput, KindUnavailable and KindInternal reach callers.
// The rest are recorded on Attempts for diagnostics.
const (
	KindMalformedInput Kind = "malformed_input"
	KindRateLimited    Kind = "rate_limited"
	KindNoTracks       Kind = "no_tracks"
	KindDecodeFailure  Kind = "decode_failure"
	KindFetchFailure   Kind = "fetch_failure"
	KindInsufficient   Kind = "insufficient"
	KindUnavailable    Kind = "unavailable"
	KindInternal       Kind = "internal"
)

// Messages surfaced to callers.
const (
	MsgMalformedInput = "Invalid YouTube URL or video id"
	MsgUnavailable    = "Transcript unavailable"
	MsgInternal       = "Internal error"
)

// Error is a resolution failure surfaced to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	// Attempts records what each strategy did before the cascade gave up.
	Attempts []Attempt
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps a Resolve error to an HTTP status code.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindMalformedInput:
			return http.StatusBadRequest
		case KindUnavailable:
			return http.StatusNotFound
		}
	}
	return http.StatusInternalServerError
}

// Message returns the caller-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return MsgInternal
}

// classify maps a strategy error onto a diagnostic Kind.
func classify(err error) Kind {
	var e *Error
	var le *youtube.LocatorError
	var fe *engine.FetchError
	switch {
	case errors.As(err, &e):
		return e.Kind
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindInternal
	case errors.Is(err, engine.ErrRateLimited):
		return KindRateLimited
	case errors.As(err, &le):
		return KindNoTracks
	case errors.Is(err, youtube.ErrEmptyTrack):
		return KindDecodeFailure
	case errors.Is(err, providers.ErrEmpty):
		return KindInsufficient
	case errors.As(err, &fe):
		return KindFetchFailure
	}
	return KindInternal
}
