package youtube

import (
	"context"
	"log/slog"
)

// LocatorError reports that no caption track could be discovered.
type LocatorError struct {
	Reason string
}

func (e *LocatorError) Error() string { return "caption locator: " + e.Reason }

// ErrNoTracks is returned by Locate when every discovery attempt came back empty.
var ErrNoTracks = &LocatorError{Reason: "no-tracks"}

// PlayerStateSource reads caption tracks from a player state object.
// Client implements it over the Innertube /player API; the headless extractor
// supplies one that reads window.ytInitialPlayerResponse from a live page.
type PlayerStateSource interface {
	PlayerTracks(ctx context.Context, id string) ([]Track, error)
}

// TrackLister lists caption languages for a video.
type TrackLister interface {
	ListTracks(ctx context.Context, id string) ([]Track, error)
}

// Locator discovers caption tracks. Selection is left to the caller (SelectTrack).
type Locator struct {
	client *Client
	player PlayerStateSource
	lister TrackLister
	// SkipWatchPage disables the watch-page attempt (used when the caller already scraped it).
	SkipWatchPage bool
}

// NewLocator builds a Locator. Nil player / lister fall back to c's Innertube and list endpoints.
func NewLocator(c *Client, player PlayerStateSource, lister TrackLister) *Locator {
	if player == nil {
		player = c
	}
	if lister == nil {
		lister = c
	}
	return &Locator{client: c, player: player, lister: lister}
}

// Locate tries player state, then the list endpoint, then the watch page.
// Each failing attempt is logged and skipped; only total failure returns ErrNoTracks.
func (l *Locator) Locate(ctx context.Context, id string) ([]Track, error) {
	attempts := []struct {
		name string
		fn   func(context.Context, string) ([]Track, error)
	}{
		{"player_state", l.player.PlayerTracks},
		{"list_endpoint", l.lister.ListTracks},
		{"watch_page", func(ctx context.Context, id string) ([]Track, error) {
			if l.SkipWatchPage {
				return nil, nil
			}
			tracks, _, err := l.client.WatchTracks(ctx, id, "")
			return tracks, err
		}},
	}
	for _, a := range attempts {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		tracks, err := a.fn(ctx, id)
		if err != nil {
			slog.Debug("locator: attempt failed",
				slog.String("id", id), slog.String("attempt", a.name), slog.Any("error", err))
			continue
		}
		if len(tracks) > 0 {
			slog.Debug("locator: tracks found",
				slog.String("id", id), slog.String("attempt", a.name), slog.Int("count", len(tracks)))
			return tracks, nil
		}
	}
	return nil, ErrNoTracks
}
