package transcript

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
	"github.com/anatolykoptev/go_transcript/internal/engine/providers"
	"github.com/anatolykoptev/go_transcript/internal/engine/youtube"
)

// funcStrategy adapts a function to Strategy.
type funcStrategy struct {
	name Source
	fn   func(context.Context, Request) ([]captions.Segment, error)
}

func (s funcStrategy) Name() Source { return s.name }

func (s funcStrategy) Acquire(ctx context.Context, req Request) ([]captions.Segment, error) {
	return s.fn(ctx, req)
}

// Func returns a Strategy named name that calls fn.
func Func(name Source, fn func(context.Context, Request) ([]captions.Segment, error)) Strategy {
	return funcStrategy{name: name, fn: fn}
}

// Providers tries each provider in order and returns the first sufficient
// transcript, or the longest partial one when none is sufficient.
func Providers(name Source, ps ...providers.Provider) Strategy {
	return Func(name, func(ctx context.Context, req Request) ([]captions.Segment, error) {
		if len(ps) == 0 {
			return nil, errors.New("no providers configured")
		}
		var best []captions.Segment
		var errs []error
		for _, p := range ps {
			if ctx.Err() != nil {
				return best, ctx.Err()
			}
			segs, err := p.Transcript(ctx, req.VideoID, req.Language)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
				continue
			}
			if captions.Length(segs) >= req.MinChars {
				return segs, nil
			}
			if captions.Length(segs) > captions.Length(best) {
				best = segs
			}
		}
		if len(best) > 0 {
			return best, nil
		}
		return nil, errors.Join(errs...)
	})
}

// Library fetches the transcript through the kkdai/youtube library.
func Library(lib *youtube.Library) Strategy {
	return Func(SourceLibrary, func(ctx context.Context, req Request) ([]captions.Segment, error) {
		return lib.Transcript(ctx, req.VideoID, req.Language)
	})
}

// scrapeLanguages returns the caption-scrape language candidates for lang:
// the exact code, its base language, then the US and GB variants.
func scrapeLanguages(lang string) []string {
	base, _, _ := strings.Cut(lang, "-")
	return lo.Uniq([]string{lang, base, base + "-US", base + "-GB"})
}

// CaptionScrape reads the watch page once and tries each candidate language
// whose code matches a listed track exactly, fetching timed-text XML.
func CaptionScrape(c *youtube.Client) Strategy {
	return Func(SourceCaptionScrape, func(ctx context.Context, req Request) ([]captions.Segment, error) {
		tracks, _, err := c.WatchTracks(ctx, req.VideoID, req.Language)
		if err != nil {
			return nil, err
		}
		if len(tracks) == 0 {
			return nil, youtube.ErrNoTracks
		}
		var lastErr error = youtube.ErrNoTracks
		for _, code := range scrapeLanguages(req.Language) {
			t, ok := lo.Find(tracks, func(t youtube.Track) bool {
				return strings.EqualFold(t.LanguageCode, code)
			})
			if !ok {
				continue
			}
			segs, err := c.FetchTrackFormat(ctx, t.LocatorURL, captions.FormatXML)
			if err != nil {
				lastErr = err
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				continue
			}
			if captions.Length(segs) >= req.MinChars {
				return segs, nil
			}
			lastErr = fmt.Errorf("%s: %d chars", code, captions.Length(segs))
		}
		return nil, lastErr
	})
}

// DirectTrack locates caption tracks, selects one for the preferred language
// and fetches it as JSON3, then XML, then VTT.
func DirectTrack(l *youtube.Locator, c *youtube.Client) Strategy {
	return Func(SourceDirectTrack, func(ctx context.Context, req Request) ([]captions.Segment, error) {
		tracks, err := l.Locate(ctx, req.VideoID)
		if err != nil {
			return nil, err
		}
		t, _ := youtube.SelectTrack(tracks, req.Language)
		segs, _, err := c.FetchTrack(ctx, t.LocatorURL)
		return segs, err
	})
}

// AllLanguages lists every caption language from the public list endpoint,
// preferred language first, and runs the direct-track fetch per language
// until one is sufficient.
func AllLanguages(c *youtube.Client) Strategy {
	return Func(SourceAllLanguages, func(ctx context.Context, req Request) ([]captions.Segment, error) {
		tracks, err := c.ListTracks(ctx, req.VideoID)
		if err != nil {
			return nil, err
		}
		if len(tracks) == 0 {
			return nil, youtube.ErrNoTracks
		}
		var best []captions.Segment
		var lastErr error
		for _, t := range youtube.OrderTracks(tracks, req.Language) {
			segs, _, err := c.FetchTrack(ctx, t.LocatorURL)
			if err != nil {
				lastErr = err
				if ctx.Err() != nil {
					break
				}
				continue
			}
			if captions.Length(segs) >= req.MinChars {
				return segs, nil
			}
			if captions.Length(segs) > captions.Length(best) {
				best = segs
			}
		}
		if len(best) > 0 {
			return best, nil
		}
		return nil, lastErr
	})
}

// panelProvider exposes the Innertube transcript panel as a Provider.
type panelProvider struct{ c *youtube.Client }

// PanelProvider wraps c's engagement-panel transcript as a secondary provider.
func PanelProvider(c *youtube.Client) providers.Provider { return panelProvider{c: c} }

func (p panelProvider) Name() string { return "innertube_panel" }

func (p panelProvider) Transcript(ctx context.Context, id, _ string) ([]captions.Segment, error) {
	return p.c.PanelTranscript(ctx, id)
}
