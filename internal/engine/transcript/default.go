package transcript

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/providers"
	"github.com/anatolykoptev/go_transcript/internal/engine/youtube"
	"github.com/anatolykoptev/go_transcript/internal/headless"
)

// headlessTimeout covers the service's own 45s extraction budget.
const headlessTimeout = 50 * time.Second

// DefaultStrategies builds the production cascade from c:
// external provider (when configured), library, caption scrape, direct track,
// all languages, secondary providers, and the headless service (when configured).
func DefaultStrategies(c engine.Config) []Strategy {
	f := engine.DefaultFetcher()
	yt := youtube.NewClient(f, c.PreferredLanguage)
	set := providers.FromConfig(c, f)

	var out []Strategy
	if set.External != nil {
		out = append(out, Providers(SourceExternal, set.External))
	}
	out = append(out,
		Library(youtube.NewLibrary(c.HTTPClient, yt)),
		CaptionScrape(yt),
		DirectTrack(youtube.NewLocator(yt, nil, nil), yt),
		AllLanguages(yt),
		Providers(SourceSecondary, append([]providers.Provider{PanelProvider(yt)}, set.Secondary...)...),
	)
	if c.HeadlessURL != "" {
		// One long attempt: a browser session takes seconds and must not be repeated.
		hf := engine.NewFetcher(append(engine.FetcherFromConfig(c),
			engine.WithHTTPClient(&http.Client{Timeout: headlessTimeout}),
			engine.WithMaxAttempts(1),
			engine.WithAttemptTimeout(headlessTimeout),
		)...)
		out = append(out, Providers(SourceHeadless, headless.NewClient(c.HeadlessURL, hf)))
	}
	return out
}

// FromConfig returns a Resolver running DefaultStrategies(c).
func FromConfig(c engine.Config) *Resolver {
	return NewResolver(DefaultStrategies(c),
		WithMinChars(c.MinTranscriptChars),
		WithTimeout(c.ResolveTimeout),
		WithLanguage(c.PreferredLanguage),
	)
}
