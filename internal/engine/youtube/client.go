package youtube

import (
	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Client issues YouTube requests through a shared engine.Fetcher.
// Safe for concurrent use.
type Client struct {
	fetcher *engine.Fetcher
	lang    string
	ep      endpoints
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL sends every request to base instead of https://www.youtube.com.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		if base != "" {
			c.ep = endpointsAt(base)
		}
	}
}

// NewClient returns a Client using f (engine.DefaultFetcher() when nil) and
// lang as the interface language for Innertube calls.
func NewClient(f *engine.Fetcher, lang string, opts ...ClientOption) *Client {
	if f == nil {
		f = engine.DefaultFetcher()
	}
	if lang == "" {
		lang = "en"
	}
	c := &Client{fetcher: f, lang: lang, ep: defaultEndpoints}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetcher returns the underlying fetcher.
func (c *Client) Fetcher() *engine.Fetcher { return c.fetcher }
