package headless

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
)

// Client calls a remote headless service. It satisfies providers.Provider so
// the resolver can run it as its final strategy.
type Client struct {
	endpoint string
	fetcher  *engine.Fetcher
}

// NewClient returns a Client for the service at baseURL. A nil fetcher uses engine.DefaultFetcher().
func NewClient(baseURL string, f *engine.Fetcher) *Client {
	if f == nil {
		f = engine.DefaultFetcher()
	}
	return &Client{endpoint: strings.TrimRight(baseURL, "/") + "/extract", fetcher: f}
}

// Name implements providers.Provider.
func (c *Client) Name() string { return "headless" }

// Transcript implements providers.Provider. The service returns joined text,
// so the result is a single untimed segment.
func (c *Client) Transcript(ctx context.Context, id, lang string) ([]captions.Segment, error) {
	data, err := c.fetcher.PostJSON(ctx, c.endpoint, nil, ExtractRequest{VideoID: id, Language: lang})
	if err != nil {
		return nil, fmt.Errorf("headless service: %w", err)
	}
	var resp ExtractResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("headless service: decode: %w", err)
	}
	if !resp.Success {
		if resp.Error == "" {
			resp.Error = "extraction failed"
		}
		return nil, errors.New("headless service: " + resp.Error)
	}
	return captions.FromText(resp.Transcript), nil
}
