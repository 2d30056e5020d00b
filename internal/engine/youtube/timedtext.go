package youtube

import (
	"context"
	"errors"
	"fmt"

	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
)

// ErrEmptyTrack is returned when every format of a track decoded to nothing.
var ErrEmptyTrack = errors.New("caption track is empty in every format")

// FetchTrack fetches locatorURL as JSON3, then XML, then VTT, and returns the
// first payload that decodes to at least one segment.
func (c *Client) FetchTrack(ctx context.Context, locatorURL string) ([]captions.Segment, captions.Format, error) {
	var lastErr error
	for _, f := range captions.Cascade {
		segs, err := c.FetchTrackFormat(ctx, locatorURL, f)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, captions.FormatUnknown, ctx.Err()
			}
			continue
		}
		if len(segs) > 0 {
			return segs, f, nil
		}
	}
	if lastErr != nil {
		return nil, captions.FormatUnknown, fmt.Errorf("%w: %w", ErrEmptyTrack, lastErr)
	}
	return nil, captions.FormatUnknown, ErrEmptyTrack
}

// FetchTrackFormat fetches one format of a track. When the body is not in the
// requested format (the endpoint ignores fmt for some tracks), it is sniffed.
func (c *Client) FetchTrackFormat(ctx context.Context, locatorURL string, f captions.Format) ([]captions.Segment, error) {
	body, err := c.fetcher.FetchText(ctx, FormatURL(locatorURL, f), map[string]string{
		"referer":         "https://www.youtube.com/",
		"accept-language": c.lang,
	})
	if err != nil {
		return nil, err
	}
	segs := captions.Decode(f, []byte(body))
	if len(segs) == 0 {
		if sniffed := captions.Sniff([]byte(body)); sniffed != f {
			segs = captions.Decode(sniffed, []byte(body))
		}
	}
	return segs, nil
}
