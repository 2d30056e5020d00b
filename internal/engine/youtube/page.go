package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

const playerResponseMarker = "ytInitialPlayerResponse"

// captionTracksRe is the last-resort extraction when the player JSON cannot be isolated.
var captionTracksRe = regexp.MustCompile(`"captionTracks":(\[.*?\])`)

// FetchWatchPage downloads the watch page HTML, through the stealth client when configured.
func (c *Client) FetchWatchPage(ctx context.Context, id, lang string) ([]byte, error) {
	if lang == "" {
		lang = c.lang
	}
	body, err := c.fetcher.Do(ctx, engine.Request{URL: c.WatchPageURL(id, lang), Headers: engine.WatchPageHeaders(lang), Browser: true})
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	return body, nil
}

// WatchPageURL returns the watch page URL for id with the interface language set.
func (c *Client) WatchPageURL(id, lang string) string {
	return c.ep.watch + "?v=" + url.QueryEscape(id) + "&hl=" + url.QueryEscape(lang)
}

// WatchTracks scrapes caption tracks (and the player response, when parseable) from the watch page.
func (c *Client) WatchTracks(ctx context.Context, id, lang string) ([]Track, *PlayerResponse, error) {
	page, err := c.FetchWatchPage(ctx, id, lang)
	if err != nil {
		return nil, nil, err
	}
	return TracksFromPage(page)
}

// TracksFromPage extracts caption tracks from watch page HTML.
func TracksFromPage(page []byte) ([]Track, *PlayerResponse, error) {
	if raw, err := ExtractPlayerResponse(page); err == nil {
		var pr PlayerResponse
		if err := json.Unmarshal(raw, &pr); err == nil {
			if tracks := pr.Tracks(); len(tracks) > 0 {
				return tracks, &pr, nil
			}
			if reason := pr.unavailableReason(); reason != "" {
				return nil, &pr, fmt.Errorf("captions unavailable: %s", reason)
			}
		}
	}
	if m := captionTracksRe.FindSubmatch(page); len(m) == 2 {
		var raw []captionTrack
		if err := json.Unmarshal(m[1], &raw); err == nil {
			if tracks := toTracks(raw); len(tracks) > 0 {
				return tracks, nil, nil
			}
		}
	}
	return nil, nil, errors.New("no caption tracks in watch page")
}

// ExtractPlayerResponse returns the ytInitialPlayerResponse JSON embedded in a watch page.
func ExtractPlayerResponse(page []byte) ([]byte, error) {
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page)); err == nil {
		var found []byte
		doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := s.Text()
			if !strings.Contains(text, playerResponseMarker) {
				return true
			}
			found = jsonAfterMarker([]byte(text))
			return found == nil
		})
		if found != nil {
			return found, nil
		}
	}
	if raw := jsonAfterMarker(page); raw != nil {
		return raw, nil
	}
	return nil, errors.New("ytInitialPlayerResponse not found")
}

// jsonAfterMarker finds "ytInitialPlayerResponse = {...}" and returns the object.
func jsonAfterMarker(b []byte) []byte {
	for rest := b; ; {
		idx := bytes.Index(rest, []byte(playerResponseMarker))
		if idx < 0 {
			return nil
		}
		rest = rest[idx+len(playerResponseMarker):]
		tail := bytes.TrimLeft(rest, " \t\r\n")
		if len(tail) == 0 || tail[0] != '=' {
			continue
		}
		tail = bytes.TrimLeft(tail[1:], " \t\r\n")
		if obj := extractJSON(tail); obj != nil {
			return obj
		}
	}
}

// extractJSON returns the balanced JSON object at the start of b, or nil.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr, escaped := false, false
	for i, ch := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
