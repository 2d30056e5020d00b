package youtube

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
)

type transcriptList struct {
	Tracks []struct {
		LangCode string `xml:"lang_code,attr"`
		Name     string `xml:"name,attr"`
		Kind     string `xml:"kind,attr"`
	} `xml:"track"`
}

// ListURL returns the timedtext endpoint that lists a video's caption languages.
func (c *Client) ListURL(id string) string {
	return c.ep.timedtext + "?type=list&v=" + url.QueryEscape(id)
}

// TrackURL synthesizes a timedtext locator URL for one language.
func (c *Client) TrackURL(id, lang, name string, auto bool) string {
	q := url.Values{}
	q.Set("v", id)
	q.Set("lang", lang)
	if name != "" {
		q.Set("name", name)
	}
	if auto {
		q.Set("kind", "asr")
	}
	return c.ep.timedtext + "?" + q.Encode()
}

// ListTracks queries the public list endpoint and synthesizes one track per language.
func (c *Client) ListTracks(ctx context.Context, id string) ([]Track, error) {
	body, err := c.fetcher.FetchText(ctx, c.ListURL(id), map[string]string{"accept-language": c.lang})
	if err != nil {
		return nil, fmt.Errorf("timedtext list: %w", err)
	}
	return c.ParseTrackList(id, []byte(body))
}

// ParseTrackList parses a type=list response body.
func (c *Client) ParseTrackList(id string, body []byte) ([]Track, error) {
	var tl transcriptList
	if err := xml.Unmarshal(body, &tl); err != nil {
		return nil, fmt.Errorf("parse track list: %w", err)
	}
	tracks := make([]Track, 0, len(tl.Tracks))
	for _, t := range tl.Tracks {
		if t.LangCode == "" {
			continue
		}
		auto := t.Kind == "asr"
		tracks = append(tracks, Track{
			LanguageCode:    t.LangCode,
			Name:            t.Name,
			IsAutoGenerated: auto,
			LocatorURL:      c.TrackURL(id, t.LangCode, t.Name, auto),
		})
	}
	if len(tracks) == 0 {
		return nil, errors.New("track list is empty")
	}
	return tracks, nil
}
