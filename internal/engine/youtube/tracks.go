package youtube

import (
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
)

// Track describes one available caption stream.
type Track struct {
	LanguageCode    string `json:"languageCode"`
	Name            string `json:"name,omitempty"`
	IsAutoGenerated bool   `json:"isAutoGenerated"`
	LocatorURL      string `json:"locatorUrl"`
}

// captionTrack is the raw captionTracks entry in a player response.
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
	VssID        string `json:"vssId"`
	Name         struct {
		SimpleText string `json:"simpleText"`
		Runs       []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"name"`
}

func (c captionTrack) toTrack() Track {
	name := c.Name.SimpleText
	if name == "" && len(c.Name.Runs) > 0 {
		name = c.Name.Runs[0].Text
	}
	return Track{
		LanguageCode:    c.LanguageCode,
		Name:            name,
		IsAutoGenerated: c.Kind == "asr" || strings.HasPrefix(c.VssID, "a."),
		LocatorURL:      c.BaseURL,
	}
}

func toTracks(raw []captionTrack) []Track {
	out := make([]Track, 0, len(raw))
	for _, c := range raw {
		if c.BaseURL == "" {
			continue
		}
		out = append(out, c.toTrack())
	}
	return out
}

// NeedsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with exp=xpe usually return an empty body server-side.
func NeedsPoToken(locatorURL string) bool {
	return strings.Contains(locatorURL, "exp=xpe")
}

// SelectTrack picks one track for the preferred language prefix.
// Order: human track matching the prefix, auto track matching the prefix,
// then the first track. PoToken-bound tracks lose ties against fetchable ones.
func SelectTrack(tracks []Track, prefix string) (Track, bool) {
	if len(tracks) == 0 {
		return Track{}, false
	}
	prefix = strings.ToLower(prefix)
	matches := func(t Track) bool {
		return prefix != "" && strings.HasPrefix(strings.ToLower(t.LanguageCode), prefix)
	}
	passes := []func(Track) bool{
		func(t Track) bool { return matches(t) && !t.IsAutoGenerated && !NeedsPoToken(t.LocatorURL) },
		func(t Track) bool { return matches(t) && !NeedsPoToken(t.LocatorURL) },
		func(t Track) bool { return matches(t) && !t.IsAutoGenerated },
		matches,
	}
	for _, ok := range passes {
		for _, t := range tracks {
			if ok(t) {
				return t, true
			}
		}
	}
	return tracks[0], true
}

// OrderTracks dedupes tracks by language and kind, putting those matching
// the preferred prefix first with human tracks ahead of auto-generated ones.
// Everything else keeps its listed order.
func OrderTracks(tracks []Track, prefix string) []Track {
	var human, auto, rest []Track
	seen := make(map[string]bool, len(tracks))
	for _, t := range tracks {
		key := t.LanguageCode + "|" + boolKey(t.IsAutoGenerated)
		if seen[key] {
			continue
		}
		seen[key] = true
		switch {
		case prefix == "" || !strings.HasPrefix(strings.ToLower(t.LanguageCode), strings.ToLower(prefix)):
			rest = append(rest, t)
		case t.IsAutoGenerated:
			auto = append(auto, t)
		default:
			human = append(human, t)
		}
	}
	out := make([]Track, 0, len(human)+len(auto)+len(rest))
	out = append(out, human...)
	out = append(out, auto...)
	return append(out, rest...)
}

func boolKey(b bool) string {
	if b {
		return "asr"
	}
	return ""
}

// FormatURL returns locatorURL with its fmt parameter set for f.
// XML clears fmt since it is the endpoint default.
func FormatURL(locatorURL string, f captions.Format) string {
	u, err := url.Parse(locatorURL)
	if err != nil {
		return locatorURL
	}
	q := u.Query()
	if v := f.QueryValue(); v != "" {
		q.Set("fmt", v)
	} else {
		q.Del("fmt")
	}
	u.RawQuery = q.Encode()
	return u.String()
}
