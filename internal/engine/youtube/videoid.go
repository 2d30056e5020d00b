// Package youtube discovers caption tracks for a video and fetches their payloads
// from YouTube's public endpoints: the Innertube player API, the timedtext list
// endpoint, the watch page and the transcript engagement panel.
package youtube

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidVideoID is returned when no video id can be derived from the input.
var ErrInvalidVideoID = errors.New("invalid YouTube video id or URL")

var rawIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// pathPrefixes are URL path shapes that carry the id as the next segment.
var pathPrefixes = []string{"/embed/", "/shorts/", "/live/", "/v/", "/e/"}

// DeriveVideoID extracts the 11-char video id from a raw id or any known URL shape:
// watch?v=, youtu.be/, embed/, shorts/, live/, v/ on youtube.com, m.youtube.com,
// music.youtube.com and youtube-nocookie.com.
func DeriveVideoID(input string) (string, error) {
	s := strings.TrimSpace(input)
	if rawIDRe.MatchString(s) {
		return s, nil
	}
	if s == "" {
		return "", ErrInvalidVideoID
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", ErrInvalidVideoID
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	var id string
	switch {
	case host == "youtu.be":
		id = firstSegment(u.Path)
	case isYouTubeHost(host):
		if v := u.Query().Get("v"); v != "" {
			id = v
			break
		}
		for _, p := range pathPrefixes {
			if strings.HasPrefix(u.Path, p) {
				id = firstSegment(strings.TrimPrefix(u.Path, p))
				break
			}
		}
	}
	if !rawIDRe.MatchString(id) {
		return "", ErrInvalidVideoID
	}
	return id, nil
}

func isYouTubeHost(host string) bool {
	switch host {
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtube-nocookie.com":
		return true
	}
	return false
}

func firstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexAny(p, "/?&#"); i >= 0 {
		p = p[:i]
	}
	return p
}

// WatchURL returns the canonical watch page URL for id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
