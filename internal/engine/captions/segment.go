// Package captions decodes YouTube caption payloads (JSON3, timed-text XML, WebVTT)
// into ordered timed segments.
//
// Every decoder is total: empty or malformed input yields an empty slice, never
// an error or a panic. Segment text is always normalized and non-empty.
package captions

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Segment is one caption cue.
type Segment struct {
	StartMs int64  `json:"startMs"`
	Text    string `json:"text"`
	// Approximate is set when the source format carried no usable timing (VTT lines).
	Approximate bool `json:"approximate,omitempty"`
}

// Join concatenates segment text with single spaces.
// With timestamps, each timed segment is prefixed with "[MM:SS] ".
func Join(segs []Segment, timestamps bool) string {
	var sb strings.Builder
	for _, s := range segs {
		if s.Text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		if timestamps && !s.Approximate {
			sb.WriteByte('[')
			sb.WriteString(FormatTimestamp(s.StartMs))
			sb.WriteString("] ")
		}
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Length returns the rune count of the un-annotated joined text.
func Length(segs []Segment) int {
	return utf8.RuneCountInString(Join(segs, false))
}

// FormatTimestamp renders ms as MM:SS. Minutes are not wrapped at 60.
func FormatTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	sec := ms / 1000
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}

// FromTexts builds untimed segments from plain strings, dropping blanks.
func FromTexts(texts []string) []Segment {
	var out []Segment
	for _, t := range texts {
		if t = Normalize(t); t != "" {
			out = append(out, Segment{Text: t, Approximate: true})
		}
	}
	return out
}

// FromText wraps a single transcript string as one untimed segment.
func FromText(text string) []Segment {
	return FromTexts([]string{text})
}
