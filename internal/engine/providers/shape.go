package providers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
)

// Fields overrides the per-item keys used when a response is a segment list.
type Fields struct {
	Text      string
	Start     string
	StartUnit string // "s" or "ms"
}

var (
	textKeys    = []string{"text", "subtitle", "content", "utf8", "caption"}
	startMsKeys = []string{"startMs", "tStartMs", "offsetMs", "start_ms"}
	startSKeys  = []string{"start", "offset", "startTime", "start_time"}
	// containerKeys are probed, in order, when the addressed value is an object.
	containerKeys = []string{"transcript", "transcription", "segments", "captions", "subtitles", "content", "text", "data", "result"}
)

// ExtractSegments normalizes a provider JSON response into segments.
// The value at path may be a string, a list of strings, a list of
// {text,start} objects, or an object wrapping one of those.
func ExtractSegments(raw []byte, path string, f Fields) ([]captions.Segment, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if path != "" {
		for _, key := range strings.Split(path, ".") {
			next, ok := step(v, key)
			if !ok {
				return nil, fmt.Errorf("path %q: %q not found", path, key)
			}
			v = next
		}
	}
	return fromValue(v, f, 0), nil
}

func step(v any, key string) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		next, ok := t[key]
		return next, ok
	case []any:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(t) {
			return nil, false
		}
		return t[i], true
	}
	return nil, false
}

func fromValue(v any, f Fields, depth int) []captions.Segment {
	if depth > 3 {
		return nil
	}
	switch t := v.(type) {
	case string:
		return captions.FromText(t)
	case []any:
		var out []captions.Segment
		for _, item := range t {
			switch it := item.(type) {
			case string:
				out = append(out, captions.FromText(it)...)
			case map[string]any:
				if seg, ok := segmentFromMap(it, f); ok {
					out = append(out, seg)
				} else {
					out = append(out, fromValue(it, f, depth+1)...)
				}
			}
		}
		return out
	case map[string]any:
		for _, k := range containerKeys {
			if inner, ok := t[k]; ok {
				if segs := fromValue(inner, f, depth+1); len(segs) > 0 {
					return segs
				}
			}
		}
	}
	return nil
}

func segmentFromMap(m map[string]any, f Fields) (captions.Segment, bool) {
	keys := textKeys
	if f.Text != "" {
		keys = []string{f.Text}
	}
	var text string
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			text = captions.Normalize(s)
			break
		}
	}
	if text == "" {
		return captions.Segment{}, false
	}
	seg := captions.Segment{Text: text, Approximate: true}
	if ms, ok := startOf(m, f); ok {
		seg.StartMs, seg.Approximate = ms, false
	}
	return seg, true
}

func startOf(m map[string]any, f Fields) (int64, bool) {
	if f.Start != "" {
		n, ok := number(m[f.Start])
		if !ok {
			return 0, false
		}
		if f.StartUnit == "ms" {
			return int64(n), true
		}
		return int64(n*1000 + 0.5), true
	}
	for _, k := range startMsKeys {
		if n, ok := number(m[k]); ok {
			return int64(n), true
		}
	}
	for _, k := range startSKeys {
		if n, ok := number(m[k]); ok {
			return int64(n*1000 + 0.5), true
		}
	}
	return 0, false
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, t >= 0
	case string:
		n, err := strconv.ParseFloat(t, 64)
		return n, err == nil && n >= 0
	}
	return 0, false
}
