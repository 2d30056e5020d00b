package captions

import (
	"bytes"
	"encoding/json"
	"strings"
)

type json3Payload struct {
	Events []json3Event `json:"events"`
}

type json3Event struct {
	TStartMs *int64     `json:"tStartMs"`
	Segs     []json3Seg `json:"segs"`
}

type json3Seg struct {
	UTF8 string `json:"utf8"`
}

// DecodeJSON3 decodes a fmt=json3 payload.
// tStartMs is carried forward to events that omit it; events without segs are skipped.
func DecodeJSON3(payload []byte) []Segment {
	payload = trimXSSI(payload)
	var p json3Payload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil
	}
	var out []Segment
	var cur int64
	for _, ev := range p.Events {
		if ev.TStartMs != nil && *ev.TStartMs >= 0 {
			cur = *ev.TStartMs
		}
		if len(ev.Segs) == 0 {
			continue
		}
		var sb strings.Builder
		for _, s := range ev.Segs {
			sb.WriteString(s.UTF8)
		}
		if text := Normalize(sb.String()); text != "" {
			out = append(out, Segment{StartMs: cur, Text: text})
		}
	}
	return out
}

// trimXSSI strips the ")]}'" guard some endpoints prepend to JSON.
func trimXSSI(b []byte) []byte {
	b = bytes.TrimSpace(b)
	if bytes.HasPrefix(b, []byte(")]}'")) {
		b = bytes.TrimSpace(b[4:])
	}
	return b
}
