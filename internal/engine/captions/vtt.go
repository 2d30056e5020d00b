package captions

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	vttTimingRe = regexp.MustCompile(`^((?:\d{1,2}:)?\d{1,2}:\d{2}[.,]\d{3})\s*-->\s*((?:\d{1,2}:)?\d{1,2}:\d{2}[.,]\d{3})`)
	vttIndexRe  = regexp.MustCompile(`^\d+$`)
	vttTagRe    = regexp.MustCompile(`<[^>]*>`)
)

// transitionCue is the upper bound on the near-zero cues auto-captions emit
// between rolling lines.
const transitionCue = 50 // ms

// DecodeVTT decodes WebVTT into untimed segments, one per caption line.
// Cue timing is discarded; every segment has StartMs 0 and Approximate set.
// The rolling pattern of auto-captions, where a cue repeats the previous
// cue's last line, is collapsed. Other repeats are kept.
func DecodeVTT(payload []byte) []Segment {
	text := strings.TrimPrefix(string(payload), "\ufeff")
	if !strings.HasPrefix(strings.TrimSpace(text), "WEBVTT") {
		return nil
	}
	var out []Segment
	prevLast := ""
	for i, block := range vttBlocks(text) {
		if i == 0 {
			block = vttHeaderRest(block)
			if len(block) == 0 {
				continue
			}
		} else if isVTTMetaBlock(block[0]) {
			continue
		}
		lines, transition := vttCue(block)
		if len(lines) == 0 {
			continue
		}
		if prevLast != "" && lines[0] == prevLast && (len(lines) > 1 || transition) {
			lines = lines[1:]
		}
		for _, l := range lines {
			out = append(out, Segment{Text: l, Approximate: true})
		}
		if len(lines) > 0 {
			prevLast = lines[len(lines)-1]
		}
	}
	return out
}

// vttBlocks splits text into blank-line separated blocks of trimmed lines.
func vttBlocks(text string) [][]string {
	var blocks [][]string
	var cur []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(cur) > 0 {
				blocks = append(blocks, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

// vttHeaderRest drops the WEBVTT line and its Kind:/Language: metadata and
// returns whatever cue lines follow without a separating blank line.
func vttHeaderRest(block []string) []string {
	rest := block[1:]
	for len(rest) > 0 && (strings.HasPrefix(rest[0], "Kind:") || strings.HasPrefix(rest[0], "Language:")) {
		rest = rest[1:]
	}
	return rest
}

// isVTTMetaBlock reports whether a block opens with NOTE, STYLE or REGION.
func isVTTMetaBlock(first string) bool {
	for _, kw := range []string{"NOTE", "STYLE", "REGION"} {
		if first == kw || strings.HasPrefix(first, kw+" ") || strings.HasPrefix(first, kw+"\t") {
			return true
		}
	}
	return false
}

// vttCue returns the cleaned text lines of a cue block and whether the cue is
// a near-zero transition cue.
func vttCue(block []string) ([]string, bool) {
	body := block
	transition := false
	for i, line := range block {
		if m := vttTimingRe.FindStringSubmatch(line); m != nil {
			body = block[i+1:]
			transition = vttMillis(m[2])-vttMillis(m[1]) < transitionCue
			break
		}
	}
	var lines []string
	for i, line := range body {
		if len(body) == len(block) && i == 0 && vttIndexRe.MatchString(line) {
			continue
		}
		if clean := Normalize(vttTagRe.ReplaceAllString(line, "")); clean != "" {
			lines = append(lines, clean)
		}
	}
	return lines, transition
}

// vttMillis parses "[hh:]mm:ss.mmm" into milliseconds.
func vttMillis(ts string) int64 {
	ts = strings.ReplaceAll(ts, ",", ".")
	secPart, msPart, _ := strings.Cut(ts, ".")
	ms, _ := strconv.ParseInt(msPart, 10, 64)
	var total int64
	for _, p := range strings.Split(secPart, ":") {
		n, _ := strconv.ParseInt(p, 10, 64)
		total = total*60 + n
	}
	return total*1000 + ms
}
