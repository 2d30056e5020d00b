package captions

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
)

// DecodeXML decodes timed-text XML in either shape:
//
//	<text start="1.5" dur="2">content</text>   (seconds, srv1 / list-and-fetch)
//	<p t="1500" d="2000"><s>con</s><s>tent</s></p>   (milliseconds, srv3)
//
// Missing attributes default to 0.
func DecodeXML(payload []byte) []Segment {
	dec := xml.NewDecoder(bytes.NewReader(payload))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	var (
		out   []Segment
		open  bool
		start int64
		buf   strings.Builder
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "text":
				open, start = true, secondsAttr(t.Attr, "start")
				buf.Reset()
			case "p":
				open, start = true, millisAttr(t.Attr, "t")
				buf.Reset()
			case "br":
				if open {
					buf.WriteByte(' ')
				}
			}
		case xml.CharData:
			if open {
				buf.Write(t)
			}
		case xml.EndElement:
			if open && (t.Name.Local == "text" || t.Name.Local == "p") {
				if text := Normalize(buf.String()); text != "" {
					out = append(out, Segment{StartMs: start, Text: text})
				}
				open = false
			}
		}
	}
	return out
}

func attr(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func secondsAttr(attrs []xml.Attr, name string) int64 {
	f, err := strconv.ParseFloat(attr(attrs, name), 64)
	if err != nil || f < 0 {
		return 0
	}
	return int64(f*1000 + 0.5)
}

func millisAttr(attrs []xml.Attr, name string) int64 {
	n, err := strconv.ParseInt(attr(attrs, name), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
