package captions

import (
	"bytes"
)

// Format identifies a caption payload encoding.
type Format string

const (
	FormatUnknown Format = ""
	FormatJSON3   Format = "json3"
	FormatXML     Format = "xml"
	FormatVTT     Format = "vtt"
)

// Cascade is the fetch preference order for a single caption URL.
var Cascade = []Format{FormatJSON3, FormatXML, FormatVTT}

// Sniff guesses the payload format from its first bytes.
func Sniff(payload []byte) Format {
	b := bytes.TrimSpace(bytes.TrimPrefix(payload, []byte("\xef\xbb\xbf")))
	switch {
	case len(b) == 0:
		return FormatUnknown
	case b[0] == '{' || bytes.HasPrefix(b, []byte(")]}'")):
		return FormatJSON3
	case bytes.HasPrefix(b, []byte("WEBVTT")):
		return FormatVTT
	case b[0] == '<':
		return FormatXML
	}
	return FormatUnknown
}

// Decode dispatches to the decoder for f, sniffing when f is FormatUnknown.
func Decode(f Format, payload []byte) []Segment {
	if f == FormatUnknown {
		f = Sniff(payload)
	}
	switch f {
	case FormatJSON3:
		return DecodeJSON3(payload)
	case FormatXML:
		return DecodeXML(payload)
	case FormatVTT:
		return DecodeVTT(payload)
	}
	return nil
}

// QueryValue returns the timedtext "fmt" parameter for f. XML is the
// endpoint default, so it maps to "".
func (f Format) QueryValue() string {
	switch f {
	case FormatJSON3:
		return "json3"
	case FormatVTT:
		return "vtt"
	}
	return ""
}
