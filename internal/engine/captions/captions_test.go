package captions

import (
	"strings"
	"testing"
)

func TestDecodeJSON3JoinWithTimestamps(t *testing.T) {
	payload := []byte(`{"events":[{"tStartMs":0,"segs":[{"utf8":"Hello"}]},{"tStartMs":5000,"segs":[{"utf8":"World"}]}]}`)
	segs := DecodeJSON3(payload)
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if got := Join(segs, true); got != "[00:00] Hello [00:05] World" {
		t.Errorf("Join() = %q", got)
	}
	if got := Join(segs, false); got != "Hello World" {
		t.Errorf("Join(no ts) = %q", got)
	}
}

func TestDecodeJSON3CarriesStartForward(t *testing.T) {
	payload := []byte(`{"events":[
		{"tStartMs":1000,"segs":[{"utf8":"one "},{"utf8":"two"}]},
		{"segs":[{"utf8":"three"}]},
		{"tStartMs":2000},
		{"tStartMs":3000,"segs":[{"utf8":"\n"}]},
		{"segs":[{"utf8":"  four &amp; five "}]}
	]}`)
	segs := DecodeJSON3(payload)
	want := []Segment{
		{StartMs: 1000, Text: "one two"},
		{StartMs: 1000, Text: "three"},
		{StartMs: 3000, Text: "four & five"},
	}
	if len(segs) != len(want) {
		t.Fatalf("got %d segments (%+v), want %d", len(segs), segs, len(want))
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("seg[%d] = %+v, want %+v", i, segs[i], want[i])
		}
	}
}

func TestDecodeXMLEntities(t *testing.T) {
	segs := DecodeXML([]byte(`<text start="1.5" dur="2">It&amp;#39;s &lt;ok&gt;</text>`))
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if segs[0].Text != "It's <ok>" {
		t.Errorf("text = %q, want %q", segs[0].Text, "It's <ok>")
	}
	if segs[0].StartMs != 1500 {
		t.Errorf("StartMs = %d, want 1500", segs[0].StartMs)
	}
}

func TestDecodeXMLShapes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []Segment
	}{
		{
			name: "transcript root",
			payload: `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0" dur="1.2">first
line</text><text dur="3">no start</text><text start="4.25">&quot;quoted&quot;</text></transcript>`,
			want: []Segment{{0, "first line", false}, {0, "no start", false}, {4250, `"quoted"`, false}},
		},
		{
			name:    "srv3 paragraphs",
			payload: `<timedtext format="3"><body><p t="1200" d="900"><s>Hello</s><s> there</s></p><p t="2500"></p><p t="3000">bye</p></body></timedtext>`,
			want:    []Segment{{1200, "Hello there", false}, {3000, "bye", false}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeXML([]byte(tt.payload))
			if len(got) != len(tt.want) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("seg[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDecodeVTT(t *testing.T) {
	segs := DecodeVTT([]byte("WEBVTT\n\n1\n00:00:01.000 --> 00:00:02.000\nHi there\n"))
	if len(segs) != 1 {
		t.Fatalf("got %d segments (%+v), want 1", len(segs), segs)
	}
	if segs[0].Text != "Hi there" || segs[0].StartMs != 0 || !segs[0].Approximate {
		t.Errorf("segment = %+v", segs[0])
	}
}

func TestDecodeVTTAutoCaptions(t *testing.T) {
	payload := "WEBVTT\r\nKind: captions\r\nLanguage: en\r\n\r\n" +
		"00:00:00.000 --> 00:00:02.000 align:start position:0%\r\n" +
		"so<00:00:00.500><c> today</c>\r\n\r\n" +
		"00:00:02.000 --> 00:00:04.000\r\nso today\r\nwe talk\r\n\r\n" +
		"NOTE this is a comment\r\n\r\n" +
		"01:02.500 --> 01:04.000\r\nabout &amp; things\r\n"
	got := Join(DecodeVTT([]byte(payload)), true)
	if got != "so today we talk about & things" {
		t.Errorf("Join() = %q", got)
	}
}

func TestDecodeVTTKeepsCaptionLinesThatLookLikeMetadata(t *testing.T) {
	payload := "WEBVTT\nKind: captions\nLanguage: en\n\n" +
		"00:00:01.000 --> 00:00:02.000\nLanguage: it shapes how we think\n\n" +
		"00:00:02.000 --> 00:00:03.000\nNOTES from the field\n\n" +
		"00:00:03.000 --> 00:00:04.000\nNo.\n\n" +
		"00:00:04.000 --> 00:00:05.000\nNo.\n\n" +
		"NOTE\nreviewer comment\n\n" +
		"STYLE\n::cue { color: red }\n"
	segs := DecodeVTT([]byte(payload))
	var got []string
	for _, s := range segs {
		got = append(got, s.Text)
	}
	want := []string{"Language: it shapes how we think", "NOTES from the field", "No.", "No."}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("DecodeVTT() = %q, want %q", got, want)
	}
}

func TestDecodeVTTTransitionCuesCollapsed(t *testing.T) {
	payload := "WEBVTT\n\n" +
		"00:00:00.000 --> 00:00:01.990\nhello world\n\n" +
		"00:00:01.990 --> 00:00:02.000\nhello world\n\n" +
		"00:00:02.000 --> 00:00:04.000\nhello world\nsecond line\n"
	got := Join(DecodeVTT([]byte(payload)), true)
	if got != "hello world second line" {
		t.Errorf("Join() = %q", got)
	}
}

func TestDecodersGarbage(t *testing.T) {
	inputs := []string{
		"",
		"garbage",
		"{not json",
		`{"events":"nope"}`,
		"<html><body>nothing</body></html>",
		"<<<>>>&&&",
		"\x00\x01\x02",
		"1\n00:00:01.000 --> 00:00:02.000\n",
	}
	for _, in := range inputs {
		for _, f := range []Format{FormatJSON3, FormatXML, FormatVTT, FormatUnknown} {
			if segs := Decode(f, []byte(in)); len(segs) != 0 {
				t.Errorf("Decode(%q, %q) = %+v, want empty", f, in, segs)
			}
		}
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{`{"events":[]}`, FormatJSON3},
		{")]}'\n{}", FormatJSON3},
		{"WEBVTT\n", FormatVTT},
		{"\xef\xbb\xbfWEBVTT", FormatVTT},
		{`<?xml version="1.0"?><transcript/>`, FormatXML},
		{"  ", FormatUnknown},
		{"hello", FormatUnknown},
	}
	for _, tt := range tests {
		if got := Sniff([]byte(tt.in)); got != tt.want {
			t.Errorf("Sniff(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  a\n b\t\tc  ", "a b c"},
		{"&amp; &lt; &gt; &quot; &#39;", `& < > " '`},
		{"it&#x27;s &apos;x&apos;", "it's 'x'"},
		{"<b>keep tags</b>", "<b>keep tags</b>"},
		{"\n\n", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "00:00"},
		{5000, "00:05"},
		{65999, "01:05"},
		{3725000, "62:05"},
		{-10, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.ms); got != tt.want {
			t.Errorf("FormatTimestamp(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestJoinSkipsTimestampForApproximate(t *testing.T) {
	segs := []Segment{{StartMs: 1000, Text: "timed"}, {Text: "untimed", Approximate: true}}
	if got := Join(segs, true); got != "[00:01] timed untimed" {
		t.Errorf("Join() = %q", got)
	}
	if Length(segs) != len("timed untimed") {
		t.Errorf("Length() = %d", Length(segs))
	}
}

func TestFromTexts(t *testing.T) {
	segs := FromTexts([]string{" a ", "", "b&amp;c"})
	if got := Join(segs, true); got != "a b&c" {
		t.Errorf("Join() = %q", got)
	}
	if !strings.Contains(Join(FromText("x\ny"), false), "x y") {
		t.Error("FromText should normalize")
	}
}
