package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
)

const testID = "jNQXAC9IVRw"

type fakeStrategy struct {
	name  Source
	segs  []captions.Segment
	err   error
	panic bool
	calls int
	got   Request
}

func (f *fakeStrategy) Name() Source { return f.name }

func (f *fakeStrategy) Acquire(_ context.Context, req Request) ([]captions.Segment, error) {
	f.calls++
	f.got = req
	if f.panic {
		panic("boom")
	}
	return f.segs, f.err
}

func textOf(n int) []captions.Segment {
	return captions.FromText(strings.Repeat("x", n))
}

func newTestResolver(ss ...Strategy) *Resolver {
	return NewResolver(ss, WithMinChars(50), WithTimeout(5*time.Second), WithLanguage("en"))
}

func TestResolveShortCircuitsOnSufficient(t *testing.T) {
	short := &fakeStrategy{name: SourceExternal, segs: textOf(20)}
	good := &fakeStrategy{name: SourceLibrary, segs: textOf(60)}
	after := &fakeStrategy{name: SourceCaptionScrape, segs: textOf(500)}

	res, err := newTestResolver(short, good, after).Resolve(context.Background(), testID, Options{})
	require.NoError(t, err)
	assert.Equal(t, SourceLibrary, res.Source)
	assert.True(t, res.SufficientLength)
	assert.Equal(t, 1, short.calls)
	assert.Equal(t, 1, good.calls)
	assert.Equal(t, 0, after.calls, "strategies after a sufficient one must not run")

	require.Len(t, res.Attempts, 2)
	assert.Equal(t, KindInsufficient, res.Attempts[0].ErrorKind)
	assert.True(t, res.Attempts[1].Succeeded)
}

func TestResolveThresholdIsInclusive(t *testing.T) {
	exact := &fakeStrategy{name: SourceExternal, segs: textOf(50)}
	next := &fakeStrategy{name: SourceLibrary, segs: textOf(60)}

	res, err := newTestResolver(exact, next).Resolve(context.Background(), testID, Options{})
	require.NoError(t, err)
	assert.Equal(t, SourceExternal, res.Source)
	assert.Equal(t, 0, next.calls)
}

func TestResolvePerCallMinChars(t *testing.T) {
	s := &fakeStrategy{name: SourceExternal, segs: textOf(30)}
	res, err := newTestResolver(s).Resolve(context.Background(), testID, Options{MinChars: 20})
	require.NoError(t, err)
	assert.Equal(t, 20, s.got.MinChars)
	assert.Len(t, res.Text, 30)
}

func TestResolveAllEmpty(t *testing.T) {
	ss := []*fakeStrategy{
		{name: SourceExternal},
		{name: SourceLibrary, err: errors.New("library down")},
		{name: SourceCaptionScrape, segs: textOf(10)},
		{name: SourceDirectTrack},
		{name: SourceAllLanguages},
		{name: SourceSecondary},
	}
	var strategies []Strategy
	for _, s := range ss {
		strategies = append(strategies, s)
	}

	res, err := newTestResolver(strategies...).Resolve(context.Background(), testID, Options{})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
	assert.Equal(t, "Transcript unavailable", Message(err))
	assert.True(t, IsUnavailable(err))

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Len(t, e.Attempts, len(ss))
	for _, s := range ss {
		assert.Equal(t, 1, s.calls, s.name)
	}
}

func TestResolveMalformedInput(t *testing.T) {
	s := &fakeStrategy{name: SourceExternal, segs: textOf(100)}
	for _, input := range []string{"", "not a video", "https://example.com/watch?v=jNQXAC9IVRw", "https://www.youtube.com/watch?v=short"} {
		_, err := newTestResolver(s).Resolve(context.Background(), input, Options{})
		require.Error(t, err, input)
		assert.Equal(t, http.StatusBadRequest, HTTPStatus(err), input)
	}
	assert.Equal(t, 0, s.calls, "no strategy runs for malformed input")
}

func TestResolveContainsPanicsAndErrors(t *testing.T) {
	panicky := &fakeStrategy{name: SourceExternal, panic: true}
	failing := &fakeStrategy{name: SourceLibrary, err: &engine.FetchError{URL: "u", Status: 429, Attempts: 3, Err: errors.New("HTTP 429")}}
	good := &fakeStrategy{name: SourceDirectTrack, segs: textOf(80)}

	res, err := newTestResolver(panicky, failing, good).Resolve(context.Background(), testID, Options{})
	require.NoError(t, err)
	assert.Equal(t, SourceDirectTrack, res.Source)
	assert.Equal(t, KindInternal, res.Attempts[0].ErrorKind)
	assert.Equal(t, KindFetchFailure, res.Attempts[1].ErrorKind)
}

func TestResolveTimestamps(t *testing.T) {
	s := &fakeStrategy{name: SourceDirectTrack, segs: []captions.Segment{
		{StartMs: 0, Text: strings.Repeat("a", 30)},
		{StartMs: 65000, Text: strings.Repeat("b", 30)},
	}}
	res, err := newTestResolver(s).Resolve(context.Background(), "https://youtu.be/"+testID, Options{Timestamps: true})
	require.NoError(t, err)
	assert.Equal(t, "[00:00] "+strings.Repeat("a", 30)+" [01:05] "+strings.Repeat("b", 30), res.Text)
	assert.Equal(t, testID, res.VideoID)
}

func TestResolveLanguageDefaults(t *testing.T) {
	s := &fakeStrategy{name: SourceDirectTrack, segs: textOf(60)}
	r := newTestResolver(s)

	_, err := r.Resolve(context.Background(), testID, Options{})
	require.NoError(t, err)
	assert.Equal(t, "en", s.got.Language)

	_, err = r.Resolve(context.Background(), testID, Options{Language: "de"})
	require.NoError(t, err)
	assert.Equal(t, "de", s.got.Language)
}

func TestResolveCanceled(t *testing.T) {
	s := &fakeStrategy{name: SourceDirectTrack, segs: textOf(60)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestResolver(s).Resolve(ctx, testID, Options{})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
	assert.Equal(t, 0, s.calls)
}

func TestResolveDeadlineIsUnavailable(t *testing.T) {
	slow := Func(SourceExternal, func(ctx context.Context, _ Request) ([]captions.Segment, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	next := &fakeStrategy{name: SourceLibrary, segs: textOf(60)}
	r := NewResolver([]Strategy{slow, next}, WithMinChars(50), WithTimeout(20*time.Millisecond))

	_, err := r.Resolve(context.Background(), testID, Options{})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
	assert.Equal(t, 0, next.calls)
}

// A direct-track strategy returning a 150-char JSON3 transcript resolves the
// video and nothing else is invoked.
func TestResolveEndToEndDirectTrack(t *testing.T) {
	first := strings.TrimSpace(strings.Repeat("caption ", 12))
	second := strings.TrimSpace(strings.Repeat("text ", 11))
	payload, err := json.Marshal(map[string]any{
		"events": []map[string]any{
			{"tStartMs": 0, "segs": []map[string]string{{"utf8": first}}},
			{"tStartMs": 4000},
			{"tStartMs": 5000, "segs": []map[string]string{{"utf8": second}}},
		},
	})
	require.NoError(t, err)

	before := &fakeStrategy{name: SourceCaptionScrape}
	direct := 0
	directTrack := Func(SourceDirectTrack, func(_ context.Context, req Request) ([]captions.Segment, error) {
		direct++
		assert.Equal(t, testID, req.VideoID)
		return captions.DecodeJSON3(payload), nil
	})
	after := []*fakeStrategy{
		{name: SourceAllLanguages, segs: textOf(500)},
		{name: SourceSecondary, segs: textOf(500)},
		{name: SourceHeadless, segs: textOf(500)},
	}
	ss := []Strategy{before, directTrack}
	for _, s := range after {
		ss = append(ss, s)
	}

	res, err := newTestResolver(ss...).Resolve(context.Background(), "https://www.youtube.com/watch?v="+testID, Options{})
	require.NoError(t, err)
	assert.Len(t, []rune(res.Text), 150)
	assert.Equal(t, first+" "+second, res.Text)
	assert.Equal(t, SourceDirectTrack, res.Source)
	assert.Equal(t, 1, direct)
	for _, s := range after {
		assert.Equal(t, 0, s.calls, s.name)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{&engine.FetchError{Status: 429, Err: errors.New("x")}, KindFetchFailure},
		{context.Canceled, KindInternal},
		{errors.New("weird"), KindInternal},
		{&Error{Kind: KindNoTracks}, KindNoTracks},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classify(tt.err), tt.err.Error())
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(&Error{Kind: KindMalformedInput}))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(&Error{Kind: KindUnavailable}))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(&Error{Kind: KindInternal}))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("x")))
	assert.Equal(t, MsgInternal, Message(errors.New("x")))
}
