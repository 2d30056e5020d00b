package headless

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
	"github.com/anatolykoptev/go_transcript/internal/engine/youtube"
)

// ErrNoTranscript is returned when the page exposed no decodable captions.
var ErrNoTranscript = errors.New("no transcript in browser session")

// Options tune the browser extractor.
type Options struct {
	// Settle is the fixed delay after load that lets player state populate.
	Settle time.Duration
	// PageTimeout bounds each page operation (navigation, load, one in-page
	// fetch or evaluation) separately.
	PageTimeout time.Duration
	// UIAutomation clicks the player's subtitles button so the player itself
	// requests a caption track, which the network listener then records.
	UIAutomation bool
	Language     string
}

// Extraction is a transcript recovered from a browser session.
type Extraction struct {
	VideoID  string
	Segments []captions.Segment
	// Via names where the captions came from: "network", "player_state" or "list_endpoint".
	Via string
}

// Extractor runs one isolated browser context per request against a shared Pool.
type Extractor struct {
	pool *Pool
	yt   *youtube.Client
	opts Options
}

// NewExtractor creates an Extractor. yt is only used to build endpoint URLs
// and parse responses; every request runs inside the page.
func NewExtractor(pool *Pool, yt *youtube.Client, opts Options) *Extractor {
	if opts.Settle <= 0 {
		opts.Settle = 2 * time.Second
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = 15 * time.Second
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	return &Extractor{pool: pool, yt: yt, opts: opts}
}

// Extract opens the watch page in a fresh incognito context and returns the
// first caption track that decodes to text. The context is always closed.
func (x *Extractor) Extract(ctx context.Context, id, lang string) (*Extraction, error) {
	if lang == "" {
		lang = x.opts.Language
	}
	browser, err := x.pool.Browser()
	if err != nil {
		return nil, err
	}
	incognito, err := browser.Incognito()
	if err != nil {
		x.pool.reset(browser)
		return nil, fmt.Errorf("incognito context: %w", err)
	}
	defer func() {
		if err := incognito.Close(); err != nil {
			slog.Debug("headless: context close failed", slog.Any("error", err))
		}
	}()

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	page = page.Context(ctx)

	sniffer := newSniffer()
	router := page.HijackRequests()
	if err := router.Add("*timedtext*", "", sniffer.observe); err != nil {
		return nil, fmt.Errorf("network listener: %w", err)
	}
	go router.Run()
	defer func() { _ = router.Stop() }()

	if err := page.Timeout(x.opts.PageTimeout).Navigate(x.yt.WatchPageURL(id, lang)); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if err := page.Timeout(x.opts.PageTimeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}
	if err := sleep(ctx, x.opts.Settle); err != nil {
		return nil, err
	}
	if x.opts.UIAutomation {
		x.clickSubtitles(ctx, page)
	}

	s := &session{page: page, yt: x.yt, timeout: x.opts.PageTimeout}
	if segs := s.fetchFirst(ctx, sniffer.urls()); len(segs) > 0 {
		return &Extraction{VideoID: id, Segments: segs, Via: "network"}, nil
	}

	loc := youtube.NewLocator(x.yt, s, s)
	loc.SkipWatchPage = true
	tracks, err := loc.Locate(ctx, id)
	if err == nil {
		t, _ := youtube.SelectTrack(tracks, lang)
		if segs := s.fetchFirst(ctx, []string{t.LocatorURL}); len(segs) > 0 {
			return &Extraction{VideoID: id, Segments: segs, Via: "player_state"}, nil
		}
	}
	// Player-state tracks can be token-bound; the list endpoint yields plain ones.
	if listed, lerr := s.ListTracks(ctx, id); lerr == nil && len(listed) > 0 {
		t, _ := youtube.SelectTrack(listed, lang)
		if segs := s.fetchFirst(ctx, []string{t.LocatorURL}); len(segs) > 0 {
			return &Extraction{VideoID: id, Segments: segs, Via: "list_endpoint"}, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTranscript, err)
	}
	return nil, ErrNoTranscript
}

func (x *Extractor) clickSubtitles(ctx context.Context, page *rod.Page) {
	btn, err := page.Timeout(x.opts.PageTimeout).Element(".ytp-subtitles-button")
	if err != nil {
		slog.Debug("headless: subtitles button not found", slog.Any("error", err))
		return
	}
	if err := btn.Click(proto.InputMouseButtonLeft, 1); err != nil {
		slog.Debug("headless: subtitles click failed", slog.Any("error", err))
		return
	}
	_ = sleep(ctx, x.opts.Settle)
}

// sniffer records caption URLs requested by the page.
type sniffer struct {
	mu   sync.Mutex
	seen []string
}

func newSniffer() *sniffer { return &sniffer{} }

func (s *sniffer) observe(h *rod.Hijack) {
	u := h.Request.URL().String()
	if strings.Contains(u, "/api/timedtext") && !strings.Contains(u, "type=list") {
		s.mu.Lock()
		s.seen = append(s.seen, u)
		s.mu.Unlock()
	}
	h.ContinueRequest(&proto.FetchContinueRequest{})
}

func (s *sniffer) urls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seen...)
}

// session runs requests from inside a page, so they carry its cookies and tokens.
type session struct {
	page    *rod.Page
	yt      *youtube.Client
	timeout time.Duration
}

// eval runs js under its own deadline.
func (s *session) eval(js string, args ...any) (*proto.RuntimeRemoteObject, error) {
	p := s.page
	if s.timeout > 0 {
		p = p.Timeout(s.timeout)
		defer p.CancelTimeout()
	}
	return p.Eval(js, args...)
}

// PlayerTracks reads window.ytInitialPlayerResponse from the live page.
func (s *session) PlayerTracks(_ context.Context, _ string) ([]youtube.Track, error) {
	res, err := s.eval(`() => JSON.stringify(window.ytInitialPlayerResponse || null)`)
	if err != nil {
		return nil, fmt.Errorf("read player state: %w", err)
	}
	var pr youtube.PlayerResponse
	if err := json.Unmarshal([]byte(res.Value.Str()), &pr); err != nil {
		return nil, fmt.Errorf("decode player state: %w", err)
	}
	return pr.Tracks(), nil
}

// ListTracks runs the public list endpoint through the page's fetch.
func (s *session) ListTracks(_ context.Context, id string) ([]youtube.Track, error) {
	body, err := s.fetch(s.yt.ListURL(id))
	if err != nil {
		return nil, err
	}
	return s.yt.ParseTrackList(id, []byte(body))
}

func (s *session) fetch(u string) (string, error) {
	res, err := s.eval(`(u) => fetch(u, {credentials: "include"}).then(r => r.ok ? r.text() : "")`, u)
	if err != nil {
		return "", fmt.Errorf("page fetch: %w", err)
	}
	return res.Value.Str(), nil
}

// fetchFirst tries each URL as JSON3, XML, then VTT and returns the first
// non-empty decode. Decoding happens here, not in the page.
func (s *session) fetchFirst(ctx context.Context, urls []string) []captions.Segment {
	for _, u := range urls {
		if u == "" {
			continue
		}
		for _, f := range captions.Cascade {
			if ctx.Err() != nil {
				return nil
			}
			body, err := s.fetch(youtube.FormatURL(u, f))
			if err != nil || body == "" {
				continue
			}
			segs := captions.Decode(f, []byte(body))
			if len(segs) == 0 {
				segs = captions.Decode(captions.Sniff([]byte(body)), []byte(body))
			}
			if len(segs) > 0 {
				return segs
			}
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
