// Package transcript resolves a YouTube video into a plain-text transcript by
// running acquisition strategies in a fixed order until one yields enough text.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
	"github.com/anatolykoptev/go_transcript/internal/engine/youtube"
)

// Source names the strategy that produced a transcript.
type Source string

// Cascade order.
const (
	SourceExternal      Source = "external_provider"
	SourceLibrary       Source = "library"
	SourceCaptionScrape Source = "caption_scrape"
	SourceDirectTrack   Source = "direct_track"
	SourceAllLanguages  Source = "timedtext_all_langs"
	SourceSecondary     Source = "secondary_providers"
	SourceHeadless      Source = "headless"
)

// Request is what a strategy receives.
type Request struct {
	VideoID  string
	Language string
	// MinChars lets strategies with inner loops stop at the first sufficient candidate.
	MinChars int
}

// Strategy is one acquisition method. Implementations return whatever segments
// they found; judging sufficiency is the Resolver's job.
type Strategy interface {
	Name() Source
	Acquire(ctx context.Context, req Request) ([]captions.Segment, error)
}

// Options are per-call resolution options.
type Options struct {
	Language   string `json:"language,omitempty"`
	Timestamps bool   `json:"timestamps,omitempty"`
	MinChars   int    `json:"minChars,omitempty"`
}

// Result is a resolved transcript.
type Result struct {
	VideoID          string             `json:"videoId"`
	Text             string             `json:"transcript"`
	Source           Source             `json:"source"`
	SufficientLength bool               `json:"sufficientLength"`
	Language         string             `json:"language"`
	Segments         []captions.Segment `json:"segments,omitempty"`
	Attempts         []Attempt          `json:"attempts,omitempty"`
}

// Attempt records one strategy run.
type Attempt struct {
	Strategy  Source        `json:"strategy"`
	Succeeded bool          `json:"succeeded"`
	ErrorKind Kind          `json:"errorKind,omitempty"`
	Chars     int           `json:"chars"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Resolver runs strategies in order. Safe for concurrent use; it holds no per-call state.
type Resolver struct {
	strategies []Strategy
	minChars   int
	timeout    time.Duration
	language   string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMinChars sets the default sufficiency threshold.
func WithMinChars(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.minChars = n
		}
	}
}

// WithTimeout bounds a whole resolution. Zero disables the deadline.
func WithTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.timeout = d }
}

// WithLanguage sets the default preferred language prefix.
func WithLanguage(lang string) ResolverOption {
	return func(r *Resolver) {
		if lang != "" {
			r.language = lang
		}
	}
}

// NewResolver creates a Resolver over strategies, defaulting its threshold,
// deadline and language from engine.Cfg.
func NewResolver(strategies []Strategy, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		strategies: strategies,
		minChars:   engine.Cfg.MinTranscriptChars,
		timeout:    engine.Cfg.ResolveTimeout,
		language:   engine.Cfg.PreferredLanguage,
	}
	for _, o := range opts {
		o(r)
	}
	if r.minChars <= 0 {
		r.minChars = 1
	}
	if r.language == "" {
		r.language = "en"
	}
	return r
}

// Strategies returns the cascade order.
func (r *Resolver) Strategies() []Source {
	out := make([]Source, len(r.strategies))
	for i, s := range r.strategies {
		out[i] = s.Name()
	}
	return out
}

func (r *Resolver) lang(opts Options) string {
	if l := strings.TrimSpace(opts.Language); l != "" {
		return l
	}
	return r.language
}

// threshold is the effective sufficiency threshold for a call.
func (r *Resolver) threshold(opts Options) int {
	if opts.MinChars > 0 {
		return opts.MinChars
	}
	return r.minChars
}

// Resolve derives the video id from input and runs the cascade. The first
// strategy whose un-annotated text reaches the threshold wins; later
// strategies are not invoked. Errors are *Error values.
func (r *Resolver) Resolve(ctx context.Context, input string, opts Options) (*Result, error) {
	engine.IncrTranscriptRequest()
	id, err := youtube.DeriveVideoID(input)
	if err != nil {
		return nil, &Error{Kind: KindMalformedInput, Message: MsgMalformedInput, Err: err}
	}

	minChars := r.threshold(opts)
	req := Request{VideoID: id, Language: r.lang(opts), MinChars: minChars}

	parent := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	attempts := make([]Attempt, 0, len(r.strategies))
	for _, s := range r.strategies {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()
		segs, err := run(ctx, s, req)
		a := Attempt{Strategy: s.Name(), Chars: captions.Length(segs), Elapsed: time.Since(start)}

		switch {
		case err != nil && a.Chars == 0:
			a.ErrorKind = classify(err)
			slog.Warn("transcript: strategy failed",
				slog.String("id", id),
				slog.String("strategy", string(s.Name())),
				slog.String("kind", string(a.ErrorKind)),
				slog.Any("error", err))
		case a.Chars < minChars:
			a.ErrorKind = KindInsufficient
			slog.Debug("transcript: candidate too short",
				slog.String("id", id),
				slog.String("strategy", string(s.Name())),
				slog.Int("chars", a.Chars),
				slog.Int("min", minChars))
		default:
			a.Succeeded = true
		}
		attempts = append(attempts, a)
		engine.IncrStrategy(string(s.Name()), a.Succeeded)

		if a.Succeeded {
			engine.IncrTranscriptResolved()
			slog.Info("transcript: resolved",
				slog.String("id", id),
				slog.String("strategy", string(s.Name())),
				slog.Int("chars", a.Chars),
				slog.Duration("elapsed", a.Elapsed))
			return &Result{
				VideoID:          id,
				Text:             captions.Join(segs, opts.Timestamps),
				Source:           s.Name(),
				SufficientLength: true,
				Language:         req.Language,
				Segments:         segs,
				Attempts:         attempts,
			}, nil
		}
	}

	if err := parent.Err(); err != nil {
		return nil, &Error{Kind: KindInternal, Message: MsgInternal, Err: err, Attempts: attempts}
	}
	engine.IncrTranscriptUnavailable()
	return nil, &Error{Kind: KindUnavailable, Message: MsgUnavailable, Attempts: attempts}
}

// run calls s, converting a panic into an error.
func run(ctx context.Context, s Strategy, req Request) (segs []captions.Segment, err error) {
	defer func() {
		if p := recover(); p != nil {
			segs = nil
			err = fmt.Errorf("strategy %s panicked: %v", s.Name(), p)
		}
	}()
	return s.Acquire(ctx, req)
}

// IsUnavailable reports whether err means no strategy produced a transcript.
func IsUnavailable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindUnavailable
}
