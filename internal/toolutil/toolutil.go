// Package toolutil holds the operations shared by the HTTP API and the MCP
// tools: resolve a transcript, summarize a video, look up metadata and manage
// saved summaries.
package toolutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
	"github.com/anatolykoptev/go_transcript/internal/engine/youtube"
	"github.com/anatolykoptev/go_transcript/internal/store"
)

// ErrStoreDisabled is returned by summary operations when no store is configured.
var ErrStoreDisabled = errors.New("summary storage is not configured")

// Service wires the resolver to its collaborators. Metadata and Store may be nil.
type Service struct {
	Resolver   *transcript.Resolver
	Summarizer engine.Summarizer
	Metadata   youtube.MetadataProvider
	Store      store.Store
}

// Transcript resolves one video through the cache.
func (s *Service) Transcript(ctx context.Context, in engine.TranscriptInput) (*engine.TranscriptOutput, error) {
	res, cached, err := s.Resolver.ResolveCached(ctx, in.Input(), transcript.Options{
		Language:   in.Language,
		Timestamps: in.Timestamps,
		MinChars:   in.MinChars,
	})
	if err != nil {
		return nil, err
	}
	return &engine.TranscriptOutput{
		Success:    true,
		VideoID:    res.VideoID,
		Transcript: res.Text,
		Source:     string(res.Source),
		Language:   res.Language,
		Chars:      utf8.RuneCountInString(res.Text),
		Cached:     cached,
	}, nil
}

// Summarize resolves the transcript, summarizes it and optionally saves the result.
func (s *Service) Summarize(ctx context.Context, in engine.SummarizeInput) (*engine.SummarizeOutput, error) {
	if in.Save && s.Store == nil {
		return nil, ErrStoreDisabled
	}
	tr, err := s.Transcript(ctx, in.Transcript())
	if err != nil {
		return nil, err
	}

	out := &engine.SummarizeOutput{Success: true, VideoID: tr.VideoID, Source: tr.Source}
	if md, err := s.Video(ctx, tr.VideoID); err == nil {
		out.Title, out.Duration = md.Title, md.Duration
	} else {
		slog.Debug("summarize: metadata unavailable", slog.String("id", tr.VideoID), slog.Any("error", err))
	}

	var sum *engine.Summary
	err = engine.TrackOperation(ctx, "summarize", func(ctx context.Context) error {
		var err error
		sum, err = s.Summarizer.Summarize(ctx, engine.SummaryRequest{
			VideoID:    tr.VideoID,
			Title:      out.Title,
			Transcript: tr.Transcript,
			Settings:   in.Settings,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	if sum.Title == "" {
		sum.Title = out.Title
	}
	out.Summary = sum
	if in.IncludeTranscript {
		out.Transcript = tr.Transcript
	}

	if in.Save {
		rec := &store.Record{
			VideoID:    tr.VideoID,
			Title:      sum.Title,
			Language:   tr.Language,
			Source:     tr.Source,
			Transcript: tr.Transcript,
			Summary:    *sum,
			Settings:   in.Settings,
		}
		if err := s.Store.Save(ctx, rec); err != nil {
			return nil, err
		}
		out.ID = rec.ID
	}
	return out, nil
}

// Video returns metadata for input (URL or id), cached like transcripts.
func (s *Service) Video(ctx context.Context, input string) (*youtube.Metadata, error) {
	if s.Metadata == nil {
		return nil, errors.New("metadata provider is not configured")
	}
	id, err := youtube.DeriveVideoID(input)
	if err != nil {
		return nil, &transcript.Error{Kind: transcript.KindMalformedInput, Message: transcript.MsgMalformedInput, Err: err}
	}
	key := engine.CacheKey("video", id)
	if md, ok := engine.CacheLoadJSON[youtube.Metadata](ctx, key); ok {
		return &md, nil
	}
	md, err := s.Metadata.Metadata(ctx, id)
	if err != nil {
		return nil, err
	}
	engine.CacheStoreJSON(ctx, key, *md)
	return md, nil
}

// ListSummaries returns saved summaries, newest first.
func (s *Service) ListSummaries(ctx context.Context, limit int) ([]store.Record, error) {
	if s.Store == nil {
		return nil, ErrStoreDisabled
	}
	return s.Store.List(ctx, limit)
}

// GetSummary returns one saved summary.
func (s *Service) GetSummary(ctx context.Context, id string) (*store.Record, error) {
	if s.Store == nil {
		return nil, ErrStoreDisabled
	}
	return s.Store.Get(ctx, id)
}

// DeleteSummary removes one saved summary.
func (s *Service) DeleteSummary(ctx context.Context, id string) error {
	if s.Store == nil {
		return ErrStoreDisabled
	}
	return s.Store.Delete(ctx, id)
}
