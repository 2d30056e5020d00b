package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	TranscriptRequests    atomic.Int64
	TranscriptResolved    atomic.Int64
	TranscriptUnavailable atomic.Int64
	TranscriptCacheHits   atomic.Int64
	LLMCalls              atomic.Int64
	LLMErrors             atomic.Int64
	FetchAttempts         atomic.Int64
	FetchRateLimited      atomic.Int64
	FetchErrors           atomic.Int64
	ProviderRequests      atomic.Int64
	HeadlessRequests      atomic.Int64
	MetadataRequests      atomic.Int64
}

// strategyCounters holds per-strategy "<source>_ok" / "<source>_fail" counters.
var strategyCounters sync.Map // string → *atomic.Int64

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	m := map[string]int64{
		"transcript_requests":    metrics.TranscriptRequests.Load(),
		"transcript_resolved":    metrics.TranscriptResolved.Load(),
		"transcript_unavailable": metrics.TranscriptUnavailable.Load(),
		"transcript_cache_hits":  metrics.TranscriptCacheHits.Load(),
		"llm_calls":              metrics.LLMCalls.Load(),
		"llm_errors":             metrics.LLMErrors.Load(),
		"fetch_attempts":         metrics.FetchAttempts.Load(),
		"fetch_rate_limited":     metrics.FetchRateLimited.Load(),
		"fetch_errors":           metrics.FetchErrors.Load(),
		"provider_requests":      metrics.ProviderRequests.Load(),
		"headless_requests":      metrics.HeadlessRequests.Load(),
		"metadata_requests":      metrics.MetadataRequests.Load(),
		"cache_hits":             hits,
		"cache_misses":           misses,
	}
	strategyCounters.Range(func(k, v any) bool {
		m["strategy_"+k.(string)] = v.(*atomic.Int64).Load()
		return true
	})
	return m
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sub-packages.
func IncrTranscriptRequest()     { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptResolved()    { metrics.TranscriptResolved.Add(1) }
func IncrTranscriptUnavailable() { metrics.TranscriptUnavailable.Add(1) }
func IncrTranscriptCacheHit()    { metrics.TranscriptCacheHits.Add(1) }
func IncrLLMCall()               { metrics.LLMCalls.Add(1) }
func IncrLLMError()              { metrics.LLMErrors.Add(1) }
func IncrProviderRequest()       { metrics.ProviderRequests.Add(1) }
func IncrHeadlessRequest()       { metrics.HeadlessRequests.Add(1) }
func IncrMetadataRequest()       { metrics.MetadataRequests.Add(1) }

// IncrStrategy records the outcome of one cascade strategy.
func IncrStrategy(source string, ok bool) {
	key := source + "_fail"
	if ok {
		key = source + "_ok"
	}
	v, _ := strategyCounters.LoadOrStore(key, new(atomic.Int64))
	v.(*atomic.Int64).Add(1)
}

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
