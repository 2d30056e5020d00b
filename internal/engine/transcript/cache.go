package transcript

import (
	"context"
	"strconv"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
	"github.com/anatolykoptev/go_transcript/internal/engine/youtube"
)

// ResolveCached is Resolve behind the engine's tiered cache. Only successful
// results are stored. A cached result shorter than the call's threshold is
// ignored and the cascade runs again. The bool reports a cache hit.
func (r *Resolver) ResolveCached(ctx context.Context, input string, opts Options) (*Result, bool, error) {
	id, err := youtube.DeriveVideoID(input)
	if err != nil {
		engine.IncrTranscriptRequest()
		return nil, false, &Error{Kind: KindMalformedInput, Message: MsgMalformedInput, Err: err}
	}
	key := engine.CacheKey("transcript", id, r.lang(opts), strconv.FormatBool(opts.Timestamps))
	if res, ok := engine.CacheLoadJSON[Result](ctx, key); ok && captions.Length(res.Segments) >= r.threshold(opts) {
		engine.IncrTranscriptCacheHit()
		return &res, true, nil
	}
	res, err := r.Resolve(ctx, id, opts)
	if err != nil {
		return nil, false, err
	}
	engine.CacheStoreJSON(ctx, key, *res)
	return res, false, nil
}
