// go_transcript: YouTube transcript and summary MCP server.
//
// Exposes MCP tools youtube_transcript, youtube_summarize, youtube_video,
// summary_list, summary_get and summary_delete, plus a JSON HTTP API on
// API_PORT for the browser extension.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/anatolykoptev/go_transcript/internal/api"
	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
	"github.com/anatolykoptev/go_transcript/internal/engine/youtube"
	"github.com/anatolykoptev/go_transcript/internal/store"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
	"github.com/anatolykoptev/go_transcript/internal/ytserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8891")
	apiPort = env.Str("API_PORT", "8892")
)

func main() {
	setLogLevel(env.Str("LOG_LEVEL", "info"))
	initEngine()

	slog.Info("starting go_transcript",
		slog.String("port", mcpPort),
		slog.String("api_port", apiPort),
	)

	svc := newService()
	if svc.Store != nil {
		defer svc.Store.Close()
	}

	apiServer := &http.Server{
		Addr:              ":" + apiPort,
		Handler:           api.NewRouter(svc, env.List("CORS_ORIGINS", "")),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * engine.Cfg.ResolveTimeout,
	}
	go func() {
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api server failed", slog.Any("error", err))
		}
	}()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_transcript",
		Version: version,
	}, nil)

	ytserver.RegisterTools(server, svc)
	slog.Info("tools registered", slog.Int("count", ytserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_transcript",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = apiServer.Shutdown(ctx)
}

func initEngine() {
	c := engine.Config{
		PreferredLanguage:       env.Str("PREFERRED_LANGUAGE", "en"),
		MinTranscriptChars:      env.Int("MIN_TRANSCRIPT_CHARS", 50),
		ResolveTimeout:          env.Duration("RESOLVE_TIMEOUT", 60*time.Second),
		FetchAttemptTimeout:     env.Duration("FETCH_ATTEMPT_TIMEOUT", 8*time.Second),
		FetchMaxAttempts:        env.Int("FETCH_MAX_ATTEMPTS", 3),
		FetchBackoffStep:        env.Duration("FETCH_BACKOFF_STEP", 600*time.Millisecond),
		YouTubeRPS:              env.Float("YOUTUBE_RPS", 4),
		ExternalTranscriptURL:   env.Str("EXTERNAL_TRANSCRIPT_URL", ""),
		ExternalTranscriptToken: env.Str("EXTERNAL_TRANSCRIPT_TOKEN", ""),
		GenericTranscriptURL:    env.Str("GENERIC_TRANSCRIPT_URL", ""),
		GenericTranscriptKey:    env.Str("GENERIC_TRANSCRIPT_KEY", ""),
		GenericTranscriptHost:   env.Str("GENERIC_TRANSCRIPT_HOST", ""),
		ProvidersFile:           env.Str("PROVIDERS_FILE", ""),
		HeadlessURL:             env.Str("HEADLESS_URL", ""),
		LLMAPIKey:               env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:      env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:              env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:                env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:          env.Float("LLM_TEMPERATURE", 0.2),
		LLMMaxTokens:            env.Int("LLM_MAX_TOKENS", 4096),
		CacheMaxEntries:         env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval:    env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	// Summarization stays disabled without a key.
	if c.LLMAPIKey != "" {
		c.LLMClient = llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
			llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
			llm.WithMaxTokens(c.LLMMaxTokens),
			llm.WithTemperature(c.LLMTemperature),
			llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
		)
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 6*time.Hour)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}

func newService() *toolutil.Service {
	c := *engine.Cfg
	svc := &toolutil.Service{
		Resolver:   transcript.FromConfig(c),
		Summarizer: engine.DefaultSummarizer(),
		Metadata:   youtube.NewLibrary(c.HTTPClient, youtube.NewClient(nil, c.PreferredLanguage)),
	}
	slog.Info("transcript strategies", slog.Any("order", svc.Resolver.Strategies()))

	st, err := store.Open(context.Background(), env.Str("DATABASE_URL", ""), env.Str("SQLITE_PATH", ""))
	if err != nil {
		slog.Warn("summary store init failed, saving disabled", slog.Any("error", err))
	} else {
		svc.Store = st
		slog.Info("summary store initialized")
	}
	return svc
}

func setLogLevel(level string) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}
