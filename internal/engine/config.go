package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	PreferredLanguage  string
	MinTranscriptChars int
	ResolveTimeout     time.Duration

	FetchAttemptTimeout time.Duration
	FetchMaxAttempts    int
	FetchBackoffStep    time.Duration
	YouTubeRPS          float64

	ExternalTranscriptURL   string
	ExternalTranscriptToken string
	GenericTranscriptURL    string
	GenericTranscriptKey    string
	GenericTranscriptHost   string
	ProvidersFile           string
	HeadlessURL             string

	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMClient          *llm.Client // nil = summarization disabled

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = watch pages fetched with HTTPClient
}

var cfg = defaultConfig()

// Cfg exposes the engine configuration for sub-packages (youtube, providers, transcript).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
// Zero-valued fields fall back to defaults.
func Init(c Config) {
	d := defaultConfig()
	if c.PreferredLanguage == "" {
		c.PreferredLanguage = d.PreferredLanguage
	}
	if c.MinTranscriptChars <= 0 {
		c.MinTranscriptChars = d.MinTranscriptChars
	}
	if c.ResolveTimeout <= 0 {
		c.ResolveTimeout = d.ResolveTimeout
	}
	if c.FetchAttemptTimeout <= 0 {
		c.FetchAttemptTimeout = d.FetchAttemptTimeout
	}
	if c.FetchMaxAttempts <= 0 {
		c.FetchMaxAttempts = d.FetchMaxAttempts
	}
	if c.FetchBackoffStep <= 0 {
		c.FetchBackoffStep = d.FetchBackoffStep
	}
	if c.HTTPClient == nil {
		c.HTTPClient = d.HTTPClient
	}
	cfg = c
	Cfg = &cfg
	defaultFetcher = NewFetcher(FetcherFromConfig(c)...)
}

func defaultConfig() Config {
	return Config{
		PreferredLanguage:   "en",
		MinTranscriptChars:  50,
		ResolveTimeout:      60 * time.Second,
		FetchAttemptTimeout: 8 * time.Second,
		FetchMaxAttempts:    3,
		FetchBackoffStep:    600 * time.Millisecond,
		YouTubeRPS:          4,
		HTTPClient:          &http.Client{Timeout: 15 * time.Second},
	}
}
