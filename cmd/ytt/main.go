// Command ytt resolves YouTube transcripts from a terminal.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "ytt",
	Short:         "Fetch YouTube transcripts and summaries",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		level := slog.LevelWarn
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		initEngine()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every strategy attempt to stderr")
	rootCmd.PersistentFlags().Bool("json", false, "Print JSON instead of plain text")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// initEngine reads the same environment as the server, minus the listeners.
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
		HTTPClient:              &http.Client{Timeout: 15 * time.Second},
	}
	if key := env.Str("LLM_API_KEY", ""); key != "" {
		c.LLMClient = llm.NewClient(
			env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
			key,
			env.Str("LLM_MODEL", "gemini-2.5-flash"),
			llm.WithFallbackKeys(env.List("LLM_API_KEY_FALLBACKS", "")),
			llm.WithMaxTokens(env.Int("LLM_MAX_TOKENS", 4096)),
			llm.WithTemperature(env.Float("LLM_TEMPERATURE", 0.2)),
			llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
		)
	}
	engine.Init(c)
	engine.InitCache("", time.Minute, 100, 5*time.Minute)
}

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// cliError replaces resolver failures with their caller-facing message.
func cliError(err error) error {
	var te *transcript.Error
	if errors.As(err, &te) {
		return errors.New(transcript.Message(err))
	}
	return err
}
