// ytheadless: standalone browser-session transcript extractor.
//
// POST /extract {videoId|videoUrl} → {success, transcript}. The main service
// calls it as the last strategy of its cascade when HEADLESS_URL is set.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/youtube"
	"github.com/anatolykoptev/go_transcript/internal/headless"
)

var version = "dev"

func main() {
	setLogLevel(env.Str("LOG_LEVEL", "info"))

	port := env.Str("HEADLESS_PORT", "8893")
	lang := env.Str("PREFERRED_LANGUAGE", "en")
	engine.Init(engine.Config{PreferredLanguage: lang})

	pool := headless.NewPool(env.Str("BROWSER_BIN", ""))
	x := headless.NewExtractor(pool, youtube.NewClient(nil, lang), headless.Options{
		Settle:       env.Duration("HEADLESS_SETTLE", 2*time.Second),
		PageTimeout:  env.Duration("HEADLESS_PAGE_TIMEOUT", 15*time.Second),
		UIAutomation: env.Str("HEADLESS_UI_AUTOMATION", "") == "true",
		Language:     lang,
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           headless.NewRouter(x, 45*time.Second),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("starting ytheadless", slog.String("port", port), slog.String("version", version))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", slog.Any("error", err))
	}
	if err := pool.Close(); err != nil {
		slog.Warn("browser close failed", slog.Any("error", err))
	}
}

func setLogLevel(level string) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}
