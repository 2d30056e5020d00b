// Package headless extracts transcripts by driving a real browser session.
// It is the last line of defense when every network-level strategy is blocked,
// and runs as its own service (cmd/ytheadless).
package headless

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Pool owns the single shared browser. It is launched on first use, reused
// across requests and torn down only by Close.
type Pool struct {
	mu       sync.Mutex
	bin      string
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewPool returns an unlaunched Pool. bin may be empty to let rod locate or download Chromium.
func NewPool(bin string) *Pool {
	return &Pool{bin: bin}
}

// Browser returns the shared browser, launching it if needed.
func (p *Pool) Browser() (*rod.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.browser != nil {
		return p.browser, nil
	}

	l := launcher.New().
		Headless(true).
		Set("mute-audio").
		Set("disable-blink-features", "AutomationControlled")
	if p.bin != "" {
		l = l.Bin(p.bin)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	p.launcher, p.browser = l, b
	slog.Info("headless: browser launched", slog.String("control_url", u))
	return b, nil
}

// Close shuts the browser down. Safe to call when never launched.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.browser == nil {
		return nil
	}
	err := p.browser.Close()
	p.launcher.Cleanup()
	p.browser, p.launcher = nil, nil
	return err
}

// reset drops a browser that stopped responding so the next call relaunches it.
func (p *Pool) reset(b *rod.Browser) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.browser != b {
		return
	}
	_ = b.Close()
	if p.launcher != nil {
		p.launcher.Kill()
	}
	p.browser, p.launcher = nil, nil
	slog.Warn("headless: browser reset")
}
