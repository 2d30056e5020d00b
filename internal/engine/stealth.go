package engine

import (
	stealth "github.com/anatolykoptev/go-stealth"
)

// BrowserClient is the Chrome-fingerprinted client used for watch pages.
type BrowserClient = stealth.BrowserClient

// ChromeHeaders returns common Chrome browser headers with a random user agent.
func ChromeHeaders() map[string]string { return stealth.ChromeHeaders() }

// RandomUserAgent returns a desktop browser user agent.
func RandomUserAgent() string { return stealth.RandomUserAgent() }

// WatchPageHeaders returns headers for a YouTube HTML request in the given language.
// The consent cookie skips the EU interstitial that hides ytInitialPlayerResponse.
func WatchPageHeaders(lang string) map[string]string {
	h := ChromeHeaders()
	if lang == "" {
		lang = "en"
	}
	h["accept-language"] = lang + ",en-US;q=0.8,en;q=0.5"
	h["cookie"] = "CONSENT=YES+cb; SOCS=CAI"
	return h
}
