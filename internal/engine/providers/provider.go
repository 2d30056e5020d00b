// Package providers implements third-party HTTP transcript services: the
// primary external provider, the generic RapidAPI-style provider and any
// providers declared in a YAML file. Each is guarded by a circuit breaker.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
)

// ErrEmpty is returned when a provider answered but carried no transcript text.
var ErrEmpty = errors.New("provider returned no transcript")

// Provider fetches a transcript for a video id.
type Provider interface {
	Name() string
	Transcript(ctx context.Context, id, lang string) ([]captions.Segment, error)
}

// Endpoint declares one HTTP transcript provider.
//
// URL and Body may contain {id} and {lang} placeholders. When Body is empty and
// Method is POST, {"videoId": id} is sent. Path is a dot path into the JSON
// response ("data.transcript", "0.transcription"); empty means the root.
type Endpoint struct {
	Name       string            `yaml:"name"`
	Method     string            `yaml:"method"`
	URL        string            `yaml:"url"`
	Headers    map[string]string `yaml:"headers"`
	Body       string            `yaml:"body"`
	Path       string            `yaml:"path"`
	TextField  string            `yaml:"text_field"`
	StartField string            `yaml:"start_field"`
	StartUnit  string            `yaml:"start_unit"` // "s" (default for start/offset) or "ms"
}

// HTTPProvider is a Provider backed by an Endpoint.
type HTTPProvider struct {
	ep      Endpoint
	fetcher *engine.Fetcher
}

// New creates an HTTPProvider. A nil fetcher uses engine.DefaultFetcher().
func New(ep Endpoint, f *engine.Fetcher) (*HTTPProvider, error) {
	if ep.URL == "" {
		return nil, fmt.Errorf("provider %q: url is required", ep.Name)
	}
	if ep.Name == "" {
		if u, err := url.Parse(ep.URL); err == nil {
			ep.Name = u.Hostname()
		}
	}
	ep.Method = strings.ToUpper(ep.Method)
	if ep.Method == "" {
		ep.Method = http.MethodGet
	}
	if f == nil {
		f = engine.DefaultFetcher()
	}
	return &HTTPProvider{ep: ep, fetcher: f}, nil
}

// Name implements Provider.
func (p *HTTPProvider) Name() string { return p.ep.Name }

// Transcript implements Provider.
func (p *HTTPProvider) Transcript(ctx context.Context, id, lang string) ([]captions.Segment, error) {
	engine.IncrProviderRequest()
	fill := strings.NewReplacer("{id}", url.QueryEscape(id), "{lang}", url.QueryEscape(lang))
	headers := make(map[string]string, len(p.ep.Headers)+1)
	for k, v := range p.ep.Headers {
		headers[strings.ToLower(k)] = v
	}
	if _, ok := headers["accept"]; !ok {
		headers["accept"] = "application/json"
	}

	req := engine.Request{Method: p.ep.Method, URL: fill.Replace(p.ep.URL), Headers: headers}
	if p.ep.Method != http.MethodGet {
		body := p.ep.Body
		if body == "" {
			body = `{"videoId":"{id}"}`
		}
		req.Body = []byte(strings.NewReplacer("{id}", jsonEscape(id), "{lang}", jsonEscape(lang)).Replace(body))
		if _, ok := headers["content-type"]; !ok {
			headers["content-type"] = "application/json"
		}
	}

	raw, err := p.fetcher.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.ep.Name, err)
	}
	segs, err := ExtractSegments(raw, p.ep.Path, Fields{Text: p.ep.TextField, Start: p.ep.StartField, StartUnit: p.ep.StartUnit})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.ep.Name, err)
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("%s: %w", p.ep.Name, ErrEmpty)
	}
	return segs, nil
}

// ExternalEndpoint is the primary provider: POST {"videoId": id} with a bearer token,
// reading the "transcript" field (string, []string or []{text,start}).
func ExternalEndpoint(endpoint, token string) Endpoint {
	h := map[string]string{}
	if token != "" {
		h["authorization"] = "Bearer " + token
	}
	return Endpoint{Name: "external", Method: http.MethodPost, URL: endpoint, Headers: h, Path: "transcript"}
}

// GenericEndpoint is a RapidAPI-style GET provider keyed by X-RapidAPI-Key / X-RapidAPI-Host.
// Without an {id} placeholder the id is appended as video_id.
func GenericEndpoint(endpoint, key, host string) Endpoint {
	if !strings.Contains(endpoint, "{id}") {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + "video_id={id}&lang={lang}"
	}
	h := map[string]string{}
	if key != "" {
		h["x-rapidapi-key"] = key
	}
	if host != "" {
		h["x-rapidapi-host"] = host
	}
	return Endpoint{Name: "generic", Method: http.MethodGet, URL: endpoint, Headers: h}
}

// jsonEscape returns s escaped for use inside a JSON string literal.
func jsonEscape(s string) string {
	b, _ := json.Marshal(s)
	return string(b[1 : len(b)-1])
}
