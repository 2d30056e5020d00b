package providers

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// File is the PROVIDERS_FILE layout.
type File struct {
	Providers []Endpoint `yaml:"providers"`
}

// LoadFile reads provider endpoints from a YAML file. ${VAR} references in
// url, body and header values are expanded from the environment.
func LoadFile(path string) ([]Endpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read providers file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile parses provider endpoints from YAML.
func ParseFile(data []byte) ([]Endpoint, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse providers file: %w", err)
	}
	for i := range f.Providers {
		s := &f.Providers[i]
		if s.URL == "" {
			return nil, fmt.Errorf("providers[%d] (%s): url is required", i, s.Name)
		}
		s.URL = os.ExpandEnv(s.URL)
		s.Body = os.ExpandEnv(s.Body)
		for k, v := range s.Headers {
			s.Headers[k] = os.ExpandEnv(v)
		}
	}
	return f.Providers, nil
}

// Set is the configured provider lineup.
type Set struct {
	// External is the primary provider tried first in the cascade (nil when unset).
	External Provider
	// Secondary providers are tried, in order, near the end of the cascade.
	Secondary []Provider
}

// FromConfig builds the provider lineup from engine configuration.
// A broken PROVIDERS_FILE is logged and skipped.
func FromConfig(c engine.Config, f *engine.Fetcher) Set {
	var set Set
	if c.ExternalTranscriptURL != "" {
		if p, err := New(ExternalEndpoint(c.ExternalTranscriptURL, c.ExternalTranscriptToken), f); err == nil {
			set.External = Guard(p)
		}
	}
	if c.GenericTranscriptURL != "" {
		if p, err := New(GenericEndpoint(c.GenericTranscriptURL, c.GenericTranscriptKey, c.GenericTranscriptHost), f); err == nil {
			set.Secondary = append(set.Secondary, Guard(p))
		}
	}
	if c.ProvidersFile != "" {
		eps, err := LoadFile(c.ProvidersFile)
		if err != nil {
			slog.Warn("providers: file ignored", slog.String("path", c.ProvidersFile), slog.Any("error", err))
		}
		for _, s := range eps {
			p, err := New(s, f)
			if err != nil {
				slog.Warn("providers: endpoint ignored", slog.String("name", s.Name), slog.Any("error", err))
				continue
			}
			set.Secondary = append(set.Secondary, Guard(p))
		}
	}
	return set
}
