package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go-kit/llm"
)

// maxSummaryTranscriptChars caps the transcript sent to the model.
const maxSummaryTranscriptChars = 60000

// SummarySettings are the caller-tunable summary options.
type SummarySettings struct {
	Length       string `json:"length,omitempty" jsonschema:"Summary length: short, medium (default), long"`
	Format       string `json:"format,omitempty" jsonschema:"Key points style: bullets (default), detailed, paragraph"`
	Language     string `json:"language,omitempty" jsonschema:"Output language (default: English)"`
	Instructions string `json:"instructions,omitempty" jsonschema:"Extra instructions appended to the prompt"`
}

// Summary is the structured result of summarizing one transcript.
type Summary struct {
	Title     string   `json:"title,omitempty"`
	TLDR      string   `json:"tldr"`
	KeyPoints []string `json:"keyPoints,omitempty"`
	Topics    []string `json:"topics,omitempty"`
	Takeaways []string `json:"takeaways,omitempty"`
}

// SummaryRequest is the summarizer input: normalized transcript text plus settings.
type SummaryRequest struct {
	VideoID    string
	Title      string
	Transcript string
	Settings   SummarySettings
}

// Summarizer turns a transcript into a structured Summary.
type Summarizer interface {
	Summarize(ctx context.Context, req SummaryRequest) (*Summary, error)
}

// LLMSummarizer implements Summarizer over an OpenAI-compatible chat endpoint.
type LLMSummarizer struct {
	client      *llm.Client
	temperature float64
	maxTokens   int
}

// NewLLMSummarizer wraps client. A nil client yields ErrLLMDisabled on every call.
func NewLLMSummarizer(client *llm.Client) *LLMSummarizer {
	return &LLMSummarizer{client: client, temperature: 0.2, maxTokens: 2048}
}

// DefaultSummarizer returns a summarizer over the configured LLM client.
func DefaultSummarizer() *LLMSummarizer {
	s := NewLLMSummarizer(cfg.LLMClient)
	if cfg.LLMTemperature > 0 {
		s.temperature = cfg.LLMTemperature
	}
	if cfg.LLMMaxTokens > 0 {
		s.maxTokens = cfg.LLMMaxTokens
	}
	return s
}

// Summarize calls the model and parses its JSON reply.
func (s *LLMSummarizer) Summarize(ctx context.Context, req SummaryRequest) (*Summary, error) {
	if strings.TrimSpace(req.Transcript) == "" {
		return nil, fmt.Errorf("summarize %s: empty transcript", req.VideoID)
	}
	raw, err := CallLLM(ctx, s.client, summarySystemPrompt, BuildSummaryPrompt(req), s.temperature, s.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", req.VideoID, err)
	}
	return ParseSummary(raw), nil
}

// BuildSummaryPrompt renders the summary prompt for req.
func BuildSummaryPrompt(req SummaryRequest) string {
	st := req.Settings
	length, ok := summaryLengths[st.Length]
	if !ok {
		length = summaryLengths["medium"]
	}
	format, ok := summaryFormats[st.Format]
	if !ok {
		format = summaryFormats["bullets"]
	}
	lang := st.Language
	if lang == "" {
		lang = "English"
	}
	extra := ""
	if st.Instructions != "" {
		extra = "- " + strings.TrimSpace(st.Instructions) + "\n"
	}
	title := req.Title
	if title == "" {
		title = "(unknown)"
	}
	transcript := TruncateRunes(req.Transcript, maxSummaryTranscriptChars, "...")
	return fmt.Sprintf(summaryPrompt, currentDate(), length, format, lang, extra, title, transcript)
}

// ParseSummary decodes the model reply. Malformed JSON degrades to a tldr-only summary.
func ParseSummary(raw string) *Summary {
	raw = stripFences(raw)
	var out Summary
	if err := json.Unmarshal([]byte(raw), &out); err == nil && out.TLDR != "" {
		return &out
	}
	if tldr := ExtractJSONField(raw, "tldr"); tldr != "" {
		return &Summary{Title: ExtractJSONField(raw, "title"), TLDR: tldr}
	}
	return &Summary{TLDR: strings.TrimSpace(raw)}
}
