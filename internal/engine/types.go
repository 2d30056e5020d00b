package engine

// --- Tool / API input types ---

type TranscriptInput struct {
	URL        string `json:"url,omitempty" jsonschema:"YouTube URL (watch, youtu.be, embed, shorts, live)"`
	VideoID    string `json:"videoId,omitempty" jsonschema:"11-character video id (alternative to url)"`
	Language   string `json:"language,omitempty" jsonschema:"Preferred caption language prefix (default: en)"`
	Timestamps bool   `json:"timestamps,omitempty" jsonschema:"Prefix each timed segment with [MM:SS]"`
	MinChars   int    `json:"minChars,omitempty" jsonschema:"Minimum characters for a transcript to count as found (default: 50)"`
}

// Input returns the URL when set, else the video id.
func (in TranscriptInput) Input() string {
	if in.URL != "" {
		return in.URL
	}
	return in.VideoID
}

type SummarizeInput struct {
	URL               string          `json:"url,omitempty" jsonschema:"YouTube URL (watch, youtu.be, embed, shorts, live)"`
	VideoID           string          `json:"videoId,omitempty" jsonschema:"11-character video id (alternative to url)"`
	Language          string          `json:"language,omitempty" jsonschema:"Preferred caption language prefix (default: en)"`
	Settings          SummarySettings `json:"settings,omitempty" jsonschema:"Summary options"`
	Save              bool            `json:"save,omitempty" jsonschema:"Persist the summary so it appears in summary_list"`
	IncludeTranscript bool            `json:"includeTranscript,omitempty" jsonschema:"Return the transcript alongside the summary"`
}

// Transcript returns the transcript request a summary needs.
func (in SummarizeInput) Transcript() TranscriptInput {
	return TranscriptInput{URL: in.URL, VideoID: in.VideoID, Language: in.Language}
}

type VideoInput struct {
	URL     string `json:"url,omitempty" jsonschema:"YouTube URL"`
	VideoID string `json:"videoId,omitempty" jsonschema:"11-character video id (alternative to url)"`
}

type SummaryListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max summaries to return (default: 50)"`
}

type SummaryIDInput struct {
	ID string `json:"id" jsonschema:"Saved summary id"`
}

// --- Output types (JSON responses) ---

type TranscriptOutput struct {
	Success    bool   `json:"success"`
	VideoID    string `json:"videoId"`
	Transcript string `json:"transcript"`
	Source     string `json:"source"`
	Language   string `json:"language"`
	Chars      int    `json:"chars"`
	Cached     bool   `json:"cached,omitempty"`
}

type SummarizeOutput struct {
	Success    bool     `json:"success"`
	ID         string   `json:"id,omitempty"` // set when saved
	VideoID    string   `json:"videoId"`
	Title      string   `json:"title,omitempty"`
	Duration   string   `json:"duration,omitempty"`
	Source     string   `json:"source"`
	Summary    *Summary `json:"summary"`
	Transcript string   `json:"transcript,omitempty"`
}

type DeleteOutput struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}
