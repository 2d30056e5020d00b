package engine

// LLM prompt templates. Data only, no logic.

// summarySystemPrompt frames the model as a video summarizer.
const summarySystemPrompt = `You summarize YouTube videos from their transcripts. You never invent facts that are not in the transcript.`

// summaryPrompt asks for a structured JSON summary of one transcript.
// Args: current date, length instruction, format instruction, output language, extra instruction, title, transcript.
const summaryPrompt = `Summarize the video transcript below.

Current date: %s

Respond with valid JSON only (no markdown, no ` + "`" + `json` + "`" + ` block):
{
  "title": "Short descriptive title for the video",
  "tldr": "Plain-text overview. No markdown.",
  "keyPoints": ["Specific point as a complete sentence.", "Another point."],
  "topics": ["topic", "another topic"],
  "takeaways": ["Actionable takeaway."]
}

Rules:
- tldr: %s
- keyPoints: %s
- topics: 3-6 short lowercase tags
- takeaways: 0-5 items, only when the video gives practical advice
- Write every field in %s
- Do NOT invent information not present in the transcript
%s
Video title: %s

Transcript:
%s`

// summaryLengths maps the length setting to tldr instructions.
var summaryLengths = map[string]string{
	"short":  "1-2 sentences",
	"medium": "3-5 sentences",
	"long":   "2 short paragraphs",
}

// summaryFormats maps the format setting to keyPoints instructions.
var summaryFormats = map[string]string{
	"bullets":   "4-8 concise bullet-style sentences",
	"detailed":  "8-15 sentences covering every section of the video in order",
	"paragraph": "2-4 longer sentences, each summarizing a section of the video",
}
