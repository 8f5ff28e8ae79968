package models

import "time"

// SummaryTypeYouTube is the record type for YouTube video summaries.
const SummaryTypeYouTube = "youtube_summary"

// Summary represents a persisted summarization result, keyed by
// (type, external_id). For YouTube summaries external_id is the video ID.
type Summary struct {
	ID         string    `json:"id" db:"id"`
	Type       string    `json:"type" db:"type"`
	ExternalID string    `json:"external_id" db:"external_id"`
	Output     JSONB     `json:"output" db:"output"`
	Usage      JSONB     `json:"usage" db:"usage"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// VideoMetadata describes the source video, stored under output.metadata.
type VideoMetadata struct {
	VideoID    string `json:"video_id"`
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
	AuthorURL  string `json:"author_url,omitempty"`
	Language   string `json:"language,omitempty"`
}

// Chapter is one timestamped section of a video summary.
type Chapter struct {
	Title     string `json:"title"`
	StartSecs int    `json:"start_secs"`
	Summary   string `json:"summary"`
}

// SummaryData is the structured output the model must return through the
// submit_summary tool call.
type SummaryData struct {
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	KeyPoints []string  `json:"key_points"`
	Chapters  []Chapter `json:"chapters,omitempty"`
}

// TokenUsage records the token accounting of one summarization call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
