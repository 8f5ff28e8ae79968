package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/tubebrief/tubebrief-backend/internal/config"
	"github.com/tubebrief/tubebrief-backend/internal/models"
)

const submitSummaryTool = "submit_summary"

const systemInstruction = `You are a precise video summarizer. You receive a
timestamped YouTube transcript where each line is formatted as "[<seconds>s] <text>".
Produce a faithful summary of the video and report it through the submit_summary
tool. Keep the summary grounded in the transcript; do not invent content.
Use the transcript timestamps for chapter start times.`

// ErrMalformedResponse is returned when the model's tool-call arguments do
// not parse against the summary schema.
var ErrMalformedResponse = errors.New("malformed summarization response")

// Result carries the parsed summary and the token accounting of the call.
type Result struct {
	Data  models.SummaryData
	Usage models.TokenUsage
}

// Summarizer produces a structured summary from a formatted transcript.
type Summarizer interface {
	SummarizeTranscript(ctx context.Context, transcript string) (*Result, error)
}

// OpenAISummarizer implements Summarizer against the OpenAI chat API
type OpenAISummarizer struct {
	client *openai.Client
	model  string
}

// NewOpenAISummarizer creates a new OpenAI-backed summarizer
func NewOpenAISummarizer(cfg config.OpenAIConfig) (*OpenAISummarizer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	return &OpenAISummarizer{
		client: openai.NewClient(cfg.APIKey),
		model:  cfg.Model,
	}, nil
}

// SummarizeTranscript makes a single chat completion call with the
// submit_summary tool forced, and parses its arguments. No retry is made.
func (s *OpenAISummarizer) SummarizeTranscript(ctx context.Context, transcript string) (*Result, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: transcript},
		},
		Tools: []openai.Tool{
			{
				Type:     openai.ToolTypeFunction,
				Function: summaryFunctionDefinition(),
			},
		},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: submitSummaryTool},
		},
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("summarization call failed: %w", err)
	}

	data, err := parseToolCall(&resp)
	if err != nil {
		return nil, err
	}

	return &Result{
		Data: *data,
		Usage: models.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// parseToolCall extracts and validates the submit_summary arguments
func parseToolCall(resp *openai.ChatCompletionResponse) (*models.SummaryData, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", ErrMalformedResponse)
	}

	for _, call := range resp.Choices[0].Message.ToolCalls {
		if call.Function.Name != submitSummaryTool {
			continue
		}
		var data models.SummaryData
		if err := json.Unmarshal([]byte(call.Function.Arguments), &data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if data.Summary == "" {
			return nil, fmt.Errorf("%w: missing summary field", ErrMalformedResponse)
		}
		return &data, nil
	}

	return nil, fmt.Errorf("%w: no %s tool call in response", ErrMalformedResponse, submitSummaryTool)
}

func summaryFunctionDefinition() *openai.FunctionDefinition {
	return &openai.FunctionDefinition{
		Name:        submitSummaryTool,
		Description: "Submit the structured summary of the video transcript",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Short descriptive title for the summary",
				},
				"summary": map[string]interface{}{
					"type":        "string",
					"description": "Concise prose summary of the whole video",
				},
				"key_points": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "The main takeaways, in order of appearance",
				},
				"chapters": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"title":      map[string]interface{}{"type": "string"},
							"start_secs": map[string]interface{}{"type": "integer"},
							"summary":    map[string]interface{}{"type": "string"},
						},
						"required": []string{"title", "start_secs", "summary"},
					},
				},
			},
			"required": []string{"title", "summary", "key_points"},
		},
	}
}
