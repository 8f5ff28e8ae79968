package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts and splits text using the encoding of a target model.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// New creates a tokenizer for the given model, falling back to the cl100k_base
// encoding for models tiktoken does not know.
func New(model string) (*Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("failed to load tokenizer encoding: %w", err)
		}
	}
	return &Tokenizer{encoding: enc}, nil
}

// CountTokens returns the number of tokens in text.
func (t *Tokenizer) CountTokens(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}

// Split divides text into ordered chunks of at most maxTokens tokens each.
// Text already within the budget comes back as a single unchanged chunk.
func (t *Tokenizer) Split(text string, maxTokens int) []string {
	if maxTokens <= 0 || text == "" {
		return []string{text}
	}

	tokens := t.encoding.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return []string{text}
	}

	var chunks []string
	for start := 0; start < len(tokens); start += maxTokens {
		end := start + maxTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, t.encoding.Decode(tokens[start:end]))
	}
	return chunks
}
