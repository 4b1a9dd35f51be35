package ai

import (
	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// TokenCounter estimates prompt sizes before a request is sent.
// A nil encoder falls back to a rough four-characters-per-token estimate.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

func NewTokenCounter(model string) *TokenCounter {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return &TokenCounter{}
		}
	}
	return &TokenCounter{enc: enc}
}

func (t *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	if t == nil || t.enc == nil {
		return (len(text) + 3) / 4
	}
	return len(t.enc.Encode(text, nil, nil))
}
