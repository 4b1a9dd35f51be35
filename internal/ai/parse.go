package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var jsonBlockRegex = regexp.MustCompile(`(?s)` + "```" + `(?:\w+)?\s*(.*?)\s*` + "```")

// StoryDraft is the JSON object the LLM returns for a story or a chapter.
type StoryDraft struct {
	Title            string `json:"title"`
	Content          string `json:"content"`
	Synopsis         string `json:"synopsis"`
	PreviewText      string `json:"previewText"`
	CoverImagePrompt string `json:"coverImagePrompt"`
	IsPremium        *bool  `json:"isPremium"`
	CoinCost         *int   `json:"coinCost"`
	WordCount        int    `json:"wordCount"`
}

// ParseStoryDraft extracts and decodes the draft from a raw LLM response.
func ParseStoryDraft(raw string) (*StoryDraft, error) {
	cleaned := extractJSONContent(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: response contains no json", ErrGenerationFailed)
	}

	var draft StoryDraft
	if err := json.Unmarshal([]byte(cleaned), &draft); err != nil {
		return nil, fmt.Errorf("%w: invalid json in response: %v", ErrGenerationFailed, err)
	}
	if strings.TrimSpace(draft.Title) == "" || strings.TrimSpace(draft.Content) == "" {
		return nil, fmt.Errorf("%w: response is missing title or content", ErrGenerationFailed)
	}
	if draft.CoinCost != nil && *draft.CoinCost < 0 {
		draft.CoinCost = nil
	}
	return &draft, nil
}

// extractJSONContent unwraps a fenced block if present and otherwise trims
// the text down to the outermost object.
func extractJSONContent(rawText string) string {
	cleaned := strings.TrimSpace(rawText)

	if matches := jsonBlockRegex.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = strings.TrimSpace(matches[1])
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end < start {
		return ""
	}
	return cleaned[start : end+1]
}
