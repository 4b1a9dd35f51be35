package ai

import (
	"html"
	"math"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy   = bluemonday.UGCPolicy()
	stripPolicy = newStripPolicy()

	wordRegex = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’\-][\p{L}\p{N}]+)*`)
)

// standaloneWordCountFactor inflates the regex count of standalone stories.
// Series chapters keep the LLM's own count.
const standaloneWordCountFactor = 1.1

func newStripPolicy() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}

// SanitizeHTML removes everything but the UGC tag set from LLM markup.
func SanitizeHTML(raw string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(raw))
}

// PlainText strips all markup and decodes entities.
func PlainText(raw string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(raw)))
}

// CountWords counts words in the plain text of content.
func CountWords(content string) int {
	return len(wordRegex.FindAllString(PlainText(content), -1))
}

// EstimateWordCount is the stored word count of a standalone story.
func EstimateWordCount(content string) int {
	return int(math.Round(float64(CountWords(content)) * standaloneWordCountFactor))
}

// PreviewFrom returns roughly the first maxWords words of content as plain text.
func PreviewFrom(content string, maxWords int) string {
	text := PlainText(content)
	locs := wordRegex.FindAllStringIndex(text, maxWords+1)
	if len(locs) <= maxWords {
		return text
	}
	return strings.TrimSpace(text[:locs[maxWords-1][1]]) + "…"
}
