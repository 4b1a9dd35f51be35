package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeHTML(t *testing.T) {
	raw := `<p onclick="steal()">Hello <strong>there</strong></p><script>alert(1)</script>`
	assert.Equal(t, `<p>Hello <strong>there</strong></p>`, SanitizeHTML(raw))
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"plain", "She smiled at him.", 4},
		{"markup ignored", "<p>She <em>smiled</em></p><p>at him.</p>", 4},
		{"contractions and hyphens", "It's a well-known fact", 4},
		{"entities", "<p>Tea &amp; biscuits</p>", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountWords(tt.content))
		})
	}
}

func TestEstimateWordCount(t *testing.T) {
	content := "<p>one two three four five six seven eight nine ten</p>"
	assert.Equal(t, 11, EstimateWordCount(content))
	assert.Equal(t, 0, EstimateWordCount(""))
	// 5 * 1.1 = 5.5 rounds away from zero
	assert.Equal(t, 6, EstimateWordCount("a b c d e"))
}

func TestPreviewFrom(t *testing.T) {
	assert.Equal(t, "one two three", PreviewFrom("<p>one two three</p>", 5))
	assert.Equal(t, "one two…", PreviewFrom("<p>one two three</p>", 2))
}

func TestTokenCounterFallback(t *testing.T) {
	var c *TokenCounter
	assert.Equal(t, 0, c.Count(""))
	assert.Equal(t, 3, (&TokenCounter{}).Count("twelve chars"))
}
