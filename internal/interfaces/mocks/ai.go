package mocks

import (
	"context"

	"firstlook/internal/ai"

	"github.com/stretchr/testify/mock"
)

// TextGenerator is a mock type for the ai.TextGenerator type
type TextGenerator struct {
	mock.Mock
}

func (m *TextGenerator) GenerateText(ctx context.Context, systemPrompt, userInput string, params ai.GenerationParams) (string, ai.UsageInfo, error) {
	args := m.Called(ctx, systemPrompt, userInput, params)
	var r1 ai.UsageInfo
	if v := args.Get(1); v != nil {
		r1 = v.(ai.UsageInfo)
	}
	return args.String(0), r1, args.Error(2)
}

// ImageGenerator is a mock type for the ai.ImageGenerator type
type ImageGenerator struct {
	mock.Mock
}

func (m *ImageGenerator) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	args := m.Called(ctx, prompt)
	var r0 []byte
	if v := args.Get(0); v != nil {
		r0 = v.([]byte)
	}
	return r0, args.Error(1)
}

var (
	_ ai.TextGenerator  = (*TextGenerator)(nil)
	_ ai.ImageGenerator = (*ImageGenerator)(nil)
)
