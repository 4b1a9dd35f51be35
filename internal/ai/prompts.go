package ai

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"firstlook/internal/models"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

const (
	defaultStandaloneWords = 3000
	defaultChapterWords    = 2000
)

var promptTemplates = template.Must(
	template.New("prompts").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFS(promptFS, "prompts/*.tmpl"),
)

// SystemPrompt is shared by every story request.
func SystemPrompt() string {
	var buf bytes.Buffer
	_ = promptTemplates.ExecuteTemplate(&buf, "system.tmpl", nil)
	return strings.TrimSpace(buf.String())
}

// StandalonePrompt builds the user prompt for a one-part seed.
func StandalonePrompt(seed models.Seed) (string, error) {
	return render("standalone.tmpl", map[string]any{
		"Subgenre":        subgenreLabel(seed.Subgenre),
		"TargetWords":     defaultStandaloneWords,
		"TitleIdea":       seed.TitleIdea,
		"Premise":         seed.Premise,
		"DefaultCoinCost": seed.CoinCost,
	})
}

// ChapterRequest describes one part of a series.
type ChapterRequest struct {
	Seed             models.Seed
	SeriesTitle      string
	PartNumber       int
	PreviousSynopses []string
}

// ChapterPrompt builds the user prompt for one part of a series.
func ChapterPrompt(req ChapterRequest) (string, error) {
	return render("chapter.tmpl", map[string]any{
		"PartNumber":       req.PartNumber,
		"TotalParts":       req.Seed.Parts,
		"IsFinal":          req.PartNumber == req.Seed.Parts,
		"Subgenre":         subgenreLabel(req.Seed.Subgenre),
		"SeriesTitle":      req.SeriesTitle,
		"TargetWords":      defaultChapterWords,
		"Premise":          req.Seed.Premise,
		"PreviousSynopses": req.PreviousSynopses,
		"DefaultCoinCost":  req.Seed.CoinCost,
	})
}

func render(name string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func subgenreLabel(s models.Subgenre) string {
	return strings.ReplaceAll(string(s), "_", " ")
}
