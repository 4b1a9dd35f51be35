package models

// Seed is a hand-authored story idea the generator works from.
type Seed struct {
	TitleIdea   string   `yaml:"titleIdea" json:"titleIdea"`
	Subgenre    Subgenre `yaml:"subgenre" json:"subgenre"`
	Premise     string   `yaml:"premise" json:"premise"`
	Parts       int      `yaml:"parts" json:"parts"`
	CoinCost    int      `yaml:"coinCost" json:"coinCost"`
	CoverPrompt string   `yaml:"coverPrompt,omitempty" json:"coverPrompt,omitempty"`
}

// IsSeries reports whether the seed should produce a multi-part series.
func (s Seed) IsSeries() bool {
	return s.Parts > 1
}

// GenerationResult is returned by every generation attempt. Failures are
// reported here instead of as errors so callers can render them directly.
type GenerationResult struct {
	Success   bool     `json:"success"`
	SeedTitle string   `json:"seedTitle,omitempty"`
	SeriesID  string   `json:"seriesId,omitempty"`
	StoryIDs  []string `json:"storyIds,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// MaintenanceReport summarizes one batch correction run.
type MaintenanceReport struct {
	Operation string `json:"operation"`
	Checked   int    `json:"checked"`
	Updated   int    `json:"updated"`
	Deleted   int    `json:"deleted"`
	Skipped   int    `json:"skipped"`
	DryRun    bool   `json:"dryRun"`
}
