package models

import (
	"strings"
	"time"
)

// StoryStatus is the generation outcome recorded on a chapter document.
type StoryStatus string

const (
	StatusPublished StoryStatus = "published"
	StatusFailed    StoryStatus = "failed"
)

// Subgenre is the romance subgenre a story is filed under.
type Subgenre string

const (
	SubgenreContemporary     Subgenre = "contemporary"
	SubgenreHistorical       Subgenre = "historical"
	SubgenreParanormal       Subgenre = "paranormal"
	SubgenreFantasy          Subgenre = "fantasy"
	SubgenreRomanticSuspense Subgenre = "romantic_suspense"
	SubgenreSciFi            Subgenre = "sci_fi"
	SubgenreSmallTown        Subgenre = "small_town"
	SubgenreWorkplace        Subgenre = "workplace"
	SubgenreSports           Subgenre = "sports"
	SubgenreRoyal            Subgenre = "royal"
)

var knownSubgenres = map[Subgenre]struct{}{
	SubgenreContemporary:     {},
	SubgenreHistorical:       {},
	SubgenreParanormal:       {},
	SubgenreFantasy:          {},
	SubgenreRomanticSuspense: {},
	SubgenreSciFi:            {},
	SubgenreSmallTown:        {},
	SubgenreWorkplace:        {},
	SubgenreSports:           {},
	SubgenreRoyal:            {},
}

// IsValid reports whether s is one of the known subgenres.
func (s Subgenre) IsValid() bool {
	_, ok := knownSubgenres[s]
	return ok
}

// Story is one persisted chapter. A standalone story is a single chapter
// without a SeriesID; a series is every chapter sharing the same SeriesID.
type Story struct {
	StoryID            string      `firestore:"storyId" json:"storyId"`
	SeriesID           *string     `firestore:"seriesId" json:"seriesId,omitempty"`
	SeriesTitle        *string     `firestore:"seriesTitle" json:"seriesTitle,omitempty"`
	PartNumber         *int        `firestore:"partNumber" json:"partNumber,omitempty"`
	TotalPartsInSeries *int        `firestore:"totalPartsInSeries" json:"totalPartsInSeries,omitempty"`
	Title              string      `firestore:"title" json:"title"`
	Content            string      `firestore:"content" json:"content,omitempty"`
	Synopsis           string      `firestore:"synopsis" json:"synopsis"`
	PreviewText        string      `firestore:"previewText" json:"previewText"`
	Subgenre           Subgenre    `firestore:"subgenre" json:"subgenre"`
	Author             string      `firestore:"author" json:"author"`
	WordCount          int         `firestore:"wordCount" json:"wordCount"`
	IsPremium          bool        `firestore:"isPremium" json:"isPremium"`
	CoinCost           int         `firestore:"coinCost" json:"coinCost"`
	CoverImageURL      string      `firestore:"coverImageUrl" json:"coverImageUrl,omitempty"`
	CoverImagePrompt   string      `firestore:"coverImagePrompt" json:"coverImagePrompt,omitempty"`
	Status             StoryStatus `firestore:"status" json:"status"`
	ErrorMessage       string      `firestore:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	PublishedAt        time.Time   `firestore:"publishedAt" json:"publishedAt"`
	SeedTitleIdea      string      `firestore:"seedTitleIdea,omitempty" json:"seedTitleIdea,omitempty"`

	// HasLegacyTags is filled by the repository when the document still
	// carries the old "tags" field.
	HasLegacyTags bool `firestore:"-" json:"-"`
}

// IsSeries reports whether the chapter belongs to a series.
func (s Story) IsSeries() bool {
	return s.SeriesID != nil && *s.SeriesID != ""
}

// IsPaid reports whether unlocking the chapter costs coins.
func (s Story) IsPaid() bool {
	return s.CoinCost > 0
}

// IsPartOne reports whether the chapter is explicitly part 1 of its series.
func (s Story) IsPartOne() bool {
	return s.PartNumber != nil && *s.PartNumber == 1
}

// LogicalTitle is the title a reader sees for the whole story: the series
// title for series chapters, the chapter title otherwise.
func (s Story) LogicalTitle() string {
	if s.IsSeries() && s.SeriesTitle != nil && strings.TrimSpace(*s.SeriesTitle) != "" {
		return *s.SeriesTitle
	}
	return s.Title
}

// StoryPatch is one mutation in a maintenance batch. Delete wins over every
// other field; nil fields are left untouched.
type StoryPatch struct {
	StoryID    string
	Subgenre   *Subgenre
	CoinCost   *int
	IsPremium  *bool
	RemoveTags bool
	Delete     bool
}

// IsEmpty reports whether the patch would not change anything.
func (p StoryPatch) IsEmpty() bool {
	return !p.Delete && !p.RemoveTags && p.Subgenre == nil && p.CoinCost == nil && p.IsPremium == nil
}

// StoryFilter narrows story listings.
type StoryFilter struct {
	Subgenre Subgenre
	Limit    int
	Offset   int
}
