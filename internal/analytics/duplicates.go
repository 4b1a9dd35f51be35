package analytics

import (
	"firstlook/internal/models"
	"firstlook/internal/series"
)

// DuplicateTitle is a logical title shared by more than one group.
type DuplicateTitle struct {
	Title     string   `json:"title"`
	GroupKeys []string `json:"groupKeys"`
	Chapters  int      `json:"chapters"`
}

// TitleGroups maps each normalized logical title to its groups, preserving
// first-encounter order of both titles and groups.
type TitleGroups struct {
	Order  []string
	Groups map[string][]series.Group
}

// GroupByTitle buckets the series groups by their logical title.
func GroupByTitle(stories []models.Story) TitleGroups {
	tg := TitleGroups{Groups: make(map[string][]series.Group)}
	for _, g := range series.GroupStories(stories) {
		title := NormalizeTitle(g.Representative().LogicalTitle())
		if _, ok := tg.Groups[title]; !ok {
			tg.Order = append(tg.Order, title)
		}
		tg.Groups[title] = append(tg.Groups[title], g)
	}
	return tg
}

// FindDuplicateTitles reports logical titles appearing under more than one
// distinct group key.
func FindDuplicateTitles(stories []models.Story) []DuplicateTitle {
	tg := GroupByTitle(stories)
	dups := make([]DuplicateTitle, 0)
	for _, title := range tg.Order {
		groups := tg.Groups[title]
		if len(groups) < 2 {
			continue
		}
		d := DuplicateTitle{Title: groups[0].Representative().LogicalTitle()}
		for _, g := range groups {
			d.GroupKeys = append(d.GroupKeys, g.Key)
			d.Chapters += len(g.Chapters)
		}
		dups = append(dups, d)
	}
	return dups
}
