// Package series derives the logical story view over chapter documents.
// A series is never stored; it is always recomputed from the chapters that
// share a seriesId.
package series

import (
	"sort"

	"firstlook/internal/models"
)

// Group is one logical story: a whole series or a single standalone chapter.
type Group struct {
	Key      string
	IsSeries bool
	Chapters []models.Story
}

// GroupKey returns seriesId for series chapters and storyId otherwise.
func GroupKey(s models.Story) string {
	if s.IsSeries() {
		return *s.SeriesID
	}
	return s.StoryID
}

// GroupStories partitions chapters by GroupKey. Groups appear in the order their
// first chapter was encountered and keep their chapters in input order.
func GroupStories(stories []models.Story) []Group {
	groups := make([]Group, 0)
	index := make(map[string]int, len(stories))

	for _, s := range stories {
		key := GroupKey(s)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key, IsSeries: s.IsSeries()})
		}
		groups[i].Chapters = append(groups[i].Chapters, s)
	}
	return groups
}

// Representative returns the chapter used to display the group: part 1 if
// present, otherwise the first chapter encountered.
func (g Group) Representative() models.Story {
	for _, c := range g.Chapters {
		if c.IsPartOne() {
			return c
		}
	}
	return g.Chapters[0]
}

// Latest returns the group's most recently published chapter. Ties keep the
// chapter encountered first.
func (g Group) Latest() (latest models.Story) {
	for i, c := range g.Chapters {
		if i == 0 || c.PublishedAt.After(latest.PublishedAt) {
			latest = c
		}
	}
	return latest
}

// SortedParts returns the chapters ordered by part number. Chapters without a
// part number keep their relative order after the numbered ones.
func (g Group) SortedParts() []models.Story {
	out := make([]models.Story, len(g.Chapters))
	copy(out, g.Chapters)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].PartNumber, out[j].PartNumber
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return *pi < *pj
		}
	})
	return out
}

// Representatives returns one chapter per group, newest first. Ties in
// publishedAt keep input order.
func Representatives(stories []models.Story) []models.Story {
	groups := GroupStories(stories)
	reps := make([]models.Story, 0, len(groups))
	for _, g := range groups {
		reps = append(reps, g.Representative())
	}
	sort.SliceStable(reps, func(i, j int) bool {
		return reps[i].PublishedAt.After(reps[j].PublishedAt)
	})
	return reps
}
