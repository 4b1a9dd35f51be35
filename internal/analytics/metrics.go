// Package analytics computes composition and monetization metrics over the
// full chapter set.
package analytics

import (
	"math"
	"strings"

	"firstlook/internal/models"
	"firstlook/internal/series"
)

// CoinsPerDollar converts coin totals into a USD-equivalent value.
const CoinsPerDollar = 100

// Metrics is a point-in-time snapshot of the catalog.
type Metrics struct {
	TotalChapters      int `json:"totalChapters"`
	TotalUniqueStories int `json:"totalUniqueStories"`
	StandaloneStories  int `json:"standaloneStories"`
	MultiPartSeries    int `json:"multiPartSeries"`
	FailedChapters     int `json:"failedChapters"`

	GenreCounts map[models.Subgenre]int `json:"genreCounts"`

	FreeChapters          int `json:"freeChapters"`
	TotalPaidChapters     int `json:"totalPaidChapters"`
	PaidStandaloneStories int `json:"paidStandaloneStories"`
	PaidSeriesChapters    int `json:"paidSeriesChapters"`

	TotalWordCount   int     `json:"totalWordCount"`
	FreeWordCount    int     `json:"freeWordCount"`
	PaidWordCount    int     `json:"paidWordCount"`
	AvgWordCount     float64 `json:"avgWordCount"`
	AvgFreeWordCount float64 `json:"avgFreeWordCount"`
	AvgPaidWordCount float64 `json:"avgPaidWordCount"`

	TotalCoinValue            int     `json:"totalCoinValue"`
	AvgCoinCostPerPaidChapter float64 `json:"avgCoinCostPerPaidChapter"`
	TotalUSDValue             float64 `json:"totalUsdValue"`
}

// ComputeMetrics builds the snapshot. An empty input yields all zeros.
func ComputeMetrics(stories []models.Story) Metrics {
	m := Metrics{GenreCounts: make(map[models.Subgenre]int)}

	groups := series.GroupStories(stories)
	m.TotalChapters = len(stories)
	m.TotalUniqueStories = len(groups)
	for _, g := range groups {
		if g.IsSeries {
			m.MultiPartSeries++
		} else {
			m.StandaloneStories++
		}
		m.GenreCounts[g.Representative().Subgenre]++
	}

	for _, s := range stories {
		if s.Status == models.StatusFailed {
			m.FailedChapters++
		}
		m.TotalWordCount += s.WordCount
		if !s.IsPaid() {
			m.FreeChapters++
			m.FreeWordCount += s.WordCount
			continue
		}
		m.TotalPaidChapters++
		m.PaidWordCount += s.WordCount
		m.TotalCoinValue += s.CoinCost
		if s.IsSeries() {
			m.PaidSeriesChapters++
		} else {
			m.PaidStandaloneStories++
		}
	}

	m.AvgWordCount = safeDiv(m.TotalWordCount, m.TotalChapters)
	m.AvgFreeWordCount = safeDiv(m.FreeWordCount, m.FreeChapters)
	m.AvgPaidWordCount = safeDiv(m.PaidWordCount, m.TotalPaidChapters)
	m.AvgCoinCostPerPaidChapter = safeDiv(m.TotalCoinValue, m.TotalPaidChapters)
	m.TotalUSDValue = round2(float64(m.TotalCoinValue) / CoinsPerDollar)

	return m
}

func safeDiv(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return round2(float64(num) / float64(den))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// NormalizeTitle is the comparison form of a logical title.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
