package model

import (
	"math"
	"sort"
	"time"

	"github.com/campusfix/issuedesk/pkg/domain/types"
)

const (
	// RecentWindow is the trailing window used for recent activity
	RecentWindow = 7 * 24 * time.Hour

	topBuildingLimit = 10
)

// CountEntry is the number of issues sharing one attribute value
type CountEntry struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// AnalyticsSummary aggregates the whole issue collection for operators
type AnalyticsSummary struct {
	TotalIssues            int          `json:"totalIssues"`
	StatusStats            []CountEntry `json:"statusStats"`
	CategoryStats          []CountEntry `json:"categoryStats"`
	SeverityStats          []CountEntry `json:"severityStats"`
	LocationStats          []CountEntry `json:"locationStats"`
	AvgResolutionTimeHours float64      `json:"avgResolutionTime"`
	RecentIssuesCount      int          `json:"recentIssuesCount"`
	GeneratedAt            time.Time    `json:"generatedAt"`
}

// Summarize computes the analytics summary of issues as of now
func Summarize(issues []*Issue, now time.Time) *AnalyticsSummary {
	statusCounts := map[string]int{}
	categoryCounts := map[string]int{}
	severityCounts := map[string]int{}
	buildingCounts := map[string]int{}

	var (
		resolvedCount int
		resolvedTotal time.Duration
		recent        int
	)
	since := now.Add(-RecentWindow)

	for _, issue := range issues {
		statusCounts[string(issue.Status)]++
		categoryCounts[string(issue.Category)]++
		severityCounts[string(issue.Severity)]++
		buildingCounts[issue.Location.Building]++

		if issue.Status == types.StatusResolved && issue.ResolvedAt != nil {
			resolvedCount++
			resolvedTotal += issue.ResolvedAt.Sub(issue.CreatedAt)
		}
		if !issue.CreatedAt.Before(since) {
			recent++
		}
	}

	summary := &AnalyticsSummary{
		TotalIssues:       len(issues),
		StatusStats:       orderedCounts(statusCounts, enumKeys(types.AllStatuses())),
		CategoryStats:     orderedCounts(categoryCounts, enumKeys(types.AllCategories())),
		SeverityStats:     orderedCounts(severityCounts, enumKeys(types.AllSeverities())),
		LocationStats:     topCounts(buildingCounts, topBuildingLimit),
		RecentIssuesCount: recent,
		GeneratedAt:       now,
	}

	if resolvedCount > 0 {
		hours := resolvedTotal.Hours() / float64(resolvedCount)
		summary.AvgResolutionTimeHours = math.Round(hours*10) / 10
	}

	return summary
}

func enumKeys[T ~string](values []T) []string {
	keys := make([]string, len(values))
	for i, v := range values {
		keys[i] = string(v)
	}
	return keys
}

// orderedCounts lists non-zero counts in enum order. Values outside the enum
// follow in name order.
func orderedCounts(counts map[string]int, order []string) []CountEntry {
	result := []CountEntry{}
	seen := map[string]bool{}
	for _, key := range order {
		seen[key] = true
		if counts[key] > 0 {
			result = append(result, CountEntry{ID: key, Count: counts[key]})
		}
	}

	var rest []string
	for key := range counts {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		result = append(result, CountEntry{ID: key, Count: counts[key]})
	}

	return result
}

// topCounts returns the limit most frequent values, ties by name
func topCounts(counts map[string]int, limit int) []CountEntry {
	result := make([]CountEntry, 0, len(counts))
	for key, n := range counts {
		result = append(result, CountEntry{ID: key, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].ID < result[j].ID
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}
