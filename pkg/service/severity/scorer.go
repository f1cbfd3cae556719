// Package severity implements the heuristic that assigns a severity level to
// a newly reported issue.
package severity

import (
	"strings"
	"unicode/utf8"

	"github.com/campusfix/issuedesk/pkg/domain/types"
)

const (
	weightCriticalCategory = 40
	weightMajorCategory    = 25
	weightOtherCategory    = 10

	weightImage       = 15
	weightLongText    = 10
	weightUrgencyWord = 15

	longDescriptionRunes = 100

	thresholdCritical = 70
	thresholdHigh     = 50
	thresholdMedium   = 30
)

var urgencyKeywords = []string{
	"urgent",
	"emergency",
	"broken",
	"leaked",
	"danger",
	"hazard",
	"critical",
}

// clusterBands are checked highest first; only the first match counts
var clusterBands = []struct {
	min    int
	points int
}{
	{5, 30},
	{3, 20},
	{1, 10},
}

// Input is the part of a submission the scorer looks at
type Input struct {
	Category      types.Category
	Description   string
	ImageProvided bool
}

// Score returns the raw score. recentAtBuilding is the number of open issues
// reported at the same building during the trailing week.
func Score(input Input, recentAtBuilding int) int {
	score := 0

	switch input.Category {
	case types.CategoryElectricity, types.CategoryWater:
		score += weightCriticalCategory
	case types.CategoryInternet, types.CategoryInfrastructure:
		score += weightMajorCategory
	default:
		score += weightOtherCategory
	}

	if input.ImageProvided {
		score += weightImage
	}

	for _, band := range clusterBands {
		if recentAtBuilding >= band.min {
			score += band.points
			break
		}
	}

	if utf8.RuneCountInString(input.Description) > longDescriptionRunes {
		score += weightLongText
	}

	desc := strings.ToLower(input.Description)
	for _, keyword := range urgencyKeywords {
		if strings.Contains(desc, keyword) {
			score += weightUrgencyWord
			break
		}
	}

	return score
}

// Level maps a score onto a severity label
func Level(score int) types.Severity {
	switch {
	case score >= thresholdCritical:
		return types.SeverityCritical
	case score >= thresholdHigh:
		return types.SeverityHigh
	case score >= thresholdMedium:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

// Compute scores input and returns its severity
func Compute(input Input, recentAtBuilding int) types.Severity {
	return Level(Score(input, recentAtBuilding))
}
