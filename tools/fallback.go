package tools

import (
	"fmt"
	"sort"
	"strings"

	"introspect/models"
)

const fallbackPattern = "Your recent entries show a mix of emotions as you navigate your days."
const fallbackQuestion = "What moment from this week would you like to carry into the next one?"

// FallbackWeekly builds a deterministic statistical aggregate from the
// reflection sample. It is the stand-in for the generative weekly analysis
// when that call times out or fails: pure, no external calls, cannot fail,
// and shaped exactly like the genuine result.
func FallbackWeekly(sample []models.ReflectionSummary) models.WeeklyAnalysis {
	emotions := topTwo(sample, func(s models.ReflectionSummary) string {
		if s.PrimaryEmotion == "" {
			return "neutral"
		}
		return s.PrimaryEmotion
	})
	themes := topTwo(sample, func(s models.ReflectionSummary) string {
		if s.Theme == "" {
			return "self"
		}
		return s.Theme
	})

	focus := strings.Join(themes, " and ")
	if focus == "" {
		focus = "personal growth"
	}
	insight := fmt.Sprintf(
		"Across %d reflections you kept returning to %s. Noticing that on your own is already part of the work.",
		len(sample), focus,
	)

	return models.WeeklyAnalysis{
		DominantEmotions:   models.JSONArray(emotions),
		DominantThemes:     models.JSONArray(themes),
		PatternDescription: fallbackPattern,
		WeeklyInsight:      insight,
		ReflectiveQuestion: fallbackQuestion,
	}
}

// topTwo counts distinct values of key across the sample and returns the two
// most frequent. Ties keep first-encountered order, hence the stable sort
// over insertion order.
func topTwo(sample []models.ReflectionSummary, key func(models.ReflectionSummary) string) []string {
	counts := map[string]int{}
	var order []string
	for _, s := range sample {
		k := key(s)
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > 2 {
		order = order[:2]
	}
	return order
}
