package models

import (
	"strings"
	"testing"
	"time"
)

func TestReflectionDocIDShape(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)
	id := ReflectionDocID("2026-08-31", now)

	if !strings.HasPrefix(id, "reflection-2026-08-31-") {
		t.Fatalf("doc id %q has wrong prefix", id)
	}
	parts := strings.Split(id, "-")
	if len(parts) != 6 {
		t.Fatalf("doc id %q has %d parts, want 6", id, len(parts))
	}
}

func TestReflectionDocIDUniqueWithinSameSecond(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := ReflectionDocID("2026-08-31", now)
		if seen[id] {
			t.Fatalf("duplicate doc id %q within the same second", id)
		}
		seen[id] = true
	}
}

func TestWeeklyCacheFreshness(t *testing.T) {
	now := time.Now()

	fresh := WeeklyCache{ComputedAt: now}
	if !fresh.Fresh(now) {
		t.Fatal("entry written just now must be fresh")
	}

	almost := WeeklyCache{ComputedAt: now.Add(-WEEKLY_CACHE_TTL + time.Minute)}
	if !almost.Fresh(now) {
		t.Fatal("entry inside the TTL must be fresh")
	}

	boundary := WeeklyCache{ComputedAt: now.Add(-WEEKLY_CACHE_TTL)}
	if boundary.Fresh(now) {
		t.Fatal("entry exactly at the TTL boundary must be stale")
	}
}

func TestReflectionSummaryReducesFields(t *testing.T) {
	r := Reflection{
		Date:               "2026-08-30",
		Transcript:         "long transcript that must not travel to the weekly prompt",
		PrimaryEmotion:     "joy",
		SecondaryEmotion:   "relief",
		Theme:              "work",
		EmotionalIntensity: "high",
		Insight:            "dropped too",
	}
	s := r.Summary()
	if s.Date != "2026-08-30" || s.PrimaryEmotion != "joy" || s.Theme != "work" {
		t.Fatalf("summary = %+v", s)
	}
}
