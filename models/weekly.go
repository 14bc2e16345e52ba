package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// WEEKLY_CACHE_TTL is how long a cached weekly analysis stays valid.
// Staleness is checked lazily on read, there is no background sweep.
const WEEKLY_CACHE_TTL = 24 * time.Hour

// JSONArray stores a string slice as a JSON text column.
type JSONArray []string

func (a JSONArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *JSONArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSONArray: %T", src)
	}
	if len(b) == 0 {
		*a = nil
		return nil
	}
	return json.Unmarshal(b, a)
}

// WeeklyAnalysis is the aggregate payload over a user's recent reflections.
// The synthetic fallback produces this exact shape too, so callers never
// branch on where the analysis came from.
type WeeklyAnalysis struct {
	DominantEmotions   JSONArray `json:"dominantEmotions"`
	DominantThemes     JSONArray `json:"dominantThemes"`
	PatternDescription string    `json:"patternDescription"`
	WeeklyInsight      string    `json:"weeklyInsight"`
	ReflectiveQuestion string    `json:"reflectiveQuestion"`
}

// WeeklyCache is the single cached aggregate per user. It is overwritten on
// every successful computation and deleted outright whenever one of the
// user's reflections finishes analysis, forcing the next weekly request to
// recompute even inside the TTL window.
type WeeklyCache struct {
	UserID             string     `gorm:"primary_key" json:"user_id"`
	ComputedAt         time.Time  `gorm:"not null" json:"computed_at"`
	ReflectionCount    int        `gorm:"default:0" json:"reflection_count"`
	Generation         int64      `gorm:"default:0" json:"generation"`
	DominantEmotions   JSONArray  `gorm:"type:text" json:"dominant_emotions"`
	DominantThemes     JSONArray  `gorm:"type:text" json:"dominant_themes"`
	PatternDescription string     `gorm:"type:text" json:"pattern_description"`
	WeeklyInsight      string     `gorm:"type:text" json:"weekly_insight"`
	ReflectiveQuestion string     `gorm:"type:text" json:"reflective_question"`
	CreatedAt          *time.Time `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at"`
}

// Fresh reports whether the entry is still inside the TTL window.
func (w WeeklyCache) Fresh(now time.Time) bool {
	return now.Sub(w.ComputedAt) < WEEKLY_CACHE_TTL
}

// Analysis reassembles the payload stored on the cache row.
func (w WeeklyCache) Analysis() WeeklyAnalysis {
	return WeeklyAnalysis{
		DominantEmotions:   w.DominantEmotions,
		DominantThemes:     w.DominantThemes,
		PatternDescription: w.PatternDescription,
		WeeklyInsight:      w.WeeklyInsight,
		ReflectiveQuestion: w.ReflectiveQuestion,
	}
}
