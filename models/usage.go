package models

import (
	"strings"
	"time"
)

/************************************************
/**** MARK: USAGE CATEGORIES ****/
/************************************************/
const USAGE_CATEGORY_TEXT = "text"
const USAGE_CATEGORY_VOICE = "voice"
const USAGE_CATEGORY_WEEKLY = "weekly"
const USAGE_CATEGORY_OTHER = "other"

// MAX_USAGE_ENTRIES bounds the per-user request log; the oldest entries are
// dropped first.
const MAX_USAGE_ENTRIES = 100

// UsageEntry is one line of the per-user request log. Advisory telemetry
// only: nothing in the pipeline reads it back for decisions, and a failed
// write never reaches the caller.
type UsageEntry struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	UserID    string     `gorm:"not null;index" json:"userId"`
	Operation string     `gorm:"not null" json:"operation"`
	Detail    string     `gorm:"type:text" json:"detail"`
	CreatedAt *time.Time `json:"createdAt"`
}

// UsageTally is a per-(user, day, category) request counter.
type UsageTally struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	UserID    string     `gorm:"not null;index;unique_index:ux_usage_tally" json:"user_id"`
	Day       string     `gorm:"not null;unique_index:ux_usage_tally" json:"day"` // YYYY-MM-DD
	Category  string     `gorm:"not null;unique_index:ux_usage_tally" json:"category"`
	Count     int64      `gorm:"default:0" json:"count"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// UsageCategory maps an operation name to its coarse tally bucket by
// substring match.
func UsageCategory(operation string) string {
	op := strings.ToLower(operation)
	switch {
	case strings.Contains(op, "weekly"):
		return USAGE_CATEGORY_WEEKLY
	case strings.Contains(op, "voice") || strings.Contains(op, "transcript"):
		return USAGE_CATEGORY_VOICE
	case strings.Contains(op, "text") || strings.Contains(op, "daily"):
		return USAGE_CATEGORY_TEXT
	default:
		return USAGE_CATEGORY_OTHER
	}
}
