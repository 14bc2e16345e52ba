package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

/************************************************
/**** MARK: ANALYSIS STATUS ****/
/************************************************/
const ANALYSIS_STATUS_PENDING = "pending"
const ANALYSIS_STATUS_COMPLETED = "completed"
const ANALYSIS_STATUS_FAILED = "failed"

/************************************************
/**** MARK: INPUT TYPES ****/
/************************************************/
const INPUT_TYPE_TEXT = "text"
const INPUT_TYPE_VOICE = "voice"

// Reflection is one journal entry. It is written with status "pending" and
// becomes readable immediately; the analysis fields are filled in later by
// the background analyzer, which moves the status to "completed" or "failed"
// exactly once. Terminal states never transition again.
type Reflection struct {
	ID                 int64      `gorm:"primary_key;AUTO_INCREMENT" json:"-"`
	UserID             string     `gorm:"not null;index;unique_index:ux_user_doc" json:"userId"`
	DocID              string     `gorm:"not null;unique_index:ux_user_doc" json:"docId"`
	Date               string     `gorm:"not null;index" json:"date"` // YYYY-MM-DD
	Transcript         string     `gorm:"type:text" json:"transcript"`
	InputType          string     `gorm:"not null;default:'voice'" json:"inputType"`
	AnalysisStatus     string     `gorm:"not null;default:'pending';index" json:"analysisStatus"`
	PrimaryEmotion     string     `gorm:"default:''" json:"primaryEmotion,omitempty"`
	SecondaryEmotion   string     `gorm:"default:''" json:"secondaryEmotion,omitempty"`
	Theme              string     `gorm:"default:''" json:"theme,omitempty"`
	EmotionalIntensity string     `gorm:"default:''" json:"emotionalIntensity,omitempty"`
	Insight            string     `gorm:"type:text" json:"insight,omitempty"`
	AnalysisError      string     `gorm:"type:text" json:"analysisError,omitempty"`
	CreatedAt          *time.Time `json:"createdAt"`
	UpdatedAt          *time.Time `json:"updatedAt"`
}

// ReflectionAnalysis is the structured result of analyzing one transcript.
// The model is asked to answer in exactly this shape.
type ReflectionAnalysis struct {
	PrimaryEmotion     string `json:"primaryEmotion"`
	SecondaryEmotion   string `json:"secondaryEmotion"`
	Theme              string `json:"theme"`
	EmotionalIntensity string `json:"emotionalIntensity"`
	Insight            string `json:"insight"`
}

// ReflectionSummary is the compact per-entry view sent to the weekly
// aggregate analysis (and to the synthetic fallback).
type ReflectionSummary struct {
	Date               string `json:"date"`
	PrimaryEmotion     string `json:"primaryEmotion"`
	SecondaryEmotion   string `json:"secondaryEmotion"`
	Theme              string `json:"theme"`
	EmotionalIntensity string `json:"emotionalIntensity"`
}

// Summary reduces a reflection to the fields the weekly analysis cares about.
func (r Reflection) Summary() ReflectionSummary {
	return ReflectionSummary{
		Date:               r.Date,
		PrimaryEmotion:     r.PrimaryEmotion,
		SecondaryEmotion:   r.SecondaryEmotion,
		Theme:              r.Theme,
		EmotionalIntensity: r.EmotionalIntensity,
	}
}

// ReflectionDocID builds the document id for a new reflection. The prefix is
// date + unix seconds so ids sort roughly by creation time; the uuid suffix
// keeps two submits inside the same second from colliding.
func ReflectionDocID(date string, now time.Time) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("reflection-%s-%d-%s", date, now.Unix(), suffix)
}
