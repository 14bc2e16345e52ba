package workers

import (
	"context"
	"log"
	"time"

	"introspect/models"
	"introspect/tools"

	"github.com/jinzhu/gorm"
)

const analysisTimeout = 60 * time.Second

// StartReflectionAnalysis schedules the background analysis of a freshly
// submitted reflection. The caller's response goes out before this runs;
// clients poll by doc id and must tolerate a still-pending status.
func StartReflectionAnalysis(db *gorm.DB, r models.Reflection) {
	go ProcessReflection(db, r.UserID, r.DocID, r.Transcript, r.InputType)
}

// ProcessReflection drives one reflection from pending to a terminal state.
// On success it writes the analysis fields, flips the status to completed
// and invalidates the user's weekly cache. On failure it records the error
// with status failed. If even the failure write fails, the error is logged
// and the reflection stays pending; the sweeper picks those up eventually.
func ProcessReflection(db *gorm.DB, userID string, docID string, transcript string, inputType string) {
	ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
	defer cancel()

	operation := "analyze-" + inputType + "-reflection"
	analysis, err := tools.AnalyzeReflection(ctx, db, userID, operation, transcript)
	if err != nil {
		log.Printf("reflection worker: analysis error for %s/%s: %v", userID, docID, err)
		FailReflection(db, userID, docID, err.Error())
		return
	}

	CompleteReflection(db, userID, docID, analysis)
}

// CompleteReflection writes the analysis result, marks the reflection
// completed and clears the user's weekly cache so the next weekly request
// sees the new data.
func CompleteReflection(db *gorm.DB, userID string, docID string, analysis models.ReflectionAnalysis) {
	err := db.Model(&models.Reflection{}).
		Where("user_id = ? AND doc_id = ? AND analysis_status = ?", userID, docID, models.ANALYSIS_STATUS_PENDING).
		Updates(map[string]any{
			"primary_emotion":     analysis.PrimaryEmotion,
			"secondary_emotion":   analysis.SecondaryEmotion,
			"theme":               analysis.Theme,
			"emotional_intensity": analysis.EmotionalIntensity,
			"insight":             analysis.Insight,
			"analysis_status":     models.ANALYSIS_STATUS_COMPLETED,
		}).Error
	if err != nil {
		log.Printf("reflection worker: completion write error for %s/%s: %v", userID, docID, err)
		return
	}

	InvalidateWeeklyCache(db, userID)
}

// FailReflection marks the reflection failed with the given message. A
// failed write here leaves the reflection pending; that degraded state is
// surfaced through logs only.
func FailReflection(db *gorm.DB, userID string, docID string, message string) {
	err := db.Model(&models.Reflection{}).
		Where("user_id = ? AND doc_id = ? AND analysis_status = ?", userID, docID, models.ANALYSIS_STATUS_PENDING).
		Updates(map[string]any{
			"analysis_status": models.ANALYSIS_STATUS_FAILED,
			"analysis_error":  message,
		}).Error
	if err != nil {
		log.Printf("reflection worker: failure write error for %s/%s: %v (reflection left pending)", userID, docID, err)
	}
}

// InvalidateWeeklyCache drops the user's cached weekly analysis
// unconditionally. An in-flight weekly computation may still write a stale
// entry back afterward; that lost-invalidation window is accepted rather
// than closed with cross-operation locks.
func InvalidateWeeklyCache(db *gorm.DB, userID string) {
	if err := db.Delete(&models.WeeklyCache{}, "user_id = ?", userID).Error; err != nil {
		log.Printf("reflection worker: cache invalidation error for %s: %v", userID, err)
	}
}
