package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	dbpkg "introspect/db"
	"introspect/models"
	"introspect/tools"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

type WeeklyRequest struct {
	UserID string `json:"userId" form:"userId"`
}

// WeeklyResult is what the cache manager hands back to the HTTP layer.
type WeeklyResult struct {
	HasEnoughData   bool
	ReflectionCount int
	Cached          bool
	Analysis        models.WeeklyAnalysis
}

// POST /analyze-weekly
func AnalyzeWeekly(c *gin.Context) {
	var req WeeklyRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		RespondError(c, models.ValidationError{Field: "userId"}.Error(), http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not available", http.StatusInternalServerError)
		return
	}

	result, err := ComputeWeeklyAnalysis(db, req.UserID)
	if err != nil {
		log.Printf("weekly: compute error for %s: %v", req.UserID, err)
		RespondError(c, "could not compute weekly analysis", http.StatusInternalServerError)
		return
	}

	if !result.HasEnoughData {
		RespondSuccess(c, gin.H{
			"hasEnoughData":   false,
			"reflectionCount": result.ReflectionCount,
		})
		return
	}

	RespondSuccess(c, gin.H{
		"hasEnoughData":   true,
		"reflectionCount": result.ReflectionCount,
		"analysis":        result.Analysis,
		"cached":          result.Cached,
	})
}

// ComputeWeeklyAnalysis is the weekly cache manager. Fast path: a fresh
// cache entry is returned untouched, no analysis call happens. Otherwise it
// gathers the recent reflections, races the generative analysis against a
// timeout, falls back to the synthetic aggregate when that loses, and writes
// the result back to the cache.
//
// A reflection completing while this runs deletes the cache entry; the
// write-back below may then store an already-stale aggregate. That window is
// accepted (last-write-wins), it is not closed with locking.
func ComputeWeeklyAnalysis(db *gorm.DB, userID string) (WeeklyResult, error) {
	now := time.Now()

	var cache models.WeeklyCache
	if err := db.Where("user_id = ?", userID).First(&cache).Error; err == nil {
		if cache.Fresh(now) {
			return WeeklyResult{
				HasEnoughData:   true,
				ReflectionCount: cache.ReflectionCount,
				Cached:          true,
				Analysis:        cache.Analysis(),
			}, nil
		}
	}

	var reflections []models.Reflection
	if err := db.Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Limit(conf.Pipeline.WeeklyMaxReflections).
		Find(&reflections).Error; err != nil {
		return WeeklyResult{}, err
	}

	if len(reflections) < conf.Pipeline.WeeklyMinReflections {
		return WeeklyResult{HasEnoughData: false, ReflectionCount: len(reflections)}, nil
	}

	sample := make([]models.ReflectionSummary, 0, len(reflections))
	for _, r := range reflections {
		sample = append(sample, r.Summary())
	}

	analysis := analyzeWeeklyWithTimeout(db, userID, sample)

	if err := writeWeeklyCache(db, userID, now, len(sample), analysis); err != nil {
		// The aggregate itself is fine; failing to cache it only costs the
		// next request a recompute.
		log.Printf("weekly: cache write error for %s: %v", userID, err)
	}

	return WeeklyResult{
		HasEnoughData:   true,
		ReflectionCount: len(sample),
		Cached:          false,
		Analysis:        analysis,
	}, nil
}

type weeklyOutcome struct {
	analysis models.WeeklyAnalysis
	err      error
}

// analyzeWeeklyWithTimeout races the generative aggregate against the
// configured timeout. Whichever settles first wins; a late result lands in
// the buffered channel and is never read. Timeout or failure always yields
// the synthetic fallback, so this never fails outright.
func analyzeWeeklyWithTimeout(db *gorm.DB, userID string, sample []models.ReflectionSummary) models.WeeklyAnalysis {
	timeout := time.Duration(conf.Pipeline.WeeklyTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ch := make(chan weeklyOutcome, 1)
	go func() {
		analysis, err := tools.AnalyzeWeekly(ctx, db, userID, sample)
		ch <- weeklyOutcome{analysis: analysis, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			log.Printf("weekly: analysis error for %s, using fallback: %v", userID, out.err)
			return tools.FallbackWeekly(sample)
		}
		return out.analysis
	case <-ctx.Done():
		log.Printf("weekly: analysis timed out for %s after %s, using fallback", userID, timeout)
		return tools.FallbackWeekly(sample)
	}
}

// writeWeeklyCache overwrites the user's cache entry with merge-style
// partial updates and bumps the generation token.
func writeWeeklyCache(db *gorm.DB, userID string, now time.Time, count int, analysis models.WeeklyAnalysis) error {
	cache := models.WeeklyCache{UserID: userID, ComputedAt: now}
	if err := db.Where(models.WeeklyCache{UserID: userID}).FirstOrCreate(&cache).Error; err != nil {
		return err
	}

	return db.Model(&models.WeeklyCache{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"computed_at":         now,
			"reflection_count":    count,
			"generation":          gorm.Expr("generation + 1"),
			"dominant_emotions":   analysis.DominantEmotions,
			"dominant_themes":     analysis.DominantThemes,
			"pattern_description": analysis.PatternDescription,
			"weekly_insight":      analysis.WeeklyInsight,
			"reflective_question": analysis.ReflectiveQuestion,
		}).Error
}
