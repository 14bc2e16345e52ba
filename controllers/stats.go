package controllers

import (
	"log"
	"net/http"

	dbpkg "introspect/db"
	"introspect/models"

	"github.com/gin-gonic/gin"
)

// GET /user-stats/:userId
// Advisory telemetry view: total request count, the recent request log and
// the per-day/per-category tallies.
func GetUserStats(c *gin.Context) {
	userID, ok := ParamUserID(c)
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not available", http.StatusInternalServerError)
		return
	}

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		RespondError(c, "user not found", http.StatusNotFound)
		return
	}

	var entries []models.UsageEntry
	if err := db.Where("user_id = ?", userID).
		Order("id desc").
		Limit(models.MAX_USAGE_ENTRIES).
		Find(&entries).Error; err != nil {
		log.Printf("stats: log query error for %s: %v", userID, err)
	}

	var tallies []models.UsageTally
	if err := db.Where("user_id = ?", userID).
		Order("day desc, category asc").
		Find(&tallies).Error; err != nil {
		log.Printf("stats: tally query error for %s: %v", userID, err)
	}

	byDay := map[string]int64{}
	byCategory := map[string]int64{}
	for _, t := range tallies {
		byDay[t.Day] += t.Count
		byCategory[t.Category] += t.Count
	}

	RespondSuccess(c, gin.H{
		"userId":       user.ID,
		"requestCount": user.RequestCount,
		"lastActive":   user.LastActive,
		"recentLog":    entries,
		"byDay":        byDay,
		"byCategory":   byCategory,
	})
}
