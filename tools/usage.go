package tools

import (
	"log"
	"time"

	"introspect/models"

	"github.com/jinzhu/gorm"
)

// RecordUsage appends one request-log entry for the user, bumps the total
// request counter and the per-day/per-category tally, and trims the log to
// the newest MAX_USAGE_ENTRIES. Telemetry only: every failure is logged and
// swallowed, nothing here may block or fail the caller.
//
// The read-modify-write on the tally is not transactional; concurrent calls
// for the same user are last-write-wins, which is acceptable for advisory
// counters.
func RecordUsage(db *gorm.DB, userID string, operation string, detail string) {
	if db == nil || userID == "" {
		return
	}

	if err := db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("request_count", gorm.Expr("request_count + 1")).Error; err != nil {
		log.Printf("usage: counter update error for %s: %v", userID, err)
	}

	entry := models.UsageEntry{
		UserID:    userID,
		Operation: operation,
		Detail:    detail,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("usage: log append error for %s: %v", userID, err)
	} else {
		trimUsageLog(db, userID)
	}

	bumpTally(db, userID, models.UsageCategory(operation))
}

// RecordUsageAsync is the fire-and-forget variant used on request paths.
func RecordUsageAsync(db *gorm.DB, userID string, operation string, detail string) {
	go RecordUsage(db, userID, operation, detail)
}

// trimUsageLog deletes everything older than the newest MAX_USAGE_ENTRIES
// entries for the user.
func trimUsageLog(db *gorm.DB, userID string) {
	var boundary models.UsageEntry
	err := db.Where("user_id = ?", userID).
		Order("id desc").
		Offset(models.MAX_USAGE_ENTRIES - 1).
		First(&boundary).Error
	if err != nil {
		// Fewer than the cap exists; nothing to trim.
		return
	}
	if err := db.Delete(&models.UsageEntry{}, "user_id = ? AND id < ?", userID, boundary.ID).Error; err != nil {
		log.Printf("usage: log trim error for %s: %v", userID, err)
	}
}

// bumpTally increments the (user, day, category) counter, creating the row
// on first sight of that combination.
func bumpTally(db *gorm.DB, userID string, category string) {
	day := time.Now().Format("2006-01-02")

	var tally models.UsageTally
	err := db.Where("user_id = ? AND day = ? AND category = ?", userID, day, category).
		First(&tally).Error
	if err != nil {
		tally = models.UsageTally{UserID: userID, Day: day, Category: category, Count: 1}
		if err := db.Create(&tally).Error; err != nil {
			log.Printf("usage: tally create error for %s: %v", userID, err)
		}
		return
	}

	if err := db.Model(&models.UsageTally{}).
		Where("id = ?", tally.ID).
		Update("count", gorm.Expr("count + 1")).Error; err != nil {
		log.Printf("usage: tally update error for %s: %v", userID, err)
	}
}
