package workers

import (
	"log"
	"time"

	"introspect/models"

	"github.com/jinzhu/gorm"
)

// StartStuckSweeper starts a loop that fails reflections stuck in pending
// longer than deadline. A reflection can get stuck when both the analysis
// and the subsequent failure write fall over; the sweep makes that state
// observable instead of leaving entries pending forever. Pass interval 0 to
// disable.
func StartStuckSweeper(db *gorm.DB, interval time.Duration, deadline time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			sweepStuckReflections(db, deadline)
		}
	}()
}

func sweepStuckReflections(db *gorm.DB, deadline time.Duration) {
	cutoff := time.Now().Add(-deadline)

	var stuck []models.Reflection
	if err := db.
		Where("analysis_status = ?", models.ANALYSIS_STATUS_PENDING).
		Where("created_at <= ?", cutoff).
		Limit(50).
		Find(&stuck).Error; err != nil {
		log.Printf("sweeper: query error: %v", err)
		return
	}

	for _, r := range stuck {
		log.Printf("sweeper: failing stuck reflection %s/%s (pending since %v)", r.UserID, r.DocID, r.CreatedAt)
		FailReflection(db, r.UserID, r.DocID, "analysis did not complete in time")
	}
}
