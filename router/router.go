package router

import (
	"log"

	"introspect/config"
	"introspect/controllers"
	"introspect/middleware"

	"github.com/gin-gonic/gin"
)

// Initialize wires all routes and middlewares.
func Initialize(r *gin.Engine, cfg config.Configuration) {
	_ = cfg

	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"success": true, "status": "ok"})
	})

	// Submissions
	r.POST("/save-transcript", Logger(), controllers.SaveTranscript)
	r.POST("/analyze-daily", Logger(), controllers.AnalyzeDaily)
	r.POST("/analyze-weekly", Logger(), controllers.AnalyzeWeekly)

	// Reads
	r.GET("/today-reflection/:userId", Logger(), controllers.GetTodayReflection)
	r.GET("/reflections/:userId", Logger(), controllers.GetReflections)
	r.GET("/reflection/:userId/:date", Logger(), controllers.GetReflectionByDate)
	r.GET("/reflection-by-id/:userId/:docId", Logger(), controllers.GetReflectionByID)
	r.GET("/user-stats/:userId", Logger(), controllers.GetUserStats)

	log.Printf("Routes initialized")
}
