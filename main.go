package main

import (
	"log"
	"os"
	"time"

	"introspect/config"
	"introspect/controllers"
	dbpkg "introspect/db"
	"introspect/router"
	"introspect/workers"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	cfg := config.Get(configPath)

	dbpkg.SetConfigurations(cfg)
	controllers.SetConfigurations(cfg)

	db, err := dbpkg.Connect()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	workers.StartStuckSweeper(
		db,
		time.Duration(cfg.Pipeline.SweepIntervalSeconds)*time.Second,
		time.Duration(cfg.Pipeline.SweepDeadlineMinutes)*time.Minute,
	)

	r := gin.New()
	r.Use(dbpkg.SetDBtoContext(db))
	router.Initialize(r, cfg)

	log.Printf("Introspect listening on :%s", cfg.ApiPort)
	if err := r.Run(":" + cfg.ApiPort); err != nil {
		log.Fatal(err)
	}
}
