package config

import (
	"encoding/json"
	"log"
	"os"
)

type Configuration struct {
	ApiPort string `json:"api_port"`
	LogPath string `json:"log_path"`

	Database string `json:"database"` // "sqlite3" or "postgres"
	DbHost   string `json:"db_host"`
	DbPort   string `json:"db_port"`
	DbUser   string `json:"db_user"`
	DbName   string `json:"db_name"`
	DbPass   string `json:"db_pass"`

	Pipeline struct {
		WeeklyTimeoutSeconds int `json:"weekly_timeout_seconds"`
		WeeklyMinReflections int `json:"weekly_min_reflections"`
		WeeklyMaxReflections int `json:"weekly_max_reflections"`
		SweepIntervalSeconds int `json:"sweep_interval_seconds"` // 0 disables the sweeper
		SweepDeadlineMinutes int `json:"sweep_deadline_minutes"`
	} `json:"pipeline"`
}

func Get(path string) Configuration {
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	var c Configuration
	if err := json.Unmarshal(b, &c); err != nil {
		log.Fatal(err)
	}
	return WithDefaults(c)
}

// WithDefaults fills zero values so the rest of the code never has to guard
// against a half-empty configuration.
func WithDefaults(c Configuration) Configuration {
	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/server.log"
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}
	if c.Pipeline.WeeklyTimeoutSeconds <= 0 {
		c.Pipeline.WeeklyTimeoutSeconds = 15
	}
	if c.Pipeline.WeeklyMinReflections <= 0 {
		c.Pipeline.WeeklyMinReflections = 3
	}
	if c.Pipeline.WeeklyMaxReflections <= 0 {
		c.Pipeline.WeeklyMaxReflections = 7
	}
	if c.Pipeline.SweepDeadlineMinutes <= 0 {
		c.Pipeline.SweepDeadlineMinutes = 10
	}
	return c
}
