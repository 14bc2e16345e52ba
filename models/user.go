package models

import "time"

// User is the root record for everything a person owns: their reflections,
// their weekly analysis cache and their usage telemetry. The ID is the
// caller-supplied userId, not an auto-increment.
type User struct {
	ID           string     `gorm:"primary_key" json:"id"`
	Name         string     `gorm:"default:''" json:"name" form:"name"`
	Email        string     `gorm:"default:''" json:"email" form:"email"`
	RequestCount int64      `gorm:"default:0" json:"request_count"`
	LastActive   *time.Time `json:"last_active"`
	CreatedAt    *time.Time `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}
