package controllers

import (
	"log"
	"net/http"
	"strings"
	"time"

	dbpkg "introspect/db"
	"introspect/models"
	"introspect/tools"
	"introspect/workers"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

type ReflectionRequest struct {
	UserID     string `json:"userId" form:"userId"`
	UserName   string `json:"userName" form:"userName"`
	UserEmail  string `json:"userEmail" form:"userEmail"`
	Date       string `json:"date" form:"date"` // YYYY-MM-DD, defaults to today
	Transcript string `json:"transcript" form:"transcript"`
	TextInput  string `json:"textInput" form:"textInput"`
}

// POST /save-transcript
// Fast ack: persists the reflection as pending, answers immediately and
// leaves the emotional analysis to a background task. Clients poll by doc
// id and must tolerate a still-pending status.
func SaveTranscript(c *gin.Context) {
	var req ReflectionRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	reflection, ok := persistReflection(c, req, req.Transcript, models.INPUT_TYPE_VOICE)
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	workers.StartReflectionAnalysis(db, reflection)

	RespondSuccess(c, gin.H{"reflection": reflection})
}

// POST /analyze-daily
// Synchronous variant for pure-text submissions: the analysis happens inline
// so the response already carries the analyzed fields. Persistence and cache
// invalidation are the same as the background path.
func AnalyzeDaily(c *gin.Context) {
	var req ReflectionRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	reflection, ok := persistReflection(c, req, req.TextInput, models.INPUT_TYPE_TEXT)
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	analysis, err := tools.AnalyzeReflection(
		c.Request.Context(), db, req.UserID, "analyze-daily-text", reflection.Transcript,
	)
	if err != nil {
		log.Printf("analyze-daily: analysis error for %s/%s: %v", reflection.UserID, reflection.DocID, err)
		workers.FailReflection(db, reflection.UserID, reflection.DocID, err.Error())
		RespondError(c, "analysis failed", http.StatusInternalServerError)
		return
	}

	workers.CompleteReflection(db, reflection.UserID, reflection.DocID, analysis)

	reflection.PrimaryEmotion = analysis.PrimaryEmotion
	reflection.SecondaryEmotion = analysis.SecondaryEmotion
	reflection.Theme = analysis.Theme
	reflection.EmotionalIntensity = analysis.EmotionalIntensity
	reflection.Insight = analysis.Insight
	reflection.AnalysisStatus = models.ANALYSIS_STATUS_COMPLETED

	RespondSuccess(c, gin.H{"analysis": analysis, "reflection": reflection})
}

// persistReflection validates the request, merge-upserts the user profile
// and writes the pending reflection row. It answers the HTTP error itself
// and returns ok=false when the caller should stop.
func persistReflection(c *gin.Context, req ReflectionRequest, transcript string, inputType string) (models.Reflection, bool) {
	req.UserID = strings.TrimSpace(req.UserID)
	transcript = strings.TrimSpace(transcript)

	if req.UserID == "" {
		RespondError(c, models.ValidationError{Field: "userId"}.Error(), http.StatusBadRequest)
		return models.Reflection{}, false
	}
	if transcript == "" {
		RespondError(c, models.ValidationError{Field: "transcript"}.Error(), http.StatusBadRequest)
		return models.Reflection{}, false
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not available", http.StatusInternalServerError)
		return models.Reflection{}, false
	}

	now := time.Now()
	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = now.Format("2006-01-02")
	}

	if err := upsertUserProfile(db, req.UserID, req.UserName, req.UserEmail, now); err != nil {
		log.Printf("reflections: user upsert error for %s: %v", req.UserID, err)
		RespondError(c, "could not save reflection", http.StatusInternalServerError)
		return models.Reflection{}, false
	}

	reflection := models.Reflection{
		UserID:         req.UserID,
		DocID:          models.ReflectionDocID(date, now),
		Date:           date,
		Transcript:     transcript,
		InputType:      inputType,
		AnalysisStatus: models.ANALYSIS_STATUS_PENDING,
	}
	if err := db.Create(&reflection).Error; err != nil {
		log.Printf("reflections: create error for %s: %v", req.UserID, err)
		RespondError(c, "could not save reflection", http.StatusInternalServerError)
		return models.Reflection{}, false
	}

	return reflection, true
}

// upsertUserProfile merges profile fields into the user record without
// clobbering what is already there: only non-empty incoming values are
// written.
func upsertUserProfile(db *gorm.DB, userID string, name string, email string, now time.Time) error {
	var user models.User
	if err := db.Where(models.User{ID: userID}).
		Attrs(models.User{Name: name, Email: email}).
		FirstOrCreate(&user).Error; err != nil {
		return err
	}

	updates := map[string]any{"last_active": now}
	if name != "" {
		updates["name"] = name
	}
	if email != "" {
		updates["email"] = email
	}
	return db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}

// GET /today-reflection/:userId
func GetTodayReflection(c *gin.Context) {
	userID, ok := ParamUserID(c)
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not available", http.StatusInternalServerError)
		return
	}

	today := time.Now().Format("2006-01-02")
	var reflection models.Reflection
	err := db.Where("user_id = ? AND date = ?", userID, today).
		Order("id desc").
		First(&reflection).Error
	if err != nil {
		RespondSuccess(c, gin.H{"reflection": nil})
		return
	}
	RespondSuccess(c, gin.H{"reflection": reflection})
}

// GET /reflections/:userId?limit=N
func GetReflections(c *gin.Context) {
	userID, ok := ParamUserID(c)
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not available", http.StatusInternalServerError)
		return
	}

	limit := QueryLimit(c, 7, 50)
	var reflections []models.Reflection
	if err := db.Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&reflections).Error; err != nil {
		log.Printf("reflections: list error for %s: %v", userID, err)
		RespondError(c, "could not load reflections", http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, gin.H{"reflections": reflections, "count": len(reflections)})
}

// GET /reflection/:userId/:date
func GetReflectionByDate(c *gin.Context) {
	userID, ok := ParamUserID(c)
	if !ok {
		return
	}
	date := strings.TrimSpace(c.Param("date"))
	if date == "" {
		RespondError(c, "date is required", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not available", http.StatusInternalServerError)
		return
	}

	var reflection models.Reflection
	err := db.Where("user_id = ? AND date = ?", userID, date).
		Order("id desc").
		First(&reflection).Error
	if err != nil {
		RespondError(c, "reflection not found", http.StatusNotFound)
		return
	}
	RespondSuccess(c, gin.H{"reflection": reflection})
}

// GET /reflection-by-id/:userId/:docId
func GetReflectionByID(c *gin.Context) {
	userID, ok := ParamUserID(c)
	if !ok {
		return
	}
	docID := strings.TrimSpace(c.Param("docId"))
	if docID == "" {
		RespondError(c, "docId is required", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not available", http.StatusInternalServerError)
		return
	}

	var reflection models.Reflection
	err := db.Where("user_id = ? AND doc_id = ?", userID, docID).First(&reflection).Error
	if err != nil {
		RespondError(c, "reflection not found", http.StatusNotFound)
		return
	}
	RespondSuccess(c, gin.H{"reflection": reflection})
}
