package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"introspect/config"
	dbpkg "introspect/db"
	"introspect/models"
	"introspect/workers"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("OPENAI_API_KEY", "")
	SetConfigurations(config.WithDefaults(config.Configuration{}))

	db, err := gorm.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.DB().SetMaxOpenConns(1)
	db.AutoMigrate(
		&models.User{},
		&models.Reflection{},
		&models.WeeklyCache{},
		&models.UsageEntry{},
		&models.UsageTally{},
	)
	t.Cleanup(func() { db.Close() })

	r := gin.New()
	r.Use(dbpkg.SetDBtoContext(db))
	r.POST("/save-transcript", SaveTranscript)
	r.POST("/analyze-daily", AnalyzeDaily)
	r.POST("/analyze-weekly", AnalyzeWeekly)
	r.GET("/today-reflection/:userId", GetTodayReflection)
	r.GET("/reflections/:userId", GetReflections)
	r.GET("/reflection/:userId/:date", GetReflectionByDate)
	r.GET("/reflection-by-id/:userId/:docId", GetReflectionByID)
	r.GET("/user-stats/:userId", GetUserStats)
	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method string, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w, out
}

func seedAnalyzed(t *testing.T, db *gorm.DB, userID string, i int, emotion string, theme string) models.Reflection {
	t.Helper()
	date := time.Now().AddDate(0, 0, -i).Format("2006-01-02")
	r := models.Reflection{
		UserID:             userID,
		DocID:              fmt.Sprintf("reflection-%s-%d-seed", date, i),
		Date:               date,
		Transcript:         "entry " + emotion,
		InputType:          models.INPUT_TYPE_VOICE,
		AnalysisStatus:     models.ANALYSIS_STATUS_COMPLETED,
		PrimaryEmotion:     emotion,
		Theme:              theme,
		EmotionalIntensity: "medium",
	}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("seed reflection: %v", err)
	}
	return r
}

func TestSaveTranscriptValidation(t *testing.T) {
	r, _ := setup(t)

	w, out := doJSON(t, r, http.MethodPost, "/save-transcript", gin.H{"transcript": "hello"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, false, out["success"])

	w, out = doJSON(t, r, http.MethodPost, "/save-transcript", gin.H{"userId": "u1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, out["error"], "transcript")
}

func TestSaveTranscriptReturnsPendingImmediately(t *testing.T) {
	r, _ := setup(t)

	w, out := doJSON(t, r, http.MethodPost, "/save-transcript", gin.H{
		"userId":     "u1",
		"userName":   "Uma",
		"transcript": "had a hard day",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, out["success"])

	reflection := out["reflection"].(map[string]any)
	require.Equal(t, models.ANALYSIS_STATUS_PENDING, reflection["analysisStatus"])
	require.Equal(t, models.INPUT_TYPE_VOICE, reflection["inputType"])
	require.Equal(t, "had a hard day", reflection["transcript"])

	// Retrievable by id before the background task finishes.
	docID := reflection["docId"].(string)
	w2, out2 := doJSON(t, r, http.MethodGet, "/reflection-by-id/u1/"+docID, nil)
	require.Equal(t, http.StatusOK, w2.Code)
	got := out2["reflection"].(map[string]any)
	require.Equal(t, "had a hard day", got["transcript"])
}

func TestAnalyzeDailyFailsClosedWithoutAnalysisService(t *testing.T) {
	r, db := setup(t)

	w, out := doJSON(t, r, http.MethodPost, "/analyze-daily", gin.H{
		"userId":    "u1",
		"textInput": "wrote this by hand",
	})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, false, out["success"])
	// Generic message only; the raw failure stays in the logs.
	require.Equal(t, "analysis failed", out["error"])

	var stored models.Reflection
	require.NoError(t, db.Where("user_id = ?", "u1").First(&stored).Error)
	require.Equal(t, models.ANALYSIS_STATUS_FAILED, stored.AnalysisStatus)
	require.Equal(t, models.INPUT_TYPE_TEXT, stored.InputType)
	require.NotEmpty(t, stored.AnalysisError)
}

func TestAnalyzeWeeklyInsufficientData(t *testing.T) {
	r, db := setup(t)

	_, out := doJSON(t, r, http.MethodPost, "/analyze-weekly", gin.H{"userId": "u1"})
	require.Equal(t, true, out["success"])
	require.Equal(t, false, out["hasEnoughData"])
	require.EqualValues(t, 0, out["reflectionCount"])

	seedAnalyzed(t, db, "u1", 1, "joy", "work")
	seedAnalyzed(t, db, "u1", 2, "calm", "family")

	_, out = doJSON(t, r, http.MethodPost, "/analyze-weekly", gin.H{"userId": "u1"})
	require.Equal(t, false, out["hasEnoughData"])
	require.EqualValues(t, 2, out["reflectionCount"])
}

func TestAnalyzeWeeklyFallbackThenCache(t *testing.T) {
	r, db := setup(t)
	seedAnalyzed(t, db, "u1", 1, "joy", "work")
	seedAnalyzed(t, db, "u1", 2, "joy", "family")
	seedAnalyzed(t, db, "u1", 3, "calm", "work")

	// No analysis service configured: the synthetic fallback must carry the
	// request, never a failure.
	_, out := doJSON(t, r, http.MethodPost, "/analyze-weekly", gin.H{"userId": "u1"})
	require.Equal(t, true, out["success"])
	require.Equal(t, true, out["hasEnoughData"])
	require.Equal(t, false, out["cached"])
	require.EqualValues(t, 3, out["reflectionCount"])

	analysis := out["analysis"].(map[string]any)
	require.Equal(t, []any{"joy", "calm"}, analysis["dominantEmotions"])
	require.Equal(t, []any{"work", "family"}, analysis["dominantThemes"])
	require.NotEmpty(t, analysis["reflectiveQuestion"])

	// Second request inside the TTL is a pure cache hit with the same payload.
	_, cachedOut := doJSON(t, r, http.MethodPost, "/analyze-weekly", gin.H{"userId": "u1"})
	require.Equal(t, true, cachedOut["cached"])
	require.Equal(t, analysis, cachedOut["analysis"].(map[string]any))
}

func TestAnalyzeWeeklyRecomputesAfterTTL(t *testing.T) {
	r, db := setup(t)
	seedAnalyzed(t, db, "u1", 1, "joy", "work")
	seedAnalyzed(t, db, "u1", 2, "joy", "work")
	seedAnalyzed(t, db, "u1", 3, "calm", "self")

	_, out := doJSON(t, r, http.MethodPost, "/analyze-weekly", gin.H{"userId": "u1"})
	require.Equal(t, false, out["cached"])

	stale := time.Now().Add(-25 * time.Hour)
	require.NoError(t, db.Model(&models.WeeklyCache{}).
		Where("user_id = ?", "u1").
		Update("computed_at", stale).Error)

	_, out = doJSON(t, r, http.MethodPost, "/analyze-weekly", gin.H{"userId": "u1"})
	require.Equal(t, false, out["cached"])
}

func TestAnalyzeWeeklyInvalidationForcesRecompute(t *testing.T) {
	r, db := setup(t)
	seedAnalyzed(t, db, "u1", 1, "joy", "work")
	seedAnalyzed(t, db, "u1", 2, "joy", "work")
	seedAnalyzed(t, db, "u1", 3, "calm", "self")

	doJSON(t, r, http.MethodPost, "/analyze-weekly", gin.H{"userId": "u1"})
	_, out := doJSON(t, r, http.MethodPost, "/analyze-weekly", gin.H{"userId": "u1"})
	require.Equal(t, true, out["cached"])

	// A completed reflection clears the cache even though the TTL has not
	// elapsed.
	seedAnalyzed(t, db, "u1", 0, "sadness", "health")
	workers.InvalidateWeeklyCache(db, "u1")

	_, out = doJSON(t, r, http.MethodPost, "/analyze-weekly", gin.H{"userId": "u1"})
	require.Equal(t, false, out["cached"])
	analysis := out["analysis"].(map[string]any)
	require.Contains(t, analysis["dominantEmotions"], "sadness")
}

func TestGetReflectionsLimit(t *testing.T) {
	r, db := setup(t)
	for i := 0; i < 10; i++ {
		seedAnalyzed(t, db, "u1", i, "joy", "work")
	}

	_, out := doJSON(t, r, http.MethodGet, "/reflections/u1", nil)
	require.EqualValues(t, 7, out["count"])

	_, out = doJSON(t, r, http.MethodGet, "/reflections/u1?limit=5", nil)
	require.EqualValues(t, 5, out["count"])

	_, out = doJSON(t, r, http.MethodGet, "/reflections/u1?limit=999", nil)
	require.EqualValues(t, 10, out["count"])
}

func TestGetTodayReflection(t *testing.T) {
	r, db := setup(t)

	_, out := doJSON(t, r, http.MethodGet, "/today-reflection/u1", nil)
	require.Equal(t, true, out["success"])
	require.Nil(t, out["reflection"])

	today := seedAnalyzed(t, db, "u1", 0, "joy", "work")
	_, out = doJSON(t, r, http.MethodGet, "/today-reflection/u1", nil)
	got := out["reflection"].(map[string]any)
	require.Equal(t, today.DocID, got["docId"])
}

func TestGetReflectionByDateNotFound(t *testing.T) {
	r, _ := setup(t)
	w, out := doJSON(t, r, http.MethodGet, "/reflection/u1/2020-01-01", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, false, out["success"])
}

func TestGetUserStats(t *testing.T) {
	r, db := setup(t)
	require.NoError(t, db.Create(&models.User{ID: "u1", RequestCount: 5}).Error)
	day := time.Now().Format("2006-01-02")
	require.NoError(t, db.Create(&models.UsageEntry{UserID: "u1", Operation: "analyze-weekly"}).Error)
	require.NoError(t, db.Create(&models.UsageTally{UserID: "u1", Day: day, Category: models.USAGE_CATEGORY_WEEKLY, Count: 3}).Error)
	require.NoError(t, db.Create(&models.UsageTally{UserID: "u1", Day: day, Category: models.USAGE_CATEGORY_VOICE, Count: 2}).Error)

	_, out := doJSON(t, r, http.MethodGet, "/user-stats/u1", nil)
	require.Equal(t, true, out["success"])
	require.EqualValues(t, 5, out["requestCount"])
	byCategory := out["byCategory"].(map[string]any)
	require.EqualValues(t, 3, byCategory[models.USAGE_CATEGORY_WEEKLY])
	byDay := out["byDay"].(map[string]any)
	require.EqualValues(t, 5, byDay[day])

	w, _ := doJSON(t, r, http.MethodGet, "/user-stats/unknown", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
