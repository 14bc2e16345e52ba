package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"introspect/models"

	"github.com/jinzhu/gorm"
)

const reflectionInstructions = `You are an emotional wellness assistant. Analyze the journal entry and respond with ONLY a JSON object, no prose, in this exact shape:
{"primaryEmotion":"...","secondaryEmotion":"...","theme":"...","emotionalIntensity":"low|medium|high","insight":"one short supportive sentence"}`

const weeklyInstructions = `You are an emotional wellness assistant. You receive a JSON array of daily reflection summaries. Respond with ONLY a JSON object, no prose, in this exact shape:
{"dominantEmotions":["..."],"dominantThemes":["..."],"patternDescription":"...","weeklyInsight":"...","reflectiveQuestion":"..."}`

// GenerateAnalysis calls the OpenAI Responses API and returns assistant text.
// The model answer is free-form; structure is recovered by ExtractJSON.
func GenerateAnalysis(ctx context.Context, instructions string, input string) (string, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}
	model := getenv("OPENAI_MODEL", "gpt-4.1-mini")

	reqBody := map[string]any{
		"model":        model,
		"instructions": instructions,
		"input":        input,
	}

	b, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		"https://api.openai.com/v1/responses",
		bytes.NewReader(b),
	)
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai error %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Output []struct {
			Type    string `json:"type"`
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, item := range parsed.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, c := range item.Content {
				if c.Type == "output_text" && strings.TrimSpace(c.Text) != "" {
					if sb.Len() > 0 {
						sb.WriteString("\n")
					}
					sb.WriteString(c.Text)
				}
			}
		}
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("empty response from model (no output_text items found)")
	}
	return out, nil
}

// AnalyzeReflection runs the per-entry emotional analysis for one transcript.
// When userID is set, a usage record is fired before the external call;
// recorder failures never abort the analysis. No retries happen here, retry
// policy belongs to the caller.
func AnalyzeReflection(ctx context.Context, db *gorm.DB, userID string, operation string, transcript string) (models.ReflectionAnalysis, error) {
	var analysis models.ReflectionAnalysis

	if userID != "" {
		RecordUsageAsync(db, userID, operation, truncateDetail(transcript))
	}

	raw, err := GenerateAnalysis(ctx, reflectionInstructions, transcript)
	if err != nil {
		return analysis, err
	}
	if err := ExtractJSON(raw, &analysis); err != nil {
		return analysis, err
	}
	return analysis, nil
}

// AnalyzeWeekly runs the aggregate analysis over a sample of recent
// reflection summaries.
func AnalyzeWeekly(ctx context.Context, db *gorm.DB, userID string, sample []models.ReflectionSummary) (models.WeeklyAnalysis, error) {
	var analysis models.WeeklyAnalysis

	if userID != "" {
		RecordUsageAsync(db, userID, "analyze-weekly", fmt.Sprintf("%d reflections", len(sample)))
	}

	input, err := json.Marshal(sample)
	if err != nil {
		return analysis, err
	}

	raw, err := GenerateAnalysis(ctx, weeklyInstructions, string(input))
	if err != nil {
		return analysis, err
	}
	if err := ExtractJSON(raw, &analysis); err != nil {
		return analysis, err
	}
	return analysis, nil
}

func truncateDetail(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
