package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func ParamUserID(c *gin.Context) (string, bool) {
	v := strings.TrimSpace(c.Param("userId"))
	if v == "" {
		RespondError(c, "userId is required", http.StatusBadRequest)
		return "", false
	}
	return v, true
}

// QueryLimit parses ?limit=N with a default and a hard cap.
func QueryLimit(c *gin.Context, def int, max int) int {
	v := strings.TrimSpace(c.Query("limit"))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
