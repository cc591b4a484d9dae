package middleware

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/worknote/backend/internal/services"
)

const auditBodyLimit = 2000

// sensitive request fields masked before the body lands in the audit trail
var auditMaskedKeys = []string{"password", "refresh_token", "access_token", "token", "secret"}

// AuditLog records admin write operations (POST/PUT/DELETE) to system_logs.
func AuditLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != "POST" && method != "PUT" && method != "DELETE" {
			c.Next()
			return
		}

		body := captureBody(c)

		c.Next()

		userID := GetUserID(c)
		var uid *uint
		if userID > 0 {
			uid = &userID
		}

		module, action := auditRoute(c.FullPath(), method)
		status := c.Writer.Status()
		outcome := "failed"
		if status >= 200 && status < 300 {
			outcome = "ok"
		}
		message := fmt.Sprintf("[Audit] %s %s %s %s",
			GetUsername(c), method, c.Request.URL.Path, outcome)

		services.LogInfo(module, action, message, uid, c.ClientIP(), c.Request.UserAgent(),
			map[string]interface{}{
				"method": method,
				"path":   c.Request.URL.Path,
				"status": status,
				"body":   body,
				"audit":  true,
			})
	}
}

// captureBody reads and restores the request body, returning a masked,
// truncated snippet for the audit record.
func captureBody(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	raw, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewBuffer(raw))

	snippet := string(raw)
	if len(snippet) > auditBodyLimit {
		snippet = snippet[:auditBodyLimit] + "...[truncated]"
	}
	for _, key := range auditMaskedKeys {
		snippet = maskJSONValue(snippet, key)
	}
	return snippet
}

// auditRoute derives (module, action) from a route pattern, e.g.
// "/api/missions/:id" + DELETE yields ("Missions", "Delete").
func auditRoute(fullPath, method string) (string, string) {
	path := strings.TrimPrefix(fullPath, "/api/")
	module := strings.SplitN(path, "/", 2)[0]
	if module == "" {
		module = "unknown"
	}

	words := strings.Split(strings.ReplaceAll(module, "-", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	module = strings.Join(words, " ")

	action := method
	switch method {
	case "POST":
		action = "Create"
	case "PUT":
		action = "Update"
	case "DELETE":
		action = "Delete"
	}
	return module, action
}

// maskJSONValue replaces the string value of a JSON key with "***".
// Best-effort text surgery; the body is only audit material.
func maskJSONValue(body, key string) string {
	lower := strings.ToLower(body)
	idx := strings.Index(lower, `"`+key+`"`)
	if idx == -1 {
		return body
	}

	rest := body[idx+len(key)+2:]
	colon := strings.Index(rest, ":")
	if colon == -1 {
		return body
	}
	valueStart := idx + len(key) + 2 + colon + 1
	for valueStart < len(body) && (body[valueStart] == ' ' || body[valueStart] == '\t') {
		valueStart++
	}
	if valueStart >= len(body) || body[valueStart] != '"' {
		return body
	}

	endQuote := strings.Index(body[valueStart+1:], `"`)
	if endQuote == -1 {
		return body
	}
	return body[:valueStart+1] + "***" + body[valueStart+1+endQuote:]
}
