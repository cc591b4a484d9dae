package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/worknote/backend/internal/utils"
)

func init() {
	utils.SetJWTSecret("middleware-test-secret")
}

func protectedRouter() *gin.Engine {
	router := gin.New()
	router.Use(AuthRequired())
	router.GET("/api/reports", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"user_id":  GetUserID(c),
			"username": GetUsername(c),
			"role":     GetRole(c),
		})
	})
	return router
}

func getWithAuth(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/reports", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestAuthRequired_RejectsBadHeaders(t *testing.T) {
	router := protectedRouter()

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"no scheme", "sometoken"},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"bearer without token", "Bearer"},
		{"garbage token", "Bearer not.a.valid.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := getWithAuth(router, tt.header)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected %d, got %d", http.StatusUnauthorized, w.Code)
			}
		})
	}
}

func TestAuthRequired_AcceptsValidToken(t *testing.T) {
	token, err := utils.GenerateToken(7, "alice", "member", 1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	w := getWithAuth(protectedRouter(), "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
}

func TestAdminRequired(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		setRole  bool
		wantCode int
	}{
		{"no role in context", "", false, http.StatusForbidden},
		{"member role", "member", true, http.StatusForbidden},
		{"admin role", "admin", true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(func(c *gin.Context) {
				if tt.setRole {
					c.Set(ContextRole, tt.role)
				}
				c.Next()
			})
			router.Use(AdminRequired())
			router.GET("/api/system-logs", func(c *gin.Context) {
				c.JSON(200, gin.H{"status": "ok"})
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/api/system-logs", nil)
			router.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, w.Code)
			}
		})
	}
}

func TestContextAccessors(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if GetUserID(c) != 0 || GetUsername(c) != "" || GetRole(c) != "" {
		t.Error("accessors should return zero values on an empty context")
	}

	c.Set(ContextUserID, uint(42))
	c.Set(ContextUsername, "alice")
	c.Set(ContextRole, "member")

	if GetUserID(c) != 42 {
		t.Errorf("GetUserID = %d, expected 42", GetUserID(c))
	}
	if GetUsername(c) != "alice" {
		t.Errorf("GetUsername = %q, expected alice", GetUsername(c))
	}
	if GetRole(c) != "member" {
		t.Errorf("GetRole = %q, expected member", GetRole(c))
	}
}
