package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"empanadas/internal/auth"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// TestAuthMiddleware_MissingAuthHeader tests the middleware with missing Authorization header
func TestAuthMiddleware_MissingAuthHeader(t *testing.T) {
	router := gin.New()
	router.Use(AuthMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

// TestAuthMiddleware_InvalidAuthFormat tests the middleware with invalid Bearer format
func TestAuthMiddleware_InvalidAuthFormat(t *testing.T) {
	router := gin.New()
	router.Use(AuthMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "InvalidFormat")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

// TestAuthMiddleware_InvalidToken tests the middleware with an invalid token
func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := gin.New()
	router.Use(AuthMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid_token_xyz")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

// TestAuthMiddleware_ValidToken tests the middleware with a valid token
func TestAuthMiddleware_ValidToken(t *testing.T) {
	// Set JWT_SECRET for testing
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")

	// Generate a valid test token
	token, err := auth.GenerateToken("test-user-id", "test@example.com", auth.RoleStaff)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	router := gin.New()
	router.Use(AuthMiddleware())
	router.GET("/test", func(c *gin.Context) {
		userID, _ := c.Get("userID")
		userEmail, _ := c.Get("userEmail")
		c.JSON(http.StatusOK, gin.H{
			"userID":    userID,
			"userEmail": userEmail,
		})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

// TestRequireRole checks that only the listed roles get through
func TestRequireRole(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")

	router := gin.New()
	router.Use(AuthMiddleware(), RequireRole(auth.RoleAdmin))
	router.GET("/admin", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		role string
		want int
	}{
		{auth.RoleAdmin, http.StatusOK},
		{auth.RoleStaff, http.StatusForbidden},
	}

	for _, tt := range tests {
		token, err := auth.GenerateToken("user-"+tt.role, "x@example.com", tt.role)
		if err != nil {
			t.Fatalf("failed to generate test token: %v", err)
		}

		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != tt.want {
			t.Errorf("role %s: expected status %d, got %d", tt.role, tt.want, w.Code)
		}
	}
}

// TestRequireRole_WithoutAuth rejects requests that never went through AuthMiddleware
func TestRequireRole_WithoutAuth(t *testing.T) {
	router := gin.New()
	router.Use(RequireRole(auth.RoleAdmin))
	router.GET("/admin", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/admin", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, w.Code)
	}
}

// TestSessionMiddleware keeps a valid session id and replaces a malformed one
func TestSessionMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(SessionMiddleware())
	router.GET("/cart", func(c *gin.Context) {
		c.String(http.StatusOK, SessionID(c))
	})

	const valid = "2c1f8e0a-5d3b-4f7a-9e6c-1b2a3c4d5e6f"
	req := httptest.NewRequest("GET", "/cart", nil)
	req.Header.Set(SessionHeader, valid)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Body.String() != valid || w.Header().Get(SessionHeader) != valid {
		t.Errorf("expected session %s to be kept, got %q", valid, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/cart", nil)
	req.Header.Set(SessionHeader, "not-a-uuid")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	got := w.Header().Get(SessionHeader)
	if got == "" || got == "not-a-uuid" || w.Body.String() != got {
		t.Errorf("expected a fresh session id, got %q", got)
	}
}
