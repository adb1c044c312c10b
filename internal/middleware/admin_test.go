package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/chroniclehq/chronicle/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func adminProtected(token string) *gin.Engine {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	r := gin.New()
	r.DELETE("/privileged", middleware.AdminAuth(token, log), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return r
}

func adminRequest(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodDelete, "/privileged", http.NoBody)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestAdminAuth_ValidToken(t *testing.T) {
	w := adminRequest(adminProtected("sekrit-admin-token"), "Bearer sekrit-admin-token")

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestAdminAuth_WrongToken(t *testing.T) {
	w := adminRequest(adminProtected("sekrit-admin-token"), "Bearer guess")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAdminAuth_MissingHeader(t *testing.T) {
	w := adminRequest(adminProtected("sekrit-admin-token"), "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAdminAuth_NotBearer(t *testing.T) {
	w := adminRequest(adminProtected("sekrit-admin-token"), "Basic c2Vrcml0")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAdminAuth_NoTokenConfigured(t *testing.T) {
	// Privileged routes are disabled, not open, when no token is set.
	w := adminRequest(adminProtected(""), "Bearer anything")

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}
