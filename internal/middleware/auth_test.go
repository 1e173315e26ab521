package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeParser map[string]*Identity

func (f fakeParser) Parse(token string) (*Identity, error) {
	if identity, ok := f[token]; ok {
		return identity, nil
	}
	return nil, errors.New("unknown token")
}

func newRouter(auth gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(auth)

	whoami := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c), "is_admin": IsAdmin(c)})
	}
	r.GET("/open", whoami)
	r.GET("/user", RequireUser(), whoami)
	r.GET("/admin", RequireAdmin(), whoami)
	return r
}

func TestAuthenticate(t *testing.T) {
	parser := fakeParser{
		"student": {UserID: "u1"},
		"staff": {UserID: "admin-1", IsAdmin: true},
	}
	router := newRouter(Authenticate(parser, utils.NewNopLogger()))

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"anonymous open route", "/open", "", http.StatusOK, `{"user_id":"","is_admin":false}`},
		{"anonymous user route", "/user", "", http.StatusUnauthorized, ""},
		{"valid user token", "/user", "Bearer student", http.StatusOK, `{"user_id":"u1","is_admin":false}`},
		{"lowercase scheme", "/user", "bearer student", http.StatusOK, ""},
		{"user on admin route", "/admin", "Bearer student", http.StatusForbidden, ""},
		{"admin token", "/admin", "Bearer staff", http.StatusOK, `{"user_id":"admin-1","is_admin":true}`},
		{"unknown token", "/open", "Bearer nope", http.StatusUnauthorized, ""},
		{"malformed header", "/open", "Token student", http.StatusUnauthorized, ""},
		{"empty bearer", "/open", "Bearer ", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestDevHeaderAuth(t *testing.T) {
	router := newRouter(DevHeaderAuth())

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-User-ID", "dev")
	req.Header.Set("X-User-Role", "Admin")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-User-ID", "dev")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
