package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHealthRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := SetupRouter()

	w := serve(router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Mingle API is running")
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := SetupRouter()

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/events"},
		{http.MethodGet, "/api/events"},
		{http.MethodGet, "/api/events/expired"},
		{http.MethodGet, "/api/events/most-active"},
		{http.MethodGet, "/api/events/abc"},
		{http.MethodPut, "/api/events/abc"},
		{http.MethodDelete, "/api/events/abc"},
		{http.MethodPost, "/api/events/abc/like"},
		{http.MethodPost, "/api/events/abc/dislike"},
		{http.MethodPost, "/api/events/abc/comment"},
		{http.MethodPost, "/api/events/abc/attend"},
		{http.MethodGet, "/api/users/me"},
	} {
		w := serve(router, tc.method, tc.path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRegisterPayloadValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := SetupRouter()

	t.Run("missing fields", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/api/users/register", `{"email":"a@b.co"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/api/users/register",
			`{"name":"A","email":"not-an-email","password":"secret1"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoginPayloadValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := SetupRouter()

	w := serve(router, http.MethodPost, "/api/users/login", `{"email":"a@b.co"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
