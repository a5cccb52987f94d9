package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// testRouter wires the event handlers behind a stub identity, the way
// the JWT middleware would present it. The cases below exercise the
// validation paths that reject before any store access.
func testRouter(userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set("userId", userID) })

	events := router.Group("/api/events")
	events.POST("", CreateEvent)
	events.GET("/most-active", GetMostActiveEvent)
	events.GET("/:id", GetEventByID)
	events.PUT("/:id", UpdateEvent)
	events.POST("/:id/like", LikeEvent)
	events.POST("/:id/comment", CommentOnEvent)

	return router
}

func performJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestCreateEventValidation(t *testing.T) {
	router := testRouter(primitive.NewObjectID().Hex())

	t.Run("missing title", func(t *testing.T) {
		w := performJSON(router, http.MethodPost, "/api/events",
			`{"body":"b","topics":"Tech","expiresAt":"2030-01-01T00:00:00Z"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing expiresAt", func(t *testing.T) {
		w := performJSON(router, http.MethodPost, "/api/events",
			`{"title":"t","body":"b","topics":["Tech"]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed expiresAt", func(t *testing.T) {
		w := performJSON(router, http.MethodPost, "/api/events",
			`{"title":"t","body":"b","topics":["Tech"],"expiresAt":"next tuesday"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid expiresAt date")
	})

	t.Run("past expiresAt", func(t *testing.T) {
		w := performJSON(router, http.MethodPost, "/api/events",
			`{"title":"t","body":"b","topics":["Tech"],"expiresAt":"2020-01-01T00:00:00Z"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "expiresAt must be in the future")
	})

	t.Run("whitespace-only title", func(t *testing.T) {
		w := performJSON(router, http.MethodPost, "/api/events",
			`{"title":"   ","body":"b","topics":["Tech"],"expiresAt":"2030-01-01T00:00:00Z"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("whitespace-only body", func(t *testing.T) {
		w := performJSON(router, http.MethodPost, "/api/events",
			`{"title":"t","body":" \t ","topics":["Tech"],"expiresAt":"2030-01-01T00:00:00Z"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown topic", func(t *testing.T) {
		w := performJSON(router, http.MethodPost, "/api/events",
			`{"title":"t","body":"b","topics":["Gardening"],"expiresAt":"2030-01-01T00:00:00Z"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid topic")
	})

	t.Run("no identity", func(t *testing.T) {
		anon := testRouter("")
		w := performJSON(anon, http.MethodPost, "/api/events",
			`{"title":"t","body":"b","topics":["Tech"],"expiresAt":"2030-01-01T00:00:00Z"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMostActiveRequiresTopic(t *testing.T) {
	router := testRouter(primitive.NewObjectID().Hex())

	w := performJSON(router, http.MethodGet, "/api/events/most-active", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "topic query parameter is required")
}

func TestMalformedEventID(t *testing.T) {
	router := testRouter(primitive.NewObjectID().Hex())

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/events/not-an-id"},
		{http.MethodPut, "/api/events/not-an-id"},
		{http.MethodPost, "/api/events/not-an-id/like"},
		{http.MethodPost, "/api/events/not-an-id/comment"},
	} {
		w := performJSON(router, tc.method, tc.path, `{"text":"hi"}`)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestUpdateEventValidation(t *testing.T) {
	router := testRouter(primitive.NewObjectID().Hex())
	id := primitive.NewObjectID().Hex()

	t.Run("malformed expiresAt fails before any field applies", func(t *testing.T) {
		w := performJSON(router, http.MethodPut, "/api/events/"+id,
			`{"title":"new title","expiresAt":"soon"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid expiresAt date")
	})

	t.Run("empty title rejected", func(t *testing.T) {
		w := performJSON(router, http.MethodPut, "/api/events/"+id,
			`{"title":""}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Title cannot be empty")
	})

	t.Run("whitespace-only body rejected", func(t *testing.T) {
		w := performJSON(router, http.MethodPut, "/api/events/"+id,
			`{"body":"   "}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Message body cannot be empty")
	})

	t.Run("unknown topic rejected", func(t *testing.T) {
		w := performJSON(router, http.MethodPut, "/api/events/"+id,
			`{"topics":["Cooking"]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty topics rejected", func(t *testing.T) {
		w := performJSON(router, http.MethodPut, "/api/events/"+id,
			`{"topics":[]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
