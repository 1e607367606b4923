package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/services"
)

type fakeVerifier struct {
	users map[string]*models.User
	err   error
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[token]
	if !ok {
		return nil, services.ErrInvalidToken
	}
	return user, nil
}

type fakeLoader struct {
	tasks map[string]*models.Task
	err   error
}

func (f *fakeLoader) GetTask(_ context.Context, taskID, callerID string) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	task, ok := f.tasks[taskID]
	if !ok {
		return nil, services.ErrTaskNotFound
	}
	if task.OwnerID != callerID {
		return nil, services.ErrTaskForbidden
	}
	return task, nil
}

type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.err
}

func (f *fakeLimiter) Close() error { return nil }

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, "header %q", tt.header)
		assert.Equal(t, tt.token, token, "header %q", tt.header)
	}
}

func TestRequireAuth(t *testing.T) {
	alice := &models.User{ID: "user-1", Email: "alice@example.com"}
	verifier := &fakeVerifier{users: map[string]*models.User{"good": alice}}

	r := gin.New()
	r.GET("/me", RequireAuth(verifier), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		user, _ := GetUser(c)
		c.JSON(http.StatusOK, gin.H{"id": userID, "email": user.Email})
	})

	w := serve(r, http.MethodGet, "/me", "Bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"user-1","email":"alice@example.com"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", "Bearer bad").Code)

	verifier.err = errors.New("database down")
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", "Bearer good").Code)
}

func TestRequireTaskAccess(t *testing.T) {
	loader := &fakeLoader{tasks: map[string]*models.Task{
		"task-1": {ID: "task-1", OwnerID: "owner"},
	}}

	r := gin.New()
	r.GET("/tasks/:id",
		func(c *gin.Context) {
			if id := c.GetHeader("X-User"); id != "" {
				c.Set("user_id", id)
			}
			c.Next()
		},
		RequireTaskAccess(loader),
		func(c *gin.Context) {
			task, _ := GetTask(c)
			c.String(http.StatusOK, task.ID)
		},
	)

	request := func(path, user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if user != "" {
			req.Header.Set("X-User", user)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := request("/tasks/task-1", "owner")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "task-1", w.Body.String())

	assert.Equal(t, http.StatusForbidden, request("/tasks/task-1", "stranger").Code)
	assert.Equal(t, http.StatusNotFound, request("/tasks/missing", "owner").Code)
	assert.Equal(t, http.StatusUnauthorized, request("/tasks/task-1", "").Code)

	loader.err = errors.New("boom")
	assert.Equal(t, http.StatusInternalServerError, request("/tasks/task-1", "owner").Code)
}

func TestRateLimit(t *testing.T) {
	limiter := &fakeLimiter{allowed: true}

	r := gin.New()
	r.POST("/login", RateLimit(limiter), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodPost, "/login", "").Code)
	require.Len(t, limiter.keys, 1)
	assert.Contains(t, limiter.keys[0], ":/login")

	limiter.allowed = false
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodPost, "/login", "").Code)

	// Limiter failures let requests through
	limiter.err = errors.New("redis unavailable")
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodPost, "/login", "").Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), `"level":"INFO"`)

	buf.Reset()
	w = serve(r, http.MethodGet, "/broken", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}
