package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskboard-api/internal/constants"
	"github.com/yukikurage/taskboard-api/internal/dto"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/middleware"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"github.com/yukikurage/taskboard-api/internal/services"
	"github.com/yukikurage/taskboard-api/internal/testutil"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db          *gorm.DB
	handler     *AuthHandler
	authService *services.AuthService
	router      *gin.Engine
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewSQLiteDB(t)

	tokens, err := services.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	authService := services.NewAuthService(repository.NewUserRepository(db), tokens)
	handler := NewAuthHandler(authService)

	r := gin.New()
	r.POST("/api/auth/register", handler.Register)
	r.POST("/api/auth/login", handler.Login)
	r.GET("/api/auth/verify", middleware.RequireAuth(authService), handler.Verify)
	r.PUT("/api/auth/update-profile", middleware.RequireAuth(authService), handler.UpdateProfile)
	r.PUT("/api/auth/change-password", middleware.RequireAuth(authService), handler.ChangePassword)

	return authTestEnv{
		db:          db,
		handler:     handler,
		authService: authService,
		router:      r,
	}
}

func doJSON(r http.Handler, method, url string, payload any, token string) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerPayload(email string) map[string]string {
	return map[string]string{
		"name":            "Alice",
		"email":           email,
		"password":        "supersecret",
		"passwordConfirm": "supersecret",
	}
}

func TestAuthHandler_Register(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := doJSON(env.router, http.MethodPost, "/api/auth/register", registerPayload("new@example.com"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "success", response.Status)
	require.NotEmpty(t, response.Token)
	require.Equal(t, "new@example.com", response.User.Email)
	require.NotContains(t, w.Body.String(), "password")
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	env := setupAuthTestEnv(t)

	payload := registerPayload("bad@example.com")
	payload["passwordConfirm"] = "different"
	w := doJSON(env.router, http.MethodPost, "/api/auth/register", payload, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var apiErr apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	require.Equal(t, apierrors.ErrCodeInvalidInput, apiErr.Code)
	require.Equal(t, services.ErrPasswordMismatch.Error(), apiErr.Message)

	w = doJSON(env.router, http.MethodPost, "/api/auth/register", map[string]string{"email": "x@example.com"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), `"field":"Name"`)
}

func TestAuthHandler_Register_PasswordTooLong(t *testing.T) {
	env := setupAuthTestEnv(t)

	payload := registerPayload("long@example.com")
	payload["password"] = strings.Repeat("p", 80)
	payload["passwordConfirm"] = payload["password"]

	w := doJSON(env.router, http.MethodPost, "/api/auth/register", payload, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var apiErr apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	require.Equal(t, services.ErrPasswordTooLong.Error(), apiErr.Message)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := doJSON(env.router, http.MethodPost, "/api/auth/register", registerPayload("dup@example.com"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(env.router, http.MethodPost, "/api/auth/register", registerPayload("dup@example.com"), "")
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Register(context.Background(), services.RegisterInput{
		Name:            "Existing",
		Email:           "existing@example.com",
		Password:        "supersecret",
		PasswordConfirm: "supersecret",
	})
	require.NoError(t, err)

	w := doJSON(env.router, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "existing@example.com",
		"password": "supersecret",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.Token)

	wrongPassword := doJSON(env.router, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "existing@example.com",
		"password": "not-it",
	}, "")
	unknownEmail := doJSON(env.router, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ghost@example.com",
		"password": "supersecret",
	}, "")
	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	require.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestAuthHandler_Verify(t *testing.T) {
	env := setupAuthTestEnv(t)

	result, err := env.authService.Register(context.Background(), services.RegisterInput{
		Name:            "Current",
		Email:           "current@example.com",
		Password:        "supersecret",
		PasswordConfirm: "supersecret",
	})
	require.NoError(t, err)

	w := doJSON(env.router, http.MethodGet, "/api/auth/verify", nil, result.Token)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, result.User.ID, response.User.ID)

	require.Equal(t, http.StatusUnauthorized, doJSON(env.router, http.MethodGet, "/api/auth/verify", nil, "").Code)
	require.Equal(t, http.StatusUnauthorized, doJSON(env.router, http.MethodGet, "/api/auth/verify", nil, "garbage").Code)
}

func TestAuthHandler_Verify_LowercaseScheme(t *testing.T) {
	env := setupAuthTestEnv(t)

	result, err := env.authService.Register(context.Background(), services.RegisterInput{
		Name:            "Scheme",
		Email:           "scheme@example.com",
		Password:        "supersecret",
		PasswordConfirm: "supersecret",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	req.Header.Set("Authorization", "bearer "+result.Token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	env := setupAuthTestEnv(t)

	result, err := env.authService.Register(context.Background(), services.RegisterInput{
		Name:            "Before",
		Email:           "profile@example.com",
		Password:        "supersecret",
		PasswordConfirm: "supersecret",
	})
	require.NoError(t, err)

	w := doJSON(env.router, http.MethodPut, "/api/auth/update-profile", map[string]string{
		"name":  "After",
		"email": "ignored@example.com",
	}, result.Token)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "After", response.User.Name)
	require.Equal(t, "profile@example.com", response.User.Email)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	result, err := env.authService.Register(context.Background(), services.RegisterInput{
		Name:            "Changer",
		Email:           "changer@example.com",
		Password:        "supersecret",
		PasswordConfirm: "supersecret",
	})
	require.NoError(t, err)

	w := doJSON(env.router, http.MethodPut, "/api/auth/change-password", map[string]string{
		"currentPassword":    "wrong-password",
		"newPassword":        "brandnew",
		"newPasswordConfirm": "brandnew",
	}, result.Token)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(env.router, http.MethodPut, "/api/auth/change-password", map[string]string{
		"currentPassword":    "supersecret",
		"newPassword":        "brandnew",
		"newPasswordConfirm": "brandnew",
	}, result.Token)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(env.router, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "changer@example.com",
		"password": "brandnew",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_Verify_WithoutMiddleware(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	c.Set(constants.ContextKeyUserID, "someone")

	env.handler.Verify(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
