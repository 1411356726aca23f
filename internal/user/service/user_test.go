package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/cloudvault-backend/internal/auth"
	"github.com/lk2023060901/cloudvault-backend/internal/auth/middleware"
	"github.com/lk2023060901/cloudvault-backend/internal/pkg/logger"
	"github.com/lk2023060901/cloudvault-backend/internal/user/biz"
	"github.com/lk2023060901/cloudvault-backend/internal/user/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := logger.DefaultConfig()
	cfg.Level = "error"
	log, err := logger.New(cfg)
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&data.UserPO{}))

	uc := biz.NewUserUseCase(data.NewUserRepo(db))
	jwtManager := auth.NewJWTManager("test-secret", "cloudvault")
	svc := NewUserService(uc, jwtManager, log)

	router := gin.New()
	api := router.Group("/api")
	svc.RegisterRoutes(api, middleware.JWTAuth(jwtManager, log))
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func signup(t *testing.T, router *gin.Engine, username, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	return postJSON(t, router, "/api/auth/signup", gin.H{
		"username": username,
		"email":    email,
		"password": password,
	})
}

func TestSignupEndpoint(t *testing.T) {
	t.Run("registers and returns the new user id", func(t *testing.T) {
		router := newTestRouter(t)

		w := signup(t, router, "alice", "alice@example.com", "s3cret-pass")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := decodeJSON(t, w)
		assert.Equal(t, "User registered successfully!", body["message"])
		assert.NotEmpty(t, body["userId"])
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		router := newTestRouter(t)
		require.Equal(t, http.StatusOK, signup(t, router, "alice", "alice@example.com", "s3cret-pass").Code)

		w := signup(t, router, "alice", "other@example.com", "s3cret-pass")
		assert.Equal(t, http.StatusConflict, w.Code)

		body := decodeJSON(t, w)
		assert.Equal(t, float64(http.StatusConflict), body["status"])
		assert.NotEmpty(t, body["timestamp"])
	})

	t.Run("invalid payload returns field details", func(t *testing.T) {
		router := newTestRouter(t)

		w := postJSON(t, router, "/api/auth/signup", gin.H{
			"username": "al",
			"email":    "not-an-email",
			"password": "123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		body := decodeJSON(t, w)
		details, ok := body["details"].(map[string]interface{})
		require.True(t, ok, "validation failures carry a details map: %s", w.Body.String())
		assert.Contains(t, details, "Username")
		assert.Contains(t, details, "Email")
		assert.Contains(t, details, "Password")
	})
}

func TestSigninEndpoint(t *testing.T) {
	router := newTestRouter(t)
	require.Equal(t, http.StatusOK, signup(t, router, "alice", "alice@example.com", "s3cret-pass").Code)

	t.Run("issues a token for the username", func(t *testing.T) {
		w := postJSON(t, router, "/api/auth/signin", gin.H{
			"username": "alice",
			"password": "s3cret-pass",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := decodeJSON(t, w)
		assert.NotEmpty(t, body["token"])
		user := body["user"].(map[string]interface{})
		assert.Equal(t, "alice", user["username"])
		assert.Equal(t, "alice@example.com", user["email"])
	})

	t.Run("accepts the email as principal", func(t *testing.T) {
		w := postJSON(t, router, "/api/auth/signin", gin.H{
			"email":    "alice@example.com",
			"password": "s3cret-pass",
		})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		w := postJSON(t, router, "/api/auth/signin", gin.H{
			"username": "alice",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing principal is a bad request", func(t *testing.T) {
		w := postJSON(t, router, "/api/auth/signin", gin.H{
			"password": "s3cret-pass",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMeEndpoint(t *testing.T) {
	router := newTestRouter(t)
	require.Equal(t, http.StatusOK, signup(t, router, "alice", "alice@example.com", "s3cret-pass").Code)

	signin := postJSON(t, router, "/api/auth/signin", gin.H{
		"username": "alice",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, signin.Code)
	token := decodeJSON(t, signin)["token"].(string)

	t.Run("returns the caller's identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := decodeJSON(t, w)
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "alice@example.com", body["email"])
		assert.NotEmpty(t, body["id"])
	})

	t.Run("rejects a missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
