package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/blog-api/internal/api/handler"
	"github.com/d60-Lab/blog-api/internal/cache"
	"github.com/d60-Lab/blog-api/internal/config"
	"github.com/d60-Lab/blog-api/internal/model"
	"github.com/d60-Lab/blog-api/internal/repository"
	"github.com/d60-Lab/blog-api/internal/service"
)

func setupAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Post{}))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	postCache := cache.NewPostCollectionCache(client, 300*time.Second)

	authService := service.NewAuthService(userRepo, "test-secret", 30*time.Minute)
	postService := service.NewPostService(postRepo, postCache, zap.NewNop())

	settings := &config.Settings{
		ProjectName:    "Blog API",
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
	return New(handler.New(authService, postService), authService, Options{Settings: settings})
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func login(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decode(t, w, &body)
	assert.Equal(t, "bearer", body.TokenType)
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func TestFullLifecycle(t *testing.T) {
	r := setupAPI(t)

	// register
	w := doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{"email": "a@x.com", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	var user model.User
	decode(t, w, &user)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotContains(t, w.Body.String(), "password", "no password material in the response")

	token := login(t, r, "a@x.com", "pw")

	// create
	w = doJSON(t, r, http.MethodPost, "/api/posts", token, gin.H{"title": "T", "content": "C"})
	require.Equal(t, http.StatusOK, w.Code)
	var created model.Post
	decode(t, w, &created)
	assert.Equal(t, uint(1), created.ID)
	assert.Equal(t, "T", created.Title)
	assert.Equal(t, user.ID, created.AuthorID)

	// list includes the fresh post
	w = doJSON(t, r, http.MethodGet, "/api/posts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var posts []model.Post
	decode(t, w, &posts)
	require.Len(t, posts, 1)
	assert.Equal(t, created.ID, posts[0].ID)

	// update
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/posts/%d", created.ID), token, gin.H{"title": "T2", "content": "C2"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated model.Post
	decode(t, w, &updated)
	assert.Equal(t, "T2", updated.Title)

	// delete
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/posts/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var msg map[string]string
	decode(t, w, &msg)
	assert.Equal(t, "Post deleted successfully", msg["message"])

	// gone
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/posts/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r := setupAPI(t)

	w := doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{"email": "a@x.com", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{"email": "a@x.com", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email already registered")
}

func TestLoginBadCredentials(t *testing.T) {
	r := setupAPI(t)

	w := doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{"email": "a@x.com", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{"email": "a@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}

func TestPostRoutesRequireToken(t *testing.T) {
	r := setupAPI(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/posts"},
		{http.MethodGet, "/api/posts"},
		{http.MethodGet, "/api/posts/1"},
		{http.MethodPut, "/api/posts/1"},
		{http.MethodDelete, "/api/posts/1"},
	} {
		w := doJSON(t, r, tc.method, tc.path, "", gin.H{"title": "T", "content": "C"})
		assert.Equalf(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}

	w := doJSON(t, r, http.MethodGet, "/api/posts", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCrossUserMutationsForbidden(t *testing.T) {
	r := setupAPI(t)

	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{"email": "a@x.com", "password": "pw"}).Code)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{"email": "b@x.com", "password": "pw"}).Code)
	tokenA := login(t, r, "a@x.com", "pw")
	tokenB := login(t, r, "b@x.com", "pw")

	w := doJSON(t, r, http.MethodPost, "/api/posts", tokenA, gin.H{"title": "T", "content": "C"})
	require.Equal(t, http.StatusOK, w.Code)
	var created model.Post
	decode(t, w, &created)

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/posts/%d", created.ID), tokenB, gin.H{"title": "evil", "content": "evil"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/posts/%d", created.ID), tokenB, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 原作者视角数据未变
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/posts/%d", created.ID), tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got model.Post
	decode(t, w, &got)
	assert.Equal(t, "T", got.Title)
}

func TestValidationErrors(t *testing.T) {
	r := setupAPI(t)

	w := doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{"email": "not-an-email", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{"email": "a@x.com", "password": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{"email": "a@x.com", "password": "pw"}).Code)
	token := login(t, r, "a@x.com", "pw")
	w = doJSON(t, r, http.MethodPost, "/api/posts", token, gin.H{"title": "T"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWelcomeAndRequestID(t *testing.T) {
	r := setupAPI(t)

	w := doJSON(t, r, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome to Blog API")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
