package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"microblog/internal/database"
	"microblog/internal/media"
	"microblog/internal/middleware"
	"microblog/internal/modules/auth"
	"microblog/internal/modules/post"
	jwtsvc "microblog/internal/pkg/jwt"
	"microblog/internal/repository"
	"microblog/internal/seed"
)

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type Suite struct {
	router *gin.Engine
	store  *media.Store
}

func setupSuite(t *testing.T) *Suite {
	t.Helper()

	// one shared in-memory database per test, visible to every pooled connection
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn)
	require.NoError(t, err, "failed to connect to test database")
	require.NoError(t, database.Migrate(db))

	store, err := media.NewStore(t.TempDir())
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	postRepo := repository.NewPostRepository(db)

	ctx := t.Context()
	require.NoError(t, seed.Run(ctx, userRepo, roleRepo, "admin", "guest"))

	// replace the generated admin password with a known one
	admin, err := userRepo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	hash, _ := bcrypt.GenerateFromPassword([]byte("admin-pass-123"), bcrypt.DefaultCost)
	admin.PasswordHash = string(hash)
	require.NoError(t, db.Save(admin).Error)

	j := jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour)

	authHandler := auth.NewHandler(auth.NewService(userRepo, roleRepo, j))
	postHandler := post.NewHandler(post.NewService(postRepo, store))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Identity(j, userRepo))

	api := r.Group("/api")
	authHandler.RegisterRoutes(api)
	postHandler.RegisterPublicRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.RequireAuth())
	postHandler.RegisterProtectedRoutes(protected, middleware.PostOwnership(postRepo))

	return &Suite{router: r, store: store}
}

func (s *Suite) doJSON(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// doMultipart sends the "post" JSON part plus an optional imageFile part.
func (s *Suite) doMultipart(method, path, token string, payload map[string]any, imageName string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	raw, _ := json.Marshal(payload)
	_ = mw.WriteField("post", string(raw))

	if imageName != "" {
		fw, _ := mw.CreateFormFile("imageFile", imageName)
		_, _ = fw.Write([]byte("fake-image-bytes"))
	}
	_ = mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func parse(t *testing.T, w *httptest.ResponseRecorder) TestResponse {
	t.Helper()
	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func (s *Suite) signup(t *testing.T, username, password string) {
	t.Helper()
	w := s.doJSON(http.MethodPost, "/api/auth/signup", "", map[string]any{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func (s *Suite) signin(t *testing.T, username, password string) string {
	t.Helper()
	w := s.doJSON(http.MethodPost, "/api/auth/signin", "", map[string]any{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := parse(t, w)
	token, _ := resp.Data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestSignupSignin(t *testing.T) {
	s := setupSuite(t)

	s.signup(t, "alice", "alice-pass-1")

	// duplicate username rejected
	w := s.doJSON(http.MethodPost, "/api/auth/signup", "", map[string]any{
		"username": "alice", "password": "whatever-123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// wrong password rejected
	w = s.doJSON(http.MethodPost, "/api/auth/signin", "", map[string]any{
		"username": "alice", "password": "wrong-pass-1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	s.signin(t, "alice", "alice-pass-1")
}

func TestPostLifecycleAndOwnership(t *testing.T) {
	s := setupSuite(t)

	s.signup(t, "alice", "alice-pass-1")
	s.signup(t, "bob", "bob-pass-111")
	aliceToken := s.signin(t, "alice", "alice-pass-1")
	bobToken := s.signin(t, "bob", "bob-pass-111")

	// anonymous create rejected
	w := s.doMultipart(http.MethodPost, "/api/posts", "", map[string]any{"title": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// alice creates a post with an image
	w = s.doMultipart(http.MethodPost, "/api/posts", aliceToken, map[string]any{
		"title":       "Hi",
		"description": "d",
		"hashtags":    "a,b",
	}, "pic.png")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := parse(t, w).Data

	assert.NotZero(t, created["id"])
	assert.NotEmpty(t, created["createdAt"])
	assert.Equal(t, "alice", created["user"].(map[string]interface{})["username"])
	firstImage, _ := created["imagePath"].(string)
	require.NotEmpty(t, firstImage)
	_, err := os.Stat(s.store.FilePath(firstImage))
	assert.NoError(t, err, "stored image must exist on disk")

	id := int64(created["id"].(float64))
	postPath := fmt.Sprintf("/api/posts/%d", id)

	// public read returns the same fields
	w = s.doJSON(http.MethodGet, postPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := parse(t, w).Data
	assert.Equal(t, "Hi", got["title"])
	assert.Equal(t, "a,b", got["hashtags"])

	// bob may not update or delete alice's post
	w = s.doMultipart(http.MethodPut, postPath, bobToken, map[string]any{"title": "hijack"}, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.doJSON(http.MethodDelete, postPath, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// owner update with a new image replaces the stored file
	w = s.doMultipart(http.MethodPut, postPath, aliceToken, map[string]any{
		"title": "Hi v2", "description": "d", "hashtags": "a,b",
	}, "next.jpg")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := parse(t, w).Data
	secondImage, _ := updated["imagePath"].(string)
	require.NotEmpty(t, secondImage)
	assert.NotEqual(t, firstImage, secondImage)
	_, err = os.Stat(s.store.FilePath(firstImage))
	assert.True(t, os.IsNotExist(err), "old image must be gone")
	_, err = os.Stat(s.store.FilePath(secondImage))
	assert.NoError(t, err)

	// a .exe upload is rejected
	w = s.doMultipart(http.MethodPut, postPath, aliceToken, map[string]any{
		"title": "Hi v2",
	}, "evil.exe")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// admin may delete anyone's post; the image file goes with it
	adminToken := s.signin(t, "admin", "admin-pass-123")
	w = s.doJSON(http.MethodDelete, postPath, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	_, err = os.Stat(s.store.FilePath(secondImage))
	assert.True(t, os.IsNotExist(err))

	// gone now
	w = s.doJSON(http.MethodGet, postPath, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// admin delete of an unknown post surfaces not-found, not forbidden
	w = s.doJSON(http.MethodDelete, postPath, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListingAndTagFilter(t *testing.T) {
	s := setupSuite(t)

	s.signup(t, "alice", "alice-pass-1")
	token := s.signin(t, "alice", "alice-pass-1")

	tags := []string{"travel,food", "trav", "food", "travel", "music"}
	for i, tag := range tags {
		w := s.doMultipart(http.MethodPost, "/api/posts", token, map[string]any{
			"title":    fmt.Sprintf("post-%d", i),
			"hashtags": tag,
		}, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	// paginated, newest first
	w := s.doJSON(http.MethodGet, "/api/posts?page=0&size=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := parse(t, w).Data
	assert.Equal(t, float64(3), page["totalPages"])
	assert.Equal(t, float64(0), page["number"])
	assert.Equal(t, true, page["first"])
	assert.Equal(t, false, page["last"])

	content := page["content"].([]interface{})
	require.Len(t, content, 2)
	assert.Equal(t, "post-4", content[0].(map[string]interface{})["title"])

	// substring tag filter: "travel,food" and "travel" match, "trav" does not
	w = s.doJSON(http.MethodGet, "/api/posts?tag=travel", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	filtered := parse(t, w).Data["content"].([]interface{})
	require.Len(t, filtered, 2)
	for _, item := range filtered {
		assert.Contains(t, item.(map[string]interface{})["hashtags"], "travel")
	}
}
