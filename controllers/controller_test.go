package controllers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/inkstream/inkstream/cache"
	"github.com/inkstream/inkstream/config"
	"github.com/inkstream/inkstream/models"
	"github.com/inkstream/inkstream/routes"
	"github.com/inkstream/inkstream/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("ADMIN_USERNAMES", "admin")
	os.Setenv("GIN_MODE", "test")
	os.Setenv("RATE_LIMIT_PER_MINUTE", "100000")
	gin.SetMode(gin.TestMode)
	config.Load()
	os.Exit(m.Run())
}

type env struct {
	t      *testing.T
	db     *gorm.DB
	store  *cache.MemoryStore
	router *gin.Engine
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "app.db")), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
		&models.PageView{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := cache.NewMemoryStore()
	return &env{t: t, db: db, store: store, router: routes.SetupRouter(db, store)}
}

func (e *env) createUser(username string) models.User {
	e.t.Helper()
	// MinCost keeps the suite fast; production hashing is covered in utils.
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	if err != nil {
		e.t.Fatalf("hash password: %v", err)
	}
	user := models.User{Username: username, Email: username + "@example.com", PasswordHash: string(hash)}
	if err := e.db.Create(&user).Error; err != nil {
		e.t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func (e *env) createGroup(slug string) models.Group {
	e.t.Helper()
	group := models.Group{Title: "Group " + slug, Slug: slug, Description: "about " + slug}
	if err := e.db.Create(&group).Error; err != nil {
		e.t.Fatalf("create group %s: %v", slug, err)
	}
	return group
}

func (e *env) createPost(author models.User, text string, group *models.Group, createdAt time.Time) models.Post {
	e.t.Helper()
	post := models.Post{AuthorID: author.ID, Text: text, CreatedAt: createdAt}
	if group != nil {
		id := group.ID
		post.GroupID = &id
	}
	if err := e.db.Create(&post).Error; err != nil {
		e.t.Fatalf("create post: %v", err)
	}
	return post
}

// createPosts inserts n posts for the author, oldest first.
func (e *env) createPosts(author models.User, n int) []models.Post {
	e.t.Helper()
	base := time.Now().Add(-time.Hour)
	posts := make([]models.Post, 0, n)
	for i := 1; i <= n; i++ {
		posts = append(posts, e.createPost(author, fmt.Sprintf("post number %d from %s", i, author.Username), nil, base.Add(time.Duration(i)*time.Minute)))
	}
	return posts
}

func (e *env) token(user models.User) string {
	e.t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Username, time.Hour)
	if err != nil {
		e.t.Fatalf("generate token: %v", err)
	}
	return token
}

func (e *env) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	e.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) get(path, token string) *httptest.ResponseRecorder {
	return e.do(http.MethodGet, path, token, nil, "")
}

func (e *env) postForm(path, token string, form url.Values) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, path, token, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func (e *env) postJSON(path, token string, v any) *httptest.ResponseRecorder {
	b, err := json.Marshal(v)
	if err != nil {
		e.t.Fatalf("marshal body: %v", err)
	}
	return e.do(http.MethodPost, path, token, strings.NewReader(string(b)), "application/json")
}

type envelope struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return resp
}

func items(t *testing.T, data map[string]any) []any {
	t.Helper()
	list, ok := data["items"].([]any)
	if !ok {
		t.Fatalf("payload has no items list: %v", data)
	}
	return list
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
}

func wantRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302 (body %s)", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Fatalf("Location = %q, want %q", got, location)
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (e *env) countPosts() int64 {
	var n int64
	e.db.Model(&models.Post{}).Count(&n)
	return n
}

func (e *env) countComments(postID uint) int64 {
	var n int64
	e.db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&n)
	return n
}

func (e *env) countFollows(authorID uint) int64 {
	var n int64
	e.db.Model(&models.Follow{}).Where("author_id = ?", authorID).Count(&n)
	return n
}
