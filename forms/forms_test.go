package forms

import (
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/inkstream/inkstream/models"
)

func newFormContext(t *testing.T, form url.Values) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest("POST", "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	ctx.Request = req
	return ctx
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "forms.db")), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Group{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCommentFormRejectsBlankText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		f := ParseCommentForm(newFormContext(t, url.Values{"text": {text}}))
		if f.Valid() {
			t.Fatalf("comment %q reported valid", text)
		}
		if f.Errors["text"] == "" {
			t.Fatalf("no text error for %q", text)
		}
	}
}

func TestCommentFormApplySanitizes(t *testing.T) {
	f := ParseCommentForm(newFormContext(t, url.Values{"text": {"  hello <script>alert(1)</script> world  "}}))
	if !f.Valid() {
		t.Fatalf("unexpected errors: %v", f.Errors)
	}

	var comment models.Comment
	f.Apply(&comment)
	if strings.Contains(comment.Text, "<script>") {
		t.Fatalf("script tag survived: %q", comment.Text)
	}
	if strings.HasPrefix(comment.Text, " ") || strings.HasSuffix(comment.Text, " ") {
		t.Fatalf("text not trimmed: %q", comment.Text)
	}
}

func TestPostFormRequiresText(t *testing.T) {
	db := openTestDB(t)
	f := ParsePostForm(newFormContext(t, url.Values{"text": {"   "}}), db)
	if f.Valid() {
		t.Fatal("blank post reported valid")
	}
	if f.Errors["text"] == "" {
		t.Fatal("no text error")
	}
}

func TestPostFormGroupResolution(t *testing.T) {
	db := openTestDB(t)
	group := models.Group{Title: "Nature", Slug: "nature"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("create group: %v", err)
	}

	// An existing numeric ID resolves to that group.
	f := ParsePostForm(newFormContext(t, url.Values{"text": {"ok"}, "group": {strconv.Itoa(int(group.ID))}}), db)
	if !f.Valid() {
		t.Fatalf("unexpected errors: %v", f.Errors)
	}
	var post models.Post
	if err := f.Apply(newFormContext(t, nil), &post, t.TempDir()); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if post.GroupID == nil || *post.GroupID != group.ID {
		t.Fatalf("group id = %v, want %d", post.GroupID, group.ID)
	}

	// Unknown and malformed IDs become field errors.
	for _, raw := range []string{"999", "abc"} {
		f := ParsePostForm(newFormContext(t, url.Values{"text": {"ok"}, "group": {raw}}), db)
		if f.Valid() {
			t.Fatalf("group %q reported valid", raw)
		}
		if f.Errors["group"] == "" {
			t.Fatalf("no group error for %q", raw)
		}
	}
}

func TestPostFormApplyClearsGroup(t *testing.T) {
	db := openTestDB(t)

	groupID := uint(7)
	post := models.Post{Text: "existing", GroupID: &groupID}

	// Resubmitting without a group detaches the post from it.
	f := ParsePostForm(newFormContext(t, url.Values{"text": {"existing"}}), db)
	if !f.Valid() {
		t.Fatalf("unexpected errors: %v", f.Errors)
	}
	if err := f.Apply(newFormContext(t, nil), &post, t.TempDir()); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if post.GroupID != nil {
		t.Fatalf("group id = %v, want nil", post.GroupID)
	}
}

func TestPostFormFromModelPrefills(t *testing.T) {
	groupID := uint(3)
	post := models.Post{Text: "existing", GroupID: &groupID}
	f := PostFormFromModel(&post)
	if f.Text != "existing" || f.GroupRaw != "3" {
		t.Fatalf("prefill = %q / %q", f.Text, f.GroupRaw)
	}
}
