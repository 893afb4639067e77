package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/inkstream/inkstream/models"
)

func TestListGroupsSortedByTitle(t *testing.T) {
	e := newEnv(t)
	e.createGroup("zebra")
	e.createGroup("acorn")

	w := e.get("/groups", "")
	wantStatus(t, w, http.StatusOK)
	list := items(t, decode(t, w).Data)
	if len(list) != 2 {
		t.Fatalf("groups = %d, want 2", len(list))
	}
	first, _ := list[0].(map[string]any)
	if first["slug"] != "acorn" {
		t.Fatalf("first group = %v, want acorn", first["slug"])
	}
}

func TestCreateGroupAdminOnly(t *testing.T) {
	e := newEnv(t)
	admin := e.createUser("admin")
	plain := e.createUser("plain")
	body := map[string]string{"title": "Nature", "slug": "Nature", "description": "the outdoors"}

	w := e.postJSON("/groups", e.token(plain), body)
	wantStatus(t, w, http.StatusForbidden)

	w = e.postJSON("/groups", e.token(admin), body)
	wantStatus(t, w, http.StatusOK)

	var group models.Group
	if err := e.db.First(&group).Error; err != nil {
		t.Fatalf("load group: %v", err)
	}
	if group.Slug != "nature" {
		t.Fatalf("slug = %q, want lowercased nature", group.Slug)
	}

	// Slugs are unique regardless of submitted case.
	w = e.postJSON("/groups", e.token(admin), map[string]string{"title": "Other", "slug": "NATURE"})
	wantStatus(t, w, http.StatusConflict)
}

func TestCreateGroupValidation(t *testing.T) {
	e := newEnv(t)
	admin := e.createUser("admin")

	w := e.postJSON("/groups", e.token(admin), map[string]string{"title": "   ", "slug": "ok"})
	wantStatus(t, w, http.StatusBadRequest)
	w = e.postJSON("/groups", e.token(admin), map[string]string{"title": "ok"})
	wantStatus(t, w, http.StatusBadRequest)
}

func TestStatsCounters(t *testing.T) {
	e := newEnv(t)
	leo := e.createUser("leo")
	mia := e.createUser("mia")
	post := e.createPost(leo, "counted", nil, time.Now())
	if err := e.db.Create(&models.Comment{PostID: post.ID, AuthorID: mia.ID, Text: "hi"}).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}

	// Content pages feed the page view counter, /stats itself does not.
	e.get("/", "")
	e.get("/", "")
	e.get("/posts/"+itoa(post.ID), "")

	w := e.get("/stats", "")
	wantStatus(t, w, http.StatusOK)
	data := decode(t, w).Data
	if data["users"] != float64(2) || data["posts"] != float64(1) || data["comments"] != float64(1) {
		t.Fatalf("stats = %v", data)
	}
	if data["page_views"] != float64(3) {
		t.Fatalf("page_views = %v, want 3", data["page_views"])
	}
}
