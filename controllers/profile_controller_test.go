package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/inkstream/inkstream/models"
)

func TestProfileListsOnlyAuthorPosts(t *testing.T) {
	e := newEnv(t)
	leo := e.createUser("leo")
	mia := e.createUser("mia")
	e.createPosts(leo, 2)
	e.createPosts(mia, 1)

	w := e.get("/profile/leo", "")
	wantStatus(t, w, http.StatusOK)
	data := decode(t, w).Data

	if got := len(items(t, data)); got != 2 {
		t.Fatalf("profile has %d items, want 2", got)
	}
	if data["posts_count"] != float64(2) {
		t.Fatalf("posts_count = %v, want 2", data["posts_count"])
	}
	author, _ := data["author"].(map[string]any)
	if author["username"] != "leo" {
		t.Fatalf("author = %v", author)
	}
}

func TestProfileUnknownUser(t *testing.T) {
	e := newEnv(t)
	w := e.get("/profile/nobody", "")
	wantStatus(t, w, http.StatusNotFound)
	if resp := decode(t, w); resp.Message != "user not found" {
		t.Fatalf("message = %q", resp.Message)
	}
}

func TestProfileFollowingFlag(t *testing.T) {
	e := newEnv(t)
	leo := e.createUser("leo")
	mia := e.createUser("mia")
	token := e.token(mia)

	// Anonymous visitors never follow anyone.
	w := e.get("/profile/leo", "")
	wantStatus(t, w, http.StatusOK)
	if data := decode(t, w).Data; data["following"] != false {
		t.Fatalf("anonymous following = %v, want false", data["following"])
	}

	w = e.get("/profile/leo", token)
	wantStatus(t, w, http.StatusOK)
	if data := decode(t, w).Data; data["following"] != false {
		t.Fatalf("following = %v before follow, want false", data["following"])
	}

	if err := e.db.Create(&models.Follow{UserID: mia.ID, AuthorID: leo.ID}).Error; err != nil {
		t.Fatalf("create follow: %v", err)
	}
	w = e.get("/profile/leo", token)
	wantStatus(t, w, http.StatusOK)
	if data := decode(t, w).Data; data["following"] != true {
		t.Fatalf("following = %v after follow, want true", data["following"])
	}
}

func TestProfileFollowCreatesSingleEdge(t *testing.T) {
	e := newEnv(t)
	leo := e.createUser("leo")
	mia := e.createUser("mia")
	token := e.token(mia)

	w := e.get("/profile/leo/follow", token)
	wantRedirect(t, w, "/profile/leo")
	if n := e.countFollows(leo.ID); n != 1 {
		t.Fatalf("follow count = %d, want 1", n)
	}

	// Repeating the request must not add a second edge.
	w = e.get("/profile/leo/follow", token)
	wantRedirect(t, w, "/profile/leo")
	if n := e.countFollows(leo.ID); n != 1 {
		t.Fatalf("follow count = %d after repeat, want 1", n)
	}
}

func TestProfileFollowSelfIsNoOp(t *testing.T) {
	e := newEnv(t)
	leo := e.createUser("leo")

	w := e.get("/profile/leo/follow", e.token(leo))
	wantRedirect(t, w, "/profile/leo")
	if n := e.countFollows(leo.ID); n != 0 {
		t.Fatalf("self-follow created %d edges", n)
	}
}

func TestProfileFollowRequiresLogin(t *testing.T) {
	e := newEnv(t)
	e.createUser("leo")
	w := e.get("/profile/leo/follow", "")
	wantRedirect(t, w, "/auth/login?next=%2Fprofile%2Fleo%2Ffollow")
}

func TestProfileUnfollow(t *testing.T) {
	e := newEnv(t)
	leo := e.createUser("leo")
	mia := e.createUser("mia")
	token := e.token(mia)
	if err := e.db.Create(&models.Follow{UserID: mia.ID, AuthorID: leo.ID}).Error; err != nil {
		t.Fatalf("create follow: %v", err)
	}

	w := e.get("/profile/leo/unfollow", token)
	wantRedirect(t, w, "/profile/leo")
	if n := e.countFollows(leo.ID); n != 0 {
		t.Fatalf("follow count = %d after unfollow, want 0", n)
	}

	// Unfollowing again is harmless.
	w = e.get("/profile/leo/unfollow", token)
	wantRedirect(t, w, "/profile/leo")
	if n := e.countFollows(leo.ID); n != 0 {
		t.Fatalf("follow count = %d, want 0", n)
	}
}

func TestFollowFeedFiltersByFollowedAuthors(t *testing.T) {
	e := newEnv(t)
	leo := e.createUser("leo")
	mia := e.createUser("mia")
	reader := e.createUser("reader")
	e.createPosts(leo, 2)
	e.createPost(mia, "not in the feed", nil, time.Now())
	if err := e.db.Create(&models.Follow{UserID: reader.ID, AuthorID: leo.ID}).Error; err != nil {
		t.Fatalf("create follow: %v", err)
	}

	w := e.get("/follow", e.token(reader))
	wantStatus(t, w, http.StatusOK)
	data := decode(t, w).Data
	if data["follow"] != true {
		t.Fatalf("follow flag = %v, want true", data["follow"])
	}
	list := items(t, data)
	if len(list) != 2 {
		t.Fatalf("feed has %d items, want 2", len(list))
	}
	for _, raw := range list {
		item, _ := raw.(map[string]any)
		author, _ := item["author"].(map[string]any)
		if author["username"] != "leo" {
			t.Fatalf("feed leaked a post by %v", author["username"])
		}
	}
}

func TestFollowFeedEmptyWithoutSubscriptions(t *testing.T) {
	e := newEnv(t)
	leo := e.createUser("leo")
	reader := e.createUser("reader")
	e.createPosts(leo, 2)

	w := e.get("/follow", e.token(reader))
	wantStatus(t, w, http.StatusOK)
	if got := len(items(t, decode(t, w).Data)); got != 0 {
		t.Fatalf("feed has %d items, want 0", got)
	}
}
