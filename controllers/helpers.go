package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inkstream/inkstream/config"
	"github.com/inkstream/inkstream/middleware"
	"github.com/inkstream/inkstream/models"
)

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func getUsername(ctx *gin.Context) string {
	value, exists := ctx.Get(middleware.ContextUsernameKey)
	if !exists {
		return ""
	}
	username, _ := value.(string)
	return username
}

func isAdmin(ctx *gin.Context) bool {
	username := getUsername(ctx)
	if username == "" {
		return false
	}
	cfg := config.Get()
	for _, u := range cfg.AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(u), username) {
			return true
		}
	}
	return false
}

// postContext is the render payload for one post in listings and detail pages.
func postContext(p models.Post) gin.H {
	item := gin.H{
		"id":         p.ID,
		"text":       p.Text,
		"preview":    p.Preview(),
		"image":      p.Image,
		"created_at": p.CreatedAt,
		"author": gin.H{
			"id":       p.Author.ID,
			"username": p.Author.Username,
		},
	}
	if p.Group != nil {
		item["group"] = groupContext(*p.Group)
	}
	return item
}

func postListContext(posts []models.Post) []gin.H {
	items := make([]gin.H, 0, len(posts))
	for _, p := range posts {
		items = append(items, postContext(p))
	}
	return items
}

func groupContext(g models.Group) gin.H {
	return gin.H{
		"id":          g.ID,
		"title":       g.Title,
		"slug":        g.Slug,
		"description": g.Description,
	}
}

func commentContext(c models.Comment) gin.H {
	return gin.H{
		"id":         c.ID,
		"post_id":    c.PostID,
		"text":       c.Text,
		"created_at": c.CreatedAt,
		"author": gin.H{
			"id":       c.Author.ID,
			"username": c.Author.Username,
		},
	}
}
