package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inkstream/inkstream/models"
	"github.com/inkstream/inkstream/utils"
)

// ProfileController serves author pages and the follow graph.
type ProfileController struct {
	db *gorm.DB
}

// NewProfileController creates a ProfileController.
func NewProfileController(db *gorm.DB) *ProfileController {
	return &ProfileController{db: db}
}

func (p *ProfileController) findAuthor(ctx *gin.Context) (*models.User, bool) {
	username := ctx.Param("username")
	var author models.User
	if err := p.db.Where("username = ?", username).First(&author).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40406, "user not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load user")
		return nil, false
	}
	return &author, true
}

// Profile lists one author's posts together with their total count and
// whether the current visitor follows them. Anonymous visitors never follow.
func (p *ProfileController) Profile(ctx *gin.Context) {
	author, ok := p.findAuthor(ctx)
	if !ok {
		return
	}

	query := p.db.Preload("Author").Preload("Group").
		Where("author_id = ?", author.ID).
		Order("created_at DESC, id DESC")
	posts, pagination, err := paginatePosts(ctx, query)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to list author posts")
		return
	}

	following := false
	if userID, authed := getUserID(ctx); authed {
		var count int64
		if err := p.db.Model(&models.Follow{}).
			Where("user_id = ? AND author_id = ?", userID, author.ID).
			Count(&count).Error; err == nil {
			following = count > 0
		}
	}

	utils.Success(ctx, gin.H{
		"author": gin.H{
			"id":       author.ID,
			"username": author.Username,
		},
		"posts_count": pagination.Total,
		"following":   following,
		"items":       postListContext(posts),
		"pagination":  pagination,
	})
}

// FollowIndex lists posts written by authors the current user follows.
func (p *ProfileController) FollowIndex(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}

	followed := p.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", userID)
	query := p.db.Preload("Author").Preload("Group").
		Where("author_id IN (?)", followed).
		Order("created_at DESC, id DESC")
	posts, pagination, err := paginatePosts(ctx, query)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to list followed posts")
		return
	}

	utils.Success(ctx, gin.H{
		"follow":     true,
		"items":      postListContext(posts),
		"pagination": pagination,
	})
}

// ProfileFollow creates a follow edge to the target author and redirects to
// their profile. Following yourself is a no-op; duplicate edges are swallowed
// by the composite unique index, so a concurrent double-submit stays safe.
func (p *ProfileController) ProfileFollow(ctx *gin.Context) {
	author, ok := p.findAuthor(ctx)
	if !ok {
		return
	}

	userID, authed := getUserID(ctx)
	if !authed {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	if author.ID != userID {
		follow := models.Follow{UserID: userID, AuthorID: author.ID}
		if err := p.db.Create(&follow).Error; err != nil && utils.Sugar != nil {
			utils.Sugar.Debugf("follow create skipped user=%d author=%d err=%v", userID, author.ID, err)
		}
	}

	ctx.Redirect(http.StatusFound, "/profile/"+author.Username)
}

// ProfileUnfollow removes the follow edge if one exists and redirects to the
// target's profile either way.
func (p *ProfileController) ProfileUnfollow(ctx *gin.Context) {
	author, ok := p.findAuthor(ctx)
	if !ok {
		return
	}

	userID, authed := getUserID(ctx)
	if !authed {
		utils.Error(ctx, http.StatusUnauthorized, 40114, "unauthorized")
		return
	}

	if err := p.db.Where("user_id = ? AND author_id = ?", userID, author.ID).
		Delete(&models.Follow{}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to unfollow")
		return
	}

	ctx.Redirect(http.StatusFound, "/profile/"+author.Username)
}
