package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inkstream/inkstream/models"
	"github.com/inkstream/inkstream/utils"
)

// GroupController lists groups and lets administrators create them. There is
// no self-service group creation and no deletion path.
type GroupController struct {
	db *gorm.DB
}

// NewGroupController creates a GroupController.
func NewGroupController(db *gorm.DB) *GroupController {
	return &GroupController{db: db}
}

// ListGroups returns all groups, for the post form's group selector.
func (g *GroupController) ListGroups(ctx *gin.Context) {
	var groups []models.Group
	if err := g.db.Order("title ASC").Find(&groups).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to list groups")
		return
	}
	items := make([]gin.H, 0, len(groups))
	for _, grp := range groups {
		items = append(items, groupContext(grp))
	}
	utils.Success(ctx, gin.H{"items": items})
}

// CreateGroup creates a new category. Restricted to configured administrators.
func (g *GroupController) CreateGroup(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40310, "administrators only")
		return
	}

	var req struct {
		Title       string `json:"title" binding:"required"`
		Slug        string `json:"slug" binding:"required"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	title := strings.TrimSpace(req.Title)
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if title == "" || slug == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "title and slug cannot be empty")
		return
	}

	var existing models.Group
	if err := g.db.Where("slug = ?", slug).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40910, "slug already exists")
		return
	}

	group := models.Group{
		Title:       title,
		Slug:        slug,
		Description: utils.Sanitize(req.Description),
	}
	if err := g.db.Create(&group).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to create group")
		return
	}

	utils.Success(ctx, gin.H{"group": groupContext(group)})
}
