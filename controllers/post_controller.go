package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inkstream/inkstream/cache"
	"github.com/inkstream/inkstream/config"
	"github.com/inkstream/inkstream/forms"
	"github.com/inkstream/inkstream/models"
	"github.com/inkstream/inkstream/utils"
)

// IndexCacheTTL is how long the front page listing may be served stale.
// Writes do not invalidate it; staleness inside the window is accepted.
const IndexCacheTTL = 20 * time.Second

// PostController serves the post listings and the create/edit/comment flows.
type PostController struct {
	db        *gorm.DB
	cache     cache.Store
	uploadDir string
}

// NewPostController creates a PostController backed by the given database and page cache.
func NewPostController(db *gorm.DB, store cache.Store) *PostController {
	return &PostController{db: db, cache: store, uploadDir: config.Get().UploadDir}
}

func (p *PostController) postsQuery() *gorm.DB {
	return p.db.Preload("Author").Preload("Group").Order("created_at DESC, id DESC")
}

// Index lists all posts, newest first. The whole response is cached for
// IndexCacheTTL keyed on the full request URI.
func (p *PostController) Index(ctx *gin.Context) {
	cacheKey := "index:" + ctx.Request.URL.RequestURI()
	if b, ok := p.cache.GetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}

	posts, pagination, err := paginatePosts(ctx, p.postsQuery())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list posts")
		return
	}

	payload := gin.H{
		"items":      postListContext(posts),
		"pagination": pagination,
	}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	cache.SetJSON(p.cache, cacheKey, wrapper, IndexCacheTTL)
	utils.Success(ctx, payload)
}

// GroupPosts lists the posts of one group looked up by slug. A missing group
// and a group without posts are both not found, with distinct messages.
func (p *PostController) GroupPosts(ctx *gin.Context) {
	slug := ctx.Param("slug")

	var group models.Group
	if err := p.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "group not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load group")
		return
	}

	query := p.postsQuery().Where("group_id = ?", group.ID)
	posts, pagination, err := paginatePosts(ctx, query)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to list group posts")
		return
	}
	if pagination.Total == 0 {
		utils.Error(ctx, http.StatusNotFound, 40402, "group has no posts")
		return
	}

	utils.Success(ctx, gin.H{
		"group":      groupContext(group),
		"items":      postListContext(posts),
		"pagination": pagination,
	})
}

// PostDetail shows one post with all its comments and an empty inline comment form.
func (p *PostController) PostDetail(ctx *gin.Context) {
	postID := ctx.Param("id")

	var post models.Post
	if err := p.db.Preload("Author").Preload("Group").First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load post")
		return
	}

	var postsCount int64
	if err := p.db.Model(&models.Post{}).Where("author_id = ?", post.AuthorID).Count(&postsCount).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to count author posts")
		return
	}

	var comments []models.Comment
	if err := p.db.Preload("Author").Where("post_id = ?", post.ID).Order("created_at ASC, id ASC").Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load comments")
		return
	}
	commentItems := make([]gin.H, 0, len(comments))
	for _, c := range comments {
		commentItems = append(commentItems, commentContext(c))
	}

	utils.Success(ctx, gin.H{
		"post":        postContext(post),
		"posts_count": postsCount,
		"comments":    commentItems,
		"form":        forms.NewCommentForm().Context(),
	})
}

// PostCreate renders the empty form on GET and creates a post on POST.
// Validation failures re-render the form with field errors and keep the
// success status; the author is always the authenticated user.
func (p *PostController) PostCreate(ctx *gin.Context) {
	if ctx.Request.Method == http.MethodGet {
		utils.Success(ctx, gin.H{
			"form":    forms.NewPostForm().Context(),
			"is_edit": false,
		})
		return
	}

	form := forms.ParsePostForm(ctx, p.db)
	if !form.Valid() {
		utils.Success(ctx, gin.H{
			"form":    form.Context(),
			"is_edit": false,
		})
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	post := models.Post{AuthorID: userID}
	if err := form.Apply(ctx, &post, p.uploadDir); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to store image")
		return
	}
	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to create post")
		return
	}

	ctx.Redirect(http.StatusFound, "/profile/"+getUsername(ctx))
}

// PostEdit mutates an existing post in place. Only the author may edit; anyone
// else is silently sent to the detail page and submitted data is discarded.
func (p *PostController) PostEdit(ctx *gin.Context) {
	postID := ctx.Param("id")

	var post models.Post
	if err := p.db.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40404, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok || post.AuthorID != userID {
		ctx.Redirect(http.StatusFound, "/posts/"+postID)
		return
	}

	if ctx.Request.Method == http.MethodGet {
		utils.Success(ctx, gin.H{
			"form":    forms.PostFormFromModel(&post).Context(),
			"is_edit": true,
		})
		return
	}

	form := forms.ParsePostForm(ctx, p.db)
	if !form.Valid() {
		utils.Success(ctx, gin.H{
			"form":    form.Context(),
			"is_edit": true,
		})
		return
	}

	if err := form.Apply(ctx, &post, p.uploadDir); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to store image")
		return
	}
	if err := p.db.Save(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to update post")
		return
	}

	ctx.Redirect(http.StatusFound, "/posts/"+postID)
}

// AddComment attaches a comment to a post. The redirect to the detail page
// happens regardless of validation outcome; invalid submissions are dropped
// without surfacing an error.
func (p *PostController) AddComment(ctx *gin.Context) {
	postID := ctx.Param("id")

	var post models.Post
	if err := p.db.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40405, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load post")
		return
	}

	form := forms.ParseCommentForm(ctx)
	if form.Valid() {
		userID, ok := getUserID(ctx)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
			return
		}
		comment := models.Comment{PostID: post.ID, AuthorID: userID}
		form.Apply(&comment)
		if err := p.db.Create(&comment).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to create comment")
			return
		}
	}

	ctx.Redirect(http.StatusFound, "/posts/"+postID)
}
