package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inkstream/inkstream/models"
)

// PostsPerPage is the fixed page size shared by every listing view.
const PostsPerPage = 10

// Pagination describes one page of a listing.
type Pagination struct {
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// paginatePosts returns at most PostsPerPage posts from the query, selected by
// the page query parameter. A non-integer parameter resolves to the first
// page; values below 1 or past the end clamp to the last page. An empty result
// still counts as one (empty) page.
func paginatePosts(ctx *gin.Context, query *gorm.DB) ([]models.Post, Pagination, error) {
	var total int64
	if err := query.Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	totalPages := int((total + PostsPerPage - 1) / PostsPerPage)
	if totalPages < 1 {
		totalPages = 1
	}

	page := 1
	if raw := ctx.Query("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			page = n
			if page < 1 || page > totalPages {
				page = totalPages
			}
		}
	}

	var posts []models.Post
	offset := (page - 1) * PostsPerPage
	if err := query.Offset(offset).Limit(PostsPerPage).Find(&posts).Error; err != nil {
		return nil, Pagination{}, err
	}

	return posts, Pagination{
		Page:        page,
		PageSize:    PostsPerPage,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}, nil
}
