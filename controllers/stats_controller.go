package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inkstream/inkstream/models"
	"github.com/inkstream/inkstream/utils"
)

// StatsController exposes aggregate platform counters.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a StatsController.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns platform-wide totals.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var users, posts, comments int64
	if err := s.db.Model(&models.User{}).Count(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to count users")
		return
	}
	if err := s.db.Model(&models.Post{}).Count(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to count posts")
		return
	}
	if err := s.db.Model(&models.Comment{}).Count(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to count comments")
		return
	}

	var views int64
	// NULL when the table is empty
	if err := s.db.Model(&models.PageView{}).Select("COALESCE(SUM(count), 0)").Scan(&views).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to sum page views")
		return
	}

	utils.Success(ctx, gin.H{
		"users":      users,
		"posts":      posts,
		"comments":   comments,
		"page_views": views,
	})
}
