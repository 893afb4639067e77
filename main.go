package main

import (
	"github.com/inkstream/inkstream/cache"
	"github.com/inkstream/inkstream/config"
	"github.com/inkstream/inkstream/models"
	"github.com/inkstream/inkstream/routes"
	"github.com/inkstream/inkstream/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
		&models.PageView{},
	)

	pageCache := cache.NewRedisStore("cache:pages:")
	r := routes.SetupRouter(db, pageCache)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
