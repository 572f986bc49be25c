package main

import (
	"time"

	"github.com/tdlabs/dms/config"
	"github.com/tdlabs/dms/models"
	"github.com/tdlabs/dms/routes"
	"github.com/tdlabs/dms/services"
	"github.com/tdlabs/dms/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Folder{},
		&models.Document{},
		&models.Post{},
		&models.Comment{},
		&models.File{},
	)

	fileService := services.NewFileService(db, cfg.UploadDir, int64(cfg.MaxFileSizeMB)<<20)

	r := routes.SetupRouter(db, fileService)

	// Background sweep for uploads never attached to a document or post
	ttl := time.Duration(cfg.OrphanUploadTTLMinutes) * time.Minute
	fileService.StartOrphanSweeper(5*time.Minute, ttl)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
