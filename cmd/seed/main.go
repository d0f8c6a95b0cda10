package main

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm/clause"

	"eralearn/internal/config"
	"eralearn/internal/database"
	"eralearn/internal/domain/media"
	jwtsvc "eralearn/internal/pkg/jwt"
	"eralearn/internal/pkg/logger"
)

// Seeds a local database with demo assets and prints access tokens signed
// with JWT_SECRET, so the API can be exercised without the identity provider.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	switch cfg.AppEnv {
	case "prod", "production", "release":
		log.Fatalf("refusing to seed APP_ENV=%s", cfg.AppEnv)
	}

	zl, err := logger.New(logger.Options{Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.Connect(cfg.DatabaseURL, cfg.LogLevel, zl)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(&media.Asset{}); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Creating demo assets...")
	assets := []media.Asset{
		{ID: "demo-intro", Title: "Boas-vindas ao ERA Learn", Provider: media.ProviderYouTube, YouTubeID: "dQw4w9WgXcQ", CreatedBy: "seed"},
		{ID: "demo-modulo-1", Title: "Módulo 1: Primeiros passos", Provider: media.ProviderYouTube, YouTubeID: "jNQXAC9IVRw", CreatedBy: "seed"},
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&assets)
	if res.Error != nil {
		log.Fatal("seed assets failed:", res.Error)
	}
	log.Printf("assets created: %d (existing ones kept)", res.RowsAffected)

	j := jwtsvc.New(cfg.JWTSecret, 24*time.Hour, cfg.MediaTokenTTL)
	admin, err := j.GenerateToken("seed-admin", cfg.AdminRole)
	if err != nil {
		log.Fatal("sign admin token:", err)
	}
	student, err := j.GenerateToken("seed-student", "authenticated")
	if err != nil {
		log.Fatal("sign student token:", err)
	}

	fmt.Println("\n========== SEED COMPLETE ==========")
	fmt.Println("Admin token (24h):")
	fmt.Println(admin)
	fmt.Println("Student token (24h):")
	fmt.Println(student)
	fmt.Println("Try: curl -H \"Authorization: Bearer <student>\" localhost:" + cfg.Port + "/api/media/demo-intro/resolve")
}
