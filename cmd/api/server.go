package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"eralearn/internal/config"
	"eralearn/internal/database"
	"eralearn/internal/domain/certificate"
	"eralearn/internal/domain/media"
	"eralearn/internal/domain/session"
	"eralearn/internal/domain/video"
	"eralearn/internal/middleware"
	jwtsvc "eralearn/internal/pkg/jwt"
)

// access tokens come from the identity provider; this only bounds tokens minted locally
const accessTokenTTL = time.Hour

type app struct {
	router  *gin.Engine
	root    *video.Root
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp wires storage, database, services and routes. A storage root that
// cannot be created or written is fatal.
func newApp(cfg *config.Config, zl *zap.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	root, err := video.NewRoot(cfg.StorageRoot, cfg.UploadSubdir)
	if err != nil {
		return nil, err
	}
	a := &app{root: root}

	db, err := database.Connect(cfg.DatabaseURL, cfg.LogLevel, zl)
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, func() { _ = sqlDB.Close() })
	}
	if err := db.AutoMigrate(&media.Asset{}, &session.ActiveSession{}); err != nil {
		a.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	sessionStore, closeStore, err := newSessionStore(cfg, db)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	certStore, err := certificate.NewStore(cfg.CertificateDir, zl)
	if err != nil {
		a.Close()
		return nil, err
	}

	j := jwtsvc.New(cfg.JWTSecret, accessTokenTTL, cfg.MediaTokenTTL)

	videoService := video.NewService(root, cfg.PublicBase, cfg.MaxUploadSizeMB, zl)
	videoHandler := video.NewHandler(videoService)

	mediaService := media.NewService(media.NewRepository(db), videoService, j, cfg.PublicBase, cfg.InternalRedirectPrefix, zl)
	mediaHandler := media.NewHandler(mediaService)

	hub := session.NewHub()
	sessionService := session.NewService(sessionStore, hub, cfg.SessionIdleTTL, zl)
	sessionHandler := session.NewHandler(sessionService, hub, j, cfg.AllowedOrigins, zl)

	certHandler := certificate.NewHandler(certStore)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(zl),
		middleware.ErrorHandler(zl),
		middleware.CORS(cfg.AllowedOrigins),
	)

	auth := middleware.JWTAuth(j)
	api := r.Group("/api")
	{
		video.RegisterRoutes(api, videoHandler, middleware.RateLimit(cfg.RateLimitPerMinute))

		var resolveGuards []gin.HandlerFunc
		if cfg.EnforceSingleSession {
			resolveGuards = append(resolveGuards, session.RequireActiveSession(sessionService))
		}
		media.RegisterRoutes(api, mediaHandler, auth, middleware.RequireRole(cfg.AdminRole), resolveGuards...)
		session.RegisterRoutes(api, sessionHandler, auth)
		certificate.RegisterRoutes(api, certHandler, auth)
	}
	video.RegisterStaticRoutes(r, cfg.PublicBase, videoHandler)

	a.router = r
	return a, nil
}

func newSessionStore(cfg *config.Config, db *gorm.DB) (session.Store, func(), error) {
	if cfg.SessionStore != "redis" {
		return session.NewGormStore(db), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return session.NewRedisStore(rdb, cfg.SessionIdleTTL), func() { _ = rdb.Close() }, nil
}
