package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"campus-find/lostfound-backend/internal/admin"
	"campus-find/lostfound-backend/internal/apperrors"
	"campus-find/lostfound-backend/internal/auth"
	"campus-find/lostfound-backend/internal/claims"
	"campus-find/lostfound-backend/internal/config"
	"campus-find/lostfound-backend/internal/database"
	"campus-find/lostfound-backend/internal/items"
	"campus-find/lostfound-backend/internal/notifications"
	ws "campus-find/lostfound-backend/internal/notifications/websocket"
	"campus-find/lostfound-backend/internal/users"
	"campus-find/lostfound-backend/pkg/storage"
)

func main() {
	// Local development reads .env; in deployments the variables are set
	// by the environment and the file is absent.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	db, err := database.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db,
		&users.User{},
		&items.Item{},
		&claims.Claim{},
		&notifications.Notification{},
	); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	store, err := storage.NewLocalStore(cfg.Uploads.Dir, cfg.Uploads.MaxImageBytes, cfg.Uploads.MaxProofBytes)
	if err != nil {
		logger.Fatal("failed to prepare upload storage", zap.Error(err))
	}

	// Repositories
	userRepo := users.NewRepository(db)
	itemRepo := items.NewRepository(db)
	claimRepo := claims.NewRepository(db)
	notifRepo := notifications.NewRepository(db)

	// Services
	hub := ws.NewManager(logger)
	defer hub.Close()

	notifService := notifications.NewService(notifRepo, hub, logger)
	userService := users.NewService(userRepo, cfg.Auth, logger)
	itemService := items.NewService(itemRepo, store, logger)
	claimService := claims.NewService(claimRepo, itemRepo, userRepo, notifService, logger)
	adminService := admin.NewService(userRepo, itemRepo, claimRepo, logger)

	// Handlers
	userHandler := users.NewHandler(userService)
	itemHandler := items.NewHandler(itemService, store, cfg, logger)
	claimHandler := claims.NewHandler(claimService, store, logger)
	notifHandler := notifications.NewHandler(notifService, hub, cfg.Auth.JWTSecret, logger)
	adminHandler := admin.NewHandler(adminService, userService, itemService)

	loadAccount := func(ctx context.Context, id uint) (*auth.Account, error) {
		user, err := userRepo.GetByID(ctx, id)
		if err != nil {
			logger.Error("failed to load account", zap.Error(err), zap.Uint("user_id", id))
			return nil, apperrors.Storage()
		}
		if user == nil {
			return nil, nil
		}
		return &auth.Account{ID: user.ID, Role: string(user.Role), Verified: user.Verified}, nil
	}

	router := gin.Default()
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})
	router.Static("/uploads", cfg.Uploads.Dir)

	api := router.Group("/api")
	userHandler.RegisterPublicRoutes(api.Group("/auth"))

	authed := api.Group("", auth.Middleware(cfg.Auth.JWTSecret, loadAccount))
	{
		userHandler.RegisterRoutes(authed.Group("/auth"))
		itemHandler.RegisterRoutes(authed)
		claimHandler.RegisterRoutes(authed)
		notifHandler.RegisterRoutes(authed)
		adminHandler.RegisterRoutes(authed)
	}
	router.GET("/ws", notifHandler.Websocket)

	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	if level != "" {
		if lvl, err := zapcore.ParseLevel(level); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}
	}
	return cfg.Build()
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
