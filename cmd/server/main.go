package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/jakeunsted/pub/internal/cache"
	"github.com/jakeunsted/pub/internal/handlers"
	"github.com/jakeunsted/pub/internal/httpx"
	"github.com/jakeunsted/pub/internal/middleware"
	"github.com/jakeunsted/pub/internal/notify"
	"github.com/jakeunsted/pub/internal/repository"
	"github.com/jakeunsted/pub/internal/service"
	"github.com/jakeunsted/pub/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Pub? Backend",
		// Support avatar uploads up to 5MB + overhead.
		BodyLimit: 8 * 1024 * 1024, // 8MB
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Pub-CSRF",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, os.Getenv("REDIS_PASSWORD"), redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}

	pubCache := cache.NewPubCache(redisCache)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	groupInviteRepo := repository.NewGroupInviteRepository(db)
	pubRequestRepo := repository.NewPubRequestRepository(db)
	pubResponseRepo := repository.NewPubResponseRepository(db)
	deviceTokenRepo := repository.NewDeviceTokenRepository(db)

	// Initialize notification fanout (email and push are both optional)
	emailSender, err := notify.NewEmailSenderFromEnv()
	if err != nil {
		log.Printf("WARNING: email not configured: %v. Invite emails will be logged only.", err)
	}
	dispatcher := notify.NewFanout(groupRepo, userRepo, deviceTokenRepo, emailSender, notify.NewExpoClient())

	// Initialize services
	authService := service.NewAuthService(userRepo, refreshTokenRepo)
	userService := service.NewUserService(userRepo, deviceTokenRepo)
	groupService := service.NewGroupService(groupRepo)
	pubService := service.NewPubService(pubRequestRepo, pubResponseRepo, groupRepo, userRepo, dispatcher, pubCache)
	inviteService := service.NewInviteService(groupInviteRepo, groupRepo, userRepo, dispatcher)

	// Initialize S3/MinIO storage (best-effort; avatar endpoints return 503 if missing)
	s3Store, err := storage.NewS3StorageFromEnv()
	if err != nil {
		log.Printf("WARNING: S3 storage not configured: %v", err)
	} else {
		log.Println("S3 storage initialized successfully")
	}

	avatarService := service.NewAvatarService(userRepo, s3Store)

	// Initialize handlers
	wsHandler := handlers.NewWebSocketHandler()
	hub := wsHandler.GetHub()
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, pubService)
	groupHandler := handlers.NewGroupHandler(groupService)
	pubHandler := handlers.NewPubHandler(pubService, groupService, hub)
	inviteHandler := handlers.NewInviteHandler(inviteService, groupService, hub)
	avatarHandler := handlers.NewAvatarHandler(avatarService)
	mediaHandler := handlers.NewMediaHandler(s3Store)

	// Public routes
	api := app.Group("/api", middleware.OriginAllowed())
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}))
	auth.Get("/csrf", authHandler.CSRFToken)
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh) // No CSRF required - protected by HttpOnly refresh token
	auth.Post("/logout", middleware.CSRFRequired(), authHandler.Logout)

	// Invite preview is public so the join page renders before sign-in
	api.Get("/join/:token", inviteHandler.PreviewInvite)

	// Protected routes
	protected := api.Group("/", middleware.AuthRequired(), middleware.CSRFRequired())
	protected.Get("/users/me", userHandler.GetCurrentUser)
	protected.Put("/users/me", userHandler.UpdateProfile)
	protected.Get("/users/me/pending-count", userHandler.GetPendingCount)
	protected.Post("/users/me/device-tokens", userHandler.RegisterDeviceToken)
	protected.Delete("/users/me/device-tokens", userHandler.UnregisterDeviceToken)
	protected.Post(
		"/users/me/avatar",
		limiter.New(limiter.Config{
			Max:        10,
			Expiration: 10 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				if uid, err := httpx.LocalUint(c, "userID"); err == nil {
					return "avatar:" + strconv.FormatUint(uint64(uid), 10)
				}
				return c.IP()
			},
		}),
		avatarHandler.UploadMyAvatar,
	)
	protected.Delete("/users/me/avatar", avatarHandler.DeleteMyAvatar)
	protected.Get("/media/avatars/*", mediaHandler.GetAvatar)

	// Group routes
	protected.Post("/groups", groupHandler.CreateGroup)
	protected.Get("/groups", groupHandler.GetUserGroups)
	protected.Get("/groups/:id", groupHandler.GetGroup)
	protected.Get("/groups/:id/members", groupHandler.GetGroupMembers)
	protected.Post("/groups/:id/leave", groupHandler.LeaveGroup)

	// Pub request routes
	protected.Post("/groups/:id/pub", pubHandler.CreateRequest)
	protected.Get("/groups/:id/pub", pubHandler.ListActiveSessions)
	protected.Get("/pub/:id", pubHandler.GetSession)
	protected.Post("/pub/:id/respond", pubHandler.Respond)

	// Invite routes
	protected.Post("/groups/:id/invites", inviteHandler.CreateInvite)
	protected.Get("/groups/:id/invites", inviteHandler.ListPendingInvites)
	protected.Delete("/groups/:id/invites/:inviteID", inviteHandler.CancelInvite)
	protected.Post("/groups/:id/invites/:inviteID/resend", inviteHandler.ResendInvite)
	protected.Post("/join/:token", inviteHandler.AcceptInvite)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use(
		"/ws",
		middleware.OriginAllowed(),
		middleware.AuthRequired(),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Pub? backend is running",
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
