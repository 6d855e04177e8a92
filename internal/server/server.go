package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/activity"
	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/realtime"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config

	stopReaper context.CancelFunc
}

func runMigrations(cfg *config.Config) error {
	url := fmt.Sprintf("pgx5://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
	)
	m, err := migrate.New("file://"+cfg.MigrationsPath, url)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func Init(cfg *config.Config) (*Server, error) {
	if err := runMigrations(cfg); err != nil {
		return nil, fmt.Errorf("❌ failed to migrate DB: %w", err)
	}
	log.Println("✅ Migrations applied")

	// Setup GORM
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Println("✅ Connected to database")

	// Setup Gin
	r := gin.Default()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	listRepo := repository.NewListRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// Realtime hub and activity recording
	hub := realtime.NewHub()
	recorder := activity.NewRecorder(activityRepo, hub)

	reaperCtx, stopReaper := context.WithCancel(context.Background())
	reaper := activity.NewReaper(activityRepo,
		time.Duration(cfg.ActivityRetentionDays)*24*time.Hour, 24*time.Hour)
	go reaper.Run(reaperCtx)

	// Initialize handlers
	tokenTTL := time.Duration(cfg.JWTExpiryHours) * time.Hour
	userHandler := handler.NewUserHandler(userRepo, cfg.JWTSecret, tokenTTL)
	boardHandler := handler.NewBoardHandler(boardRepo, userRepo, listRepo, taskRepo, recorder, hub)
	listHandler := handler.NewListHandler(listRepo, boardRepo, recorder, hub)
	taskHandler := handler.NewTaskHandler(taskRepo, listRepo, boardRepo, recorder, hub)
	activityHandler := handler.NewActivityHandler(activityRepo, boardRepo)
	wsHandler := realtime.NewHandler(hub, userRepo, cfg.JWTSecret)

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)
	r.GET("/ws", wsHandler.Serve)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		// Board routes
		authorized.POST("/boards", boardHandler.Create)
		authorized.GET("/boards", boardHandler.GetAll)
		authorized.GET("/boards/:id", boardHandler.GetByID)
		authorized.PUT("/boards/:id", boardHandler.Update)
		authorized.DELETE("/boards/:id", boardHandler.Delete)

		// Membership routes
		authorized.POST("/boards/:id/members", boardHandler.AddMember)
		authorized.DELETE("/boards/:id/members/:user_id", boardHandler.RemoveMember)

		// List routes
		authorized.POST("/lists", listHandler.Create)
		authorized.PUT("/lists/:id", listHandler.Update)
		authorized.DELETE("/lists/:id", listHandler.Delete)
		authorized.POST("/lists/reorder", listHandler.Reorder)

		// Task routes
		authorized.GET("/tasks", taskHandler.GetAll)
		authorized.POST("/tasks", taskHandler.Create)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.POST("/tasks/:id/move", taskHandler.Move)
		authorized.POST("/tasks/:id/assign", taskHandler.Assign)

		// Activity routes
		authorized.GET("/activities", activityHandler.GetAll)
	}

	return &Server{
		Engine:     r,
		DB:         db,
		Config:     cfg,
		stopReaper: stopReaper,
	}, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	s.stopReaper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	log.Println("✅ Server exited properly")
}
