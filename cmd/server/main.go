// Package main runs the room booking HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roomly/backend/config"
	"github.com/roomly/backend/internal/admin"
	"github.com/roomly/backend/internal/auth"
	"github.com/roomly/backend/internal/cache"
	"github.com/roomly/backend/internal/homepage"
	"github.com/roomly/backend/internal/middleware"
	"github.com/roomly/backend/internal/rooms"
	"github.com/roomly/backend/pkg/database"
	"github.com/roomly/backend/pkg/redis"
	"github.com/roomly/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Redis backs the availability cache. If it is unreachable the server
	// still starts and every read recomputes from the ledger.
	var store cache.Store
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Warn("redis unavailable, availability cache degraded", zap.Error(err))
	} else {
		defer rdb.Close()
		store = cache.NewRedisStore(rdb.Client)
	}
	timeslotCache := cache.NewTimeslotCache(store, time.Duration(cfg.Booking.CacheTTLMinutes)*time.Minute, logger)

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Auth and onboarding
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Rooms and the booking engine
	roomRepo := rooms.NewPostgresRepository(pool)
	roomService := rooms.NewService(roomRepo, timeslotCache, time.Duration(cfg.Booking.SlotMinutes)*time.Minute, logger)
	roomHandler := rooms.NewHandler(roomService)

	// Homepage
	homeRepo := homepage.NewRepository(pool)
	homeHandler := homepage.NewHandler(homeRepo)

	// Admin dashboard
	adminRepo := admin.NewRepository(pool)
	adminHandler := admin.NewHandler(adminRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Onboarding (public)
	first := router.Group("/api/first")
	{
		first.POST("/create-company", authHandler.CreateCompany)
		first.POST("/login-telegram", authHandler.LoginTelegram)
	}

	// Protected API (JWT required)
	api := router.Group("/api")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/rooms/company", roomHandler.GetCompanyRooms)
		api.POST("/rooms/create", middleware.RequireRole("admin"), roomHandler.CreateRoom)
		api.GET("/rooms/:roomId/timeslots", roomHandler.GetAvailableTimeslots)
		api.POST("/rooms/:roomId/book", roomHandler.BookRoom)
		api.DELETE("/rooms/bookings/:bookingId", roomHandler.CancelBooking)
		api.POST("/rooms/search", roomHandler.FindRooms)
		api.GET("/rooms/:roomId/booking-info", roomHandler.GetBookingInfo)

		api.GET("/homepage/my-bookings", homeHandler.GetMyBookings)
		api.GET("/homepage/available-now", homeHandler.GetAvailableNow)

		adminGroup := api.Group("/admin", middleware.RequireRole("admin"))
		{
			adminGroup.GET("/overview", adminHandler.GetOverview)
			adminGroup.GET("/utilization", adminHandler.GetRoomUtilization)
			adminGroup.GET("/top-rooms", adminHandler.GetTopRooms)
			adminGroup.GET("/user-activity", adminHandler.GetUserActivity)
			adminGroup.GET("/trends", adminHandler.GetBookingTrends)
			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.POST("/users/:id/role", adminHandler.SetUserRole)
			adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
