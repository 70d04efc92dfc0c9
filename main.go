package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/FanzeeApp/sotvolbackend/internal/config"
	"github.com/FanzeeApp/sotvolbackend/internal/db"
	"github.com/FanzeeApp/sotvolbackend/internal/handler"
	"github.com/FanzeeApp/sotvolbackend/internal/logger"
	"github.com/FanzeeApp/sotvolbackend/internal/media"
	"github.com/FanzeeApp/sotvolbackend/internal/middleware"
	"github.com/FanzeeApp/sotvolbackend/internal/mongo"
	"github.com/FanzeeApp/sotvolbackend/internal/repository"
	"github.com/FanzeeApp/sotvolbackend/internal/service"
	"github.com/FanzeeApp/sotvolbackend/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	slogger := logger.New(os.Getenv("LOG_FILE"))

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	defer conn.Close()
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	mongoClient, err := mongo.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatalf("mongo connect error: %v", err)
	}

	bot, err := telegram.New(cfg.BotToken, cfg.AdminChatID, cfg.ChannelID, slogger)
	if err != nil {
		log.Fatalf("telegram error: %v", err)
	}

	listingRepo := repository.NewListingRepository(conn)
	bookingRepo := repository.NewBookingRepository(conn)
	adminRepo := repository.NewAdminRepository(conn)
	mediaRepo := repository.NewMediaRepository(mongoClient, cfg.MongoDB)

	authSvc := service.NewAuthService(cfg.BotToken, cfg.AdminIDs, cfg.DevBypassActive(), adminRepo)
	bookingSvc := service.NewBookingService(listingRepo, bookingRepo, bot, slogger)
	listingSvc := service.NewListingService(listingRepo, mediaRepo, bot,
		&media.FFmpegCompressor{Log: slogger}, cfg.PublicURL, slogger)

	go bot.Listen(authSvc, bookingSvc, adminRepo)

	r := gin.Default()

	mediaHandler := &handler.MediaHandler{Repo: mediaRepo}
	mediaHandler.RegisterRoutes(r)

	api := r.Group("/api")
	admin := r.Group("/api")
	admin.Use(middleware.AdminOnly(authSvc))

	listingHandler := &handler.ListingHandler{Service: listingSvc}
	listingHandler.RegisterRoutes(api, admin)

	bookingHandler := &handler.BookingHandler{Service: bookingSvc, Auth: authSvc}
	bookingHandler.RegisterRoutes(api, admin)

	slogger.Info("server starting", "port", cfg.Port, "dev_bypass", cfg.DevBypassActive())
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
