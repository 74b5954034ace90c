package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/TimeoSitruk/tupref/config"
	"github.com/TimeoSitruk/tupref/handlers"
	"github.com/TimeoSitruk/tupref/logger"
	"github.com/TimeoSitruk/tupref/middleware"
	"github.com/TimeoSitruk/tupref/routes"
	"github.com/TimeoSitruk/tupref/services"
	"github.com/TimeoSitruk/tupref/store"
)

func main() {
	// A missing .env is fine, the config falls back to defaults.
	_ = godotenv.Load()

	cfg := config.Load()

	logger.Init(cfg.LogLevel)
	defer logger.Sync()
	log := logger.L()

	rooms, err := buildStore(cfg)
	if err != nil {
		log.Fatal("failed to initialize room store", zap.Error(err))
	}
	log.Info("room store ready", zap.String("backend", cfg.StoreBackend))

	roomService := services.NewRoomService(rooms, log.Named("engine"))

	hub := services.NewHub(roomService, log.Named("hub"))
	go hub.Run()

	roomHandler := handlers.NewRoomHandler(roomService, hub, log.Named("http"))

	router := gin.Default()
	router.Use(middleware.CORS())
	routes.SetupRoutes(router, roomHandler, hub, roomService, log.Named("ws"))

	addr := cfg.BindAddress + ":" + cfg.Port
	log.Info("server starting", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func buildStore(cfg *config.Config) (store.RoomStore, error) {
	switch cfg.StoreBackend {
	case "memory", "":
		return store.NewMemoryStore(), nil
	case "redis":
		return store.NewRedisStore(config.InitRedis(cfg)), nil
	case "postgres":
		db, err := config.InitDB(cfg)
		if err != nil {
			return nil, err
		}
		return store.NewPostgresStore(db)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
