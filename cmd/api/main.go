package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"everglades-dss/grower-portal/grower-portal-backend/internal/assessment"
	"everglades-dss/grower-portal/grower-portal-backend/internal/boundary"
	"everglades-dss/grower-portal/grower-portal-backend/internal/catalog"
	"everglades-dss/grower-portal/grower-portal-backend/internal/config"
	"everglades-dss/grower-portal/grower-portal-backend/internal/soil"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := buildLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer logger.Sync()

	// The boundary is the one fatal dependency: without the region there
	// is no degraded mode.
	region, err := boundary.Load(cfg.Data.BoundaryPath)
	if err != nil {
		logger.Fatal("boundary load failed", zap.Error(err))
	}
	logger.Info("region boundary loaded",
		zap.String("source", cfg.Data.BoundaryPath),
		zap.Float64("centroid_lat", region.Centroid[1]),
		zap.Float64("centroid_lon", region.Centroid[0]))

	store, err := catalog.Open(cfg.Data.CatalogPath)
	if err != nil {
		logger.Fatal("catalog open failed", zap.Error(err))
	}

	engine := assessment.NewEngine(region, soil.NewEstimator(), store, logger)
	sessions := assessment.NewSessionStore()
	handler := assessment.NewHandler(engine, sessions, logger)

	r := gin.Default()
	handler.RegisterRoutes(r.Group("/api/v1"))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API alive!"})
	})

	addr := cfg.Server.GetServerAddr()
	logger.Info("server starting", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
