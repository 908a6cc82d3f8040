package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashendes/food-details/internal/catalog"
	"github.com/ashendes/food-details/internal/config"
	"github.com/ashendes/food-details/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const serviceName = "catalog-service"

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	cfg.ApplyLogLevel()

	ctx := context.Background()

	var repo catalog.Repository
	if cfg.Catalog.DatabaseURL != "" {
		pool, err := catalog.ConnectPostgres(ctx, cfg.Catalog.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to connect to database: ", err)
		}
		defer pool.Close()

		pg := catalog.NewPostgresRepository(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal(err)
		}
		if err := pg.Seed(ctx, catalog.SampleFoods()); err != nil {
			log.Fatal(err)
		}
		repo = pg
		log.Info("Catalog backed by PostgreSQL")
	} else {
		repo = catalog.NewSeededMemoryRepository()
		log.Info("Catalog backed by memory")
	}

	srv := catalog.NewServer(repo, serviceName)
	if err := srv.RefreshMetrics(ctx); err != nil {
		log.WithError(err).Warn("Failed to count foods")
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(metrics.PrometheusMiddleware(serviceName))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	srv.Register(router)

	server := &http.Server{
		Addr:         ":" + cfg.CatalogPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Catalog Service starting on port %s", cfg.CatalogPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down catalog service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: ", err)
	}
}
