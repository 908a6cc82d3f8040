package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashendes/food-details/internal/api"
	"github.com/ashendes/food-details/internal/catalog"
	"github.com/ashendes/food-details/internal/composer"
	"github.com/ashendes/food-details/internal/config"
	"github.com/ashendes/food-details/internal/navigation"
	"github.com/ashendes/food-details/internal/pricing"
	"github.com/ashendes/food-details/internal/session"
	log "github.com/sirupsen/logrus"
)

const serviceName = "composer-service"

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

	formatter, err := pricing.NewCurrencyFormatter(cfg.Pricing.Currency, cfg.Pricing.Locale)
	if err != nil {
		log.Fatal(err)
	}

	catalogClient := catalog.NewHTTPClient(catalog.ClientConfig{
		BaseURL:      cfg.Catalog.ServiceURL,
		Timeout:      cfg.Catalog.Timeout,
		BulkheadSize: cfg.Catalog.BulkheadSize,
		Service:      serviceName,
	})

	var navigator composer.Navigator = navigation.NewLogHost()
	if cfg.Navigation.AMQPURL != "" {
		host, err := navigation.NewAMQPHost(cfg.Navigation.AMQPURL, cfg.Navigation.Exchange)
		if err != nil {
			log.Fatal("Failed to connect to message broker: ", err)
		}
		defer host.Close()
		navigator = host
	}

	store := session.NewStore(catalogClient, func(id string) *composer.Composer {
		return composer.New(catalogClient,
			composer.WithID(id),
			composer.WithFormatter(formatter),
			composer.WithNavigator(navigator),
		)
	}, cfg.Catalog.Timeout)

	router := api.NewRouter(api.NewHandler(store, catalogClient), serviceName, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{
			"catalog_url": cfg.Catalog.ServiceURL,
			"currency":    cfg.Pricing.Currency,
			"amqp":        cfg.Navigation.AMQPURL != "",
		}).Infof("Composer Service starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down composer service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: ", err)
	}
}
