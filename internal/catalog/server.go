package catalog

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ashendes/food-details/internal/metrics"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	chaosFailureRate = 0.3
	slowModeMinDelay = 2 * time.Second
	slowModeJitter   = 3 * time.Second
)

var errChaos = errors.New("chaos: simulated failure")

// Server exposes a Repository over HTTP, with chaos switches for resilience drills
type Server struct {
	repo        Repository
	serviceName string

	chaosMutex    sync.RWMutex
	chaosEnabled  bool
	chaosSlowMode bool
	sleep         func(ctx context.Context, d time.Duration)
}

// NewServer creates a catalog server on top of repo
func NewServer(repo Repository, serviceName string) *Server {
	return &Server{
		repo:        repo,
		serviceName: serviceName,
		sleep:       sleepContext,
	}
}

// Register mounts the catalog routes
func (s *Server) Register(r gin.IRouter) {
	r.GET("/catalog/status", s.getStatus)

	r.GET("/foods", s.listFoods)
	r.GET("/foods/:id", s.getFood)

	chaos := r.Group("/chaos/catalog")
	{
		chaos.POST("/enable", s.enableChaos)
		chaos.POST("/disable", s.disableChaos)
		chaos.POST("/slow", s.enableSlowMode)
		chaos.POST("/slow/disable", s.disableSlowMode)
	}
}

// RefreshMetrics publishes the number of foods on offer
func (s *Server) RefreshMetrics(ctx context.Context) error {
	foods, err := s.repo.ListFoods(ctx)
	if err != nil {
		return err
	}
	metrics.CatalogFoods.Set(float64(len(foods)))
	return nil
}

func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":         s.serviceName,
		"status":          "healthy",
		"chaos_enabled":   s.getChaosEnabled(),
		"chaos_slow_mode": s.getSlowMode(),
		"timestamp":       time.Now().Format(time.RFC3339),
	})
}

func (s *Server) listFoods(c *gin.Context) {
	if err := s.simulateChaos(c.Request.Context()); err != nil {
		log.Warn("Chaos: Simulated failure during list")
		writeUnavailable(c, err)
		return
	}

	foods, err := s.repo.ListFoods(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list foods")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list foods"})
		return
	}
	c.JSON(http.StatusOK, foods)
}

func (s *Server) getFood(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid food ID"})
		return
	}

	if err := s.simulateChaos(c.Request.Context()); err != nil {
		log.WithField("food_id", id).Warn("Chaos: Simulated failure")
		writeUnavailable(c, err)
		return
	}

	food, err := s.repo.GetFood(c.Request.Context(), id)
	if errors.Is(err, ErrFoodNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Food not found"})
		return
	}
	if err != nil {
		log.WithError(err).WithField("food_id", id).Error("Failed to get food")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get food"})
		return
	}

	c.JSON(http.StatusOK, food)
}

func (s *Server) enableChaos(c *gin.Context) {
	s.setChaosEnabled(true)
	metrics.ChaosFailureRate.WithLabelValues(s.serviceName).Set(chaosFailureRate)

	log.Info("Chaos mode ENABLED for catalog service")
	c.JSON(http.StatusOK, gin.H{
		"message": "Chaos mode enabled",
		"info":    "30% of requests will fail randomly",
	})
}

func (s *Server) disableChaos(c *gin.Context) {
	s.setChaosEnabled(false)
	s.setSlowMode(false)
	metrics.ChaosFailureRate.WithLabelValues(s.serviceName).Set(0)
	metrics.ChaosSlowMode.WithLabelValues(s.serviceName).Set(0)

	log.Info("Chaos mode DISABLED for catalog service")
	c.JSON(http.StatusOK, gin.H{"message": "Chaos mode disabled"})
}

func (s *Server) enableSlowMode(c *gin.Context) {
	s.setSlowMode(true)
	metrics.ChaosSlowMode.WithLabelValues(s.serviceName).Set(1)

	log.Info("Slow mode ENABLED for catalog service")
	c.JSON(http.StatusOK, gin.H{
		"message": "Slow mode enabled",
		"info":    "Requests will have 2-5 second delays",
	})
}

func (s *Server) disableSlowMode(c *gin.Context) {
	s.setSlowMode(false)
	metrics.ChaosSlowMode.WithLabelValues(s.serviceName).Set(0)

	log.Info("Slow mode DISABLED for catalog service")
	c.JSON(http.StatusOK, gin.H{"message": "Slow mode disabled"})
}

func (s *Server) setChaosEnabled(enabled bool) {
	s.chaosMutex.Lock()
	defer s.chaosMutex.Unlock()
	s.chaosEnabled = enabled
}

func (s *Server) getChaosEnabled() bool {
	s.chaosMutex.RLock()
	defer s.chaosMutex.RUnlock()
	return s.chaosEnabled
}

func (s *Server) setSlowMode(enabled bool) {
	s.chaosMutex.Lock()
	defer s.chaosMutex.Unlock()
	s.chaosSlowMode = enabled
}

func (s *Server) getSlowMode() bool {
	s.chaosMutex.RLock()
	defer s.chaosMutex.RUnlock()
	return s.chaosSlowMode
}

func (s *Server) simulateChaos(ctx context.Context) error {
	if s.getSlowMode() {
		delay := slowModeMinDelay + time.Duration(rand.Int63n(int64(slowModeJitter)))
		log.WithField("delay_ms", delay.Milliseconds()).Debug("Chaos: Simulating slow response")
		s.sleep(ctx, delay)
	}

	if s.getChaosEnabled() && rand.Float64() < chaosFailureRate {
		return errChaos
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func writeUnavailable(c *gin.Context, err error) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error":   "Service temporarily unavailable",
		"message": err.Error(),
	})
}
