// Package api exposes composer sessions over HTTP. Each request carries one user
// intent from the food details screen and answers with the resulting view.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ashendes/food-details/internal/catalog"
	"github.com/ashendes/food-details/internal/composer"
	"github.com/ashendes/food-details/internal/metrics"
	"github.com/ashendes/food-details/internal/models"
	"github.com/ashendes/food-details/internal/session"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// CircuitReporter exposes the state of the breaker guarding the catalog
type CircuitReporter interface {
	CircuitState() (string, int)
}

// Handler serves the composer session endpoints
type Handler struct {
	store   *session.Store
	circuit CircuitReporter
}

// NewHandler creates a handler. circuit may be nil.
func NewHandler(store *session.Store, circuit CircuitReporter) *Handler {
	return &Handler{
		store:   store,
		circuit: circuit,
	}
}

// Register mounts the session routes
func (h *Handler) Register(r gin.IRouter) {
	sessions := r.Group("/sessions")
	{
		sessions.POST("", h.createSession)
		sessions.GET("/:sessionId", h.getSession)
		sessions.DELETE("/:sessionId", h.deleteSession)
		sessions.PUT("/:sessionId/food", h.selectFood)
		sessions.POST("/:sessionId/food/increment", h.foodIntent(func(c *composer.Composer) { c.IncrementFood() }))
		sessions.POST("/:sessionId/food/decrement", h.foodIntent(func(c *composer.Composer) { c.DecrementFood() }))
		sessions.POST("/:sessionId/extras/:extraId/increment", h.extraIntent((*composer.Composer).IncrementExtra))
		sessions.POST("/:sessionId/extras/:extraId/decrement", h.extraIntent((*composer.Composer).DecrementExtra))
		sessions.POST("/:sessionId/favorite", h.foodIntent(func(c *composer.Composer) { c.ToggleFavorite() }))
		sessions.POST("/:sessionId/finish", h.finishOrder)
	}

	r.GET("/catalog/circuit-status", h.getCircuitStatus)
}

// createSession opens a food details screen and loads its food
func (h *Handler) createSession(c *gin.Context) {
	var req models.SelectFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	s := h.store.Create()
	err := s.Load(c.Request.Context(), req.FoodID)

	log.WithFields(log.Fields{
		"session_id": s.ID,
		"food_id":    req.FoodID,
	}).Info("Session opened")

	if err != nil {
		c.JSON(loadErrorStatus(err), buildView(s))
		return
	}
	c.JSON(http.StatusCreated, buildView(s))
}

func (h *Handler) getSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, buildView(s))
}

// deleteSession discards the state of a screen the user left
func (h *Handler) deleteSession(c *gin.Context) {
	if err := h.store.Delete(c.Param("sessionId")); err != nil {
		writeError(c, http.StatusNotFound, "Session not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// selectFood reloads the screen for another food
func (h *Handler) selectFood(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	var req models.SelectFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if err := s.Load(c.Request.Context(), req.FoodID); err != nil {
		c.JSON(loadErrorStatus(err), buildView(s))
		return
	}
	c.JSON(http.StatusOK, buildView(s))
}

func (h *Handler) foodIntent(intent func(c *composer.Composer)) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := h.lookup(c)
		if !ok {
			return
		}

		_ = s.Do(func(cmp *composer.Composer) error {
			intent(cmp)
			return nil
		})
		c.JSON(http.StatusOK, buildView(s))
	}
}

func (h *Handler) extraIntent(intent func(c *composer.Composer, extraID int64)) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := h.lookup(c)
		if !ok {
			return
		}

		extraID, err := strconv.ParseInt(c.Param("extraId"), 10, 64)
		if err != nil {
			writeError(c, http.StatusBadRequest, "Invalid extra ID")
			return
		}

		_ = s.Do(func(cmp *composer.Composer) error {
			intent(cmp, extraID)
			return nil
		})
		c.JSON(http.StatusOK, buildView(s))
	}
}

// finishOrder hands the screen off to the order confirmation
func (h *Handler) finishOrder(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	err := s.Do(func(cmp *composer.Composer) error {
		if err := cmp.FinishOrder(c.Request.Context()); err != nil {
			return err
		}
		metrics.OrdersFinishedTotal.Inc()
		metrics.CartTotalAmount.Observe(cmp.Total().InexactFloat64())
		return nil
	})
	if err != nil {
		log.WithField("session_id", s.ID).Error("Failed to finish order: ", err)
		writeError(c, http.StatusBadGateway, "Failed to finish order: "+err.Error())
		return
	}

	log.WithField("session_id", s.ID).Info("Order finished")

	c.JSON(http.StatusOK, models.FinishOrderResponse{
		SessionID:  s.ID,
		NavigateTo: models.RouteOrders,
	})
}

func (h *Handler) getCircuitStatus(c *gin.Context) {
	if h.circuit == nil {
		writeError(c, http.StatusNotFound, "No catalog circuit configured")
		return
	}

	state, value := h.circuit.CircuitState()
	c.JSON(http.StatusOK, gin.H{
		"catalog_circuit": gin.H{
			"name":  "Catalog",
			"state": state,
			"value": value,
		},
	})
}

func (h *Handler) lookup(c *gin.Context) (*session.Session, bool) {
	s, err := h.store.Get(c.Param("sessionId"))
	if err != nil {
		writeError(c, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return s, true
}

// loadErrorStatus maps a failed load to a status code
func loadErrorStatus(err error) int {
	switch {
	case errors.Is(err, catalog.ErrFoodNotFound):
		return http.StatusNotFound
	case errors.Is(err, composer.ErrLoadSuperseded):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
