// Package navigation delivers the signals a screen emits to move elsewhere.
package navigation

import (
	"context"
	"errors"

	"github.com/ashendes/food-details/internal/metrics"
	"github.com/ashendes/food-details/internal/models"
	log "github.com/sirupsen/logrus"
)

// ErrEmptyRoute is returned for a signal without a route
var ErrEmptyRoute = errors.New("navigation signal has no route")

// LogHost records navigation signals in the service log
type LogHost struct{}

// NewLogHost creates a log host
func NewLogHost() *LogHost {
	return &LogHost{}
}

// Navigate logs the signal
func (h *LogHost) Navigate(_ context.Context, signal models.NavigationSignal) error {
	if signal.Route == "" {
		metrics.NavigationSignalsTotal.WithLabelValues("log", "", "rejected").Inc()
		return ErrEmptyRoute
	}

	log.WithFields(log.Fields{
		"route":      signal.Route,
		"session_id": signal.SessionID,
	}).Info("Navigating")

	metrics.NavigationSignalsTotal.WithLabelValues("log", signal.Route, "delivered").Inc()
	return nil
}
