package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ashendes/food-details/internal/metrics"
	"github.com/ashendes/food-details/internal/models"
	"github.com/ashendes/food-details/internal/patterns"
	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

const circuitName = "Catalog"

// ClientConfig configures an HTTPClient
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	BulkheadSize int
	Service      string // name of the calling service, used in metric labels
}

// HTTPClient fetches foods from the catalog service.
// A fetch is attempted once; failures are not retried.
type HTTPClient struct {
	client   *resty.Client
	circuit  *patterns.CircuitBreakerWrapper
	bulkhead *patterns.Bulkhead
}

// NewHTTPClient creates a catalog client guarded by a circuit breaker and a bulkhead
func NewHTTPClient(cfg ClientConfig) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = patterns.DefaultTimeout
	}

	breaker := patterns.DefaultBreakerConfig(circuitName, cfg.Service)
	// an unknown food says nothing about the health of the catalog
	breaker.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, ErrFoodNotFound)
	}

	return &HTTPClient{
		client: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetRetryCount(0).
			SetHeader("Accept", "application/json"),
		circuit:  patterns.NewCircuitBreaker(breaker),
		bulkhead: patterns.NewBulkhead(cfg.BulkheadSize, "catalog", cfg.Service),
	}
}

// FetchFood retrieves one food with its extras
func (c *HTTPClient) FetchFood(ctx context.Context, id int64) (*models.FoodItem, error) {
	var food *models.FoodItem

	err := c.bulkhead.Execute(ctx, func() error {
		result, cbErr := c.circuit.Execute(func() (interface{}, error) {
			return c.get(ctx, id)
		})
		if cbErr != nil {
			return patterns.FormatError(circuitName, cbErr)
		}

		food = result.(*models.FoodItem)
		return nil
	})

	switch {
	case err == nil:
		metrics.CatalogFetchesTotal.WithLabelValues("success").Inc()
	case errors.Is(err, ErrFoodNotFound):
		metrics.CatalogFetchesTotal.WithLabelValues("not_found").Inc()
	default:
		metrics.CatalogFetchesTotal.WithLabelValues("error").Inc()
		log.WithFields(log.Fields{
			"food_id":  id,
			"bulkhead": c.bulkhead.GetName(),
			"circuit":  c.circuit.GetState(),
		}).Warn("Catalog fetch failed: ", err)
	}

	return food, err
}

// CircuitState returns the state of the breaker guarding the catalog
func (c *HTTPClient) CircuitState() (string, int) {
	return c.circuit.GetState(), c.circuit.GetStateValue()
}

func (c *HTTPClient) get(ctx context.Context, id int64) (*models.FoodItem, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		Get("/foods/{id}")
	if err != nil {
		return nil, fmt.Errorf("HTTP error: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("food %d: %w", id, ErrFoodNotFound)
	default:
		return nil, fmt.Errorf("catalog service returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var food models.FoodItem
	if err := json.Unmarshal(resp.Body(), &food); err != nil {
		return nil, fmt.Errorf("failed to parse food %d: %w", id, err)
	}
	if food.Extras == nil {
		food.Extras = []models.Extra{}
	}

	return &food, nil
}
