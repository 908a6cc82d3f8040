package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ashendes/food-details/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogRouter(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := NewServer(NewSeededMemoryRepository(), "catalog-test")
	srv.sleep = func(context.Context, time.Duration) {}

	router := gin.New()
	srv.Register(router)
	return srv, router
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestServer_GetFood(t *testing.T) {
	_, router := newCatalogRouter(t)

	w := serve(router, http.MethodGet, "/foods/1")

	require.Equal(t, http.StatusOK, w.Code)
	var food models.FoodItem
	require.NoError(t, json.NewDecoder(w.Body).Decode(&food))
	assert.Equal(t, "Ao molho", food.Name)
	assert.Len(t, food.Extras, 2)
}

func TestServer_GetFoodErrors(t *testing.T) {
	_, router := newCatalogRouter(t)

	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/foods/abc").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/foods/42").Code)
}

func TestServer_ListFoods(t *testing.T) {
	_, router := newCatalogRouter(t)

	w := serve(router, http.MethodGet, "/foods")

	require.Equal(t, http.StatusOK, w.Code)
	var foods []models.FoodItem
	require.NoError(t, json.NewDecoder(w.Body).Decode(&foods))
	require.Len(t, foods, 3)
	assert.Equal(t, int64(1), foods[0].ID)
}

func TestServer_ChaosSwitches(t *testing.T) {
	srv, router := newCatalogRouter(t)

	require.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/chaos/catalog/enable").Code)
	require.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/chaos/catalog/slow").Code)
	assert.True(t, srv.getChaosEnabled())
	assert.True(t, srv.getSlowMode())

	failures := 0
	for i := 0; i < 200; i++ {
		if serve(router, http.MethodGet, "/foods/1").Code == http.StatusServiceUnavailable {
			failures++
		}
	}
	assert.Greater(t, failures, 0)
	assert.Less(t, failures, 200)

	require.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/chaos/catalog/disable").Code)
	assert.False(t, srv.getChaosEnabled())
	assert.False(t, srv.getSlowMode())
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/foods/1").Code)
}

func TestServer_Status(t *testing.T) {
	_, router := newCatalogRouter(t)

	w := serve(router, http.MethodGet, "/catalog/status")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "catalog-test", body["service"])
	assert.Equal(t, false, body["chaos_enabled"])
}

func TestServer_RefreshMetrics(t *testing.T) {
	srv, _ := newCatalogRouter(t)
	assert.NoError(t, srv.RefreshMetrics(context.Background()))
}
