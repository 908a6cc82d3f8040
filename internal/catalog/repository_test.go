package catalog

import (
	"context"
	"testing"

	"github.com/ashendes/food-details/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_GetFood(t *testing.T) {
	repo := NewSeededMemoryRepository()

	food, err := repo.GetFood(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "Ao molho", food.Name)
	assert.Len(t, food.Extras, 2)
}

func TestMemoryRepository_GetFood_NotFound(t *testing.T) {
	repo := NewSeededMemoryRepository()

	_, err := repo.GetFood(context.Background(), 999)

	assert.ErrorIs(t, err, ErrFoodNotFound)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewSeededMemoryRepository()

	food, err := repo.GetFood(context.Background(), 1)
	require.NoError(t, err)
	food.Name = "changed"
	food.Extras[0].Quantity = 10

	again, err := repo.GetFood(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ao molho", again.Name)
	assert.Equal(t, models.Number(0), again.Extras[0].Quantity)
}

func TestMemoryRepository_ListFoods(t *testing.T) {
	repo := NewMemoryRepository(
		models.FoodItem{ID: 3, Name: "c"},
		models.FoodItem{ID: 1, Name: "a"},
		models.FoodItem{ID: 2, Name: "b"},
	)

	foods, err := repo.ListFoods(context.Background())

	require.NoError(t, err)
	require.Len(t, foods, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{foods[0].ID, foods[1].ID, foods[2].ID})
}
