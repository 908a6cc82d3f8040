// Package catalog serves and fetches food records.
package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/ashendes/food-details/internal/models"
)

var (
	// ErrFoodNotFound is returned when no food has the requested id
	ErrFoodNotFound = errors.New("food not found")
)

// Repository defines read access to the food catalog
type Repository interface {
	GetFood(ctx context.Context, id int64) (*models.FoodItem, error)
	ListFoods(ctx context.Context) ([]models.FoodItem, error)
}

// MemoryRepository keeps foods in memory. Callers always receive copies.
type MemoryRepository struct {
	foods map[int64]*models.FoodItem
	mutex sync.RWMutex
}

// NewMemoryRepository creates a repository holding foods
func NewMemoryRepository(foods ...models.FoodItem) *MemoryRepository {
	repo := &MemoryRepository{
		foods: make(map[int64]*models.FoodItem, len(foods)),
	}
	for i := range foods {
		repo.foods[foods[i].ID] = foods[i].Clone()
	}
	return repo
}

// NewSeededMemoryRepository creates a repository with the sample menu
func NewSeededMemoryRepository() *MemoryRepository {
	return NewMemoryRepository(SampleFoods()...)
}

// GetFood returns a copy of the food with the given id
func (r *MemoryRepository) GetFood(_ context.Context, id int64) (*models.FoodItem, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	food, ok := r.foods[id]
	if !ok {
		return nil, ErrFoodNotFound
	}
	return food.Clone(), nil
}

// ListFoods returns copies of all foods ordered by id
func (r *MemoryRepository) ListFoods(_ context.Context) ([]models.FoodItem, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	foods := make([]models.FoodItem, 0, len(r.foods))
	for _, food := range r.foods {
		foods = append(foods, *food.Clone())
	}
	sort.Slice(foods, func(i, j int) bool { return foods[i].ID < foods[j].ID })
	return foods, nil
}

// SampleFoods returns the menu served when no database is configured
func SampleFoods() []models.FoodItem {
	return []models.FoodItem{
		{
			ID:          1,
			Name:        "Ao molho",
			Description: "Macarrão ao molho branco, fughi e cheiro verde das montanhas.",
			Price:       19.9,
			ImageURL:    "https://storage.googleapis.com/golden-wind/bootcamp-gostack/desafio-gorestaurant-mobile/ao_molho.png",
			Extras: []models.Extra{
				{ID: 1, Name: "Bacon", Value: 1.5},
				{ID: 2, Name: "Frango", Value: 2},
			},
		},
		{
			ID:          2,
			Name:        "Veggie",
			Description: "Macarrão com pimentão, ervilha e ervas finas colhidas no himalaia.",
			Price:       21.9,
			ImageURL:    "https://storage.googleapis.com/golden-wind/bootcamp-gostack/desafio-gorestaurant-mobile/veggie.png",
			Extras: []models.Extra{
				{ID: 3, Name: "Bacon", Value: 1.5},
			},
		},
		{
			ID:          3,
			Name:        "A la Camarón",
			Description: "Macarrão com vegetais de primeira linha e camarão dos 7 mares.",
			Price:       25.9,
			ImageURL:    "https://storage.googleapis.com/golden-wind/bootcamp-gostack/desafio-gorestaurant-mobile/camarao.png",
			Extras: []models.Extra{
				{ID: 4, Name: "Bacon", Value: 1.5},
				{ID: 5, Name: "Camarão extra", Value: 6},
			},
		},
	}
}
