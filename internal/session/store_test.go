package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ashendes/food-details/internal/composer"
	"github.com/ashendes/food-details/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedCatalog blocks fetches of ids present in gates until the gate is closed
type gatedCatalog struct {
	mu      sync.Mutex
	foods   map[int64]*models.FoodItem
	gates   map[int64]chan struct{}
	started chan int64
	err     error
}

func newGatedCatalog() *gatedCatalog {
	return &gatedCatalog{
		foods: map[int64]*models.FoodItem{
			1: {ID: 1, Name: "Ao molho", Price: 10, Extras: []models.Extra{{ID: 1, Name: "Bacon", Value: 3}}},
			2: {ID: 2, Name: "Veggie", Price: 12},
		},
		gates:   map[int64]chan struct{}{},
		started: make(chan int64, 10),
	}
}

func (g *gatedCatalog) FetchFood(ctx context.Context, id int64) (*models.FoodItem, error) {
	g.started <- id

	g.mu.Lock()
	gate := g.gates[id]
	err := g.err
	g.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	food, ok := g.foods[id]
	if !ok {
		return nil, errors.New("food not found")
	}
	return food, nil
}

func newStore(catalog composer.Catalog) *Store {
	return NewStore(catalog, func(id string) *composer.Composer {
		return composer.New(catalog, composer.WithID(id))
	}, time.Second)
}

func TestStore_CreateGetDelete(t *testing.T) {
	store := newStore(newGatedCatalog())

	s := store.Create()
	require.NotEmpty(t, s.ID)
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, store.Delete(s.ID))
	assert.Equal(t, 0, store.Len())

	_, err = store.Get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(s.ID), ErrNotFound)
}

func TestSession_Load(t *testing.T) {
	store := newStore(newGatedCatalog())
	s := store.Create()

	require.NoError(t, s.Load(context.Background(), 1))
	assert.NoError(t, s.LoadError())

	var state composer.State
	_ = s.Do(func(c *composer.Composer) error {
		state = c.Snapshot()
		return nil
	})
	assert.Equal(t, "Ao molho", state.Food.Name)
	assert.Len(t, state.Extras, 1)
}

func TestSession_LoadFailure(t *testing.T) {
	catalog := newGatedCatalog()
	catalog.err = errors.New("catalog unavailable")
	s := newStore(catalog).Create()

	err := s.Load(context.Background(), 1)

	require.ErrorIs(t, err, catalog.err)
	assert.ErrorIs(t, s.LoadError(), catalog.err)
	_ = s.Do(func(c *composer.Composer) error {
		assert.False(t, c.Snapshot().Loaded())
		return nil
	})
}

func TestSession_IntentsServedWhileLoading(t *testing.T) {
	catalog := newGatedCatalog()
	gate := make(chan struct{})
	catalog.gates[1] = gate
	s := newStore(catalog).Create()

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background(), 1) }()
	<-catalog.started

	finished := make(chan struct{})
	go func() {
		_ = s.Do(func(c *composer.Composer) error {
			c.IncrementFood()
			return nil
		})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("intent blocked by pending load")
	}

	close(gate)
	require.NoError(t, <-done)

	_ = s.Do(func(c *composer.Composer) error {
		state := c.Snapshot()
		assert.Equal(t, 2, state.FoodQuantity)
		assert.True(t, state.Loaded())
		return nil
	})
}

func TestSession_LatestLoadWins(t *testing.T) {
	catalog := newGatedCatalog()
	slow := make(chan struct{})
	catalog.gates[1] = slow
	s := newStore(catalog).Create()

	first := make(chan error, 1)
	go func() { first <- s.Load(context.Background(), 1) }()
	<-catalog.started

	require.NoError(t, s.Load(context.Background(), 2))
	<-catalog.started

	close(slow)
	assert.ErrorIs(t, <-first, composer.ErrLoadSuperseded)

	_ = s.Do(func(c *composer.Composer) error {
		assert.Equal(t, "Veggie", c.Snapshot().Food.Name)
		return nil
	})
	assert.NoError(t, s.LoadError())
}

func TestSession_SupersededFailureKeepsLatestState(t *testing.T) {
	catalog := newGatedCatalog()
	slow := make(chan struct{})
	catalog.gates[99] = slow
	s := newStore(catalog).Create()

	first := make(chan error, 1)
	go func() { first <- s.Load(context.Background(), 99) }()
	<-catalog.started

	require.NoError(t, s.Load(context.Background(), 2))
	<-catalog.started

	close(slow)
	assert.ErrorIs(t, <-first, composer.ErrLoadSuperseded)

	_ = s.Do(func(c *composer.Composer) error {
		assert.Equal(t, "Veggie", c.Snapshot().Food.Name)
		return nil
	})
	assert.NoError(t, s.LoadError())
}
