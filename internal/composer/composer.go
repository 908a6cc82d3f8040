// Package composer holds the state behind a food details screen: the selected
// food, the quantities of its extras and of the food itself, the favorite flag,
// and the total derived from them.
//
// A Composer has a single owner and is not safe for concurrent use. Every
// transition runs to completion and replaces the extras slice instead of
// mutating an element in place, so snapshots handed out earlier never change.
package composer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ashendes/food-details/internal/models"
	"github.com/ashendes/food-details/internal/pricing"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// MinFoodQuantity is the lowest food quantity a composer allows
const MinFoodQuantity = 1

var (
	// ErrLoadSuperseded is returned when a newer load was issued before this one was applied
	ErrLoadSuperseded = errors.New("load superseded by a newer load")
	// ErrNoFood is returned when a load completes without a food record
	ErrNoFood = errors.New("catalog returned no food")
)

// Catalog supplies food records
type Catalog interface {
	FetchFood(ctx context.Context, id int64) (*models.FoodItem, error)
}

// Navigator receives the signal emitted when an order is finished
type Navigator interface {
	Navigate(ctx context.Context, signal models.NavigationSignal) error
}

// Extra is an extra with the quantity selected on this screen
type Extra struct {
	ID        int64
	Name      string
	UnitValue float64
	Quantity  int
}

// State is a snapshot of a composer
type State struct {
	Food         *models.FoodItem
	Extras       []Extra
	FoodQuantity int
	IsFavorite   bool
}

// Loaded reports whether a food has been loaded
func (s State) Loaded() bool {
	return s.Food != nil
}

// Ticket identifies one load. Only the most recently issued ticket may be applied.
type Ticket uint64

// Option configures a Composer
type Option func(*Composer)

// WithFormatter sets the price formatter
func WithFormatter(f pricing.Formatter) Option {
	return func(c *Composer) {
		c.formatter = f
	}
}

// WithNavigator sets the navigation host that receives finish signals
func WithNavigator(n Navigator) Option {
	return func(c *Composer) {
		c.navigator = n
	}
}

// WithID tags the composer, and the signals it emits, with an identifier
func WithID(id string) Option {
	return func(c *Composer) {
		c.id = id
	}
}

// Composer owns the order state of one food details screen
type Composer struct {
	id        string
	catalog   Catalog
	formatter pricing.Formatter
	navigator Navigator

	food         *models.FoodItem
	extras       []Extra
	foodQuantity int
	favorite     bool
	issued       Ticket
}

// New creates a composer with quantity 1, not favorite and no food loaded
func New(catalog Catalog, opts ...Option) *Composer {
	c := &Composer{
		catalog:      catalog,
		formatter:    pricing.Plain,
		foodQuantity: MinFoodQuantity,
		extras:       []Extra{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches a food from the catalog and makes it the current food.
// Extras are reset to a copy of the fetched extras; food quantity and the
// favorite flag are kept. On failure the current food is left as it was.
func (c *Composer) Load(ctx context.Context, foodID int64) (State, error) {
	ticket := c.BeginLoad()

	food, err := c.catalog.FetchFood(ctx, foodID)
	if err != nil {
		return c.Snapshot(), fmt.Errorf("load food %d: %w", foodID, err)
	}

	if err := c.ApplyLoad(ticket, food); err != nil {
		return c.Snapshot(), err
	}
	return c.Snapshot(), nil
}

// BeginLoad issues a ticket for a load that is about to start
func (c *Composer) BeginLoad() Ticket {
	c.issued++
	return c.issued
}

// IsCurrent reports whether ticket is the latest one issued
func (c *Composer) IsCurrent(ticket Ticket) bool {
	return ticket == c.issued
}

// ApplyLoad installs a fetched food if ticket is still the latest one issued
func (c *Composer) ApplyLoad(ticket Ticket, food *models.FoodItem) error {
	if !c.IsCurrent(ticket) {
		log.WithFields(log.Fields{
			"composer": c.id,
			"ticket":   ticket,
			"latest":   c.issued,
		}).Debug("Dropping superseded food load")
		return ErrLoadSuperseded
	}
	if food == nil {
		return ErrNoFood
	}

	c.food = food.Clone()
	c.extras = copyExtras(food.Extras)

	log.WithFields(log.Fields{
		"composer": c.id,
		"food_id":  food.ID,
		"extras":   len(c.extras),
	}).Debug("Food loaded")

	return nil
}

// IncrementExtra adds one to the quantity of an extra. Unknown ids are ignored.
func (c *Composer) IncrementExtra(extraID int64) {
	c.updateExtra(extraID, func(e Extra) (Extra, bool) {
		if e.Quantity < 0 {
			e.Quantity = 0
		}
		e.Quantity++
		return e, true
	})
}

// DecrementExtra removes one from the quantity of an extra, never going below zero.
// Unknown ids are ignored.
func (c *Composer) DecrementExtra(extraID int64) {
	c.updateExtra(extraID, func(e Extra) (Extra, bool) {
		if e.Quantity <= 0 {
			return e, false
		}
		e.Quantity--
		return e, true
	})
}

// IncrementFood adds one to the food quantity
func (c *Composer) IncrementFood() {
	c.foodQuantity++
}

// DecrementFood removes one from the food quantity, never going below MinFoodQuantity
func (c *Composer) DecrementFood() {
	if c.foodQuantity-1 >= MinFoodQuantity {
		c.foodQuantity--
	}
}

// ToggleFavorite flips the favorite flag and returns the new value
func (c *Composer) ToggleFavorite() bool {
	c.favorite = !c.favorite
	return c.favorite
}

// FavoriteIcon returns the icon for the current favorite flag
func (c *Composer) FavoriteIcon() Icon {
	return FavoriteIcon(c.favorite)
}

// Total recomputes the order total from the current state
func (c *Composer) Total() decimal.Decimal {
	return GrandTotal(c.view())
}

// DisplayTotal returns the formatted order total
func (c *Composer) DisplayTotal() string {
	return c.formatter.Format(c.Total())
}

// FormattedPrice returns the formatted unit price of the food, or "" before load
func (c *Composer) FormattedPrice() string {
	if c.food == nil {
		return ""
	}
	return c.formatter.Format(decimal.NewFromFloat(Safe(c.food.Price.Float64())))
}

// FinishOrder hands off to the navigation host. No order record is built.
func (c *Composer) FinishOrder(ctx context.Context) error {
	if c.navigator == nil {
		return nil
	}

	signal := models.NavigationSignal{
		Route:     models.RouteOrders,
		SessionID: c.id,
		Timestamp: time.Now().UTC(),
	}
	if err := c.navigator.Navigate(ctx, signal); err != nil {
		return fmt.Errorf("navigate to %s: %w", signal.Route, err)
	}
	return nil
}

// Snapshot returns a copy of the current state that shares nothing with the composer
func (c *Composer) Snapshot() State {
	extras := make([]Extra, len(c.extras))
	copy(extras, c.extras)

	return State{
		Food:         c.food.Clone(),
		Extras:       extras,
		FoodQuantity: c.foodQuantity,
		IsFavorite:   c.favorite,
	}
}

// view exposes the live state for read-only computations
func (c *Composer) view() State {
	return State{
		Food:         c.food,
		Extras:       c.extras,
		FoodQuantity: c.foodQuantity,
		IsFavorite:   c.favorite,
	}
}

// updateExtra replaces the extras slice with one where the matching extra went through fn
func (c *Composer) updateExtra(extraID int64, fn func(Extra) (Extra, bool)) {
	for i, extra := range c.extras {
		if extra.ID != extraID {
			continue
		}

		updated, changed := fn(extra)
		if !changed {
			return
		}

		extras := make([]Extra, len(c.extras))
		copy(extras, c.extras)
		extras[i] = updated
		c.extras = extras
		return
	}
}

func copyExtras(src []models.Extra) []Extra {
	extras := make([]Extra, 0, len(src))
	for _, e := range src {
		extras = append(extras, Extra{
			ID:        e.ID,
			Name:      e.Name,
			UnitValue: e.Value.Float64(),
			Quantity:  normalizeQuantity(e.Quantity.Float64()),
		})
	}
	return extras
}

func normalizeQuantity(q float64) int {
	q = math.Floor(Safe(q))
	if q > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(q)
}
