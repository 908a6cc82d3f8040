package api

import (
	"github.com/ashendes/food-details/internal/composer"
	"github.com/ashendes/food-details/internal/models"
	"github.com/ashendes/food-details/internal/session"
)

// buildView renders the session state for the presentation layer
func buildView(s *session.Session) models.SessionView {
	view := models.SessionView{
		SessionID: s.ID,
		Extras:    []models.ExtraView{},
	}

	_ = s.Do(func(c *composer.Composer) error {
		state := c.Snapshot()

		view.Loaded = state.Loaded()
		view.FoodQuantity = state.FoodQuantity
		view.IsFavorite = state.IsFavorite
		view.FavoriteIcon = string(c.FavoriteIcon())
		view.CartTotal = c.DisplayTotal()

		if state.Food != nil {
			view.Food = &models.FoodView{
				ID:             state.Food.ID,
				Name:           state.Food.Name,
				Description:    state.Food.Description,
				Price:          composer.Safe(state.Food.Price.Float64()),
				FormattedPrice: c.FormattedPrice(),
				ImageURL:       state.Food.ImageURL,
			}
		}

		for _, extra := range state.Extras {
			view.Extras = append(view.Extras, models.ExtraView{
				ID:       extra.ID,
				Name:     extra.Name,
				Value:    composer.Safe(extra.UnitValue),
				Quantity: extra.Quantity,
			})
		}
		return nil
	})

	if err := s.LoadError(); err != nil {
		view.LoadError = err.Error()
	}

	return view
}
