package models

// SelectFoodRequest represents a request to open or reload a food details screen
type SelectFoodRequest struct {
	FoodID int64 `json:"food_id" binding:"required,gt=0"`
}

// FoodView is the food as presented on the details screen
type FoodView struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	FormattedPrice string  `json:"formatted_price"`
	ImageURL       string  `json:"image_url"`
}

// ExtraView is an extra with its selected quantity
type ExtraView struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Quantity int     `json:"quantity"`
}

// SessionView represents the full state of one food details screen
type SessionView struct {
	SessionID    string      `json:"session_id"`
	Loaded       bool        `json:"loaded"`
	Food         *FoodView   `json:"food,omitempty"`
	Extras       []ExtraView `json:"extras"`
	FoodQuantity int         `json:"food_quantity"`
	IsFavorite   bool        `json:"is_favorite"`
	FavoriteIcon string      `json:"favorite_icon"`
	CartTotal    string      `json:"cart_total"`
	LoadError    string      `json:"load_error,omitempty"`
}

// FinishOrderResponse represents the response after finishing an order
type FinishOrderResponse struct {
	SessionID  string `json:"session_id"`
	NavigateTo string `json:"navigate_to"`
}
