package models

// Extra represents an optional add-on for a food, as returned by the catalog
type Extra struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Value    Number `json:"value"`
	Quantity Number `json:"quantity"`
}

// FoodItem represents a food record with its extras
type FoodItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       Number  `json:"price"`
	ImageURL    string  `json:"image_url"`
	Extras      []Extra `json:"extras"`
}

// Clone returns a deep copy that shares no extras storage with f
func (f *FoodItem) Clone() *FoodItem {
	if f == nil {
		return nil
	}

	clone := *f
	if f.Extras != nil {
		clone.Extras = make([]Extra, len(f.Extras))
		copy(clone.Extras, f.Extras)
	}
	return &clone
}
