package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    float64
		valid   bool
	}{
		{"integer", `{"quantity": 2}`, 2, true},
		{"float", `{"quantity": 1.5}`, 1.5, true},
		{"numeric string", `{"quantity": " 3 "}`, 3, true},
		{"missing", `{}`, 0, true},
		{"null", `{"quantity": null}`, 0, false},
		{"word", `{"quantity": "many"}`, 0, false},
		{"boolean", `{"quantity": true}`, 0, false},
		{"object", `{"quantity": {"n": 1}}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var extra Extra
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &extra))

			assert.Equal(t, tt.valid, extra.Quantity.IsValid())
			if tt.valid {
				assert.Equal(t, tt.want, extra.Quantity.Float64())
			} else {
				assert.True(t, math.IsNaN(extra.Quantity.Float64()))
			}
		})
	}
}

func TestNumber_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Extra{ID: 1, Name: "Bacon", Value: 1.5, Quantity: Number(math.NaN())})

	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 1, "name": "Bacon", "value": 1.5, "quantity": null}`, string(data))
}

func TestFoodItem_Clone(t *testing.T) {
	food := &FoodItem{
		ID:     1,
		Name:   "Ao molho",
		Extras: []Extra{{ID: 1, Name: "Bacon", Value: 1.5}},
	}

	clone := food.Clone()
	clone.Extras[0].Quantity = 3
	clone.Name = "changed"

	assert.Equal(t, Number(0), food.Extras[0].Quantity)
	assert.Equal(t, "Ao molho", food.Name)

	var nilFood *FoodItem
	assert.Nil(t, nilFood.Clone())
}
