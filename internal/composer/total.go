package composer

import (
	"math"

	"github.com/shopspring/decimal"
)

// Safe returns x when it is a finite, non-negative number and 0 otherwise.
// Incomplete catalog data degrades to zero instead of poisoning a total.
func Safe(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return 0
	}
	return x
}

// ExtrasTotal sums unit value times quantity over extras
func ExtrasTotal(extras []Extra) decimal.Decimal {
	total := decimal.Zero
	for _, extra := range extras {
		value := decimal.NewFromFloat(Safe(extra.UnitValue))
		quantity := decimal.NewFromFloat(Safe(float64(extra.Quantity)))
		total = total.Add(value.Mul(quantity))
	}
	return total
}

// GrandTotal is the food price times its quantity plus the extras total.
// A state without food contributes only its extras.
func GrandTotal(state State) decimal.Decimal {
	price := 0.0
	if state.Food != nil {
		price = Safe(state.Food.Price.Float64())
	}

	quantity := state.FoodQuantity
	if quantity < MinFoodQuantity {
		quantity = MinFoodQuantity
	}

	food := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
	return food.Add(ExtrasTotal(state.Extras))
}
