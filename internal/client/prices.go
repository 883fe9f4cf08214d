package client

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/shopspring/decimal"

	"shoppa/internal/misc"
	"shoppa/internal/model"
)

var (
	mockRetailers = []model.Retailer{
		model.RetailerColes, model.RetailerWoolworths, model.RetailerIGA, model.RetailerAldi,
	}
	minMockPrice = decimal.RequireFromString("1.50")
	unitDivisor  = decimal.RequireFromString("2.5")
)

// MockPrices invents prices at three of the four major retailers around a
// base price between $2 and $7.
func MockPrices(r *rand.Rand) []model.PricePoint {
	retailers := append([]model.Retailer(nil), mockRetailers...)
	r.Shuffle(len(retailers), func(i, j int) { retailers[i], retailers[j] = retailers[j], retailers[i] })

	base := r.Float64()*5 + 2
	prices := make([]model.PricePoint, 0, 3)
	for _, ret := range retailers[:3] {
		variance := r.Float64() - 0.5
		price := decimal.Max(minMockPrice, decimal.NewFromFloat(base+variance).Round(2))
		prices = append(prices, model.PricePoint{
			Retailer:        ret,
			Price:           price,
			UnitPrice:       fmt.Sprintf("$%s/100g", price.Div(unitDivisor).StringFixed(2)),
			InStock:         r.Float64() > 0.1,
			StoreDistanceKm: misc.Clamp(math.Round(r.Float64()*50)/10, 0, 5),
			LastUpdated:     "Just now",
		})
	}
	return prices
}
