// Package health computes the health score of a product from its nutrition
// facts. The score is a pure projection: it is recomputed on every read and
// never stored alongside the product.
package health

import (
	"shoppa/internal/misc"
	"shoppa/internal/model"
)

const (
	Baseline = 3.0
	MinScore = 0.5
	MaxScore = 5.0
)

type Nutrient string

const (
	NutrientSugar        Nutrient = "sugar"
	NutrientSaturatedFat Nutrient = "saturated_fat"
	NutrientSodium       Nutrient = "sodium"
	NutrientFiber        Nutrient = "fiber"
	NutrientProtein      Nutrient = "protein"
)

// Adjustment is one penalty (negative Delta) or bonus applied to the baseline.
type Adjustment struct {
	Nutrient Nutrient `json:"nutrient"`
	Amount   float64  `json:"amount"`
	Delta    float64  `json:"delta"`
}

type tier struct {
	over  float64
	delta float64
}

// Tiers are ordered highest threshold first; only the first one met applies.
var rules = []struct {
	nutrient Nutrient
	amount   func(model.NutritionFacts) float64
	tiers    []tier
}{
	{NutrientSugar, func(n model.NutritionFacts) float64 { return n.SugarG },
		[]tier{{40, -1.5}, {22, -1.0}, {10, -0.5}}},
	{NutrientSaturatedFat, func(n model.NutritionFacts) float64 { return n.SaturatedFatG },
		[]tier{{5, -1.0}, {2, -0.5}}},
	{NutrientSodium, func(n model.NutritionFacts) float64 { return n.SodiumMg },
		[]tier{{800, -1.0}, {400, -0.5}}},
	{NutrientFiber, func(n model.NutritionFacts) float64 { return n.FiberG },
		[]tier{{6, 1.0}, {3, 0.5}}},
	{NutrientProtein, func(n model.NutritionFacts) float64 { return n.ProteinG },
		[]tier{{10, 1.0}, {5, 0.5}}},
}

// Breakdown lists the adjustments that apply to n, in rule order.
func Breakdown(n model.NutritionFacts) []Adjustment {
	var adjs []Adjustment
	for _, r := range rules {
		amount := r.amount(n)
		for _, t := range r.tiers {
			if amount > t.over {
				adjs = append(adjs, Adjustment{Nutrient: r.nutrient, Amount: amount, Delta: t.delta})
				break
			}
		}
	}
	return adjs
}

// Score returns the health score of n in [MinScore, MaxScore].
func Score(n model.NutritionFacts) float64 {
	score := Baseline
	for _, a := range Breakdown(n) {
		score += a.Delta
	}
	return misc.Clamp(score, MinScore, MaxScore)
}

// Label maps a score to its qualitative label. Boundaries belong to the
// higher label.
func Label(score float64) string {
	switch {
	case score >= 4.5:
		return "Excellent Choice"
	case score >= 3.5:
		return "Very Good"
	case score >= 2.5:
		return "Okay in Moderation"
	case score >= 1.5:
		return "Not So Good"
	default:
		return "Treat Only"
	}
}

// Annotate attaches the current score and label to a copy of p.
func Annotate(p model.Product) model.ScoredProduct {
	score := Score(p.Nutrition)
	return model.ScoredProduct{
		Product: p.Clone(),
		Score:   score,
		Label:   Label(score),
	}
}
