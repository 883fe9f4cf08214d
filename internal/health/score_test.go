package health

import (
	"math/rand"
	"testing"

	"shoppa/internal/model"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		n    model.NutritionFacts
		want float64
	}{
		{"baseline at zero", model.NutritionFacts{}, 3.0},
		{"clamped low", model.NutritionFacts{SugarG: 50, SaturatedFatG: 10, SodiumMg: 1000}, 0.5},
		{"clamped high", model.NutritionFacts{FiberG: 20, ProteinG: 20}, 5.0},
		{"sugar top tier only", model.NutritionFacts{SugarG: 40.1}, 1.5},
		{"sugar middle tier", model.NutritionFacts{SugarG: 25}, 2.0},
		{"sugar low tier", model.NutritionFacts{SugarG: 10.6}, 2.5},
		{"sugar at threshold", model.NutritionFacts{SugarG: 10}, 3.0},
		{"sat fat tiers", model.NutritionFacts{SaturatedFatG: 2.3}, 2.5},
		{"sodium high", model.NutritionFacts{SodiumMg: 950}, 2.0},
		{"sodium at 800", model.NutritionFacts{SodiumMg: 800}, 2.5},
		{"fiber and protein bonuses", model.NutritionFacts{FiberG: 3.5, ProteinG: 6.6}, 4.0},
		// Weet-Bix from the built-in catalog.
		{"weet-bix", model.NutritionFacts{EnergyKJ: 1490, SugarG: 3.3, SaturatedFatG: 0.3, SodiumMg: 270, ProteinG: 12.4, FiberG: 11}, 5.0},
		// Tim Tam.
		{"tim tam", model.NutritionFacts{EnergyKJ: 2200, SugarG: 49.2, SaturatedFatG: 14.5, SodiumMg: 180, ProteinG: 4.5, FiberG: 1.2}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.n); got != tt.want {
				t.Errorf("Score(%+v) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}

func TestScoreRangeAndPurity(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		n := model.NutritionFacts{
			EnergyKJ:      r.Float64() * 3000,
			SugarG:        r.Float64() * 80,
			SaturatedFatG: r.Float64() * 30,
			SodiumMg:      r.Float64() * 4000,
			ProteinG:      r.Float64() * 40,
			FiberG:        r.Float64() * 20,
		}
		got := Score(n)
		if got < MinScore || got > MaxScore {
			t.Fatalf("Score(%+v) = %v, out of range", n, got)
		}
		if again := Score(n); again != got {
			t.Fatalf("Score(%+v) not stable: %v then %v", n, got, again)
		}
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{5.0, "Excellent Choice"},
		{4.5, "Excellent Choice"},
		{4.49, "Very Good"},
		{3.5, "Very Good"},
		{3.0, "Okay in Moderation"},
		{2.5, "Okay in Moderation"},
		{1.5, "Not So Good"},
		{1.49, "Treat Only"},
		{0.5, "Treat Only"},
	}
	for _, tt := range tests {
		if got := Label(tt.score); got != tt.want {
			t.Errorf("Label(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestBreakdown(t *testing.T) {
	adjs := Breakdown(model.NutritionFacts{SugarG: 25.4, SaturatedFatG: 0.1, SodiumMg: 950, ProteinG: 1.2, FiberG: 0.5})
	if len(adjs) != 2 {
		t.Fatalf("Breakdown returned %d adjustments, want 2: %+v", len(adjs), adjs)
	}
	if adjs[0].Nutrient != NutrientSugar || adjs[0].Delta != -1.0 {
		t.Errorf("adjs[0] = %+v, want sugar -1.0", adjs[0])
	}
	if adjs[1].Nutrient != NutrientSodium || adjs[1].Delta != -1.0 {
		t.Errorf("adjs[1] = %+v, want sodium -1.0", adjs[1])
	}
	if len(Breakdown(model.NutritionFacts{})) != 0 {
		t.Error("expected no adjustments at zero")
	}
}

func TestAnnotateCopiesProduct(t *testing.T) {
	p := model.Product{
		ID:        "x",
		Nutrition: model.NutritionFacts{FiberG: 7},
		Prices:    []model.PricePoint{{Retailer: model.RetailerAldi}},
	}
	sp := Annotate(p)
	if sp.Score != 4.0 || sp.Label != "Very Good" {
		t.Fatalf("Annotate = %v %q, want 4.0 Very Good", sp.Score, sp.Label)
	}
	sp.Prices[0].Retailer = model.RetailerColes
	if p.Prices[0].Retailer != model.RetailerAldi {
		t.Error("Annotate shares the price slice with its input")
	}
}
