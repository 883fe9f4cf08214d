package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// GeneratedPrefix marks products produced by the enrichment collaborator.
// They live only in the resolver's process-lifetime cache.
const GeneratedPrefix = "ai_"

type Retailer string

const (
	RetailerColes      Retailer = "Coles"
	RetailerWoolworths Retailer = "Woolworths"
	RetailerAldi       Retailer = "Aldi"
	RetailerIGA        Retailer = "IGA"
	RetailerFoodland   Retailer = "Foodland"
	RetailerDrakes     Retailer = "Drakes"
	RetailerFoodWorks  Retailer = "FoodWorks"
)

var Retailers = []Retailer{
	RetailerColes, RetailerWoolworths, RetailerAldi, RetailerIGA,
	RetailerFoodland, RetailerDrakes, RetailerFoodWorks,
}

func (r Retailer) Valid() bool {
	for _, known := range Retailers {
		if r == known {
			return true
		}
	}
	return false
}

type Category string

const (
	CategorySoftDrinks Category = "Soft Drinks"
	CategoryJuices     Category = "Juices"
	CategoryCereal     Category = "Breakfast Cereals"
	CategorySnacks     Category = "Snacks & Chips"
	CategoryDairy      Category = "Dairy & Yoghurt"
	CategoryReadyMeals Category = "Ready Meals"
	CategoryPantry     Category = "Pantry & Canned"
)

var Categories = []Category{
	CategorySoftDrinks, CategoryJuices, CategoryCereal, CategorySnacks,
	CategoryDairy, CategoryReadyMeals, CategoryPantry,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// NutritionFacts are per 100g or 100ml.
type NutritionFacts struct {
	EnergyKJ      float64 `json:"energy_kj"`
	SugarG        float64 `json:"sugar_g"`
	SaturatedFatG float64 `json:"saturated_fat_g"`
	SodiumMg      float64 `json:"sodium_mg"`
	ProteinG      float64 `json:"protein_g"`
	FiberG        float64 `json:"fiber_g"`
}

type PricePoint struct {
	Retailer        Retailer        `json:"retailer"`
	Price           decimal.Decimal `json:"price"`
	UnitPrice       string          `json:"unit_price"`
	InStock         bool            `json:"in_stock"`
	StoreDistanceKm float64         `json:"store_distance_km"`
	LastUpdated     string          `json:"last_updated"`
}

type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Brand       string         `json:"brand"`
	Size        string         `json:"size"`
	Category    Category       `json:"category"`
	Image       string         `json:"image"`
	Description string         `json:"description,omitempty"`
	Ingredients []string       `json:"ingredients,omitempty"`
	Nutrition   NutritionFacts `json:"nutrition"`
	Prices      []PricePoint   `json:"prices"`
}

func (p Product) IsGenerated() bool {
	return strings.HasPrefix(p.ID, GeneratedPrefix)
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	c := p
	if p.Prices != nil {
		c.Prices = append([]PricePoint(nil), p.Prices...)
	}
	if p.Ingredients != nil {
		c.Ingredients = append([]string(nil), p.Ingredients...)
	}
	return c
}

// PriceAt returns the price point for retailer, if the product is sold there.
func (p Product) PriceAt(r Retailer) (PricePoint, bool) {
	for _, pp := range p.Prices {
		if pp.Retailer == r {
			return pp, true
		}
	}
	return PricePoint{}, false
}

// ScoredProduct is the read projection of a Product. Score and Label are
// derived from Nutrition on every read and are never stored.
type ScoredProduct struct {
	Product
	Score float64 `json:"health_score"`
	Label string  `json:"health_label"`
}
