package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"shoppa/internal/model"
)

func mustBuiltin(t *testing.T) *Catalog {
	t.Helper()
	c, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	return c
}

func TestBuiltin(t *testing.T) {
	c := mustBuiltin(t)
	if c.Len() != 22 {
		t.Fatalf("Len() = %d, want 22", c.Len())
	}
	all := c.ListAll()
	if len(all) != 22 {
		t.Fatalf("ListAll returned %d products", len(all))
	}
	for _, p := range all {
		if p.Score < 0.5 || p.Score > 5 {
			t.Errorf("%s: score %v out of range", p.ID, p.Score)
		}
		if p.Label == "" {
			t.Errorf("%s: empty label", p.ID)
		}
		if len(p.Prices) == 0 {
			t.Errorf("%s: no prices", p.ID)
		}
	}
}

func TestFindByID(t *testing.T) {
	c := mustBuiltin(t)

	p, err := c.FindByID("sd_2")
	if err != nil {
		t.Fatalf("FindByID(sd_2): %v", err)
	}
	if p.Name != "Pepsi Max" || p.Brand != "Pepsi" {
		t.Errorf("FindByID(sd_2) = %s %s", p.Brand, p.Name)
	}
	if p.Score != 3.0 || p.Label != "Okay in Moderation" {
		t.Errorf("Pepsi Max score = %v %q", p.Score, p.Label)
	}
	if !p.Prices[0].Price.Equal(decimal.RequireFromString("2.20")) {
		t.Errorf("Pepsi Max first price = %s, want 2.20", p.Prices[0].Price)
	}

	_, err = c.FindByID("nope")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("FindByID(nope) err = %v, want ErrNotFound", err)
	}
}

func TestReadsAreCopies(t *testing.T) {
	c := mustBuiltin(t)
	p, _ := c.FindByID("da_1")
	p.Prices[0].Price = decimal.NewFromInt(100)
	p.Name = "changed"

	again, _ := c.FindByID("da_1")
	if again.Name != "Full Cream Milk" {
		t.Errorf("catalog name mutated: %s", again.Name)
	}
	if again.Prices[0].Price.Equal(decimal.NewFromInt(100)) {
		t.Error("catalog price mutated through a returned copy")
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	good := model.Product{ID: "a", Category: model.CategoryPantry}
	tests := []struct {
		name     string
		products []model.Product
		want     string
	}{
		{"duplicate", []model.Product{good, good}, "duplicate product id"},
		{"reserved prefix", []model.Product{{ID: "ai_1", Category: model.CategoryPantry}}, "reserved prefix"},
		{"bad category", []model.Product{{ID: "b", Category: "Toys"}}, "unknown category"},
		{"bad retailer", []model.Product{{ID: "c", Category: model.CategoryPantry,
			Prices: []model.PricePoint{{Retailer: "Costco"}}}}, "unknown retailer"},
		{"negative price", []model.Product{{ID: "d", Category: model.CategoryPantry,
			Prices: []model.PricePoint{{Retailer: model.RetailerAldi, Price: decimal.NewFromInt(-1)}}}}, "negative price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.products)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("New err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

const yamlCatalog = `products:
  - id: ju_1
    name: Orange Juice
    brand: Nudie
    size: 1L
    category: Juices
    image: https://placehold.co/300x300?text=OJ
    nutrition:
      energy_kj: 180
      sugar_g: 8.5
      saturated_fat_g: 0
      sodium_mg: 5
      protein_g: 0.7
      fiber_g: 0.4
    prices:
      - retailer: Foodland
        price: 4.5
        unit_price: $4.50/L
        in_stock: true
        store_distance_km: 3.1
        last_updated: Now
`

const tomlCatalog = `[[products]]
id = "ju_2"
name = "Apple Juice"
brand = "Golden Circle"
size = "2L"
category = "Juices"
image = "https://placehold.co/300x300?text=AJ"

[products.nutrition]
sugar_g = 23.0

[[products.prices]]
retailer = "Drakes"
price = 3.99
unit_price = "$2.00/L"
in_stock = false
store_distance_km = 4.0
last_updated = "1hr ago"
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "catalog.yaml")
	tomlPath := filepath.Join(dir, "catalog.toml")
	if err := os.WriteFile(yamlPath, []byte(yamlCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tomlPath, []byte(tomlCatalog), 0o644); err != nil {
		t.Fatal(err)
	}

	yc, err := Load(yamlPath)
	if err != nil {
		t.Fatalf("Load(yaml): %v", err)
	}
	oj, err := yc.FindByID("ju_1")
	if err != nil {
		t.Fatalf("FindByID(ju_1): %v", err)
	}
	if oj.Prices[0].Retailer != model.RetailerFoodland || !oj.Prices[0].Price.Equal(decimal.RequireFromString("4.50")) {
		t.Errorf("unexpected yaml price point: %+v", oj.Prices[0])
	}

	tc, err := Load(tomlPath)
	if err != nil {
		t.Fatalf("Load(toml): %v", err)
	}
	aj, err := tc.FindByID("ju_2")
	if err != nil {
		t.Fatalf("FindByID(ju_2): %v", err)
	}
	if aj.Score != 2.0 {
		t.Errorf("apple juice score = %v, want 2.0", aj.Score)
	}
	if aj.Prices[0].InStock {
		t.Error("expected apple juice out of stock")
	}

	if _, err = Load(filepath.Join(dir, "catalog.json")); err == nil {
		t.Error("expected error for missing json catalog")
	}
}
