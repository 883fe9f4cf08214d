// Package catalog holds the static, read-only product dataset.
package catalog

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"shoppa/internal/health"
	"shoppa/internal/model"
)

//go:embed catalog.toml
var builtinTOML []byte

type fileCatalog struct {
	Products []fileProduct `toml:"products" yaml:"products"`
}

type fileProduct struct {
	ID          string        `toml:"id" yaml:"id"`
	Name        string        `toml:"name" yaml:"name"`
	Brand       string        `toml:"brand" yaml:"brand"`
	Size        string        `toml:"size" yaml:"size"`
	Category    string        `toml:"category" yaml:"category"`
	Image       string        `toml:"image" yaml:"image"`
	Description string        `toml:"description" yaml:"description"`
	Ingredients []string      `toml:"ingredients" yaml:"ingredients"`
	Nutrition   fileNutrition `toml:"nutrition" yaml:"nutrition"`
	Prices      []filePrice   `toml:"prices" yaml:"prices"`
}

type fileNutrition struct {
	EnergyKJ      float64 `toml:"energy_kj" yaml:"energy_kj"`
	SugarG        float64 `toml:"sugar_g" yaml:"sugar_g"`
	SaturatedFatG float64 `toml:"saturated_fat_g" yaml:"saturated_fat_g"`
	SodiumMg      float64 `toml:"sodium_mg" yaml:"sodium_mg"`
	ProteinG      float64 `toml:"protein_g" yaml:"protein_g"`
	FiberG        float64 `toml:"fiber_g" yaml:"fiber_g"`
}

type filePrice struct {
	Retailer        string  `toml:"retailer" yaml:"retailer"`
	Price           float64 `toml:"price" yaml:"price"`
	UnitPrice       string  `toml:"unit_price" yaml:"unit_price"`
	InStock         bool    `toml:"in_stock" yaml:"in_stock"`
	StoreDistanceKm float64 `toml:"store_distance_km" yaml:"store_distance_km"`
	LastUpdated     string  `toml:"last_updated" yaml:"last_updated"`
}

// Catalog is immutable after construction. Every read returns deep copies
// annotated with the current health score.
type Catalog struct {
	products []model.Product
	index    map[string]int
}

// Builtin returns the catalog embedded in the binary.
func Builtin() (*Catalog, error) {
	var fc fileCatalog
	if _, err := toml.NewDecoder(bytes.NewReader(builtinTOML)).Decode(&fc); err != nil {
		return nil, errors.Wrap(err, "failed to decode built-in catalog")
	}
	return fromFile(fc)
}

// Load reads a catalog from a .toml, .yaml or .yml file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read catalog file: %s", path)
	}
	var fc fileCatalog
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err = toml.Decode(string(data), &fc); err != nil {
			return nil, errors.Wrapf(err, "failed to decode toml catalog: %s", path)
		}
	case ".yaml", ".yml":
		if err = yaml.Unmarshal(data, &fc); err != nil {
			return nil, errors.Wrapf(err, "failed to decode yaml catalog: %s", path)
		}
	default:
		return nil, errors.Errorf("unsupported catalog format: %s", path)
	}
	return fromFile(fc)
}

func fromFile(fc fileCatalog) (*Catalog, error) {
	products := make([]model.Product, 0, len(fc.Products))
	for _, fp := range fc.Products {
		p := model.Product{
			ID:          fp.ID,
			Name:        fp.Name,
			Brand:       fp.Brand,
			Size:        fp.Size,
			Category:    model.Category(fp.Category),
			Image:       fp.Image,
			Description: fp.Description,
			Ingredients: fp.Ingredients,
			Nutrition:   model.NutritionFacts(fp.Nutrition),
		}
		for _, pp := range fp.Prices {
			p.Prices = append(p.Prices, model.PricePoint{
				Retailer:        model.Retailer(pp.Retailer),
				Price:           decimal.NewFromFloat(pp.Price).Round(2),
				UnitPrice:       pp.UnitPrice,
				InStock:         pp.InStock,
				StoreDistanceKm: pp.StoreDistanceKm,
				LastUpdated:     pp.LastUpdated,
			})
		}
		products = append(products, p)
	}
	return New(products)
}

// New validates products and builds a catalog from them.
func New(products []model.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]model.Product, 0, len(products)),
		index:    make(map[string]int, len(products)),
	}
	for _, p := range products {
		if err := validate(p); err != nil {
			return nil, err
		}
		if _, ok := c.index[p.ID]; ok {
			return nil, errors.Errorf("duplicate product id: %s", p.ID)
		}
		c.index[p.ID] = len(c.products)
		c.products = append(c.products, p.Clone())
	}
	return c, nil
}

func validate(p model.Product) error {
	if p.ID == "" {
		return errors.Errorf("product without id: %s", p.Name)
	}
	if p.IsGenerated() {
		return errors.Errorf("product id uses the reserved prefix %q: %s", model.GeneratedPrefix, p.ID)
	}
	if !p.Category.Valid() {
		return errors.Errorf("unknown category %q for product: %s", p.Category, p.ID)
	}
	for _, pp := range p.Prices {
		if !pp.Retailer.Valid() {
			return errors.Errorf("unknown retailer %q for product: %s", pp.Retailer, p.ID)
		}
		if pp.Price.IsNegative() {
			return errors.Errorf("negative price at %s for product: %s", pp.Retailer, p.ID)
		}
		if pp.StoreDistanceKm < 0 {
			return errors.Errorf("negative store distance at %s for product: %s", pp.Retailer, p.ID)
		}
	}
	return nil
}

func (c *Catalog) Len() int {
	return len(c.products)
}

// ListAll returns every product annotated with its current score.
func (c *Catalog) ListAll() []model.ScoredProduct {
	out := make([]model.ScoredProduct, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, health.Annotate(p))
	}
	return out
}

// FindByID looks only at the static catalog.
func (c *Catalog) FindByID(id string) (model.ScoredProduct, error) {
	i, ok := c.index[id]
	if !ok {
		return model.ScoredProduct{}, errors.Wrapf(model.ErrNotFound, "product %s not in catalog", id)
	}
	return health.Annotate(c.products[i]), nil
}
