// Package resolver looks products up by id and searches the catalog,
// falling back to the enrichment service for queries the catalog cannot
// answer. Generated products are cached for the life of the process.
package resolver

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"shoppa/internal/client"
	"shoppa/internal/health"
	"shoppa/internal/model"
)

// ErrSuperseded is returned by a Search that was overtaken by a newer one
// while waiting on enrichment. Its result is dropped.
var ErrSuperseded = errors.New("search superseded")

type Catalog interface {
	ListAll() []model.ScoredProduct
	FindByID(id string) (model.ScoredProduct, error)
}

type logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
}

type SearchOptions struct {
	Query    string
	Category model.Category
	MinScore float64
	// MaxPrice bounds the cheapest price. Zero means no bound.
	MaxPrice decimal.Decimal
	Filter   string
	// Image replaces the placeholder image of a generated product.
	Image string
}

type Service struct {
	Logger   logger
	catalog  Catalog
	enricher client.Enricher

	mu        sync.Mutex
	generated map[string]model.Product
	programs  map[string]*vm.Program
	searchGen uint64
}

func New(c Catalog, e client.Enricher, l logger) *Service {
	return &Service{
		Logger:    l,
		catalog:   c,
		enricher:  e,
		generated: make(map[string]model.Product),
		programs:  make(map[string]*vm.Program),
	}
}

// Resolve looks in the catalog first, then among generated products.
func (s *Service) Resolve(_ context.Context, id string) (model.ScoredProduct, error) {
	p, err := s.catalog.FindByID(id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.ScoredProduct{}, err
	}

	s.mu.Lock()
	g, ok := s.generated[id]
	s.mu.Unlock()
	if !ok {
		return model.ScoredProduct{}, errors.Wrapf(model.ErrNotFound, "product %s", id)
	}
	return health.Annotate(g), nil
}

func (s *Service) Search(ctx context.Context, opts SearchOptions) ([]model.ScoredProduct, error) {
	s.mu.Lock()
	var prog *vm.Program
	if opts.Filter != "" {
		var err error
		if prog, err = s.program(opts.Filter); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}
	s.searchGen++
	gen := s.searchGen
	s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(opts.Query))
	out := []model.ScoredProduct{}
	for _, p := range s.catalog.ListAll() {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Brand), q) {
			continue
		}
		if opts.Category != "" && p.Category != opts.Category {
			continue
		}
		if p.Score < opts.MinScore {
			continue
		}
		if !opts.MaxPrice.IsZero() {
			if pp, ok := Cheapest(p.Product); !ok || pp.Price.GreaterThan(opts.MaxPrice) {
				continue
			}
		}
		if prog != nil {
			ok, err := match(prog, p)
			if err != nil {
				s.Logger.Warnf("Search: Error evaluating filter, product: %s, filter: %s, err: %v", p.ID, opts.Filter, err)
				continue
			}
			if !ok {
				continue
			}
		}
		out = append(out, p)
	}
	if len(out) > 0 || q == "" {
		return out, nil
	}

	s.Logger.Debugf("Search: No catalog match, asking enricher, query: %s", opts.Query)
	draft, err := s.enricher.GenerateFromQuery(ctx, opts.Query)
	if err != nil {
		s.Logger.Warnf("Search: Enrichment failed, query: %s, err: %v", opts.Query, err)
		return out, nil
	}
	if !draft.IsGenerated() {
		draft.ID = model.GeneratedPrefix + draft.ID
	}
	if opts.Image != "" {
		draft.Image = opts.Image
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.searchGen {
		s.Logger.Debugf("Search: Dropping superseded result, query: %s, id: %s", opts.Query, draft.ID)
		return nil, ErrSuperseded
	}
	s.generated[draft.ID] = draft.Clone()
	s.Logger.Infof("Search: Cached generated product, query: %s, id: %s", opts.Query, draft.ID)
	return []model.ScoredProduct{health.Annotate(draft)}, nil
}

// IdentifyImage returns the product name recognized in image.
func (s *Service) IdentifyImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	name, err := s.enricher.IdentifyFromImage(ctx, image, mimeType)
	if err != nil {
		s.Logger.Warnf("IdentifyImage: Identification failed, mime: %s, err: %v", mimeType, err)
		return "", err
	}
	return name, nil
}

// Explain returns a short explanation of the product's score. Enrichment
// failures degrade to a static message.
func (s *Service) Explain(ctx context.Context, id string) (string, error) {
	p, err := s.Resolve(ctx, id)
	if err != nil {
		return "", err
	}
	msg, err := s.enricher.ExplainScore(ctx, p)
	if err != nil {
		s.Logger.Warnf("Explain: Enrichment failed, id: %s, err: %v", id, err)
	}
	return msg, nil
}

// Cheapest returns the lowest price point. Ties go to the earliest one.
func Cheapest(p model.Product) (model.PricePoint, bool) {
	if len(p.Prices) == 0 {
		return model.PricePoint{}, false
	}
	best := p.Prices[0]
	for _, pp := range p.Prices[1:] {
		if pp.Price.LessThan(best.Price) {
			best = pp
		}
	}
	return best, true
}

// SortedPrices returns a copy of the prices, cheapest first.
func SortedPrices(p model.Product) []model.PricePoint {
	prices := append([]model.PricePoint(nil), p.Prices...)
	sort.SliceStable(prices, func(i, j int) bool {
		return prices[i].Price.LessThan(prices[j].Price)
	})
	return prices
}
