package resolver

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"

	"shoppa/internal/model"
)

var ErrInvalidFilter = errors.New("invalid filter expression")

// filterEnv builds the variables a filter expression can refer to.
func filterEnv(p model.ScoredProduct) map[string]any {
	retailers := make([]string, 0, len(p.Prices))
	inStock := false
	for _, pp := range p.Prices {
		retailers = append(retailers, string(pp.Retailer))
		inStock = inStock || pp.InStock
	}
	cheapest := 0.0
	if pp, ok := Cheapest(p.Product); ok {
		cheapest = pp.Price.InexactFloat64()
	}
	n := p.Nutrition
	return map[string]any{
		"name":          p.Name,
		"brand":         p.Brand,
		"category":      string(p.Category),
		"score":         p.Score,
		"cheapest":      cheapest,
		"in_stock":      inStock,
		"retailers":     retailers,
		"sugar":         n.SugarG,
		"saturated_fat": n.SaturatedFatG,
		"sodium":        n.SodiumMg,
		"protein":       n.ProteinG,
		"fiber":         n.FiberG,
		"energy":        n.EnergyKJ,
	}
}

// program returns the compiled filter, compiling and caching it on first use.
// Callers hold s.mu.
func (s *Service) program(code string) (*vm.Program, error) {
	if prog, ok := s.programs[code]; ok {
		return prog, nil
	}
	prog, err := expr.Compile(code, expr.Env(filterEnv(model.ScoredProduct{})), expr.AsBool())
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidFilter, "%q: %v", code, err)
	}
	s.programs[code] = prog
	return prog, nil
}

func match(prog *vm.Program, p model.ScoredProduct) (bool, error) {
	out, err := expr.Run(prog, filterEnv(p))
	if err != nil {
		return false, err
	}
	ok, _ := out.(bool)
	return ok, nil
}
