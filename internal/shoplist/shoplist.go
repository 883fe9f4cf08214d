// Package shoplist keeps the shopping list of whichever identity is active.
//
// The store is a two-state machine: Unbound until the first SetIdentity
// completes its load, then Bound to the key it loaded. Writes reach the
// key-value store only while the bound key is also the active one, so a
// list that still reflects the previous identity can never overwrite the
// next identity's saved list.
package shoplist

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"shoppa/internal/database"
	"shoppa/internal/misc"
	"shoppa/internal/model"
)

const (
	keyPrefix = "list:"
	// AnonymousID keys the list used before any identity is known.
	AnonymousID = "_anonymous"
)

type logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

// Key returns the key-value store key holding the list of id.
func Key(id *model.Identity) string {
	if id == nil || id.ID == "" {
		return keyPrefix + AnonymousID
	}
	return keyPrefix + id.ID
}

type RetailerGroup struct {
	Retailer model.Retailer   `json:"retailer"`
	Items    []model.ListItem `json:"items"`
	Subtotal decimal.Decimal  `json:"subtotal"`
	Count    int              `json:"count"`
}

type Diagnostics struct {
	Bound          bool   `json:"bound"`
	Scope          string `json:"scope"`
	Active         string `json:"active"`
	Violations     int    `json:"violations"`
	LastViolation  string `json:"last_violation,omitempty"`
	DiscardedLoads int    `json:"discarded_loads"`
	LoadFailures   int    `json:"load_failures"`
}

type Store struct {
	Logger logger
	kv     database.Store

	mu      sync.Mutex
	bound   bool
	scope   string
	active  string
	items   []model.ListItem
	loadGen uint64
	diag    Diagnostics
}

func New(kv database.Store, l logger) *Store {
	return &Store{Logger: l, kv: kv}
}

// SetIdentity makes id the active identity and binds the list to it once
// its saved list is loaded. Calling it again for the bound identity is a
// no-op. A load overtaken by a newer SetIdentity is dropped.
func (s *Store) SetIdentity(ctx context.Context, id *model.Identity) {
	key := Key(id)

	s.mu.Lock()
	if s.bound && s.scope == key {
		if s.active != key {
			// Back to the bound identity before another load finished.
			s.active = key
			s.loadGen++
		}
		s.mu.Unlock()
		return
	}
	s.active = key
	s.loadGen++
	gen := s.loadGen
	s.mu.Unlock()

	// A cancelled caller must not turn into an empty bound list.
	items, err := s.load(context.WithoutCancel(ctx), key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.loadGen {
		s.diag.DiscardedLoads++
		s.Logger.Debugf("SetIdentity: Discarding superseded load, key: %s", key)
		return
	}
	if err != nil {
		s.diag.LoadFailures++
		s.Logger.Warnf("SetIdentity: Starting with an empty list, key: %s, err: %v", key, err)
	}
	s.items = items
	s.scope = key
	s.bound = true
	s.Logger.Debugf("SetIdentity: Bound list, key: %s, items: %d", key, len(items))
}

func (s *Store) load(ctx context.Context, key string) ([]model.ListItem, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var items []model.ListItem
	if err = json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, errors.Wrapf(model.ErrMalformedState, "list %s: %v, data: %s", key, err, misc.StringLimit(raw, 80))
	}
	return items, nil
}

// mutate applies f to a copy of the list and saves it. The copy replaces the
// list only once the save succeeds. A mutation is discarded and recorded as a
// violation when the list is not bound to the active identity.
func (s *Store) mutate(ctx context.Context, op string, f func(items []model.ListItem) []model.ListItem) (applied bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.bound || s.scope != s.active {
		s.diag.Violations++
		s.diag.LastViolation = errors.Wrapf(model.ErrInvariantViolation,
			"%s: scope %q, active %q", op, s.scope, s.active).Error()
		s.Logger.Warnf("%s: Discarding mutation, scope: %q, active: %q", op, s.scope, s.active)
		return false, nil
	}
	next := f(append([]model.ListItem{}, s.items...))

	data, err := json.Marshal(next)
	if err != nil {
		return false, errors.Wrapf(err, "error encoding list: %s", s.scope)
	}
	if err = s.kv.Set(ctx, s.scope, string(data)); err != nil {
		s.Logger.Errorf("%s: Error saving list, key: %s, err: %v", op, s.scope, err)
		return false, errors.WithMessagef(err, "error saving list: %s", s.scope)
	}
	s.items = next
	return true, nil
}

// AddOrToggle adds an entry for p at pp's retailer, or removes it if the
// pair is already on the list. added reports which happened; it is false
// whenever the list was left unchanged.
func (s *Store) AddOrToggle(ctx context.Context, p model.Product, pp model.PricePoint) (added bool, err error) {
	id := model.ListItemID(p.ID, pp.Retailer)
	var adding bool
	applied, err := s.mutate(ctx, "AddOrToggle", func(items []model.ListItem) []model.ListItem {
		for i, it := range items {
			if it.ID == id {
				return append(items[:i], items[i+1:]...)
			}
		}
		adding = true
		return append(items, model.NewListItem(p, pp))
	})
	return applied && adding, err
}

func (s *Store) Remove(ctx context.Context, itemID string) error {
	_, err := s.mutate(ctx, "Remove", func(items []model.ListItem) []model.ListItem {
		kept := items[:0]
		for _, it := range items {
			if it.ID != itemID {
				kept = append(kept, it)
			}
		}
		return kept
	})
	return err
}

func (s *Store) ToggleChecked(ctx context.Context, itemID string) error {
	_, err := s.mutate(ctx, "ToggleChecked", func(items []model.ListItem) []model.ListItem {
		for i := range items {
			if items[i].ID == itemID {
				items[i].Checked = !items[i].Checked
				break
			}
		}
		return items
	})
	return err
}

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.mutate(ctx, "Clear", func([]model.ListItem) []model.ListItem {
		return []model.ListItem{}
	})
	return err
}

// Contains reports whether the product is on the list. An empty retailer
// matches any retailer.
func (s *Store) Contains(productID string, retailer model.Retailer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ProductID == productID && (retailer == "" || it.Retailer == retailer) {
			return true
		}
	}
	return false
}

func (s *Store) Items() []model.ListItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ListItem{}, s.items...)
}

// Groups partitions the list by retailer in order of first appearance.
func (s *Store) Groups() []RetailerGroup {
	s.mu.Lock()
	defer s.mu.Unlock()

	var groups []RetailerGroup
	index := map[model.Retailer]int{}
	for _, it := range s.items {
		i, ok := index[it.Retailer]
		if !ok {
			i = len(groups)
			index[it.Retailer] = i
			groups = append(groups, RetailerGroup{Retailer: it.Retailer, Subtotal: decimal.Zero})
		}
		g := &groups[i]
		g.Items = append(g.Items, it)
		g.Subtotal = g.Subtotal.Add(it.Price)
		g.Count++
	}
	return groups
}

func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.Price)
	}
	return total
}

func (s *Store) Diagnostics() Diagnostics {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.diag
	d.Bound = s.bound
	d.Scope = s.scope
	d.Active = s.active
	return d
}
