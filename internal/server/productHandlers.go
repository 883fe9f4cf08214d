package server

import (
	"context"
	"encoding/base64"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"shoppa/internal/health"
	"shoppa/internal/model"
	"shoppa/internal/resolver"
)

func (s Server) enrichmentContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.EnrichmentTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.EnrichmentTimeout)
}

func (s Server) productList() http.HandlerFunc {
	type response struct {
		Products []model.ScoredProduct `json:"products"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		category := model.Category(r.URL.Query().Get("category"))
		resp := response{Products: []model.ScoredProduct{}}
		for _, p := range s.Catalog.ListAll() {
			if category == "" || p.Category == category {
				resp.Products = append(resp.Products, p)
			}
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}

func (s Server) productGet() http.HandlerFunc {
	type response struct {
		model.ScoredProduct
		Cheapest     *model.PricePoint   `json:"cheapest"`
		SortedPrices []model.PricePoint  `json:"sorted_prices"`
		Breakdown    []health.Adjustment `json:"score_breakdown"`
		InList       bool                `json:"in_list"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		p, err := s.Resolver.Resolve(r.Context(), id)
		if err != nil {
			s.writeResolveError(w, r, "productGet", id, err)
			return
		}
		resp := response{
			ScoredProduct: p,
			SortedPrices:  resolver.SortedPrices(p.Product),
			Breakdown:     health.Breakdown(p.Nutrition),
			InList:        s.Lists.Contains(p.ID, ""),
		}
		if pp, ok := resolver.Cheapest(p.Product); ok {
			resp.Cheapest = &pp
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}

func (s Server) productExplain() http.HandlerFunc {
	type response struct {
		ID          string `json:"id"`
		Explanation string `json:"explanation"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		ctx, cancel := s.enrichmentContext(r.Context())
		defer cancel()

		msg, err := s.Resolver.Explain(ctx, id)
		if err != nil {
			s.writeResolveError(w, r, "productExplain", id, err)
			return
		}
		s.writeJsonResponse(w, response{ID: id, Explanation: msg}, http.StatusOK)
	}
}

func (s Server) writeResolveError(w http.ResponseWriter, r *http.Request, handler, id string, err error) {
	tid := getTraceContext(r.Context()).traceID
	if errors.Is(err, model.ErrNotFound) {
		s.Logger.Debugf("%s: Product not found, id: %s, TraceID: %s", handler, id, tid)
		s.writeJsonError(w, "product not found", http.StatusNotFound)
		return
	}
	s.Logger.Errorf("%s: Error resolving product, id: %s, err: %v, TraceID: %s", handler, id, err, tid)
	s.writeJsonError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s Server) productSearch() http.HandlerFunc {
	type response struct {
		Query   string                `json:"query"`
		Results []model.ScoredProduct `json:"results"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		q := r.URL.Query()
		opts := resolver.SearchOptions{
			Query:    q.Get("q"),
			Category: model.Category(q.Get("category")),
			Filter:   q.Get("filter"),
		}
		if opts.Category != "" && !opts.Category.Valid() {
			s.writeJsonError(w, "unknown category", http.StatusBadRequest)
			return
		}
		if v := q.Get("min_score"); v != "" {
			score, err := strconv.ParseFloat(v, 64)
			if err == nil && (math.IsNaN(score) || math.IsInf(score, 0)) {
				err = errors.Errorf("not a finite number")
			}
			if err != nil {
				s.Logger.Debugf("productSearch: Bad min_score: %s, err: %v, TraceID: %s", v, err, tid)
				s.writeJsonError(w, "invalid min_score", http.StatusBadRequest)
				return
			}
			opts.MinScore = score
		}
		if v := q.Get("max_price"); v != "" {
			price, err := decimal.NewFromString(v)
			if err != nil || price.IsNegative() {
				s.Logger.Debugf("productSearch: Bad max_price: %s, err: %v, TraceID: %s", v, err, tid)
				s.writeJsonError(w, "invalid max_price", http.StatusBadRequest)
				return
			}
			opts.MaxPrice = price
		}

		ctx, cancel := s.enrichmentContext(r.Context())
		defer cancel()
		results, err := s.Resolver.Search(ctx, opts)
		if err != nil {
			s.writeSearchError(w, tid, "productSearch", err)
			return
		}
		s.writeJsonResponse(w, response{Query: opts.Query, Results: results}, http.StatusOK)
	}
}

func (s Server) writeSearchError(w http.ResponseWriter, tid, handler string, err error) {
	switch {
	case errors.Is(err, resolver.ErrInvalidFilter):
		s.Logger.Debugf("%s: Invalid filter, err: %v, TraceID: %s", handler, err, tid)
		s.writeJsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, resolver.ErrSuperseded):
		s.Logger.Debugf("%s: Search superseded, TraceID: %s", handler, tid)
		s.writeJsonError(w, "superseded by a newer search", http.StatusConflict)
	default:
		s.Logger.Errorf("%s: Error searching, err: %v, TraceID: %s", handler, err, tid)
		s.writeJsonError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// productIdentify names the product in a photo and searches for it. The
// photo becomes the image of a generated product.
func (s Server) productIdentify() http.HandlerFunc {
	type request struct {
		Image    string `json:"image"`
		MimeType string `json:"mime_type"`
	}
	type response struct {
		Name    string                `json:"name"`
		Results []model.ScoredProduct `json:"results"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		req := request{}
		if !s.decodeJson(w, r, &req, "productIdentify") {
			return
		}
		if !strings.HasPrefix(req.MimeType, "image/") {
			s.writeJsonError(w, "mime_type must be an image type", http.StatusBadRequest)
			return
		}
		img, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil || len(img) == 0 {
			s.Logger.Debugf("productIdentify: Bad image payload, err: %v, TraceID: %s", err, tid)
			s.writeJsonError(w, "image must be non-empty base64", http.StatusBadRequest)
			return
		}

		ctx, cancel := s.enrichmentContext(r.Context())
		defer cancel()

		resp := response{Results: []model.ScoredProduct{}}
		name, err := s.Resolver.IdentifyImage(ctx, img, req.MimeType)
		if err != nil {
			s.Logger.Infof("productIdentify: Could not identify product, err: %v, TraceID: %s", err, tid)
			s.writeJsonResponse(w, resp, http.StatusOK)
			return
		}
		resp.Name = name
		resp.Results, err = s.Resolver.Search(ctx, resolver.SearchOptions{
			Query: name,
			Image: "data:" + req.MimeType + ";base64," + req.Image,
		})
		if err != nil {
			s.writeSearchError(w, tid, "productIdentify", err)
			return
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}
