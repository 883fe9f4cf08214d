package server

import (
	"net/http"

	"github.com/shopspring/decimal"

	"shoppa/internal/model"
	"shoppa/internal/shoplist"
)

type listResponse struct {
	Items []model.ListItem `json:"items"`
	Total decimal.Decimal  `json:"total"`
}

func (s Server) currentList() listResponse {
	return listResponse{Items: s.Lists.Items(), Total: s.Lists.Total()}
}

func (s Server) listGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJsonResponse(w, s.currentList(), http.StatusOK)
	}
}

func (s Server) listGroups() http.HandlerFunc {
	type response struct {
		Groups []shoplist.RetailerGroup `json:"groups"`
		Total  decimal.Decimal          `json:"total"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		groups := s.Lists.Groups()
		if groups == nil {
			groups = []shoplist.RetailerGroup{}
		}
		s.writeJsonResponse(w, response{Groups: groups, Total: s.Lists.Total()}, http.StatusOK)
	}
}

func (s Server) listContains() http.HandlerFunc {
	type response struct {
		Contains bool `json:"contains"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		productID := q.Get("product_id")
		if productID == "" {
			s.writeJsonError(w, "product_id is required", http.StatusBadRequest)
			return
		}
		retailer := model.Retailer(q.Get("retailer"))
		s.writeJsonResponse(w, response{Contains: s.Lists.Contains(productID, retailer)}, http.StatusOK)
	}
}

func (s Server) listDiagnostics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJsonResponse(w, s.Lists.Diagnostics(), http.StatusOK)
	}
}

func (s Server) listToggle() http.HandlerFunc {
	type request struct {
		ProductID string         `json:"product_id"`
		Retailer  model.Retailer `json:"retailer"`
	}
	type response struct {
		Added bool `json:"added"`
		listResponse
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		req := request{}
		if !s.decodeJson(w, r, &req, "listToggle") {
			return
		}
		p, err := s.Resolver.Resolve(r.Context(), req.ProductID)
		if err != nil {
			s.writeResolveError(w, r, "listToggle", req.ProductID, err)
			return
		}
		pp, ok := p.PriceAt(req.Retailer)
		if !ok {
			s.Logger.Debugf("listToggle: Product %s not sold at %s, TraceID: %s", p.ID, req.Retailer, tid)
			s.writeJsonError(w, "product is not sold at that retailer", http.StatusNotFound)
			return
		}
		added, err := s.Lists.AddOrToggle(r.Context(), p.Product, pp)
		if err != nil {
			s.Logger.Errorf("listToggle: Error saving list, err: %v, TraceID: %s", err, tid)
			s.writeJsonError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Added: added, listResponse: s.currentList()}, http.StatusOK)
	}
}

type itemRequest struct {
	ItemID string `json:"item_id"`
}

func (s Server) listRemove() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := itemRequest{}
		if !s.decodeJson(w, r, &req, "listRemove") {
			return
		}
		if err := s.Lists.Remove(r.Context(), req.ItemID); err != nil {
			s.Logger.Errorf("listRemove: Error saving list, err: %v, TraceID: %s", err, getTraceContext(r.Context()).traceID)
			s.writeJsonError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, s.currentList(), http.StatusOK)
	}
}

func (s Server) listCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := itemRequest{}
		if !s.decodeJson(w, r, &req, "listCheck") {
			return
		}
		if err := s.Lists.ToggleChecked(r.Context(), req.ItemID); err != nil {
			s.Logger.Errorf("listCheck: Error saving list, err: %v, TraceID: %s", err, getTraceContext(r.Context()).traceID)
			s.writeJsonError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, s.currentList(), http.StatusOK)
	}
}

func (s Server) listClear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Lists.Clear(r.Context()); err != nil {
			s.Logger.Errorf("listClear: Error saving list, err: %v, TraceID: %s", err, getTraceContext(r.Context()).traceID)
			s.writeJsonError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, s.currentList(), http.StatusOK)
	}
}
