package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fullstack/catalog-sync/internal/catalog"
	"github.com/fullstack/catalog-sync/internal/store"
)

// productRequest is the inbound create/update shape. Price fields
// arrive as decimal strings and availability as a strict boolean
// string, matching the upstream catalog conventions.
type productRequest struct {
	Title          string            `json:"title"`
	Handle         string            `json:"handle"`
	Vendor         string            `json:"vendor"`
	ProductType    string            `json:"product_type"`
	Price          string            `json:"price"`
	CompareAtPrice string            `json:"compare_at_price"`
	SKU            string            `json:"sku"`
	Available      string            `json:"available"`
	Description    string            `json:"description"`
	ImageURL       string            `json:"image_url"`
	Variants       []catalog.Variant `json:"variants"`
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.FindAll(r.Context())
	if err != nil {
		s.internalError(w, "list products", err)
		return
	}
	s.writeJSON(w, http.StatusOK, products)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	product := req.toProduct()
	// New products default to available unless explicitly disabled.
	if parseStrictBool(req.Available) == nil {
		product.Available = true
	}

	saved, err := s.store.Save(r.Context(), product)
	if err != nil {
		s.internalError(w, "create product", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := s.productID(w, r)
	if !ok {
		return
	}
	product, found, err := s.store.FindByID(r.Context(), id)
	if err != nil {
		s.internalError(w, "get product", err)
		return
	}
	if !found {
		s.writeError(w, http.StatusNotFound, "product not found")
		return
	}
	s.writeJSON(w, http.StatusOK, product)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := s.productID(w, r)
	if !ok {
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	existing, found, err := s.store.FindByID(r.Context(), id)
	if err != nil {
		s.internalError(w, "update product", err)
		return
	}
	if !found {
		s.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	product := req.toProduct()
	product.ID = id
	// Availability only changes on an explicit "true"/"false".
	if avail := parseStrictBool(req.Available); avail != nil {
		product.Available = *avail
	} else {
		product.Available = existing.Available
	}

	updated, found, err := s.store.Update(r.Context(), product)
	if err != nil {
		s.internalError(w, "update product", err)
		return
	}
	if !found {
		s.writeError(w, http.StatusNotFound, "product not found")
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := s.productID(w, r)
	if !ok {
		return
	}
	removed, err := s.store.DeleteByID(r.Context(), id)
	if err != nil {
		s.internalError(w, "delete product", err)
		return
	}
	if !removed {
		s.writeError(w, http.StatusNotFound, "product not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearProducts(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAll(r.Context()); err != nil {
		s.internalError(w, "clear products", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) searchProducts(w http.ResponseWriter, r *http.Request) {
	filters, err := parseSearchFilters(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	products, err := s.store.FindByFilters(r.Context(), filters)
	if err != nil {
		s.internalError(w, "search products", err)
		return
	}
	s.writeJSON(w, http.StatusOK, products)
}

func (s *Server) listProductTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.store.DistinctProductTypes(r.Context())
	if err != nil {
		s.internalError(w, "list product types", err)
		return
	}
	if types == nil {
		types = []string{}
	}
	s.writeJSON(w, http.StatusOK, types)
}

func (s *Server) countProducts(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Count(r.Context())
	if err != nil {
		s.internalError(w, "count products", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (s *Server) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op+" failed", zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, "internal server error")
}

func (r productRequest) toProduct() catalog.Product {
	p := catalog.Product{
		Title:          strings.TrimSpace(r.Title),
		Handle:         r.Handle,
		Vendor:         r.Vendor,
		ProductType:    r.ProductType,
		Price:          catalog.ParsePrice(r.Price),
		CompareAtPrice: catalog.ParsePrice(r.CompareAtPrice),
		SKU:            r.SKU,
		Description:    r.Description,
		ImageURL:       r.ImageURL,
		Variants:       r.Variants,
	}
	if avail := parseStrictBool(r.Available); avail != nil {
		p.Available = *avail
	}
	return p
}

// parseSearchFilters converts query parameters into typed criteria.
// Absent parameters stay absent; malformed values are rejected rather
// than coerced to zero.
func parseSearchFilters(r *http.Request) (store.Filters, error) {
	var f store.Filters
	q := r.URL.Query()

	if term := q.Get("q"); term != "" {
		f.Title = &term
	}
	if pt := q.Get("product_type"); pt != "" {
		f.ProductType = &pt
	}
	if raw := q.Get("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return store.Filters{}, fmt.Errorf("min_price must be a number")
		}
		f.MinPrice = &v
	}
	if raw := q.Get("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return store.Filters{}, fmt.Errorf("max_price must be a number")
		}
		f.MaxPrice = &v
	}
	if raw := q.Get("available"); raw != "" {
		avail := parseStrictBool(raw)
		if avail == nil {
			return store.Filters{}, fmt.Errorf("available must be true or false")
		}
		f.Available = avail
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return store.Filters{}, fmt.Errorf("min_price must not exceed max_price")
	}
	return f, nil
}

// parseStrictBool accepts exactly "true" or "false"; any other value
// means the flag was not provided.
func parseStrictBool(s string) *bool {
	switch s {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	default:
		return nil
	}
}
