package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"marketfront/auth"
	"marketfront/market"
)

// Catalog browsing is open to anonymous sessions; the token manager backs it
// with the shared client credential.

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.market.Products(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, products)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	product, err := s.market.Product(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, product)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.market.Categories(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCategoryProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.market.CategoryProducts(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, products)
}

// User-scoped routes require a logged-in principal; their calls ride on the
// principal's own token.

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.PrincipalFromContext(r.Context()); !ok {
		s.respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
		return
	}
	info, err := s.market.UserInformation(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, info)
}

func (s *Server) handlePurchases(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		s.respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
		return
	}
	products, err := s.market.Purchases(r.Context(), principal.ServiceID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, products)
}

func (s *Server) handlePublications(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		s.respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
		return
	}
	products, err := s.market.Publications(r.Context(), principal.ServiceID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, products)
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		s.respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
		return
	}
	quantity := 1
	if raw := r.PostFormValue("quantity"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.respondJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "quantity must be a positive integer"})
			return
		}
		quantity = parsed
	}
	transaction, err := s.market.PurchaseProduct(r.Context(), mux.Vars(r)["id"], principal.ServiceID, quantity)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, transaction)
}

// handlePublishProduct creates the product, files it under the chosen
// category and flips it to available, mirroring the Market publication flow.
func (s *Server) handlePublishProduct(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		s.respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
		return
	}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}
	title := r.FormValue("title")
	details := r.FormValue("details")
	category := r.FormValue("category")
	stock, err := strconv.Atoi(r.FormValue("stock"))
	if title == "" || details == "" || category == "" || err != nil || stock < 1 {
		s.respondJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "title, details, category and a positive stock are required"})
		return
	}
	file, header, err := r.FormFile("picture")
	if err != nil {
		s.respondJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "picture is required"})
		return
	}
	defer file.Close()

	ctx := r.Context()
	product, err := s.market.PublishProduct(ctx, principal.ServiceID, &market.NewProduct{
		Title:   title,
		Details: details,
		Stock:   stock,
		Picture: &market.Picture{Name: header.Filename, Content: file},
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.market.SetProductCategory(ctx, product.Identifier.String(), category); err != nil {
		s.respondError(w, r, err)
		return
	}
	updated, err := s.market.UpdateProduct(ctx, principal.ServiceID, product.Identifier.String(),
		map[string]string{"situation": "available"}, nil)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, updated)
}
