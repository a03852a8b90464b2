package httpapi

import (
	"errors"
	"net/http"

	"github.com/ahinestrog/shoppyglobe/internal/catalog"
)

func (a *api) listProducts(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	products, err := a.products.FindAll(r.Context())
	if err != nil {
		writeInternal(w, r, err, "Failed to fetch products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (a *api) getProduct(w http.ResponseWriter, r *http.Request, params map[string]string) {
	p, err := a.products.FindByID(r.Context(), params["id"])
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Product not found")
	case err != nil:
		writeInternal(w, r, err, "Failed to fetch product")
	default:
		writeJSON(w, http.StatusOK, p)
	}
}
