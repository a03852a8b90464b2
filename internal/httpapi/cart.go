package httpapi

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/ahinestrog/shoppyglobe/internal/cart"
)

const (
	msgMissingCartFields = "Missing required fields: productId, quantity"
	msgBadQuantity       = "Quantity must be a positive integer"
	msgProductIDRequired = "ProductId is required"
	msgConflict          = "Cart was modified concurrently, please retry"
)

type cartRequest struct {
	ProductID string   `json:"productId"`
	Quantity  *float64 `json:"quantity"`
}

type cartResponse struct {
	Message string     `json:"message"`
	Cart    *cart.Cart `json:"cart"`
}

// parse returns the message to answer 400 with, or "" when the request is usable.
func (req *cartRequest) parse() (string, int) {
	if strings.TrimSpace(req.ProductID) == "" || req.Quantity == nil {
		return msgMissingCartFields, 0
	}
	q := *req.Quantity
	if q < 1 || q != math.Trunc(q) || q > math.MaxInt32 {
		return msgBadQuantity, 0
	}
	return "", int(q)
}

func (a *api) getCart(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	c, err := a.cart.Get(r.Context())
	if err != nil {
		writeCartError(w, r, err, "Failed to fetch cart")
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{Message: "Cart fetched", Cart: c})
}

func (a *api) addToCart(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req cartRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgMissingCartFields)
		return
	}
	msg, qty := req.parse()
	if msg != "" {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}
	c, err := a.cart.Add(r.Context(), req.ProductID, qty)
	if err != nil {
		writeCartError(w, r, err, "Failed to add product to cart")
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{Message: "Product added to cart", Cart: c})
}

func (a *api) updateCart(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req cartRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgMissingCartFields)
		return
	}
	msg, qty := req.parse()
	if msg != "" {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}
	c, err := a.cart.Update(r.Context(), req.ProductID, qty)
	if err != nil {
		writeCartError(w, r, err, "Failed to update product quantity")
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{Message: "Product quantity updated", Cart: c})
}

// removeFromCart takes productId from the body, falling back to the query
// string for clients that do not send DELETE bodies.
func (a *api) removeFromCart(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req cartRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgProductIDRequired)
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		req.ProductID = r.URL.Query().Get("productId")
	}
	if strings.TrimSpace(req.ProductID) == "" {
		writeMessage(w, http.StatusBadRequest, msgProductIDRequired)
		return
	}
	c, err := a.cart.Remove(r.Context(), req.ProductID)
	if err != nil {
		writeCartError(w, r, err, "Failed to remove product from cart")
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{Message: "Product removed from cart", Cart: c})
}

func writeCartError(w http.ResponseWriter, r *http.Request, err error, internal string) {
	switch {
	case errors.Is(err, cart.ErrProductIDRequired):
		writeMessage(w, http.StatusBadRequest, msgMissingCartFields)
	case errors.Is(err, cart.ErrInvalidQuantity):
		writeMessage(w, http.StatusBadRequest, msgBadQuantity)
	case errors.Is(err, cart.ErrCartNotFound):
		writeMessage(w, http.StatusNotFound, "Cart not found")
	case errors.Is(err, cart.ErrItemNotFound):
		writeMessage(w, http.StatusNotFound, "Product not found in cart")
	case errors.Is(err, cart.ErrConflict):
		writeMessage(w, http.StatusConflict, msgConflict)
	default:
		writeInternal(w, r, err, internal)
	}
}
