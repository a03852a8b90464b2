// Package httpapi is the JSON REST surface: cart, products, registration and
// login, plus a liveness probe.
package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

type Deps struct {
	Cart        CartStore
	Products    ProductFinder
	Accounts    Accounts
	Tokens      TokenVerifier
	CORSOrigins []string
	Logger      zerolog.Logger
}

type api struct {
	cart     CartStore
	products ProductFinder
	accounts Accounts
}

type route struct {
	method  string
	path    string
	private bool
	handler runtime.HandlerFunc
}

// NewHandler builds the router and wraps it with CORS, tracing and request
// logging.
func NewHandler(d Deps) (http.Handler, error) {
	a := &api{cart: d.Cart, products: d.Products, accounts: d.Accounts}

	mux := runtime.NewServeMux(runtime.WithRoutingErrorHandler(routingError))
	routes := []route{
		{http.MethodGet, "/healthz", false, a.healthz},
		{http.MethodPost, "/register", false, a.register},
		{http.MethodPost, "/login", false, a.login},
		{http.MethodGet, "/products", true, a.listProducts},
		{http.MethodGet, "/products/{id}", true, a.getProduct},
		{http.MethodGet, "/cart", true, a.getCart},
		{http.MethodPost, "/cart", true, a.addToCart},
		{http.MethodPut, "/cart", true, a.updateCart},
		{http.MethodDelete, "/cart", true, a.removeFromCart},
	}
	for _, rt := range routes {
		h := rt.handler
		if rt.private {
			h = protected(d.Tokens, h)
		}
		if err := mux.HandlePath(rt.method, rt.path, h); err != nil {
			return nil, fmt.Errorf("register %s %s: %w", rt.method, rt.path, err)
		}
	}

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	var h http.Handler = c.Handler(mux)
	h = traced(h)
	h = hlog.RequestIDHandler("req_id", "X-Request-Id")(h)
	h = accessLog(h)
	h = hlog.NewHandler(d.Logger)(h)
	return h, nil
}

func routingError(_ context.Context, _ *runtime.ServeMux, _ runtime.Marshaler, w http.ResponseWriter, _ *http.Request, status int) {
	switch status {
	case http.StatusMethodNotAllowed:
		writeMessage(w, status, "Method not allowed")
	case http.StatusBadRequest:
		writeMessage(w, status, "Bad request")
	default:
		writeMessage(w, http.StatusNotFound, "Route not found")
	}
}

func (a *api) healthz(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
