package httpapi

import (
	"context"

	"github.com/ahinestrog/shoppyglobe/internal/auth"
	"github.com/ahinestrog/shoppyglobe/internal/cart"
	"github.com/ahinestrog/shoppyglobe/internal/catalog"
)

type CartStore interface {
	Get(ctx context.Context) (*cart.Cart, error)
	Add(ctx context.Context, productID string, quantity int) (*cart.Cart, error)
	Update(ctx context.Context, productID string, quantity int) (*cart.Cart, error)
	Remove(ctx context.Context, productID string) (*cart.Cart, error)
}

type ProductFinder interface {
	FindAll(ctx context.Context) ([]catalog.Product, error)
	FindByID(ctx context.Context, id string) (*catalog.Product, error)
}

type Accounts interface {
	Register(ctx context.Context, userName, password string) error
	Login(ctx context.Context, userName, password string) (string, error)
}

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}
