// Package cart owns the single shared shopping cart and the add, update and
// remove operations over its line items.
//
// Every mutation is a read-modify-write against the Repository guarded by an
// optimistic version check. A conflicting write is retried from a fresh read
// up to the configured number of attempts; after that ErrConflict is
// returned and the stored cart is left as the winning writer made it.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const defaultMaxAttempts = 2

type Store struct {
	repo        Repository
	events      Events
	cartID      string
	maxAttempts int
}

type Option func(*Store)

// WithCartID stores the cart under id instead of DefaultCartID.
func WithCartID(id string) Option {
	return func(s *Store) {
		if strings.TrimSpace(id) != "" {
			s.cartID = id
		}
	}
}

// WithMaxAttempts bounds the read-modify-write attempts per operation.
func WithMaxAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithEvents(ev Events) Option {
	return func(s *Store) { s.events = ev }
}

func NewStore(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:        repo,
		cartID:      DefaultCartID,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) CartID() string { return s.cartID }

func (s *Store) Get(ctx context.Context) (*Cart, error) {
	return s.repo.Get(ctx, s.cartID)
}

// Add puts quantity units of productID in the cart, creating the cart on
// first use. An existing line is incremented rather than duplicated.
func (s *Store) Add(ctx context.Context, productID string, quantity int) (*Cart, error) {
	if err := validate(productID, quantity); err != nil {
		return nil, err
	}
	var line Item
	c, err := s.mutate(ctx, true, func(c *Cart) error {
		line = c.merge(productID, quantity)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, RKItemAdded, ItemEvent{
		CartID: c.ID, ProductID: productID, Quantity: line.Quantity, Delta: quantity, Version: c.Version,
	})
	return c, nil
}

// Update overwrites the quantity of a line already in the cart.
func (s *Store) Update(ctx context.Context, productID string, quantity int) (*Cart, error) {
	if err := validate(productID, quantity); err != nil {
		return nil, err
	}
	c, err := s.mutate(ctx, false, func(c *Cart) error {
		_, err := c.setQuantity(productID, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, RKItemUpdated, ItemEvent{
		CartID: c.ID, ProductID: productID, Quantity: quantity, Version: c.Version,
	})
	return c, nil
}

// Remove deletes the line for productID. Removing a product that is not in
// the cart is ErrItemNotFound, so a repeated Remove fails the second time.
func (s *Store) Remove(ctx context.Context, productID string) (*Cart, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, ErrProductIDRequired
	}
	var removed Item
	c, err := s.mutate(ctx, false, func(c *Cart) error {
		var err error
		removed, err = c.remove(productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, RKItemRemoved, ItemEvent{
		CartID: c.ID, ProductID: productID, Quantity: removed.Quantity, Version: c.Version,
	})
	return c, nil
}

func (s *Store) mutate(ctx context.Context, create bool, fn func(*Cart) error) (*Cart, error) {
	for attempt := 1; ; attempt++ {
		c, err := s.repo.Get(ctx, s.cartID)
		switch {
		case errors.Is(err, ErrCartNotFound) && create:
			c = newCart(s.cartID)
			if err := fn(c); err != nil {
				return nil, err
			}
			err = s.repo.Create(ctx, c)
		case err != nil:
			return nil, err
		default:
			// fn must not leave a half-applied change behind on error.
			work := c.clone()
			if err := fn(work); err != nil {
				return nil, err
			}
			c = work
			err = s.repo.Save(ctx, c)
		}

		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, fmt.Errorf("persist cart %s: %w", s.cartID, err)
		}
		if attempt >= s.maxAttempts {
			return nil, fmt.Errorf("%w after %d attempts", ErrConflict, attempt)
		}
		log.Debug().Str("cart_id", s.cartID).Int("attempt", attempt).Msg("cart version conflict, retrying")
	}
}

func (s *Store) publish(ctx context.Context, key string, ev ItemEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, ev); err != nil {
		log.Warn().Err(err).Str("rk", key).Msg("publish cart event failed")
	}
}

func validate(productID string, quantity int) error {
	if strings.TrimSpace(productID) == "" {
		return ErrProductIDRequired
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}
