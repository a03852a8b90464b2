package cart_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahinestrog/shoppyglobe/internal/cart"
	"github.com/ahinestrog/shoppyglobe/internal/storage"
)

func openRepo(t *testing.T) *cart.SQLiteRepo {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, storage.DriverModernc, filepath.Join(t.TempDir(), "cart.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := cart.NewSQLiteRepo(db)
	require.NoError(t, repo.Init(ctx))
	return repo
}

func newStore(t *testing.T, opts ...cart.Option) *cart.Store {
	t.Helper()
	return cart.NewStore(openRepo(t), opts...)
}

func TestAddNewProductCreatesCart(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Get(ctx)
	require.ErrorIs(t, err, cart.ErrCartNotFound)

	c, err := s.Add(ctx, "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, cart.DefaultCartID, c.ID)
	assert.Equal(t, []cart.Item{{ProductID: "p1", Quantity: 2}}, c.Items)

	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.Items, got.Items)
}

func TestAddExistingProductMergesQuantity(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Add(ctx, "p1", 2)
	require.NoError(t, err)
	c, err := s.Add(ctx, "p1", 3)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestAddAppendsPreservingOrder(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for _, id := range []string{"p3", "p1", "p2"} {
		_, err := s.Add(ctx, id, 1)
		require.NoError(t, err)
	}
	c, err := s.Add(ctx, "p1", 4)
	require.NoError(t, err)

	assert.Equal(t, []cart.Item{
		{ProductID: "p3", Quantity: 1},
		{ProductID: "p1", Quantity: 5},
		{ProductID: "p2", Quantity: 1},
	}, c.Items)
}

func TestAddRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	t.Run("empty product id", func(t *testing.T) {
		_, err := s.Add(ctx, "  ", 1)
		assert.ErrorIs(t, err, cart.ErrProductIDRequired)
	})
	t.Run("zero quantity", func(t *testing.T) {
		_, err := s.Add(ctx, "p1", 0)
		assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
	})
	t.Run("negative quantity", func(t *testing.T) {
		_, err := s.Add(ctx, "p1", -3)
		assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
	})

	_, err := s.Get(ctx)
	assert.ErrorIs(t, err, cart.ErrCartNotFound, "rejected adds must not create the cart")
}

func TestUpdateOverwritesQuantity(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Add(ctx, "p1", 7)
	require.NoError(t, err)

	c, err := s.Update(ctx, "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, []cart.Item{{ProductID: "p1", Quantity: 2}}, c.Items)
}

func TestUpdateErrors(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Update(ctx, "p1", 1)
	require.ErrorIs(t, err, cart.ErrCartNotFound)

	_, err = s.Add(ctx, "p1", 1)
	require.NoError(t, err)

	_, err = s.Update(ctx, "p2", 4)
	require.ErrorIs(t, err, cart.ErrItemNotFound)

	_, err = s.Update(ctx, "p1", 0)
	require.ErrorIs(t, err, cart.ErrInvalidQuantity)

	c, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []cart.Item{{ProductID: "p1", Quantity: 1}}, c.Items, "failed updates leave the cart unchanged")
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Remove(ctx, "p1")
	require.ErrorIs(t, err, cart.ErrCartNotFound)

	for _, id := range []string{"a", "b", "c"} {
		_, err := s.Add(ctx, id, 1)
		require.NoError(t, err)
	}

	c, err := s.Remove(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []cart.Item{{ProductID: "a", Quantity: 1}, {ProductID: "c", Quantity: 1}}, c.Items)

	_, err = s.Remove(ctx, "b")
	require.ErrorIs(t, err, cart.ErrItemNotFound, "remove is not idempotent")

	_, err = s.Remove(ctx, "")
	require.ErrorIs(t, err, cart.ErrProductIDRequired)
}

func TestCartScenario(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	c, err := s.Add(ctx, "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, []cart.Item{{ProductID: "p1", Quantity: 2}}, c.Items)

	c, err = s.Add(ctx, "p1", 3)
	require.NoError(t, err)
	assert.Equal(t, []cart.Item{{ProductID: "p1", Quantity: 5}}, c.Items)

	c, err = s.Update(ctx, "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, []cart.Item{{ProductID: "p1", Quantity: 1}}, c.Items)

	c, err = s.Remove(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.NotNil(t, c.Items)

	// the cart document outlives its last item
	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestStoresWithDifferentIDsAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)
	a := cart.NewStore(repo, cart.WithCartID("a"))
	b := cart.NewStore(repo, cart.WithCartID("b"))

	_, err := a.Add(ctx, "p1", 1)
	require.NoError(t, err)

	_, err = b.Get(ctx)
	assert.ErrorIs(t, err, cart.ErrCartNotFound)
	assert.Equal(t, "a", a.CartID())
}

// conflictingRepo fails the next n writes with ErrVersionConflict after
// letting a competing writer bump the stored version.
type conflictingRepo struct {
	cart.Repository
	failures int
	rival    func()
}

func (r *conflictingRepo) Save(ctx context.Context, c *cart.Cart) error {
	if r.failures > 0 {
		r.failures--
		r.rival()
		return cart.ErrVersionConflict
	}
	return r.Repository.Save(ctx, c)
}

func TestConflictIsRetriedOnce(t *testing.T) {
	ctx := context.Background()
	inner := openRepo(t)
	base := cart.NewStore(inner)
	_, err := base.Add(ctx, "p1", 1)
	require.NoError(t, err)

	repo := &conflictingRepo{Repository: inner, failures: 1}
	repo.rival = func() {
		_, err := base.Add(ctx, "p1", 10)
		require.NoError(t, err)
	}
	s := cart.NewStore(repo)

	c, err := s.Add(ctx, "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, 13, c.Items[0].Quantity, "retry must re-read and keep the rival's increment")
}

func TestConflictExhaustsAttempts(t *testing.T) {
	ctx := context.Background()
	inner := openRepo(t)
	_, err := cart.NewStore(inner).Add(ctx, "p1", 1)
	require.NoError(t, err)

	repo := &conflictingRepo{Repository: inner, failures: 5, rival: func() {}}
	s := cart.NewStore(repo, cart.WithMaxAttempts(2))

	_, err = s.Update(ctx, "p1", 9)
	require.ErrorIs(t, err, cart.ErrConflict)
	assert.Equal(t, 3, repo.failures, "two attempts consumed")

	c, err := inner.Get(ctx, cart.DefaultCartID)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Items[0].Quantity)
}

func TestConcurrentAddsNeverLoseAcknowledgedIncrements(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, cart.WithMaxAttempts(3))

	const workers = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		oks  int
		errs []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Add(ctx, "p1", 1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				oks++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.True(t, errors.Is(err, cart.ErrConflict), "unexpected error: %v", err)
	}
	require.Positive(t, oks)

	c, err := s.Get(ctx)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, oks, c.Items[0].Quantity)
}

type recordingEvents struct {
	keys []string
}

func (r *recordingEvents) Publish(_ context.Context, key string, _ any) error {
	r.keys = append(r.keys, key)
	return errors.New("broker down")
}

func TestEventsPublishedAfterMutations(t *testing.T) {
	ctx := context.Background()
	ev := &recordingEvents{}
	s := newStore(t, cart.WithEvents(ev))

	_, err := s.Add(ctx, "p1", 1)
	require.NoError(t, err, "publish failures are not surfaced")
	_, err = s.Update(ctx, "p1", 3)
	require.NoError(t, err)
	_, err = s.Update(ctx, "nope", 3)
	require.Error(t, err)
	_, err = s.Remove(ctx, "p1")
	require.NoError(t, err)

	assert.Equal(t, []string{cart.RKItemAdded, cart.RKItemUpdated, cart.RKItemRemoved}, ev.keys)
}
