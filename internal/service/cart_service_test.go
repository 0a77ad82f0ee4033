package service

import (
	"context"
	"testing"

	"swaply/internal/domain"
	"swaply/internal/session"
	"swaply/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T, books ...domain.Book) *store.Store {
	t.Helper()
	st := store.New(zap.NewNop(), store.Options{})
	for _, b := range books {
		require.True(t, st.AddBook(context.Background(), b))
	}
	return st
}

func availableBook(id string, price float64, stock int) domain.Book {
	return domain.Book{
		ID:            id,
		Title:         "Book " + id,
		Author:        "Author " + id,
		Price:         price,
		Condition:     "Good",
		Status:        domain.StatusAvailable,
		StockQuantity: stock,
	}
}

func TestCartAddSnapshotsListing(t *testing.T) {
	carts := NewCartService(newTestStore(t, availableBook("1", 250, 3)))
	sess := &session.Session{}

	count, err := carts.Add(context.Background(), sess, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Len(t, sess.Cart, 1)
	item := sess.Cart[0]
	assert.Equal(t, "Book 1", item.Title)
	assert.Equal(t, 250.0, item.Price)
	assert.Equal(t, 1, item.Quantity)
}

func TestCartAddSameBookIncrementsQuantity(t *testing.T) {
	carts := NewCartService(newTestStore(t, availableBook("1", 250, 3)))
	sess := &session.Session{}
	ctx := context.Background()

	_, err := carts.Add(ctx, sess, "1")
	require.NoError(t, err)
	count, err := carts.Add(ctx, sess, "1")
	require.NoError(t, err)

	assert.Equal(t, 1, count, "still one line item")
	assert.Equal(t, 2, sess.Cart[0].Quantity)
}

func TestCartAddUnknownBook(t *testing.T) {
	carts := NewCartService(newTestStore(t))
	sess := &session.Session{}

	_, err := carts.Add(context.Background(), sess, "404")
	assert.ErrorIs(t, err, ErrBookNotFound)
	assert.Empty(t, sess.Cart)
}

func TestCartUpdateQuantityAndTotal(t *testing.T) {
	carts := NewCartService(newTestStore(t, availableBook("1", 100, 9), availableBook("2", 50, 9)))
	sess := &session.Session{}
	ctx := context.Background()

	_, err := carts.Add(ctx, sess, "1")
	require.NoError(t, err)
	_, err = carts.Add(ctx, sess, "2")
	require.NoError(t, err)

	count, total, err := carts.Update(sess, "1", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 350.0, total, "3x100 + 1x50")
}

func TestCartUpdateToZeroRemoves(t *testing.T) {
	carts := NewCartService(newTestStore(t, availableBook("1", 100, 9)))
	sess := &session.Session{}

	_, err := carts.Add(context.Background(), sess, "1")
	require.NoError(t, err)

	count, total, err := carts.Update(sess, "1", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0.0, total)
	assert.Empty(t, sess.Cart)
}

func TestCartUpdateMissingItem(t *testing.T) {
	carts := NewCartService(newTestStore(t))
	sess := &session.Session{}

	_, _, err := carts.Update(sess, "nope", 2)
	assert.ErrorIs(t, err, ErrItemNotInCart)
}

func TestCartRemove(t *testing.T) {
	carts := NewCartService(newTestStore(t, availableBook("1", 100, 9), availableBook("2", 50, 9)))
	sess := &session.Session{}
	ctx := context.Background()

	_, err := carts.Add(ctx, sess, "1")
	require.NoError(t, err)
	_, err = carts.Add(ctx, sess, "2")
	require.NoError(t, err)

	count := carts.Remove(sess, "1")
	assert.Equal(t, 1, count)
	assert.Equal(t, "2", sess.Cart[0].BookID)

	// Removing again is a no-op.
	assert.Equal(t, 1, carts.Remove(sess, "1"))
}
