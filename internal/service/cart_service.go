package service

import (
	"context"
	"errors"

	"swaply/internal/domain"
	"swaply/internal/session"
	"swaply/internal/store"
)

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrItemNotInCart   = errors.New("item not found in cart")
	ErrBookUnavailable = errors.New("book is no longer available")
	ErrOutOfStock      = errors.New("book is out of stock")
)

// CartService mutates the session-resident cart. Listing details are
// snapshotted into the cart when an item is first added; later price changes
// do not retroactively reprice carts.
type CartService struct {
	store *store.Store
}

// NewCartService creates a CartService.
func NewCartService(st *store.Store) *CartService {
	return &CartService{store: st}
}

// Add puts one copy of the book into the cart, incrementing quantity if it
// is already there. Returns the new item count.
func (s *CartService) Add(ctx context.Context, sess *session.Session, bookID string) (int, error) {
	for i := range sess.Cart {
		if sess.Cart[i].BookID == bookID {
			sess.Cart[i].Quantity++
			return len(sess.Cart), nil
		}
	}

	book, ok := s.store.GetBook(ctx, bookID)
	if !ok {
		return len(sess.Cart), ErrBookNotFound
	}
	sess.Cart = append(sess.Cart, domain.CartItem{
		BookID:    bookID,
		Title:     book.Title,
		Author:    book.Author,
		Price:     book.Price,
		Condition: book.Condition,
		Quantity:  1,
	})
	return len(sess.Cart), nil
}

// Update sets an item's quantity; zero or less removes it. Returns the item
// count and cart total.
func (s *CartService) Update(sess *session.Session, bookID string, quantity int) (int, float64, error) {
	for i := range sess.Cart {
		if sess.Cart[i].BookID != bookID {
			continue
		}
		if quantity <= 0 {
			sess.Cart = append(sess.Cart[:i], sess.Cart[i+1:]...)
		} else {
			sess.Cart[i].Quantity = quantity
		}
		return len(sess.Cart), domain.CartTotal(sess.Cart), nil
	}
	return len(sess.Cart), domain.CartTotal(sess.Cart), ErrItemNotInCart
}

// Remove drops an item from the cart. Removing an absent item is a no-op.
func (s *CartService) Remove(sess *session.Session, bookID string) int {
	kept := sess.Cart[:0]
	for _, it := range sess.Cart {
		if it.BookID != bookID {
			kept = append(kept, it)
		}
	}
	sess.Cart = kept
	return len(sess.Cart)
}
