package store

import (
	"context"

	"swaply/internal/domain"
)

// Backend is the storage capability the facade routes through: read-all,
// update-by-id, upsert and append over the three collections. Two
// implementations exist, the Google Sheets backend and the in-memory mirror.
type Backend interface {
	ListBooks(ctx context.Context) ([]domain.Book, error)
	AppendBook(ctx context.Context, b domain.Book) error
	// SetBookStatus and DecreaseStock report found=false when no row matches
	// the id; that is a normal outcome, not an error.
	SetBookStatus(ctx context.Context, id, status string) (bool, error)
	DecreaseStock(ctx context.Context, id string, quantity int) (bool, error)

	ListUsers(ctx context.Context) ([]domain.User, error)
	UpsertUser(ctx context.Context, u domain.User) error

	ListOrders(ctx context.Context) ([]domain.Order, error)
	AppendOrder(ctx context.Context, o domain.Order) error
}
