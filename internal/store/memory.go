package store

import (
	"context"
	"strings"
	"sync"

	"swaply/internal/domain"
)

// Memory is the in-process backend. It is always present: it serves all
// traffic while the remote backend is unavailable and absorbs writes that
// fail against a connected remote so they are not lost. Each collection has
// its own lock; concurrent request handlers touch these directly.
type Memory struct {
	booksMu  sync.RWMutex
	books    []domain.Book
	usersMu  sync.RWMutex
	users    []domain.User
	ordersMu sync.RWMutex
	orders   []domain.Order
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) ListBooks(ctx context.Context) ([]domain.Book, error) {
	m.booksMu.RLock()
	defer m.booksMu.RUnlock()
	out := make([]domain.Book, len(m.books))
	copy(out, m.books)
	return out, nil
}

func (m *Memory) AppendBook(ctx context.Context, b domain.Book) error {
	m.booksMu.Lock()
	defer m.booksMu.Unlock()
	m.books = append(m.books, b)
	return nil
}

func (m *Memory) SetBookStatus(ctx context.Context, id, status string) (bool, error) {
	m.booksMu.Lock()
	defer m.booksMu.Unlock()
	for i := range m.books {
		if strings.TrimSpace(m.books[i].ID) == strings.TrimSpace(id) {
			m.books[i].Status = status
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) DecreaseStock(ctx context.Context, id string, quantity int) (bool, error) {
	m.booksMu.Lock()
	defer m.booksMu.Unlock()
	for i := range m.books {
		if strings.TrimSpace(m.books[i].ID) != strings.TrimSpace(id) {
			continue
		}
		next := m.books[i].StockQuantity - quantity
		if next < 0 {
			next = 0
		}
		m.books[i].StockQuantity = next
		if next == 0 {
			m.books[i].Status = domain.StatusSoldOut
		}
		return true, nil
	}
	return false, nil
}

func (m *Memory) ListUsers(ctx context.Context) ([]domain.User, error) {
	m.usersMu.RLock()
	defer m.usersMu.RUnlock()
	out := make([]domain.User, len(m.users))
	copy(out, m.users)
	return out, nil
}

// UpsertUser replaces the record with the same email in place, or appends.
func (m *Memory) UpsertUser(ctx context.Context, u domain.User) error {
	m.usersMu.Lock()
	defer m.usersMu.Unlock()
	for i := range m.users {
		if m.users[i].Email == u.Email {
			m.users[i] = u
			return nil
		}
	}
	m.users = append(m.users, u)
	return nil
}

func (m *Memory) ListOrders(ctx context.Context) ([]domain.Order, error) {
	m.ordersMu.RLock()
	defer m.ordersMu.RUnlock()
	out := make([]domain.Order, len(m.orders))
	copy(out, m.orders)
	return out, nil
}

func (m *Memory) AppendOrder(ctx context.Context, o domain.Order) error {
	m.ordersMu.Lock()
	defer m.ordersMu.Unlock()
	m.orders = append(m.orders, o)
	return nil
}
