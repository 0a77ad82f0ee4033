// Package store implements the catalog and order store: three collections
// (books, users, orders) served from a Google Sheets backend when one is
// reachable and from an in-memory mirror otherwise. Connection is attempted
// once, in the background, at construction; a late success silently promotes
// the store to remote-backed operation. Writes that fail against a connected
// remote fall back to the mirror so data is never lost to a transient
// outage, at the accepted cost of divergence between the two backends.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"swaply/internal/domain"

	"go.uber.org/zap"
)

// DefaultConnectWait bounds how long the constructor blocks on the initial
// connection attempt before returning in memory-backed mode.
const DefaultConnectWait = 3 * time.Second

// Options configures the remote backend connection. An empty CredentialsFile
// disables the remote backend entirely.
type Options struct {
	CredentialsFile string
	SpreadsheetID   string
	ConnectWait     time.Duration
}

// Store is the facade the rest of the application talks to. It is
// constructed once in main and injected into services; it owns all three
// collections exclusively.
type Store struct {
	log *zap.Logger
	mem *Memory

	mu     sync.RWMutex
	remote Backend // nil while memory-backed
}

// New builds a Store with an empty in-memory mirror and kicks off the
// one-time remote connection attempt. It waits at most opts.ConnectWait for
// that attempt; if the remote is not ready by then the store is returned in
// memory-backed mode and the attempt continues in the background.
func New(log *zap.Logger, opts Options) *Store {
	s := &Store{log: log, mem: NewMemory()}

	if opts.CredentialsFile == "" {
		log.Info("No sheets credentials configured, using memory storage")
		return s
	}

	wait := opts.ConnectWait
	if wait <= 0 {
		wait = DefaultConnectWait
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		backend, err := ConnectSheets(context.Background(), log, opts.CredentialsFile, opts.SpreadsheetID)
		if err != nil {
			log.Warn("Sheets connection failed, staying on memory storage", zap.Error(err))
			return
		}
		s.promote(backend)
		log.Info("Sheets backend connected", zap.String("spreadsheet_id", opts.SpreadsheetID))
	}()

	select {
	case <-done:
	case <-time.After(wait):
		log.Info("Sheets connection still pending, starting in memory-backed mode")
	}
	return s
}

// promote switches the store to remote-backed mode.
func (s *Store) promote(b Backend) {
	s.mu.Lock()
	s.remote = b
	s.mu.Unlock()
}

// backend returns the active backend.
func (s *Store) backend() Backend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.remote != nil {
		return s.remote
	}
	return s.mem
}

// MemoryBacked reports whether the store currently operates on the
// in-memory mirror only.
func (s *Store) MemoryBacked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remote == nil
}

// ListBooks returns every book in the active backend. A remote read failure
// degrades to the in-memory mirror with a logged warning; the call never
// fails.
func (s *Store) ListBooks(ctx context.Context) []domain.Book {
	books, err := s.backend().ListBooks(ctx)
	if err != nil {
		s.log.Warn("Remote book read failed, serving memory mirror", zap.Error(err))
		books, _ = s.mem.ListBooks(ctx)
	}
	if books == nil {
		books = []domain.Book{}
	}
	return books
}

// ListAvailableBooks filters ListBooks to entries whose status equals
// Available case-insensitively and whose stock is positive.
func (s *Store) ListAvailableBooks(ctx context.Context) []domain.Book {
	all := s.ListBooks(ctx)
	available := make([]domain.Book, 0, len(all))
	for _, b := range all {
		if b.Available() {
			available = append(available, b)
		}
	}
	return available
}

// GetBook scans for a book by trimmed-id equality. Absence is a normal
// outcome.
func (s *Store) GetBook(ctx context.Context, id string) (domain.Book, bool) {
	want := strings.TrimSpace(id)
	for _, b := range s.ListBooks(ctx) {
		if strings.TrimSpace(b.ID) == want {
			return b, true
		}
	}
	return domain.Book{}, false
}

// AddBook appends a listing to the active backend. A remote write failure
// falls back to the memory mirror; the book is always saved somewhere.
func (s *Store) AddBook(ctx context.Context, b domain.Book) bool {
	if err := s.backend().AppendBook(ctx, b); err != nil {
		s.log.Warn("Remote book append failed, writing to memory mirror",
			zap.String("book_id", b.ID), zap.Error(err))
		_ = s.mem.AppendBook(ctx, b)
	}
	return true
}

// SetBookStatus updates a book's status in place. Returns false when the id
// is unknown or the remote write fails.
func (s *Store) SetBookStatus(ctx context.Context, id, status string) bool {
	found, err := s.backend().SetBookStatus(ctx, id, status)
	if err != nil {
		s.log.Error("Book status update failed", zap.String("book_id", id), zap.Error(err))
		return false
	}
	return found
}

// DecreaseStock lowers a book's stock by quantity, clamping at zero, and
// marks the book Sold Out together with the quantity write whenever the
// result is zero. Returns false when the id is unknown or the remote write
// fails.
func (s *Store) DecreaseStock(ctx context.Context, id string, quantity int) bool {
	found, err := s.backend().DecreaseStock(ctx, id, quantity)
	if err != nil {
		s.log.Error("Stock decrease failed", zap.String("book_id", id), zap.Error(err))
		return false
	}
	return found
}

// UpsertUser saves an address profile keyed by lower-cased email, replacing
// any existing record. The stored created_at is preserved when the incoming
// one is empty; a first-time insert gets one stamped. A remote failure falls
// back to the memory mirror and the operation still reports success: the
// profile is guaranteed saved somewhere.
func (s *Store) UpsertUser(ctx context.Context, u domain.User) bool {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.CreatedAt == "" {
		if existing, ok := s.GetUser(ctx, u.Email); ok && existing.CreatedAt != "" {
			u.CreatedAt = existing.CreatedAt
		} else if u.UpdatedAt != "" {
			u.CreatedAt = u.UpdatedAt
		} else {
			u.CreatedAt = domain.FormatTime(time.Now())
		}
	}
	if err := s.backend().UpsertUser(ctx, u); err != nil {
		s.log.Warn("Remote user write failed, writing to memory mirror",
			zap.String("email", u.Email), zap.Error(err))
		_ = s.mem.UpsertUser(ctx, u)
	}
	return true
}

// GetUser looks up an address profile by email.
func (s *Store) GetUser(ctx context.Context, email string) (domain.User, bool) {
	want := strings.ToLower(strings.TrimSpace(email))
	users, err := s.backend().ListUsers(ctx)
	if err != nil {
		s.log.Warn("Remote user read failed, serving memory mirror", zap.Error(err))
		users, _ = s.mem.ListUsers(ctx)
	}
	for _, u := range users {
		if strings.ToLower(u.Email) == want {
			return u, true
		}
	}
	return domain.User{}, false
}

// AddOrder appends an order. Orders are append-only; there is no update or
// delete. Same write-failure fallback as UpsertUser.
func (s *Store) AddOrder(ctx context.Context, o domain.Order) bool {
	if err := s.backend().AppendOrder(ctx, o); err != nil {
		s.log.Warn("Remote order write failed, writing to memory mirror",
			zap.String("order_id", o.OrderID), zap.Error(err))
		_ = s.mem.AppendOrder(ctx, o)
	}
	return true
}

// GetUserOrders returns the caller's orders, most recent first. The
// created_at format sorts lexicographically in time order.
func (s *Store) GetUserOrders(ctx context.Context, email string) []domain.Order {
	orders, err := s.backend().ListOrders(ctx)
	if err != nil {
		s.log.Warn("Remote order read failed, serving memory mirror", zap.Error(err))
		orders, _ = s.mem.ListOrders(ctx)
	}
	mine := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.UserEmail == email {
			mine = append(mine, o)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].CreatedAt > mine[j].CreatedAt
	})
	return mine
}
