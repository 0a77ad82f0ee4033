package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"swaply/internal/domain"
	"swaply/internal/store"

	"go.uber.org/zap"
)

var ErrOrderNotSaved = errors.New("failed to save order")

// PlacedOrder summarizes one successful checkout line.
type PlacedOrder struct {
	OrderID   string  `json:"order_id"`
	BookTitle string  `json:"book_title"`
	Total     float64 `json:"total"`
}

// OrderService implements checkout: availability and stock checks, order
// creation, stock decrement and address-profile upsert.
type OrderService struct {
	store *store.Store
	log   *zap.Logger
	now   func() time.Time
}

// NewOrderService creates an OrderService.
func NewOrderService(st *store.Store, log *zap.Logger) *OrderService {
	return &OrderService{store: st, log: log, now: time.Now}
}

// PlaceOrder checks out a single book with quantity 1. The total price is
// the listing price at order time.
func (s *OrderService) PlaceOrder(ctx context.Context, ident *domain.GoogleIdentity, bookID string, ship domain.ShippingDetails) (string, error) {
	book, ok := s.store.GetBook(ctx, bookID)
	if !ok {
		return "", ErrBookNotFound
	}
	if err := checkOrderable(book, 1); err != nil {
		return "", err
	}

	now := s.now()
	orderID := fmt.Sprintf("ORD_%s", now.Format("20060102150405"))
	order := s.buildOrder(orderID, ident, book, 1, book.Price, ship, now)

	if !s.store.AddOrder(ctx, order) {
		return "", ErrOrderNotSaved
	}
	s.store.DecreaseStock(ctx, bookID, 1)
	s.saveProfile(ctx, ident, ship, now)

	s.log.Info("Order placed",
		zap.String("order_id", orderID),
		zap.String("book_id", bookID),
		zap.String("user_email", ident.Email),
	)
	return orderID, nil
}

// PlaceCartOrders checks out every cart item independently: one order per
// book, order id suffixed with the book id. Per-item failures are reported
// alongside the successes; the address profile is saved either way.
func (s *OrderService) PlaceCartOrders(ctx context.Context, ident *domain.GoogleIdentity, cart []domain.CartItem, ship domain.ShippingDetails) (placed []PlacedOrder, failed []string) {
	now := s.now()
	for _, item := range cart {
		if item.BookID == "" {
			failed = append(failed, "Invalid book ID")
			continue
		}
		book, ok := s.store.GetBook(ctx, item.BookID)
		if !ok {
			failed = append(failed, fmt.Sprintf("Book %s not found", item.BookID))
			continue
		}
		if err := checkOrderable(book, item.Quantity); err != nil {
			switch {
			case errors.Is(err, ErrBookUnavailable):
				failed = append(failed, fmt.Sprintf("%s not available", book.Title))
			default:
				failed = append(failed, fmt.Sprintf("%s - only %d in stock", book.Title, book.StockQuantity))
			}
			continue
		}

		orderID := fmt.Sprintf("ORD_%s_%s", now.Format("20060102150405"), item.BookID)
		total := book.Price * float64(item.Quantity)
		order := s.buildOrder(orderID, ident, book, item.Quantity, total, ship, now)

		if !s.store.AddOrder(ctx, order) {
			failed = append(failed, fmt.Sprintf("Failed to order %s", book.Title))
			continue
		}
		s.store.DecreaseStock(ctx, item.BookID, item.Quantity)
		placed = append(placed, PlacedOrder{OrderID: orderID, BookTitle: book.Title, Total: total})
	}

	s.saveProfile(ctx, ident, ship, now)
	return placed, failed
}

// UserOrders returns the user's orders, newest first.
func (s *OrderService) UserOrders(ctx context.Context, email string) []domain.Order {
	return s.store.GetUserOrders(ctx, email)
}

// UserAddress returns the stored address profile, if any.
func (s *OrderService) UserAddress(ctx context.Context, email string) (domain.User, bool) {
	return s.store.GetUser(ctx, email)
}

func (s *OrderService) buildOrder(orderID string, ident *domain.GoogleIdentity, book domain.Book, quantity int, total float64, ship domain.ShippingDetails, now time.Time) domain.Order {
	return domain.Order{
		OrderID:       orderID,
		UserID:        ident.ID,
		UserEmail:     ident.Email,
		BookID:        book.ID,
		BookTitle:     book.Title,
		Quantity:      quantity,
		TotalPrice:    total,
		FullName:      ship.FullName,
		Phone:         ship.Phone,
		AddressLine1:  ship.AddressLine1,
		AddressLine2:  ship.AddressLine2,
		City:          ship.City,
		State:         ship.State,
		ZipCode:       ship.ZipCode,
		PaymentMethod: ship.PaymentMethod,
		Status:        domain.OrderStatusPending,
		CreatedAt:     domain.FormatTime(now),
	}
}

func (s *OrderService) saveProfile(ctx context.Context, ident *domain.GoogleIdentity, ship domain.ShippingDetails, now time.Time) {
	s.store.UpsertUser(ctx, domain.User{
		UserID:       ident.ID,
		Email:        ident.Email,
		Name:         ship.FullName,
		Phone:        ship.Phone,
		AddressLine1: ship.AddressLine1,
		AddressLine2: ship.AddressLine2,
		City:         ship.City,
		State:        ship.State,
		ZipCode:      ship.ZipCode,
		UpdatedAt:    domain.FormatTime(now),
	})
}

func checkOrderable(book domain.Book, quantity int) error {
	if !strings.EqualFold(book.Status, domain.StatusAvailable) {
		return ErrBookUnavailable
	}
	if book.StockQuantity <= 0 || book.StockQuantity < quantity {
		return ErrOutOfStock
	}
	return nil
}
