package service

import (
	"context"
	"testing"
	"time"

	"swaply/internal/domain"
	"swaply/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testIdentity = &domain.GoogleIdentity{
	ID:    "google-uid-1",
	Email: "buyer@gmail.com",
	Name:  "Buyer",
}

var testShipping = domain.ShippingDetails{
	FullName:      "Buyer Name",
	Phone:         "9999999999",
	AddressLine1:  "1 Main St",
	City:          "Pune",
	State:         "MH",
	ZipCode:       "411001",
	PaymentMethod: "COD",
}

func newOrderService(t *testing.T, st *store.Store, at time.Time) *OrderService {
	t.Helper()
	svc := NewOrderService(st, zap.NewNop())
	svc.now = func() time.Time { return at }
	return svc
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, availableBook("1", 299.50, 2))
	at := time.Date(2024, 5, 1, 12, 30, 45, 0, time.UTC)
	svc := newOrderService(t, st, at)

	orderID, err := svc.PlaceOrder(ctx, testIdentity, "1", testShipping)
	require.NoError(t, err)
	assert.Equal(t, "ORD_20240501123045", orderID)

	orders := svc.UserOrders(ctx, testIdentity.Email)
	require.Len(t, orders, 1)
	o := orders[0]
	assert.Equal(t, "Book 1", o.BookTitle)
	assert.Equal(t, 1, o.Quantity)
	assert.Equal(t, 299.50, o.TotalPrice)
	assert.Equal(t, domain.OrderStatusPending, o.Status)
	assert.Equal(t, "2024-05-01 12:30:45", o.CreatedAt)

	book, found := st.GetBook(ctx, "1")
	require.True(t, found)
	assert.Equal(t, 1, book.StockQuantity)
	assert.Equal(t, domain.StatusAvailable, book.Status)

	profile, found := svc.UserAddress(ctx, testIdentity.Email)
	require.True(t, found)
	assert.Equal(t, "Buyer Name", profile.Name)
	assert.Equal(t, "Pune", profile.City)
}

func TestPlaceOrderLastCopyMarksSoldOut(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, availableBook("1", 100, 1))
	svc := newOrderService(t, st, time.Now())

	_, err := svc.PlaceOrder(ctx, testIdentity, "1", testShipping)
	require.NoError(t, err)

	book, found := st.GetBook(ctx, "1")
	require.True(t, found)
	assert.Equal(t, 0, book.StockQuantity)
	assert.Equal(t, domain.StatusSoldOut, book.Status)
	assert.Empty(t, st.ListAvailableBooks(ctx))
}

func TestPlaceOrderErrors(t *testing.T) {
	ctx := context.Background()
	soldOut := availableBook("2", 100, 0)
	soldOut.Status = domain.StatusSoldOut
	zeroStock := availableBook("3", 100, 0)
	st := newTestStore(t, soldOut, zeroStock)
	svc := newOrderService(t, st, time.Now())

	_, err := svc.PlaceOrder(ctx, testIdentity, "missing", testShipping)
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, err = svc.PlaceOrder(ctx, testIdentity, "2", testShipping)
	assert.ErrorIs(t, err, ErrBookUnavailable)

	_, err = svc.PlaceOrder(ctx, testIdentity, "3", testShipping)
	assert.ErrorIs(t, err, ErrOutOfStock)
}

func TestPlaceCartOrders(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, availableBook("1", 100, 5), availableBook("2", 40, 1))
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newOrderService(t, st, at)

	cart := []domain.CartItem{
		{BookID: "1", Quantity: 2},
		{BookID: "2", Quantity: 1},
	}
	placed, failed := svc.PlaceCartOrders(ctx, testIdentity, cart, testShipping)
	require.Empty(t, failed)
	require.Len(t, placed, 2)

	assert.Equal(t, "ORD_20240501120000_1", placed[0].OrderID)
	assert.Equal(t, 200.0, placed[0].Total, "unit price times quantity")
	assert.Equal(t, "ORD_20240501120000_2", placed[1].OrderID)

	book, _ := st.GetBook(ctx, "1")
	assert.Equal(t, 3, book.StockQuantity)
	book2, _ := st.GetBook(ctx, "2")
	assert.Equal(t, domain.StatusSoldOut, book2.Status)
}

func TestPlaceCartOrdersPartialFailure(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, availableBook("1", 100, 5), availableBook("2", 40, 1))
	svc := newOrderService(t, st, time.Now())

	cart := []domain.CartItem{
		{BookID: "1", Quantity: 1},
		{BookID: "2", Quantity: 3},  // only 1 in stock
		{BookID: "99", Quantity: 1}, // unknown
		{BookID: "", Quantity: 1},
	}
	placed, failed := svc.PlaceCartOrders(ctx, testIdentity, cart, testShipping)

	require.Len(t, placed, 1)
	assert.Equal(t, "Book 1", placed[0].BookTitle)

	require.Len(t, failed, 3)
	assert.Contains(t, failed, "Book 2 - only 1 in stock")
	assert.Contains(t, failed, "Book 99 not found")
	assert.Contains(t, failed, "Invalid book ID")

	// The address profile is saved even on partial failure.
	_, found := svc.UserAddress(ctx, testIdentity.Email)
	assert.True(t, found)
}

func TestPlaceOrderSnapshotsPriceAtOrderTime(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, availableBook("1", 100, 5))
	svc := newOrderService(t, st, time.Now())

	_, err := svc.PlaceOrder(ctx, testIdentity, "1", testShipping)
	require.NoError(t, err)

	// A later price change must not affect the recorded total.
	orders := svc.UserOrders(ctx, testIdentity.Email)
	require.Len(t, orders, 1)
	assert.Equal(t, 100.0, orders[0].TotalPrice)
}
