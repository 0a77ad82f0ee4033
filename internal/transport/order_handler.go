package transport

import (
	"errors"
	"fmt"
	"net/http"

	"swaply/internal/domain"
	"swaply/internal/middleware"
	"swaply/internal/service"
	"swaply/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ShippingFields are the checkout delivery and payment fields.
type ShippingFields struct {
	FullName      string `json:"full_name" validate:"required"`
	PhoneNumber   string `json:"phone_number" validate:"required"`
	AddressLine1  string `json:"address_line1" validate:"required"`
	AddressLine2  string `json:"address_line2"`
	AddressCity   string `json:"address_city" validate:"required"`
	AddressState  string `json:"address_state" validate:"required"`
	AddressZip    string `json:"address_zip" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}

func (f ShippingFields) details() domain.ShippingDetails {
	return domain.ShippingDetails{
		FullName:      f.FullName,
		Phone:         f.PhoneNumber,
		AddressLine1:  f.AddressLine1,
		AddressLine2:  f.AddressLine2,
		City:          f.AddressCity,
		State:         f.AddressState,
		ZipCode:       f.AddressZip,
		PaymentMethod: f.PaymentMethod,
	}
}

// PlaceOrderRequest is a single-book checkout.
type PlaceOrderRequest struct {
	BookID string `json:"book_id" validate:"required"`
	ShippingFields
}

// CartCheckoutRequest checks out the whole session cart.
type CartCheckoutRequest struct {
	ShippingFields
}

// OrderHandler serves checkout and order history. All routes require a
// signed-in session.
type OrderHandler struct {
	orders   *service.OrderService
	sessions *session.Manager
	logger   *zap.Logger
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(orders *service.OrderService, sessions *session.Manager, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, sessions: sessions, logger: logger}
}

// RegisterRoutes registers the order routes behind the session middleware.
func (h *OrderHandler) RegisterRoutes(r chi.Router, requireSession func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(requireSession)
		r.Get("/", h.List)
		r.Post("/", h.Place)
		r.Post("/from-cart", h.PlaceFromCart)
	})
	r.With(requireSession).Get("/api/profile/address", h.Address)
}

// Place checks out one book with quantity 1 and clears the cart.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if verrs := middleware.FormatValidationErrors(err); len(verrs) > 0 {
			middleware.RespondWithValidationErrors(w, verrs)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	sess, _ := middleware.SessionFromContext(r.Context())
	orderID, err := h.orders.PlaceOrder(r.Context(), sess.Identity, req.BookID, req.details())
	if err != nil {
		h.respondOrderError(w, err)
		return
	}

	sess.ClearCart()
	if err := h.sessions.Save(r.Context(), w, sess); err != nil {
		h.logger.Error("Session save failed", zap.Error(err))
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "Order placed successfully!",
		"order_id": orderID,
	})
}

// PlaceFromCart checks out every cart item, reporting per-item failures.
// The cart is cleared only if at least one order succeeded.
func (h *OrderHandler) PlaceFromCart(w http.ResponseWriter, r *http.Request) {
	var req CartCheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if verrs := middleware.FormatValidationErrors(err); len(verrs) > 0 {
			middleware.RespondWithValidationErrors(w, verrs)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	sess, _ := middleware.SessionFromContext(r.Context())
	if len(sess.Cart) == 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	placed, failed := h.orders.PlaceCartOrders(r.Context(), sess.Identity, sess.Cart, req.details())

	if len(placed) > 0 {
		sess.ClearCart()
		if err := h.sessions.Save(r.Context(), w, sess); err != nil {
			h.logger.Error("Session save failed", zap.Error(err))
		}
	}

	resp := map[string]interface{}{
		"success":       true,
		"orders_placed": placed,
	}
	if len(failed) > 0 {
		resp["message"] = fmt.Sprintf("Ordered %d items. Some failed.", len(placed))
		resp["failed_items"] = failed
	} else {
		resp["message"] = fmt.Sprintf("Order placed for %d items!", len(placed))
	}
	middleware.RespondWithJSON(w, http.StatusOK, resp)
}

// List returns the caller's orders, newest first.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	orders := h.orders.UserOrders(r.Context(), sess.Identity.Email)
	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// Address returns the caller's stored address profile, or an empty object.
func (h *OrderHandler) Address(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	user, ok := h.orders.UserAddress(r.Context(), sess.Identity.Email)
	if !ok {
		middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{})
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, user)
}

func (h *OrderHandler) respondOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrBookNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "Book not found")
	case errors.Is(err, service.ErrBookUnavailable):
		middleware.RespondWithError(w, http.StatusBadRequest, "Book is no longer available")
	case errors.Is(err, service.ErrOutOfStock):
		middleware.RespondWithError(w, http.StatusBadRequest, "Book is out of stock")
	default:
		h.logger.Error("Order failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to save order")
	}
}
