package transport

import (
	"errors"
	"net/http"

	"swaply/internal/domain"
	"swaply/internal/middleware"
	"swaply/internal/service"
	"swaply/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddToCartRequest adds one copy of a book.
type AddToCartRequest struct {
	BookID string `json:"book_id" validate:"required"`
}

// UpdateCartRequest sets an item's quantity; zero removes it.
type UpdateCartRequest struct {
	BookID   string `json:"book_id" validate:"required"`
	Quantity *int   `json:"quantity" validate:"required"`
}

// CartResponse is the GET /api/cart payload.
type CartResponse struct {
	Items []domain.CartItem `json:"items"`
	Total float64           `json:"total"`
	Count int               `json:"count"`
}

// CartHandler serves the session cart. All routes require a signed-in
// session.
type CartHandler struct {
	carts    *service.CartService
	sessions *session.Manager
	logger   *zap.Logger
}

// NewCartHandler creates a CartHandler.
func NewCartHandler(carts *service.CartService, sessions *session.Manager, logger *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, sessions: sessions, logger: logger}
}

// RegisterRoutes registers the cart routes behind the session middleware.
func (h *CartHandler) RegisterRoutes(r chi.Router, requireSession func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(requireSession)
		r.Get("/", h.Get)
		r.Post("/add", h.Add)
		r.Post("/update", h.Update)
		r.Post("/remove", h.Remove)
	})
}

// Get returns the cart contents with total.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	items := sess.Cart
	if items == nil {
		items = []domain.CartItem{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items: items,
		Total: domain.CartTotal(items),
		Count: len(items),
	})
}

// Add puts a book in the cart.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "Book ID required")
		return
	}

	sess, _ := middleware.SessionFromContext(r.Context())
	count, err := h.carts.Add(r.Context(), sess, req.BookID)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Book not found")
			return
		}
		h.logger.Error("Cart add failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if err := h.sessions.Save(r.Context(), w, sess); err != nil {
		h.logger.Error("Session save failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    "Book added to cart!",
		"cart_count": count,
	})
}

// Update changes an item's quantity.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateCartRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "Book ID and quantity required")
		return
	}

	sess, _ := middleware.SessionFromContext(r.Context())
	count, total, err := h.carts.Update(sess, req.BookID, *req.Quantity)
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "Item not found in cart")
		return
	}
	if err := h.sessions.Save(r.Context(), w, sess); err != nil {
		h.logger.Error("Session save failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"cart_count": count,
		"total":      total,
	})
}

// Remove drops an item from the cart.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "Book ID required")
		return
	}

	sess, _ := middleware.SessionFromContext(r.Context())
	count := h.carts.Remove(sess, req.BookID)
	if err := h.sessions.Save(r.Context(), w, sess); err != nil {
		h.logger.Error("Session save failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    "Item removed from cart",
		"cart_count": count,
	})
}
