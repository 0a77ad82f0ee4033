package transport

import (
	"net/http"
	"time"

	"swaply/internal/domain"
	"swaply/internal/middleware"
	"swaply/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddBookRequest lists a book for sale.
type AddBookRequest struct {
	Title         string  `json:"title" validate:"required"`
	Author        string  `json:"author" validate:"required"`
	Price         float64 `json:"price" validate:"gte=0"`
	Condition     string  `json:"condition"`
	ISBN          string  `json:"isbn"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	StockQuantity int     `json:"stock_quantity" validate:"gte=0"`
	ImageURL      string  `json:"image_url"`
}

// BookHandler serves the catalog.
type BookHandler struct {
	store  *store.Store
	logger *zap.Logger
	now    func() string
}

// NewBookHandler creates a BookHandler.
func NewBookHandler(st *store.Store, logger *zap.Logger) *BookHandler {
	return &BookHandler{store: st, logger: logger, now: func() string {
		return domain.FormatTime(time.Now())
	}}
}

// RegisterRoutes registers catalog routes. Listing a book requires a
// signed-in session.
func (h *BookHandler) RegisterRoutes(r chi.Router, requireSession func(http.Handler) http.Handler) {
	r.Get("/api/books", h.ListAvailable)
	r.Get("/api/books/all", h.ListAll)
	r.Get("/api/books/{id}", h.GetByID)
	r.With(requireSession).Post("/api/books", h.Create)
}

// ListAvailable returns books that can currently be ordered.
func (h *BookHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.store.ListAvailableBooks(r.Context()))
}

// ListAll returns the full catalog including sold-out entries.
func (h *BookHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.store.ListBooks(r.Context()))
}

// GetByID returns one book or a 404.
func (h *BookHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	book, ok := h.store.GetBook(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "Book not found")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, book)
}

// Create lists a new book. Stock defaults to one copy.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req AddBookRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if verrs := middleware.FormatValidationErrors(err); len(verrs) > 0 {
			middleware.RespondWithValidationErrors(w, verrs)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stock := req.StockQuantity
	if stock == 0 {
		stock = store.DefaultStock
	}
	book := domain.Book{
		ID:            uuid.NewString(),
		Title:         req.Title,
		Author:        req.Author,
		Price:         req.Price,
		Condition:     req.Condition,
		ISBN:          req.ISBN,
		Description:   req.Description,
		Category:      req.Category,
		Status:        domain.StatusAvailable,
		StockQuantity: stock,
		Timestamp:     h.now(),
		ImageURL:      req.ImageURL,
	}
	h.store.AddBook(r.Context(), book)

	h.logger.Info("Book listed", zap.String("book_id", book.ID), zap.String("title", book.Title))
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"book":    book,
	})
}
