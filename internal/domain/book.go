package domain

import "strings"

// Book statuses as stored in the Books sheet. SoldOut is set automatically
// when stock reaches zero; the legacy "Sold" value still appears in old rows.
const (
	StatusAvailable = "Available"
	StatusSoldOut   = "Sold Out"
	StatusSold      = "Sold"
)

// Book represents a used book listed for sale.
type Book struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Price         float64 `json:"price"`
	Condition     string  `json:"condition"`
	ISBN          string  `json:"isbn"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Status        string  `json:"status"`
	StockQuantity int     `json:"stock_quantity"`
	Timestamp     string  `json:"timestamp"`
	ImageURL      string  `json:"image_url"`
}

// Available reports whether the book can currently be ordered.
func (b Book) Available() bool {
	return strings.EqualFold(b.Status, StatusAvailable) && b.StockQuantity > 0
}
