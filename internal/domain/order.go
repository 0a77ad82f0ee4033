package domain

// OrderStatusPending is the initial status of every order. Lifecycle beyond
// Pending is handled outside this system.
const OrderStatusPending = "Pending"

// Order is an immutable record of a purchase. Book title and total price are
// snapshotted at order time and never recomputed from the current listing.
type Order struct {
	OrderID       string  `json:"order_id"`
	UserID        string  `json:"user_id"`
	UserEmail     string  `json:"user_email"`
	BookID        string  `json:"book_id"`
	BookTitle     string  `json:"book_title"`
	Quantity      int     `json:"quantity"`
	TotalPrice    float64 `json:"total_price"`
	FullName      string  `json:"full_name"`
	Phone         string  `json:"phone"`
	AddressLine1  string  `json:"address_line1"`
	AddressLine2  string  `json:"address_line2"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	ZipCode       string  `json:"zip_code"`
	PaymentMethod string  `json:"payment_method"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

// ShippingDetails are the delivery and payment fields collected at checkout.
type ShippingDetails struct {
	FullName      string
	Phone         string
	AddressLine1  string
	AddressLine2  string
	City          string
	State         string
	ZipCode       string
	PaymentMethod string
}
