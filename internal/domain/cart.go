package domain

// CartItem is a session-resident cart entry. Title, author, price and
// condition are snapshotted from the listing when the item is first added.
type CartItem struct {
	BookID    string  `json:"book_id"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Price     float64 `json:"price"`
	Condition string  `json:"condition"`
	Quantity  int     `json:"quantity"`
}

// CartTotal sums price times quantity across items.
func CartTotal(items []CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}
