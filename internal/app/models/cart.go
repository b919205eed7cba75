package models

// CartItem is a row of the viewer's backend-held cart. The cart item id and
// the embedded product id are distinct: removals are issued by product id
// but rows are identified by item id.
type CartItem struct {
	ID        int     `json:"id"`
	ProductID int     `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

// Subtotal is the display price of a single cart row.
func (i CartItem) Subtotal() float64 {
	return i.Product.Price * float64(i.Quantity)
}

// CartTotal sums the display subtotals. Display only: the backend computes
// the authoritative total at checkout.
func CartTotal(items []CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}
