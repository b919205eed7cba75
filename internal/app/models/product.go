package models

// Product mirrors the backend catalog record. The backend is the only
// writer; handlers hold read-only copies fetched per request.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}
