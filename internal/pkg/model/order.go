package model

type Orders []Order

// Order is one customer order as listed on the account orders page.
type Order struct {
	ID          string      `json:"id"`
	Items       []OrderItem `json:"items"`
	Status      string      `json:"status"`
	Fulfillment string      `json:"fulfillment"`
	Total       float64     `json:"total"`
	CreatedAt   string      `json:"createdAt,omitempty"`
}

type OrderItem struct {
	ProductID    string  `json:"productId,omitempty"`
	ProductName  string  `json:"productName"`
	ProductImage string  `json:"productImage,omitempty"`
	Size         string  `json:"size,omitempty"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price,omitempty"`
}

// Headline returns the first line item, which the list shows as the order's
// summary. ok is false for an order without items.
func (o Order) Headline() (item OrderItem, ok bool) {
	if len(o.Items) == 0 {
		return OrderItem{}, false
	}
	return o.Items[0], true
}

// FulfillmentCategory classifies the fulfillment badge.
func (o Order) FulfillmentCategory() StatusCategory { return ClassifyStatus(o.Fulfillment) }

// StatusCategory classifies the order status which drives the action button.
func (o Order) StatusCategory() StatusCategory { return ClassifyStatus(o.Status) }
