package model

type InventoryItems []InventoryItem

// InventoryItem is one row of the admin inventory screen.
type InventoryItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	SKU       string `json:"sku,omitempty"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
}

// StockLevel buckets an item for the inventory alerts.
type StockLevel string

const (
	StockOut StockLevel = "out-of-stock"
	StockLow StockLevel = "low-stock"
	StockIn  StockLevel = "in-stock"
)

func (i InventoryItem) Level() StockLevel {
	switch {
	case i.Stock <= 0:
		return StockOut
	case i.Stock <= i.Threshold:
		return StockLow
	default:
		return StockIn
	}
}

// InventoryOverview is returned by /api/inventory/overview.
type InventoryOverview struct {
	LowStockItems int `json:"lowStockItems"`
	OutOfStock    int `json:"outOfStock"`
	RestockAlerts int `json:"restockAlerts"`
}

// Summarize computes an overview from a set of items.
func Summarize(items []InventoryItem) InventoryOverview {
	var o InventoryOverview
	for _, it := range items {
		switch it.Level() {
		case StockOut:
			o.OutOfStock++
			o.RestockAlerts++
		case StockLow:
			o.LowStockItems++
			o.RestockAlerts++
		}
	}
	return o
}
