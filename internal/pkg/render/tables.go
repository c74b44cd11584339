package render

import (
	"fmt"
	"strconv"

	"storefront/internal/pkg/common/apperr"
	"storefront/internal/pkg/model"
)

func errorText(err error) string {
	if err == nil {
		return "Something went wrong"
	}
	return apperr.Message(err)
}

// CategoryTone maps an order status category to its badge colour.
func CategoryTone(c model.StatusCategory) Tone {
	switch c {
	case model.StatusDelivered:
		return ToneGood
	case model.StatusInProcess:
		return ToneWarn
	case model.StatusCancelled:
		return ToneBad
	default:
		return ToneNone
	}
}

func orderItem(o model.Order) string {
	it, ok := o.Headline()
	if !ok {
		return "-"
	}
	s := it.ProductName
	if n := len(o.Items) - 1; n > 0 {
		s += fmt.Sprintf(" (+%d more)", n)
	}
	return s
}

// Orders is the account order history table.
var Orders = Table[model.Order]{
	Noun: "orders",
	Columns: []Column[model.Order]{
		{Header: "Order", Cell: func(o model.Order) string { return o.ID }},
		{Header: "Item", Cell: orderItem},
		{Header: "Size", Cell: func(o model.Order) string {
			if it, ok := o.Headline(); ok && it.Size != "" {
				return it.Size
			}
			return "-"
		}},
		{Header: "Qty", Cell: func(o model.Order) string {
			it, _ := o.Headline()
			return strconv.Itoa(it.Quantity)
		}},
		{Header: "Total", Cell: func(o model.Order) string { return model.FormatPrice(o.Total) }},
		{
			Header: "Fulfillment",
			Cell:   func(o model.Order) string { return o.Fulfillment },
			Tone:   func(o model.Order) Tone { return CategoryTone(o.FulfillmentCategory()) },
		},
		{
			Header: "Status",
			Cell:   func(o model.Order) string { return o.Status },
			Tone:   func(o model.Order) Tone { return CategoryTone(o.StatusCategory()) },
		},
		{Header: "Action", Cell: func(o model.Order) string { return o.StatusCategory().Action() }},
	},
}

// Products is the admin catalogue table.
var Products = Table[model.Product]{
	Noun: "products",
	Columns: []Column[model.Product]{
		{Header: "ID", Cell: func(p model.Product) string { return p.ID }},
		{Header: "Name", Cell: func(p model.Product) string { return p.Name }},
		{Header: "Category", Cell: func(p model.Product) string { return p.Category }},
		{Header: "Price", Cell: func(p model.Product) string { return model.FormatPrice(p.Price) }},
		{Header: "Stock", Cell: func(p model.Product) string { return strconv.Itoa(p.Stock) }},
		{
			Header: "Status",
			Cell:   func(p model.Product) string { return p.Status },
			Tone: func(p model.Product) Tone {
				switch p.Status {
				case "active":
					return ToneGood
				case "inactive":
					return ToneMuted
				}
				return ToneNone
			},
		},
	},
}

// Inventory is the admin stock table.
var Inventory = Table[model.InventoryItem]{
	Noun: "inventory items",
	Columns: []Column[model.InventoryItem]{
		{Header: "SKU", Cell: func(i model.InventoryItem) string { return i.SKU }},
		{Header: "Name", Cell: func(i model.InventoryItem) string { return i.Name }},
		{Header: "Size", Cell: func(i model.InventoryItem) string { return i.Size }},
		{Header: "Color", Cell: func(i model.InventoryItem) string { return i.Color }},
		{Header: "Stock", Cell: func(i model.InventoryItem) string { return strconv.Itoa(i.Stock) }},
		{
			Header: "Level",
			Cell:   func(i model.InventoryItem) string { return string(i.Level()) },
			Tone: func(i model.InventoryItem) Tone {
				switch i.Level() {
				case model.StockOut:
					return ToneBad
				case model.StockLow:
					return ToneWarn
				}
				return ToneGood
			},
		},
	},
}

// Dashboard renders the admin overview card.
func (p *Printer) Dashboard(o model.DashboardOverview) error {
	return p.KeyValues("Dashboard",
		[2]string{"Total products", strconv.Itoa(o.TotalProducts)},
		[2]string{"Revenue", model.FormatPrice(o.Revenue)},
		[2]string{"Growth", o.Growth},
		[2]string{"Users", strconv.Itoa(o.UsersCount)},
	)
}

// InventoryOverview renders the stock alert counters.
func (p *Printer) InventoryOverview(o model.InventoryOverview) error {
	return p.KeyValues("Inventory alerts",
		[2]string{"Low stock items", strconv.Itoa(o.LowStockItems)},
		[2]string{"Out of stock", strconv.Itoa(o.OutOfStock)},
		[2]string{"Restock alerts", strconv.Itoa(o.RestockAlerts)},
	)
}
