package model

import (
	"github.com/shopspring/decimal"
)

// ListItem is one shopping-list entry. ID is the composite key of product and
// retailer; Price is a snapshot taken when the entry was added.
type ListItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Image       string          `json:"image"`
	Size        string          `json:"size"`
	Retailer    Retailer        `json:"retailer"`
	Price       decimal.Decimal `json:"price"`
	Checked     bool            `json:"checked"`
}

func ListItemID(productID string, r Retailer) string {
	return productID + "_" + string(r)
}

func NewListItem(p Product, pp PricePoint) ListItem {
	return ListItem{
		ID:          ListItemID(p.ID, pp.Retailer),
		ProductID:   p.ID,
		ProductName: p.Name,
		Image:       p.Image,
		Size:        p.Size,
		Retailer:    pp.Retailer,
		Price:       pp.Price,
		Checked:     false,
	}
}
