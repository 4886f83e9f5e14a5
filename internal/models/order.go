// internal/models/order.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the lifecycle states a sales order can be in.
type OrderStatus string

const (
	StatusPending  OrderStatus = "pending"
	StatusVoid     OrderStatus = "void"
	StatusConfirm  OrderStatus = "confirm"
	StatusComplete OrderStatus = "complete"
)

// ValidStatus reports whether s is one of the known order states.
func ValidStatus(s string) bool {
	switch OrderStatus(s) {
	case StatusPending, StatusVoid, StatusConfirm, StatusComplete:
		return true
	}
	return false
}

// LineItem is one product line inside an order. LineTotal is whatever the
// storage layer reports; quantity x unit price is not re-derived here because
// historical rows are known to disagree.
type LineItem struct {
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// OrderRecord is one sales order with its items in storage emission order.
type OrderRecord struct {
	ID          int64           `json:"id"`
	CreatedAt   time.Time       `json:"createdAt"`
	Status      OrderStatus     `json:"status"`
	CompanyName string          `json:"companyName"`
	FinalTotal  decimal.Decimal `json:"finalTotal"`
	OrderOption string          `json:"orderOption"`
	BuyerArea   string          `json:"buyerArea"`
	Salesperson string          `json:"salesperson"`
	Items       []LineItem      `json:"items"`
}
