package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentMoney  PaymentType = "money"
	PaymentPoints PaymentType = "points"
	PaymentHybrid PaymentType = "hybrid"
)

func (p PaymentType) Valid() bool {
	switch p {
	case PaymentMoney, PaymentPoints, PaymentHybrid:
		return true
	}
	return false
}

// PayableInMoney reports whether the line counts toward the money totals.
func (p PaymentType) PayableInMoney() bool {
	return p == PaymentMoney || p == PaymentHybrid
}

// PayableInPoints reports whether the line counts toward the points total.
func (p PaymentType) PayableInPoints() bool {
	return p == PaymentPoints || p == PaymentHybrid
}

// Discount holds both discount forms. Percentage wins when positive.
type Discount struct {
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

type LineItem struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Image       string          `json:"image,omitempty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	PointsPrice *int64          `json:"pointsPrice,omitempty"`
	Quantity    int             `json:"quantity"`
	Attributes  []string        `json:"attributes"`
	Discount    Discount        `json:"discount"`
	PaymentType PaymentType     `json:"paymentType"`
}

// SameLine compares product id and the attribute list element by element.
func (l LineItem) SameLine(productID string, attributes []string) bool {
	if l.ProductID != productID || len(l.Attributes) != len(attributes) {
		return false
	}
	for i := range attributes {
		if l.Attributes[i] != attributes[i] {
			return false
		}
	}
	return true
}

// UnitPoints is the per-unit points cost, falling back to the money price.
func (l LineItem) UnitPoints() int64 {
	if l.PointsPrice != nil {
		return *l.PointsPrice
	}
	return l.UnitPrice.IntPart()
}

type Totals struct {
	GrossTotal    decimal.Decimal `json:"grossTotal"`
	AdjustedTotal decimal.Decimal `json:"adjustedTotal"`
	PointsTotal   int64           `json:"pointsTotal"`
	ItemCount     int             `json:"itemCount"`
}

type Cart struct {
	Items  []LineItem `json:"items"`
	Totals Totals     `json:"totals"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a copy that shares no slices with c.
func (c Cart) Clone() Cart {
	out := Cart{Totals: c.Totals, Items: make([]LineItem, len(c.Items))}
	for i, item := range c.Items {
		item.Attributes = append([]string{}, item.Attributes...)
		if item.PointsPrice != nil {
			pts := *item.PointsPrice
			item.PointsPrice = &pts
		}
		out.Items[i] = item
	}
	return out
}

// PersistedCart is the envelope written to the device cache.
type PersistedCart struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"savedAt"`
	Cart    Cart      `json:"cart"`
}

type RemoteCartItem struct {
	Product  RemoteProduct   `json:"productId"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// RemoteCart is the cart as held by the backend.
type RemoteCart struct {
	ID         string           `json:"_id"`
	UserID     string           `json:"userId"`
	Items      []RemoteCartItem `json:"items"`
	TotalPrice decimal.Decimal  `json:"totalPrice"`
	CreatedAt  *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time       `json:"updatedAt,omitempty"`
}

func (r *RemoteCart) QuantityOf(productID string) int {
	if r == nil {
		return 0
	}
	for _, item := range r.Items {
		if item.Product.ID == productID {
			return item.Quantity
		}
	}
	return 0
}
