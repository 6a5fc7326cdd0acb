package models

import (
	"github.com/shopspring/decimal"
)

type CheckoutState string

const (
	CheckoutIdle       CheckoutState = "idle"
	CheckoutValidating CheckoutState = "validating"
	CheckoutSubmitting CheckoutState = "submitting"
	CheckoutSucceeded  CheckoutState = "succeeded"
)

type ShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type PaymentDetails struct {
	CardNumber     string `json:"cardNumber"`
	ExpiryDate     string `json:"expiryDate"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholderName"`
}

// CheckoutRequest is the snapshot taken when checkout begins. Build it with
// services.NewCheckoutRequest and pass it by value.
type CheckoutRequest struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	PointsToUse    int64           `json:"pointsToUse"`
	PointsDiscount decimal.Decimal `json:"pointsDiscount"`
	Total          decimal.Decimal `json:"total"`
	ItemCount      int             `json:"itemCount"`
	Shipping       ShippingAddress `json:"shippingAddress"`
	PaymentMethod  string          `json:"paymentMethod"`
	Payment        PaymentDetails  `json:"-"`
	Notes          string          `json:"notes"`
}

// CheckoutPayload is the body of POST /orders/checkout.
type CheckoutPayload struct {
	PointsToUse     int64           `json:"pointsToUse"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentDetails  PaymentDetails  `json:"paymentDetails"`
	Notes           string          `json:"notes"`
}

type Order struct {
	ID                  string          `json:"_id"`
	OrderNumber         string          `json:"orderNumber,omitempty"`
	TotalAmount         decimal.Decimal `json:"totalAmount"`
	LoyaltyPointsEarned int64           `json:"loyaltyPointsEarned"`
	LoyaltyPointsUsed   int64           `json:"loyaltyPointsUsed"`
	Status              string          `json:"status"`
	PaymentMethod       string          `json:"paymentMethod,omitempty"`
}

// CheckoutResult is what a successful checkout hands back to the caller.
type CheckoutResult struct {
	Order        Order           `json:"order"`
	PointsUsed   int64           `json:"pointsUsed"`
	PointsEarned int64           `json:"pointsEarned"`
	NewBalance   int64           `json:"newBalance"`
	FinalTotal   decimal.Decimal `json:"finalTotal"`
}
