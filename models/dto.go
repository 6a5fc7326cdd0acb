package models

import "github.com/shopspring/decimal"

type AddItemRequest struct {
	ProductID   string          `json:"productId" binding:"required"`
	Name        string          `json:"name"`
	Image       string          `json:"image"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	PointsPrice *int64          `json:"pointsPrice" binding:"omitempty,gte=0"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
	Attributes  []string        `json:"attributes"`
	Discount    Discount        `json:"discount"`
	PaymentType PaymentType     `json:"paymentType" binding:"omitempty,oneof=money points hybrid"`
	PayWith     PaymentType     `json:"payWith" binding:"omitempty,oneof=money points"`
}

func (r AddItemRequest) LineItem() LineItem {
	return LineItem{
		ProductID:   r.ProductID,
		Name:        r.Name,
		Image:       r.Image,
		UnitPrice:   r.UnitPrice,
		PointsPrice: r.PointsPrice,
		Quantity:    r.Quantity,
		Attributes:  r.Attributes,
		Discount:    r.Discount,
		PaymentType: r.PaymentType,
	}
}

type UpdateItemRequest struct {
	ProductID  string   `json:"productId" binding:"required"`
	Attributes []string `json:"attributes"`
	Quantity   int      `json:"quantity" binding:"min=0"`
}

type RemoveItemRequest struct {
	ProductID  string   `json:"productId" binding:"required"`
	Attributes []string `json:"attributes"`
}

type PointsQuoteRequest struct {
	PointsToUse int64 `json:"pointsToUse" binding:"min=0"`
}

type ShippingInput struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,loose_email"`
	Phone    string `json:"phone" validate:"required,phone"`
	Street   string `json:"street" validate:"required"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	ZipCode  string `json:"zipCode" validate:"required,zipcode"`
	Country  string `json:"country"`
}

type PaymentInput struct {
	CardholderName string `json:"cardholderName" validate:"required"`
	CardNumber     string `json:"cardNumber" validate:"required,card_number"`
	ExpiryDate     string `json:"expiryDate" validate:"required,expiry"`
	CVV            string `json:"cvv" validate:"required,cvv"`
}

type CheckoutInput struct {
	ShippingInput
	PaymentInput
	PointsToUse   int64  `json:"pointsToUse" validate:"gte=0"`
	PaymentMethod string `json:"paymentMethod"`
}
