package services

import (
	"fmt"
	"shop-cart/models"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var ErrLineNotFound = errors.New("cart line not found")

// Recalculate rebuilds every derived total from the line list.
func Recalculate(cart models.Cart) models.Cart {
	totals := models.Totals{GrossTotal: decimal.Zero, AdjustedTotal: decimal.Zero}
	for _, item := range cart.Items {
		if item.PaymentType.PayableInMoney() {
			totals.GrossTotal = totals.GrossTotal.Add(LineGross(item))
		}
		totals.AdjustedTotal = totals.AdjustedTotal.Add(LineAdjusted(item))
		if item.PaymentType.PayableInPoints() {
			totals.PointsTotal += item.UnitPoints() * int64(item.Quantity)
		}
		totals.ItemCount += item.Quantity
	}
	cart.Totals = totals
	return cart
}

// AddLine merges line into cart by product id and attributes, or appends it.
// A merged line keeps its existing price and discount.
func AddLine(cart models.Cart, line models.LineItem) (models.Cart, error) {
	if line.PaymentType == "" {
		line.PaymentType = models.PaymentMoney
	}
	if err := validateLine(line); err != nil {
		return cart, err
	}

	out := cart.Clone()
	for i := range out.Items {
		if out.Items[i].SameLine(line.ProductID, line.Attributes) {
			out.Items[i].Quantity += line.Quantity
			return Recalculate(out), nil
		}
	}

	single := models.Cart{Items: []models.LineItem{line}}.Clone()
	out.Items = append(out.Items, single.Items[0])
	return Recalculate(out), nil
}

func RemoveLine(cart models.Cart, productID string, attributes []string) (models.Cart, error) {
	idx := findLine(cart, productID, attributes)
	if idx < 0 {
		return cart, ErrLineNotFound
	}

	out := cart.Clone()
	out.Items = append(out.Items[:idx], out.Items[idx+1:]...)
	return Recalculate(out), nil
}

// DecrementLine lowers the quantity by one and drops the line at zero.
func DecrementLine(cart models.Cart, productID string, attributes []string) (models.Cart, error) {
	idx := findLine(cart, productID, attributes)
	if idx < 0 {
		return cart, ErrLineNotFound
	}
	return UpdateLineQuantity(cart, productID, attributes, cart.Items[idx].Quantity-1)
}

func UpdateLineQuantity(cart models.Cart, productID string, attributes []string, quantity int) (models.Cart, error) {
	if quantity < 0 {
		return cart, models.NewValidationError(map[string]string{"quantity": "Quantity cannot be negative"})
	}

	idx := findLine(cart, productID, attributes)
	if idx < 0 {
		return cart, ErrLineNotFound
	}
	if quantity == 0 {
		return RemoveLine(cart, productID, attributes)
	}

	out := cart.Clone()
	out.Items[idx].Quantity = quantity
	return Recalculate(out), nil
}

// SelectPaymentType settles a hybrid line on money or points at add time.
// Points are only selectable when the balance covers the whole line.
func SelectPaymentType(line models.LineItem, payWith models.PaymentType, availablePoints int64) (models.LineItem, error) {
	if line.PaymentType != models.PaymentHybrid || payWith == "" {
		return line, nil
	}

	switch payWith {
	case models.PaymentMoney:
		line.PaymentType = models.PaymentMoney
	case models.PaymentPoints:
		cost := line.UnitPoints() * int64(line.Quantity)
		if availablePoints < cost {
			return line, models.NewDomainError(models.CategoryInsufficientPoints,
				fmt.Sprintf("Insufficient points: need %d more points", cost-availablePoints))
		}
		line.PaymentType = models.PaymentPoints
	default:
		return line, models.NewValidationError(map[string]string{"payWith": "Choose money or points"})
	}
	return line, nil
}

func findLine(cart models.Cart, productID string, attributes []string) int {
	for i, item := range cart.Items {
		if item.SameLine(productID, attributes) {
			return i
		}
	}
	return -1
}

func validateLine(line models.LineItem) error {
	fields := map[string]string{}
	if line.ProductID == "" {
		fields["productId"] = "Product is required"
	}
	if line.Quantity < 1 {
		fields["quantity"] = "Quantity must be at least 1"
	}
	if line.UnitPrice.IsNegative() {
		fields["unitPrice"] = "Price cannot be negative"
	}
	if line.PointsPrice != nil && *line.PointsPrice < 0 {
		fields["pointsPrice"] = "Points price cannot be negative"
	}
	if line.Discount.Amount.IsNegative() || line.Discount.Percentage.IsNegative() {
		fields["discount"] = "Discount cannot be negative"
	}
	if !line.PaymentType.Valid() {
		fields["paymentType"] = "Payment type must be money, points or hybrid"
	}
	if len(fields) > 0 {
		return models.NewValidationError(fields)
	}
	return nil
}
