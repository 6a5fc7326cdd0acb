package services

import (
	"shop-cart/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// EffectivePrice applies a line discount to a unit price. A positive
// percentage takes precedence over a flat amount. The result stays within
// [0, unitPrice] and keeps full precision.
func EffectivePrice(unitPrice decimal.Decimal, discount models.Discount) decimal.Decimal {
	if unitPrice.IsNegative() {
		return decimal.Zero
	}

	price := unitPrice
	switch {
	case discount.Percentage.IsPositive():
		price = unitPrice.Sub(unitPrice.Mul(discount.Percentage).Div(hundred))
	case discount.Amount.IsPositive():
		price = unitPrice.Sub(discount.Amount)
	}

	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

func LineGross(item models.LineItem) decimal.Decimal {
	return item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

func LineAdjusted(item models.LineItem) decimal.Decimal {
	return EffectivePrice(item.UnitPrice, item.Discount).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// CartDiscount is what line discounts take off the money-payable lines.
func CartDiscount(cart models.Cart) decimal.Decimal {
	total := decimal.Zero
	for _, item := range cart.Items {
		if item.PaymentType.PayableInMoney() {
			total = total.Add(LineGross(item).Sub(LineAdjusted(item)))
		}
	}
	return total
}
