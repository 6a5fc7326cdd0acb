package services

import (
	"shop-cart/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		discount models.Discount
		want     string
	}{
		{"no discount", "30", models.Discount{}, "30"},
		{"flat amount", "30", models.Discount{Amount: dec("4.5")}, "25.5"},
		{"percentage", "80", models.Discount{Percentage: dec("25")}, "60"},
		{"percentage wins over amount", "80", models.Discount{Amount: dec("70"), Percentage: dec("10")}, "72"},
		{"amount larger than price", "10", models.Discount{Amount: dec("15")}, "0"},
		{"percentage above 100", "10", models.Discount{Percentage: dec("150")}, "0"},
		{"negative amount ignored", "10", models.Discount{Amount: dec("-5")}, "10"},
		{"negative price", "-3", models.Discount{}, "0"},
		{"fractional percentage keeps precision", "19.99", models.Discount{Percentage: dec("15")}, "16.9915"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectivePrice(dec(tt.price), tt.discount)
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestEffectivePriceStaysWithinUnitPrice(t *testing.T) {
	prices := []string{"0", "0.01", "1", "9.99", "30", "1234.56"}
	discounts := []models.Discount{
		{},
		{Amount: dec("0.5")},
		{Amount: dec("5000")},
		{Percentage: dec("1")},
		{Percentage: dec("99.9")},
		{Percentage: dec("100")},
		{Percentage: dec("250")},
		{Amount: dec("3"), Percentage: dec("50")},
	}

	for _, p := range prices {
		for _, d := range discounts {
			unit := dec(p)
			got := EffectivePrice(unit, d)
			assert.False(t, got.IsNegative(), "price %s discount %+v", p, d)
			assert.True(t, got.LessThanOrEqual(unit), "price %s discount %+v gave %s", p, d, got)
		}
	}
}

func TestLineTotals(t *testing.T) {
	item := line("P1", "12.50", 3)
	item.Discount = models.Discount{Amount: dec("2.5")}

	assert.True(t, dec("37.5").Equal(LineGross(item)))
	assert.True(t, dec("30").Equal(LineAdjusted(item)))
}

func TestCartDiscountIgnoresPointsLines(t *testing.T) {
	money := line("P1", "20", 2)
	money.Discount = models.Discount{Percentage: dec("10")}
	points := line("P2", "50", 1)
	points.PaymentType = models.PaymentPoints
	points.Discount = models.Discount{Amount: dec("10")}

	cart := Recalculate(models.Cart{Items: []models.LineItem{money, points}})

	assert.True(t, dec("4").Equal(CartDiscount(cart)))
}
