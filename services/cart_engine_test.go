package services

import (
	"shop-cart/models"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyCart() models.Cart {
	return Recalculate(models.Cart{Items: []models.LineItem{}})
}

func TestAddLine_NewLine(t *testing.T) {
	cart, err := AddLine(emptyCart(), line("P1", "30", 2, "M", "Black"))
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.True(t, dec("60").Equal(cart.Totals.GrossTotal))
	assert.True(t, dec("60").Equal(cart.Totals.AdjustedTotal))
	assert.Equal(t, 2, cart.Totals.ItemCount)
}

func TestAddLine_MergesSameVariant(t *testing.T) {
	cart, err := AddLine(emptyCart(), line("P1", "30", 2, "M", "Black"))
	require.NoError(t, err)

	cart, err = AddLine(cart, line("P1", "30", 1, "M", "Black"))
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.True(t, dec("90").Equal(cart.Totals.GrossTotal))
}

func TestAddLine_MergeKeepsExistingPrice(t *testing.T) {
	cart, err := AddLine(emptyCart(), line("P1", "30", 1))
	require.NoError(t, err)

	cart, err = AddLine(cart, line("P1", "25", 1))
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.True(t, dec("30").Equal(cart.Items[0].UnitPrice))
	assert.True(t, dec("60").Equal(cart.Totals.GrossTotal))
}

func TestAddLine_AttributesAreOrdered(t *testing.T) {
	cart, err := AddLine(emptyCart(), line("P1", "30", 1, "M", "Black"))
	require.NoError(t, err)

	cart, err = AddLine(cart, line("P1", "30", 1, "Black", "M"))
	require.NoError(t, err)

	assert.Len(t, cart.Items, 2)
}

func TestAddLine_DefaultsToMoney(t *testing.T) {
	item := line("P1", "10", 1)
	item.PaymentType = ""

	cart, err := AddLine(emptyCart(), item)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentMoney, cart.Items[0].PaymentType)
}

func TestAddLine_Rejects(t *testing.T) {
	negativePoints := int64(-1)
	tests := []struct {
		name  string
		item  models.LineItem
		field string
	}{
		{"missing product", line("", "10", 1), "productId"},
		{"zero quantity", line("P1", "10", 0), "quantity"},
		{"negative price", line("P1", "-1", 1), "unitPrice"},
		{"negative points price", func() models.LineItem {
			l := line("P1", "10", 1)
			l.PointsPrice = &negativePoints
			return l
		}(), "pointsPrice"},
		{"negative discount", func() models.LineItem {
			l := line("P1", "10", 1)
			l.Discount.Amount = dec("-2")
			return l
		}(), "discount"},
		{"unknown payment type", func() models.LineItem {
			l := line("P1", "10", 1)
			l.PaymentType = "barter"
			return l
		}(), "paymentType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := emptyCart()
			cart, err := AddLine(before, tt.item)
			require.Error(t, err)

			appErr := models.AsAppError(err)
			assert.Equal(t, models.KindValidation, appErr.Kind)
			assert.Contains(t, appErr.Fields, tt.field)
			assert.Empty(t, cart.Items)
		})
	}
}

func TestAddLine_DoesNotAliasInput(t *testing.T) {
	attrs := []string{"M"}
	item := line("P1", "10", 1, attrs...)
	before := emptyCart()

	cart, err := AddLine(before, item)
	require.NoError(t, err)

	item.Attributes[0] = "XL"
	assert.Equal(t, []string{"M"}, cart.Items[0].Attributes)
	assert.Empty(t, before.Items)
}

func TestAddLine_RepeatedAddsSumQuantities(t *testing.T) {
	cart := emptyCart()
	quantities := []int{1, 4, 2, 7, 1}
	want := 0
	for _, q := range quantities {
		var err error
		cart, err = AddLine(cart, line("P9", "3.25", q, "L"))
		require.NoError(t, err)
		want += q
	}

	require.Len(t, cart.Items, 1)
	assert.Equal(t, want, cart.Items[0].Quantity)
}

func TestRecalculate_PaymentTypes(t *testing.T) {
	pts := int64(400)
	money := line("P1", "10", 2)
	points := line("P2", "30", 1)
	points.PaymentType = models.PaymentPoints
	points.PointsPrice = &pts
	hybrid := line("P3", "12.75", 2)
	hybrid.PaymentType = models.PaymentHybrid

	cart := Recalculate(models.Cart{Items: []models.LineItem{money, points, hybrid}})

	assert.True(t, dec("45.5").Equal(cart.Totals.GrossTotal), cart.Totals.GrossTotal.String())
	assert.True(t, dec("75.5").Equal(cart.Totals.AdjustedTotal), cart.Totals.AdjustedTotal.String())
	assert.Equal(t, int64(400+12*2), cart.Totals.PointsTotal)
	assert.Equal(t, 5, cart.Totals.ItemCount)
}

func TestAdjustedTotalNeverDrifts(t *testing.T) {
	item := line("P2", "19.99", 1, "S")
	item.Discount = models.Discount{Percentage: dec("15")}

	cart := emptyCart()
	steps := []func(models.Cart) (models.Cart, error){
		func(c models.Cart) (models.Cart, error) { return AddLine(c, line("P1", "30", 2, "M")) },
		func(c models.Cart) (models.Cart, error) { return AddLine(c, item) },
		func(c models.Cart) (models.Cart, error) { return UpdateLineQuantity(c, "P1", []string{"M"}, 5) },
		func(c models.Cart) (models.Cart, error) { return AddLine(c, item) },
		func(c models.Cart) (models.Cart, error) { return DecrementLine(c, "P2", []string{"S"}) },
		func(c models.Cart) (models.Cart, error) { return AddLine(c, line("P3", "7.10", 3)) },
		func(c models.Cart) (models.Cart, error) { return RemoveLine(c, "P1", []string{"M"}) },
	}

	for i, step := range steps {
		var err error
		cart, err = step(cart)
		require.NoError(t, err, "step %d", i)

		sum := decimal.Zero
		for _, it := range cart.Items {
			sum = sum.Add(EffectivePrice(it.UnitPrice, it.Discount).Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		assert.True(t, sum.Equal(cart.Totals.AdjustedTotal), "step %d: %s != %s", i, sum, cart.Totals.AdjustedTotal)
	}
}

func TestRemoveLine(t *testing.T) {
	cart, _ := AddLine(emptyCart(), line("P1", "10", 1, "M"))
	cart, _ = AddLine(cart, line("P1", "10", 1, "L"))

	cart, err := RemoveLine(cart, "P1", []string{"M"})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, []string{"L"}, cart.Items[0].Attributes)

	_, err = RemoveLine(cart, "P1", []string{"M"})
	assert.True(t, errors.Is(err, ErrLineNotFound))
}

func TestDecrementLine(t *testing.T) {
	cart, _ := AddLine(emptyCart(), line("P1", "10", 2))

	cart, err := DecrementLine(cart, "P1", []string{})
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	cart, err = DecrementLine(cart, "P1", []string{})
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Totals.GrossTotal.IsZero())

	_, err = DecrementLine(cart, "P1", []string{})
	assert.True(t, errors.Is(err, ErrLineNotFound))
}

func TestUpdateLineQuantity(t *testing.T) {
	cart, _ := AddLine(emptyCart(), line("P1", "10", 2))

	cart, err := UpdateLineQuantity(cart, "P1", []string{}, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, cart.Items[0].Quantity)
	assert.True(t, dec("60").Equal(cart.Totals.GrossTotal))

	_, err = UpdateLineQuantity(cart, "P1", []string{}, -1)
	assert.Equal(t, models.KindValidation, models.KindOf(err))

	cart, err = UpdateLineQuantity(cart, "P1", []string{}, 0)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestSelectPaymentType(t *testing.T) {
	pts := int64(300)
	hybrid := line("P1", "15", 2)
	hybrid.PaymentType = models.PaymentHybrid
	hybrid.PointsPrice = &pts

	t.Run("money", func(t *testing.T) {
		got, err := SelectPaymentType(hybrid, models.PaymentMoney, 0)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentMoney, got.PaymentType)
	})

	t.Run("points with enough balance", func(t *testing.T) {
		got, err := SelectPaymentType(hybrid, models.PaymentPoints, 600)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentPoints, got.PaymentType)
	})

	t.Run("points without enough balance", func(t *testing.T) {
		_, err := SelectPaymentType(hybrid, models.PaymentPoints, 599)
		appErr := models.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, models.KindDomain, appErr.Kind)
		assert.Equal(t, models.CategoryInsufficientPoints, appErr.Category)
		assert.Contains(t, appErr.Message, "need 1 more points")
	})

	t.Run("non hybrid lines are untouched", func(t *testing.T) {
		money := line("P2", "5", 1)
		got, err := SelectPaymentType(money, models.PaymentPoints, 0)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentMoney, got.PaymentType)
	})
}
