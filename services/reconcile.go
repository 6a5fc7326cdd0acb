package services

import (
	"shop-cart/models"

	"github.com/shopspring/decimal"
)

// Reconcile produces the cart to present from the optimistic local cart and
// the last authoritative snapshot from the backend.
//
// Without a snapshot the local cart is returned unchanged. With one, the
// snapshot decides which products are present, how many and at what unit
// price. Local lines only contribute what the backend does not track: the
// name, the variant attributes, points pricing, the payment type and a
// discount that is still valid for the server price. Local variants of one
// product survive while their quantities add up to the server quantity;
// otherwise they collapse into a single line. The result is ordered by local
// insertion with server-only products appended.
func Reconcile(local models.Cart, remote *models.RemoteCart) models.Cart {
	if remote == nil {
		return Recalculate(local.Clone())
	}

	type remoteLine struct {
		item     models.RemoteCartItem
		quantity int
	}
	remoteByID := map[string]*remoteLine{}
	var remoteOrder []string
	for _, item := range remote.Items {
		if item.Product.ID == "" || item.Quantity < 1 {
			continue
		}
		if rl, ok := remoteByID[item.Product.ID]; ok {
			rl.quantity += item.Quantity
			continue
		}
		remoteByID[item.Product.ID] = &remoteLine{item: item, quantity: item.Quantity}
		remoteOrder = append(remoteOrder, item.Product.ID)
	}

	localByID := map[string][]models.LineItem{}
	var localOrder []string
	for _, item := range local.Clone().Items {
		if _, seen := localByID[item.ProductID]; !seen {
			localOrder = append(localOrder, item.ProductID)
		}
		localByID[item.ProductID] = append(localByID[item.ProductID], item)
	}

	out := models.Cart{Items: []models.LineItem{}}
	for _, id := range localOrder {
		rl, ok := remoteByID[id]
		if !ok {
			continue
		}
		unit := remoteUnitPrice(rl.item)
		lines := localByID[id]

		if sumQuantity(lines) == rl.quantity {
			for _, line := range lines {
				out.Items = append(out.Items, withServerPrice(line, unit))
			}
			continue
		}

		line := withServerPrice(lines[0], unit)
		line.Quantity = rl.quantity
		out.Items = append(out.Items, line)
	}

	for _, id := range remoteOrder {
		if _, ok := localByID[id]; ok {
			continue
		}
		rl := remoteByID[id]
		out.Items = append(out.Items, models.LineItem{
			ProductID:   id,
			Name:        rl.item.Product.Title,
			Image:       rl.item.Product.Image(),
			UnitPrice:   remoteUnitPrice(rl.item),
			Quantity:    rl.quantity,
			Attributes:  []string{},
			PaymentType: models.PaymentMoney,
		})
	}

	return Recalculate(out)
}

func remoteUnitPrice(item models.RemoteCartItem) decimal.Decimal {
	switch {
	case item.Price.IsPositive():
		return item.Price
	case item.Product.IsOnSale && item.Product.SalePrice.IsPositive():
		return item.Product.SalePrice
	default:
		return item.Product.Price
	}
}

// withServerPrice drops the local discount once the backend prices the line
// differently, since the server price already reflects any discount it applies.
func withServerPrice(line models.LineItem, unit decimal.Decimal) models.LineItem {
	if !line.UnitPrice.Equal(unit) {
		line.UnitPrice = unit
		line.Discount = models.Discount{}
	}
	return line
}

func sumQuantity(lines []models.LineItem) int {
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return total
}
