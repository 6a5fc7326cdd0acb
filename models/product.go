package models

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// RemoteProduct is the product reference embedded in a backend cart line.
// The backend sends either the populated document or the bare id.
type RemoteProduct struct {
	ID        string          `json:"_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Images    []string        `json:"images,omitempty"`
	SalePrice decimal.Decimal `json:"salePrice"`
	IsOnSale  bool            `json:"isOnSale"`
}

func (p *RemoteProduct) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*p = RemoteProduct{ID: id}
		return nil
	}

	type plain RemoteProduct
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = RemoteProduct(v)
	return nil
}

// Image returns the first product image, if any.
func (p RemoteProduct) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
