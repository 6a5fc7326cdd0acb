package models

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message"`
	Error    string            `json:"error,omitempty"`
	Kind     ErrorKind         `json:"kind,omitempty"`
	Category FailureCategory   `json:"category,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

type CartView struct {
	Cart    Cart          `json:"cart"`
	Local   Cart          `json:"local"`
	Remote  *RemoteCart   `json:"remote"`
	Display TotalsDisplay `json:"display"`
}

// TotalsDisplay holds the reconciled totals rounded for rendering.
type TotalsDisplay struct {
	GrossTotal    string `json:"grossTotal"`
	AdjustedTotal string `json:"adjustedTotal"`
	Discount      string `json:"discount"`
	PointsTotal   int64  `json:"pointsTotal"`
	ItemCount     int    `json:"itemCount"`
}

type PointsQuote struct {
	AvailablePoints int64  `json:"availablePoints"`
	MaxUsablePoints int64  `json:"maxUsablePoints"`
	PointsToUse     int64  `json:"pointsToUse"`
	PointsDiscount  string `json:"pointsDiscount"`
	AdjustedTotal   string `json:"adjustedTotal"`
	FinalTotal      string `json:"finalTotal"`
	PointsEarned    int64  `json:"pointsEarned"`
}
