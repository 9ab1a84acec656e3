package invoices

type ItemRequest struct {
	Description string `json:"description" validate:"required,max=255"`
	Quantity    int64  `json:"quantity" validate:"gt=0,lte=1000000"`
	UnitPrice   int64  `json:"unit_price" validate:"gte=0,lte=1000000000000000"`
}

type CreateInvoiceRequest struct {
	ClientID   int64         `json:"client_id" validate:"required,gt=0"`
	IssueDate  string        `json:"issue_date" validate:"required,datetime=2006-01-02"`
	DueDate    string        `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Items      []ItemRequest `json:"items" validate:"required,min=1,dive"`
	TaxRateBPS *int64        `json:"tax_rate_bps" validate:"omitempty,gte=0,lte=10000"`
	Discount   int64         `json:"discount" validate:"gte=0,lte=1000000000000000"`
	Notes      string        `json:"notes" validate:"max=1000"`
	Send       bool          `json:"send"`
}

type StatusRequest struct {
	Status        string `json:"status" validate:"required,oneof=draft sent paid overdue cancelled"`
	PaymentDate   string `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	PaymentMethod string `json:"payment_method" validate:"max=50"`
}
