package expenses

type CreateExpenseRequest struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Category    string `json:"category" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Amount      int64  `json:"amount" validate:"gt=0"`
	Status      string `json:"status" validate:"omitempty,oneof=pending completed"`
	Vendor      string `json:"vendor" validate:"max=200"`
	Reference   string `json:"reference" validate:"max=100"`
}

type UpdateExpenseRequest struct {
	Date        *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Category    *string `json:"category" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Amount      *int64  `json:"amount" validate:"omitempty,gt=0"`
	Vendor      *string `json:"vendor" validate:"omitempty,max=200"`
	Reference   *string `json:"reference" validate:"omitempty,max=100"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed cancelled"`
}
