package reservations

type CreateReservationRequest struct {
	BookingCode     string `json:"booking_code" validate:"required,max=40"`
	CustomerName    string `json:"customer_name" validate:"required,max=200"`
	Property        string `json:"property" validate:"omitempty,max=200"`
	CheckIn         string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut        string `json:"check_out" validate:"required,datetime=2006-01-02"`
	StaffID         *int64 `json:"staff_id,omitempty" validate:"omitempty,gt=0"`
	FinalPrice      int64  `json:"final_price" validate:"gte=0"`
	CustomerDeposit int64  `json:"customer_deposit" validate:"gte=0"`
	BasePrice       *int64 `json:"base_price,omitempty" validate:"omitempty,gte=0"`
	Notes           string `json:"notes" validate:"omitempty,max=2000"`
}

type UpdateReservationRequest struct {
	CustomerName    *string `json:"customer_name,omitempty" validate:"omitempty,min=1,max=200"`
	Property        *string `json:"property,omitempty" validate:"omitempty,max=200"`
	CheckIn         *string `json:"check_in,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CheckOut        *string `json:"check_out,omitempty" validate:"omitempty,datetime=2006-01-02"`
	StaffID         *int64  `json:"staff_id,omitempty" validate:"omitempty,gt=0"`
	ClearStaff      bool    `json:"clear_staff,omitempty"`
	FinalPrice      *int64  `json:"final_price,omitempty" validate:"omitempty,gte=0"`
	CustomerDeposit *int64  `json:"customer_deposit,omitempty" validate:"omitempty,gte=0"`
	BasePrice       *int64  `json:"base_price,omitempty" validate:"omitempty,gte=0"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Proses Selesai Batal"`
}
