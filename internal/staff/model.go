package staff

import "time"

// Member is a GRO staff member eligible for commission. Name is a display
// label only; aggregation keys on ID.
type Member struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateMemberRequest struct {
	Name  string `json:"name" validate:"required,max=120"`
	Phone string `json:"phone" validate:"omitempty,max=40"`
}

type UpdateMemberRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	IsActive *bool   `json:"is_active,omitempty"`
}
