package clients

type CreateClientRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Company *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

type UpdateClientRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Company  *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=500"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type ListClientsRequest struct {
	IsActive *bool
	Search   string
	Limit    int
	Offset   int
}
