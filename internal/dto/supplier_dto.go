package dto

type CreateSupplierRequest struct {
	Name         string  `json:"name"          validate:"required,min=2,max=120"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone"`
}

type SupplierResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
	IsActive     bool    `json:"is_active"`
}
