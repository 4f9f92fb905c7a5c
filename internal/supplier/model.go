package supplier

import "time"

type Supplier struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Password     string    `json:"-"`
	BusinessName string    `json:"businessName"`
	Phone        string    `json:"phone"`
	Address      *string   `json:"address,omitempty"`
	City         *string   `json:"city,omitempty"`
	State        *string   `json:"state,omitempty"`
	IsVerified   bool      `json:"isVerified"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type RegisterParams struct {
	Name         string
	Email        string
	Password     string
	BusinessName string
	Phone        string
	Address      *string
	City         *string
	State        *string
}

// UpdateProfileParams leaves nil fields unchanged.
type UpdateProfileParams struct {
	Name         *string
	BusinessName *string
	Phone        *string
	Address      *string
	City         *string
	State        *string
}
