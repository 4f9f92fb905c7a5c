package user

import "time"

// User is a vendor (buyer) account. Admins share the table with role admin.
type User struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Phone     *string   `json:"phone,omitempty"`
	StallName *string   `json:"stallName,omitempty"`
	Location  *string   `json:"location,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type RegisterParams struct {
	Name      string
	Email     string
	Password  string
	Phone     *string
	StallName *string
	Location  *string
}
