package model

// Role identifies the kind of account a user holds.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// User is the authenticated account returned by the backend.
type User struct {
	// ID is the unique identifier for this user.
	ID string `json:"id"`

	// Role determines what the user can see; customers are scoped to
	// their own orders.
	Role Role `json:"role"`

	// Name is the display name.
	Name string `json:"name"`

	// Email is the login identifier.
	Email string `json:"email"`
}
