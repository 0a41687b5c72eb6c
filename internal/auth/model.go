package auth

import "time"

const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)

// User is a back-office account. Customers never log in.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func validRole(role string) bool {
	return role == RoleAdmin || role == RoleStaff
}
