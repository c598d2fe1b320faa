package models

import "time"

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleVendor Role = "vendor"
)

func ValidRole(r Role) bool {
	return r == RoleBuyer || r == RoleVendor
}

// User carries the minimal account fields the lifecycle engine needs:
// role checks and the denormalized supplier projection for the search index.
type User struct {
	Id          string    `json:"id"`
	CompanyName string    `json:"companyName"`
	Email       string    `json:"email"`
	Country     string    `json:"country,omitempty"`
	Role        Role      `json:"role"`
	IsVerified  bool      `json:"isVerified"`
	CreatedAt   time.Time `json:"createdAt"`
}
