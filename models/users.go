package models

import "strings"

type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleDelivery   Role = "DELIVERY"
	RoleAdmin      Role = "ADMIN"
	RoleRestaurant Role = "RESTAURANT"
)

// ParseRole normalises the role string returned by the API.
func ParseRole(s string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(s)))
}

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleDelivery, RoleAdmin, RoleRestaurant:
		return true
	}
	return false
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Phone string `json:"phone,omitempty"`
}
