package models

import "time"

type User struct {
	ID           int       `json:"id"`
	CompanyID    int       `json:"company_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Name         string    `json:"name"`
	Role         string    `json:"role"`        // admin or employee
	ResourceNo   string    `json:"resource_no"` // BC resource number this user logs time as
	IsActive     bool      `json:"is_active"`   // true = active, false = suspended
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful authentication
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// SignupRequest represents the request body for creating a user
type SignupRequest struct {
	CompanyID  int    `json:"company_id"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	ResourceNo string `json:"resource_no"`
}
