package dto

import "time"

// CreateUserRequest alta de usuario dentro de una empresa (sujeta al Subscription Gate).
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest credenciales de acceso.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse representación pública de un usuario (nunca incluye el hash).
type UserResponse struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResult envoltura {success, message, token, user}.
type LoginResult struct {
	Result
	Token string        `json:"token,omitempty"`
	User  *UserResponse `json:"user"`
}

// UserResult envoltura {success, message, user}.
type UserResult struct {
	Result
	User *UserResponse `json:"user"`
}

// UserListResult envoltura {success, message, users}.
type UserListResult struct {
	Result
	Users []UserResponse `json:"users"`
}
