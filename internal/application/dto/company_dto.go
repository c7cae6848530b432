package dto

import "time"

// RegisterCompanyRequest registra una empresa junto con su usuario administrador.
type RegisterCompanyRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Description string `json:"description"`

	AdminName     string `json:"admin_name"`
	AdminEmail    string `json:"admin_email"`
	AdminPhone    string `json:"admin_phone"`
	AdminPassword string `json:"admin_password"`
}

// CompanyResponse representación pública de una empresa.
type CompanyResponse struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Phone               string     `json:"phone,omitempty"`
	Address             string     `json:"address,omitempty"`
	Description         string     `json:"description,omitempty"`
	SubscriptionStatus  string     `json:"subscription_status"`
	SubscriptionPlan    string     `json:"subscription_plan"`
	MaxUsers            int        `json:"max_users"`
	MaxStorageMB        int        `json:"max_storage_mb"`
	SubscriptionExpires *time.Time `json:"subscription_expires_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// RegisterCompanyResult envoltura {success, message, company, admin}.
type RegisterCompanyResult struct {
	Result
	Company *CompanyResponse `json:"company"`
	Admin   *UserResponse    `json:"admin"`
}

// CompanyResult envoltura {success, message, company}.
type CompanyResult struct {
	Result
	Company *CompanyResponse `json:"company"`
}

// CompanyListResult envoltura {success, message, companies}.
type CompanyListResult struct {
	Result
	Companies []CompanyResponse `json:"companies"`
}
