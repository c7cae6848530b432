package entity

import "time"

// Roles válidos para User. Enumeración cerrada: los handlers y casos de uso
// consultan las funciones de capacidad, nunca comparan strings sueltos.
const (
	RoleUser        = "user"
	RoleAdmin       = "admin"
	RoleSystemAdmin = "system_admin"
)

// ValidRole indica si role pertenece a la enumeración.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin, RoleSystemAdmin:
		return true
	}
	return false
}

// User representa un usuario del sistema (pertenece a una Company primaria y
// puede tener accesos adicionales vía CompanyAccessGrant).
type User struct {
	ID                int64
	CompanyID         int64
	Name              string
	Email             string
	PasswordHash      string // bcrypt hash; vacío hasta el primer set
	Phone             string
	Role              string // user, admin, system_admin
	IsActive          bool
	ResetToken        string
	ResetTokenExpires *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CanManageCompany indica si el usuario puede administrar su empresa
// (usuarios, suscriptores, configuración de notificaciones).
func (u *User) CanManageCompany() bool {
	return u.Role == RoleAdmin || u.Role == RoleSystemAdmin
}

// CanManageSubscriptions indica si el usuario puede operar suscripciones de
// cualquier empresa (solo el administrador del sistema).
func (u *User) CanManageSubscriptions() bool {
	return u.Role == RoleSystemAdmin
}
