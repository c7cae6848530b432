// Package access resuelve el control de acceso multi-tenant: qué empresas
// puede tocar un usuario.
package access

import (
	"context"
	"fmt"

	"github.com/tadbeer/tadbeer-api/internal/domain"
	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
)

// Checker decide el acceso de un usuario a una empresa. Un usuario accede a
// su empresa primaria o a cualquier empresa con un grant activo; el
// administrador del sistema accede a todas.
type Checker struct {
	users  repository.UserRepository
	grants repository.AccessGrantRepository
}

// NewChecker construye el verificador.
func NewChecker(users repository.UserRepository, grants repository.AccessGrantRepository) *Checker {
	return &Checker{users: users, grants: grants}
}

// HasAccess indica si userID puede operar sobre companyID. Un usuario
// inexistente o inactivo no tiene acceso a nada.
func (c *Checker) HasAccess(ctx context.Context, userID, companyID int64) (bool, error) {
	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("access: get user %d: %w", userID, err)
	}
	if user == nil || !user.IsActive {
		return false, nil
	}
	return c.userHasAccess(ctx, user, companyID)
}

// RequireAccess es HasAccess pero convierte la denegación en domain.ErrForbidden,
// para casos de uso que tratan la falta de acceso como error.
func (c *Checker) RequireAccess(ctx context.Context, userID, companyID int64) error {
	ok, err := c.HasAccess(ctx, userID, companyID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}

// AccessibleCompanies devuelve los IDs de empresa a los que el usuario tiene
// acceso explícito: la primaria más las de grants activos, sin duplicados.
func (c *Checker) AccessibleCompanies(ctx context.Context, userID int64) ([]int64, error) {
	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("access: get user %d: %w", userID, err)
	}
	if user == nil || !user.IsActive {
		return nil, nil
	}
	ids := []int64{user.CompanyID}
	seen := map[int64]bool{user.CompanyID: true}
	grants, err := c.grants.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("access: list grants for user %d: %w", userID, err)
	}
	for _, g := range grants {
		if g.IsActive && !seen[g.CompanyID] {
			seen[g.CompanyID] = true
			ids = append(ids, g.CompanyID)
		}
	}
	return ids, nil
}

func (c *Checker) userHasAccess(ctx context.Context, user *entity.User, companyID int64) (bool, error) {
	if user.Role == entity.RoleSystemAdmin {
		return true, nil
	}
	if user.CompanyID == companyID {
		return true, nil
	}
	ok, err := c.grants.HasActiveGrant(ctx, user.ID, companyID)
	if err != nil {
		return false, fmt.Errorf("access: check grant user %d company %d: %w", user.ID, companyID, err)
	}
	return ok, nil
}
