package http

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/tadbeer/tadbeer-api/internal/application/dto"
)

// accessChecker es el contrato mínimo que necesita el middleware para
// verificar el acceso multi-tenant. Lo implementa *access.Checker; el uso de
// interfaz evita el import circular.
type accessChecker interface {
	HasAccess(ctx context.Context, userID, companyID int64) (bool, error)
}

// RequireCompanyAccess devuelve un middleware Fiber que verifica que el
// usuario del token puede operar sobre la empresa de la ruta (:companyID).
// Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 400 Bad Request → :companyID ausente o no numérico.
//   - 403 Forbidden   → ni empresa primaria ni grant activo.
//   - 503 Service Unavailable → fallo de infraestructura al consultar la DB.
func RequireCompanyAccess(checker accessChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "user_id no encontrado en el token",
			})
		}

		companyID, err := CompanyParam(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code:    "VALIDATION",
				Message: "companyID inválido en la ruta",
			})
		}

		ok, err := checker.HasAccess(c.Context(), userID, companyID)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "ACCESS_CHECK_FAILED",
				Message: "no se pudo verificar el acceso, intente más tarde",
			})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "sin acceso a la empresa solicitada",
			})
		}
		return c.Next()
	}
}

// CompanyParam extrae y valida el :companyID de la ruta.
func CompanyParam(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("companyID"), 10, 64)
}
