package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/tadbeer/tadbeer-api/internal/application/admin"
	"github.com/tadbeer/tadbeer-api/internal/application/dto"
	"github.com/tadbeer/tadbeer-api/internal/application/subscription"
)

// AdminHandler maneja el panel de administración del sistema. Todas las rutas
// exigen rol system_admin (RequireRole en el router).
type AdminHandler struct {
	uc *admin.UseCase
}

// NewAdminHandler construye el handler.
func NewAdminHandler(uc *admin.UseCase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

// Plans devuelve la matriz de planes disponibles.
// GET /api/admin/plans
func (h *AdminHandler) Plans(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"plans":   subscription.Plans(),
	})
}

// ListCompanies lista todas las empresas del sistema.
// GET /api/admin/companies?page=&limit=
func (h *AdminHandler) ListCompanies(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	list, err := h.uc.ListCompanies(c.Context(), page)
	if err != nil {
		return respondError(c, err)
	}
	companies := make([]dto.CompanyResponse, 0, len(list))
	for _, co := range list {
		companies = append(companies, toCompanyResponse(co))
	}
	return c.JSON(dto.CompanyListResult{
		Result:    ok("تم جلب الشركات بنجاح"),
		Companies: companies,
	})
}

// UpdateSubscription cambia plan y vigencia de una empresa.
// PUT /api/admin/companies/:id/subscription
func (h *AdminHandler) UpdateSubscription(c *fiber.Ctx) error {
	companyID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.UpdateSubscriptionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	info, err := h.uc.UpdateSubscription(c.Context(), companyID, GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SubscriptionResult{
		Result:       ok("تم تحديث الاشتراك بنجاح"),
		Subscription: info,
	})
}

// SuspendSubscription suspende la suscripción de una empresa.
// POST /api/admin/companies/:id/suspend
func (h *AdminHandler) SuspendSubscription(c *fiber.Ctx) error {
	companyID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.SuspendSubscriptionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.SuspendSubscription(c.Context(), companyID, GetUserID(c), in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(ok("تم إيقاف الاشتراك بنجاح"))
}

// ReactivateSubscription reactiva una suscripción suspendida.
// POST /api/admin/companies/:id/reactivate
func (h *AdminHandler) ReactivateSubscription(c *fiber.Ctx) error {
	companyID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.ReactivateSubscriptionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	info, err := h.uc.ReactivateSubscription(c.Context(), companyID, GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SubscriptionResult{
		Result:       ok("تمت إعادة تفعيل الاشتراك بنجاح"),
		Subscription: info,
	})
}

// SystemStatistics devuelve los totales globales del sistema.
// GET /api/admin/statistics
func (h *AdminHandler) SystemStatistics(c *fiber.Ctx) error {
	stats, err := h.uc.SystemStatistics(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SystemStatisticsResult{
		Result:     ok("تم جلب إحصائيات النظام بنجاح"),
		Statistics: stats,
	})
}

// ActivityLogs lista la bitácora administrativa.
// GET /api/admin/logs?page=&limit=
func (h *AdminHandler) ActivityLogs(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	list, err := h.uc.ActivityLogs(c.Context(), page)
	if err != nil {
		return respondError(c, err)
	}
	logs := make([]dto.AdminLogEntry, 0, len(list))
	for _, l := range list {
		logs = append(logs, dto.AdminLogEntry{
			ID:          l.ID,
			CompanyID:   l.CompanyID,
			CompanyName: l.CompanyName,
			AdminName:   l.AdminName,
			AdminEmail:  l.AdminEmail,
			ActionType:  l.ActionType,
			Description: l.Description,
			Metadata:    l.Metadata,
			CreatedAt:   l.CreatedAt,
		})
	}
	return c.JSON(dto.AdminLogListResult{
		Result: ok("تم جلب سجل النشاطات بنجاح"),
		Logs:   logs,
	})
}
