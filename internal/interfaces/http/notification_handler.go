package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tadbeer/tadbeer-api/internal/application/dto"
	"github.com/tadbeer/tadbeer-api/internal/application/notification"
	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
)

// NotificationHandler expone la configuración de notificaciones y su bitácora
// de entregas, siempre en el ámbito de la empresa de la ruta.
type NotificationHandler struct {
	svc *notification.Service
}

// NewNotificationHandler construye el handler.
func NewNotificationHandler(svc *notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// UpsertSetting crea o actualiza la configuración de un tipo de transacción.
// PUT /api/companies/:companyID/notifications/settings
func (h *NotificationHandler) UpsertSetting(c *fiber.Ctx) error {
	companyID, err := CompanyParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "companyID inválido"})
	}
	var in dto.UpsertNotificationSettingRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	setting, err := h.svc.UpsertSetting(c.Context(), companyID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "تم حفظ إعدادات الإشعارات بنجاح",
		"setting": toSettingResponse(setting),
	})
}

// ListSettings lista la configuración de notificaciones de la empresa.
// GET /api/companies/:companyID/notifications/settings
func (h *NotificationHandler) ListSettings(c *fiber.Ctx) error {
	companyID, err := CompanyParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "companyID inválido"})
	}
	list, err := h.svc.ListSettings(c.Context(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	settings := make([]dto.NotificationSettingResponse, 0, len(list))
	for _, s := range list {
		settings = append(settings, toSettingResponse(s))
	}
	return c.JSON(dto.NotificationSettingListResult{
		Result:   ok("تم جلب إعدادات الإشعارات بنجاح"),
		Settings: settings,
	})
}

// ListLogs lista la bitácora de entregas de la empresa.
// GET /api/companies/:companyID/notifications/logs?page=&limit=
func (h *NotificationHandler) ListLogs(c *fiber.Ctx) error {
	companyID, err := CompanyParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "companyID inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	list, err := h.svc.ListLogs(c.Context(), companyID, page)
	if err != nil {
		return respondError(c, err)
	}
	logs := make([]dto.NotificationLogEntry, 0, len(list))
	for _, l := range list {
		logs = append(logs, dto.NotificationLogEntry{
			ID:            l.ID,
			TransactionID: l.TransactionID,
			Channel:       l.Channel,
			Recipient:     l.Recipient,
			Status:        l.Status,
			ErrorMessage:  l.ErrorMessage,
			CreatedAt:     l.CreatedAt,
		})
	}
	return c.JSON(dto.NotificationLogListResult{
		Result: ok("تم جلب سجل الإشعارات بنجاح"),
		Logs:   logs,
	})
}

func toSettingResponse(s *entity.NotificationSetting) dto.NotificationSettingResponse {
	return dto.NotificationSettingResponse{
		ID:               s.ID,
		CompanyID:        s.CompanyID,
		TransactionType:  s.TransactionType,
		Channels:         s.Channels,
		IsEnabled:        s.IsEnabled,
		AutoSend:         s.AutoSend,
		SendToSubscriber: s.SendToSubscriber,
		SendToCompany:    s.SendToCompany,
	}
}
