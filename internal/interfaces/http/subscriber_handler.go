package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/tadbeer/tadbeer-api/internal/application/dto"
	"github.com/tadbeer/tadbeer-api/internal/application/subscriber"
)

// SubscriberHandler maneja las peticiones del registro de suscriptores.
type SubscriberHandler struct {
	uc *subscriber.UseCase
}

// NewSubscriberHandler construye el handler.
func NewSubscriberHandler(uc *subscriber.UseCase) *SubscriberHandler {
	return &SubscriberHandler{uc: uc}
}

// Create registra un suscriptor; con monto de conexión positivo genera además
// los dos asientos contables emparejados.
// POST /api/companies/:companyID/subscribers
func (h *SubscriberHandler) Create(c *fiber.Ctx) error {
	companyID, err := CompanyParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "companyID inválido"})
	}
	var in dto.CreateSubscriberRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	in.CompanyID = companyID

	sub, entries, err := h.uc.CreateSubscriber(c.Context(), in, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	resp := toSubscriberResponse(sub)
	transactions := make([]dto.TransactionResponse, 0, len(entries))
	for _, tx := range entries {
		transactions = append(transactions, toTransactionResponse(tx))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"message":      "تم تسجيل المشترك بنجاح",
		"subscriber":   resp,
		"transactions": transactions,
	})
}

// List devuelve los suscriptores del tenant, paginados.
// GET /api/companies/:companyID/subscribers?page=&limit=
func (h *SubscriberHandler) List(c *fiber.Ctx) error {
	companyID, err := CompanyParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "companyID inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	list, err := h.uc.ListByCompany(c.Context(), companyID, page)
	if err != nil {
		return respondError(c, err)
	}
	subscribers := make([]dto.SubscriberResponse, 0, len(list))
	for _, s := range list {
		subscribers = append(subscribers, toSubscriberResponse(s))
	}
	return c.JSON(dto.SubscriberListResult{
		Result:      ok("تم جلب المشتركين بنجاح"),
		Subscribers: subscribers,
		Pagination:  dto.PageResponse{Page: page.Page, Limit: page.Limit, Total: len(subscribers)},
	})
}

// GetByID devuelve un suscriptor del tenant.
// GET /api/companies/:companyID/subscribers/:id
func (h *SubscriberHandler) GetByID(c *fiber.Ctx) error {
	companyID, err := CompanyParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "companyID inválido"})
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	sub, err := h.uc.GetByID(c.Context(), id, companyID)
	if err != nil {
		return respondError(c, err)
	}
	if sub == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "المشترك غير موجود"})
	}
	resp := toSubscriberResponse(sub)
	return c.JSON(dto.SubscriberResult{
		Result:     ok("تم جلب المشترك بنجاح"),
		Subscriber: &resp,
	})
}

// GetByAccount busca por número de cuenta exacto dentro del tenant.
// GET /api/companies/:companyID/subscribers/account/:account
func (h *SubscriberHandler) GetByAccount(c *fiber.Ctx) error {
	companyID, err := CompanyParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "companyID inválido"})
	}
	sub, err := h.uc.GetByAccountNumber(c.Context(), companyID, c.Params("account"))
	if err != nil {
		return respondError(c, err)
	}
	if sub == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "المشترك غير موجود"})
	}
	resp := toSubscriberResponse(sub)
	return c.JSON(dto.SubscriberResult{
		Result:     ok("تم جلب المشترك بنجاح"),
		Subscriber: &resp,
	})
}

// Update muta los datos editables del suscriptor.
// PUT /api/companies/:companyID/subscribers/:id
func (h *SubscriberHandler) Update(c *fiber.Ctx) error {
	companyID, err := CompanyParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "companyID inválido"})
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.UpdateSubscriberRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	sub, err := h.uc.UpdateSubscriber(c.Context(), id, companyID, in)
	if err != nil {
		return respondError(c, err)
	}
	resp := toSubscriberResponse(sub)
	return c.JSON(dto.SubscriberResult{
		Result:     ok("تم تحديث المشترك بنجاح"),
		Subscriber: &resp,
	})
}

// Deactivate da de baja lógica al suscriptor.
// DELETE /api/companies/:companyID/subscribers/:id
func (h *SubscriberHandler) Deactivate(c *fiber.Ctx) error {
	companyID, err := CompanyParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "companyID inválido"})
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	if err := h.uc.DeactivateSubscriber(c.Context(), id, companyID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(ok("تم إلغاء تفعيل المشترك بنجاح"))
}
