package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/tadbeer/tadbeer-api/internal/application/dto"
	"github.com/tadbeer/tadbeer-api/internal/application/ledger"
	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
)

// TransactionHandler maneja las peticiones de transacciones financieras.
// Toda ruta pasa antes por AuthMiddleware y RequireCompanyAccess.
type TransactionHandler struct {
	uc *ledger.UseCase
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(uc *ledger.UseCase) *TransactionHandler {
	return &TransactionHandler{uc: uc}
}

// Create registra una transacción con número electrónico asignado.
// POST /api/companies/:companyID/transactions
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	companyID, err := CompanyParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "companyID inválido"})
	}
	var in dto.CreateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	// La empresa de la ruta manda; el cuerpo no puede apuntar a otro tenant.
	in.CompanyID = companyID

	tx, err := h.uc.CreateTransaction(c.Context(), in, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	resp := toTransactionResponse(tx)
	return c.Status(fiber.StatusCreated).JSON(dto.TransactionResult{
		Result:      ok("تم تسجيل المعاملة بنجاح"),
		Transaction: &resp,
	})
}

// List devuelve las transacciones del tenant, más recientes primero.
// GET /api/companies/:companyID/transactions?page=&limit=
func (h *TransactionHandler) List(c *fiber.Ctx) error {
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
	transactions := make([]dto.TransactionResponse, 0, len(list))
	for _, tx := range list {
		transactions = append(transactions, toTransactionResponse(tx))
	}
	return c.JSON(dto.TransactionListResult{
		Result:       ok("تم جلب المعاملات بنجاح"),
		Transactions: transactions,
		Pagination:   dto.PageResponse{Page: page.Page, Limit: page.Limit, Total: len(transactions)},
	})
}

// GetByNumber busca por número electrónico exacto dentro del tenant.
// GET /api/companies/:companyID/transactions/:number
func (h *TransactionHandler) GetByNumber(c *fiber.Ctx) error {
	companyID, err := CompanyParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "companyID inválido"})
	}
	tx, err := h.uc.GetByElectronicNumber(c.Context(), companyID, c.Params("number"))
	if err != nil {
		return respondError(c, err)
	}
	if tx == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "المعاملة غير موجودة"})
	}
	resp := toTransactionResponse(tx)
	return c.JSON(dto.TransactionResult{
		Result:      ok("تم جلب المعاملة بنجاح"),
		Transaction: &resp,
	})
}

// Update muta descripción y/o referencia de una transacción existente.
// PUT /api/companies/:companyID/transactions/:id
func (h *TransactionHandler) Update(c *fiber.Ctx) error {
	companyID, err := CompanyParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "companyID inválido"})
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.UpdateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.UpdateDetails(c.Context(), id, companyID, in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(ok("تم تحديث المعاملة بنجاح"))
}

// Statistics agrega las transacciones del tenant en el año consultado.
// GET /api/companies/:companyID/transactions/statistics?year=
func (h *TransactionHandler) Statistics(c *fiber.Ctx) error {
	companyID, err := CompanyParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "companyID inválido"})
	}
	year := c.QueryInt("year") // 0 = año actual
	stats, err := h.uc.Statistics(c.Context(), companyID, year)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StatisticsResult{
		Result:     ok("تم جلب الإحصائيات بنجاح"),
		Statistics: stats,
	})
}

// Types devuelve el catálogo de tipos de transacción predefinidos.
// GET /api/transactions/types
func (h *TransactionHandler) Types(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"types":   entity.TransactionTypes(),
	})
}
