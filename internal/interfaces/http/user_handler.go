package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tadbeer/tadbeer-api/internal/application/auth"
	"github.com/tadbeer/tadbeer-api/internal/application/dto"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
)

// UserHandler maneja la gestión de usuarios dentro de una empresa.
type UserHandler struct {
	uc    *auth.UseCase
	users repository.UserRepository
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *auth.UseCase, users repository.UserRepository) *UserHandler {
	return &UserHandler{uc: uc, users: users}
}

// Create da de alta un usuario, sujeto al límite max_users del gate.
// POST /api/companies/:companyID/users
func (h *UserHandler) Create(c *fiber.Ctx) error {
	companyID, err := CompanyParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "companyID inválido"})
	}
	var in dto.CreateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	user, err := h.uc.CreateUser(c.Context(), companyID, in)
	if err != nil {
		return respondError(c, err)
	}
	resp := toUserResponse(user)
	return c.Status(fiber.StatusCreated).JSON(dto.UserResult{
		Result: ok("تم إنشاء المستخدم بنجاح"),
		User:   &resp,
	})
}

// List lista los usuarios del tenant, paginados.
// GET /api/companies/:companyID/users?page=&limit=
func (h *UserHandler) List(c *fiber.Ctx) error {
	companyID, err := CompanyParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "companyID inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	list, err := h.users.ListByCompany(c.Context(), companyID, page.Limit, page.Offset())
	if err != nil {
		return respondError(c, err)
	}
	users := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		users = append(users, toUserResponse(u))
	}
	return c.JSON(dto.UserListResult{
		Result: ok("تم جلب المستخدمين بنجاح"),
		Users:  users,
	})
}
