package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tadbeer/tadbeer-api/internal/application/auth"
	"github.com/tadbeer/tadbeer-api/internal/application/dto"
)

// AuthHandler maneja registro, login y restablecimiento de contraseña.
type AuthHandler struct {
	uc *auth.UseCase
}

// NewAuthHandler construye el handler.
func NewAuthHandler(uc *auth.UseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// RegisterCompany registra una empresa con su usuario administrador.
// POST /api/auth/register
func (h *AuthHandler) RegisterCompany(c *fiber.Ctx) error {
	var in dto.RegisterCompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	company, admin, err := h.uc.RegisterCompany(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	companyResp := toCompanyResponse(company)
	adminResp := toUserResponse(admin)
	return c.Status(fiber.StatusCreated).JSON(dto.RegisterCompanyResult{
		Result:  ok("تم تسجيل الشركة بنجاح"),
		Company: &companyResp,
		Admin:   &adminResp,
	})
}

// Login autentica y devuelve el JWT.
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	token, user, err := h.uc.Login(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	userResp := toUserResponse(user)
	return c.JSON(dto.LoginResult{
		Result: ok("تم تسجيل الدخول بنجاح"),
		Token:  token,
		User:   &userResp,
	})
}

// ForgotPassword genera el token de restablecimiento. La respuesta es idéntica
// exista o no el email, para no revelar qué cuentas están registradas.
// POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var in struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	// TODO: entregar el token por email cuando haya un Sender SMTP real.
	if _, err := h.uc.RequestPasswordReset(c.Context(), in.Email); err != nil {
		return respondError(c, err)
	}
	return c.JSON(ok("إذا كان البريد مسجلاً فسيصلك رابط الاستعادة"))
}

// ResetPassword consume el token y fija la nueva contraseña.
// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var in struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.ResetPassword(c.Context(), in.Token, in.NewPassword); err != nil {
		return respondError(c, err)
	}
	return c.JSON(ok("تم تغيير كلمة المرور بنجاح"))
}
