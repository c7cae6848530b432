package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tadbeer/tadbeer-api/internal/application/auth"
	"github.com/tadbeer/tadbeer-api/internal/application/dto"
	"github.com/tadbeer/tadbeer-api/internal/application/ledger"
	"github.com/tadbeer/tadbeer-api/internal/application/subscriber"
	"github.com/tadbeer/tadbeer-api/internal/domain"
	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
)

// respondError traduce los errores de los casos de uso al status HTTP y al
// cuerpo uniforme {success, code, message}. El orden importa: primero los
// tipos (validación, gate), después los sentinelas.
func respondError(c *fiber.Ctx, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: ve.Error()})
	}

	// Rechazos del Subscription Gate: 403 con el motivo legible.
	var ledgerDenied *ledger.DeniedError
	if errors.As(err, &ledgerDenied) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "SUBSCRIPTION_DENIED", Message: ledgerDenied.Reason})
	}
	var subscriberDenied *subscriber.DeniedError
	if errors.As(err, &subscriberDenied) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "SUBSCRIPTION_DENIED", Message: subscriberDenied.Reason})
	}
	var authDenied *auth.DeniedError
	if errors.As(err, &authDenied) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "SUBSCRIPTION_DENIED", Message: authDenied.Reason})
	}

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "بيانات الدخول غير صحيحة"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "غير مصرح بالوصول"})
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrCompanyNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "المورد غير موجود"})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: "البريد الإلكتروني مسجل مسبقاً"})
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "تعارض مع الحالة الحالية"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "حدث خطأ في الخادم"})
}

func ok(message string) dto.Result {
	return dto.Result{Success: true, Message: message}
}

// Mapeos entidad -> DTO de respuesta.

func toTransactionResponse(tx *entity.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:               tx.ID,
		CompanyID:        tx.CompanyID,
		ElectronicNumber: tx.ElectronicNumber,
		TransactionType:  tx.TransactionType,
		Amount:           tx.Amount,
		Description:      tx.Description,
		ReferenceNumber:  tx.ReferenceNumber,
		TransactionDate:  tx.TransactionDate.Format("2006-01-02"),
		CreatedBy:        tx.CreatedBy,
		CreatedByName:    tx.CreatedByName,
		AssignedTo:       tx.AssignedTo,
		CreatedAt:        tx.CreatedAt,
	}
}

func toSubscriberResponse(s *entity.Subscriber) dto.SubscriberResponse {
	return dto.SubscriberResponse{
		ID:                s.ID,
		CompanyID:         s.CompanyID,
		AccountNumber:     s.AccountNumber,
		FullName:          s.FullName,
		Address:           s.Address,
		Phone:             s.Phone,
		BusinessType:      s.BusinessType,
		MeterSystemType:   s.MeterSystemType,
		TariffType:        s.TariffType,
		TariffGroup:       s.TariffGroup,
		IDCardNumber:      s.IDCardNumber,
		PropertyOwnership: s.PropertyOwnership,
		ConnectionAmount:  s.ConnectionAmount,
		IsActive:          s.IsActive,
		CreatedAt:         s.CreatedAt,
	}
}

func toUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func toCompanyResponse(c *entity.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:                  c.ID,
		Name:                c.Name,
		Email:               c.Email,
		Phone:               c.Phone,
		Address:             c.Address,
		Description:         c.Description,
		SubscriptionStatus:  c.SubscriptionStatus,
		SubscriptionPlan:    c.SubscriptionPlan,
		MaxUsers:            c.MaxUsers,
		MaxStorageMB:        c.MaxStorageMB,
		SubscriptionExpires: c.SubscriptionExpires,
		CreatedAt:           c.CreatedAt,
	}
}
