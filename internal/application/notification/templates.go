package notification

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
)

// Variables disponibles en las plantillas: {company_name}, {subscriber_name},
// {account_number}, {electronic_number}, {amount}, {transaction_type},
// {transaction_date}, {description}.

// defaultTemplates son las plantillas de fábrica por tipo de transacción.
// Una empresa puede reemplazarlas guardando las suyas en message_templates.
var defaultTemplates = map[string]entity.MessageTemplate{
	entity.TxTypeConnectionRevenue: {
		Subject: "إشعار رسوم توصيل - {company_name}",
		Content: "عزيزي {subscriber_name}، تم تسجيل رسوم التوصيل الخاصة بحسابكم {account_number} بمبلغ {amount}. رقم المعاملة: {electronic_number}. شكراً لكم - {company_name}",
	},
	entity.TxTypeCashReceipt: {
		Subject: "سند قبض - {company_name}",
		Content: "عزيزي {subscriber_name}، تم استلام مبلغ {amount} بموجب سند القبض رقم {electronic_number}. شكراً لكم - {company_name}",
	},
	entity.TxTypeSale: {
		Subject: "إشعار معاملة - {company_name}",
		Content: "تم تسجيل معاملة مبيعات بمبلغ {amount} بتاريخ {transaction_date}. رقم المعاملة: {electronic_number} - {company_name}",
	},
}

// genericTemplate se usa para los tipos sin plantilla propia.
var genericTemplate = entity.MessageTemplate{
	Subject: "إشعار معاملة - {company_name}",
	Content: "تم تسجيل معاملة {transaction_type} بمبلغ {amount}. رقم المعاملة: {electronic_number} - {company_name}",
}

// DefaultTemplate devuelve la plantilla de fábrica para el tipo dado.
func DefaultTemplate(transactionType string) entity.MessageTemplate {
	if tpl, ok := defaultTemplates[transactionType]; ok {
		return tpl
	}
	return genericTemplate
}

// TemplateVars son los valores a sustituir en una plantilla.
type TemplateVars struct {
	CompanyName      string
	SubscriberName   string
	AccountNumber    string
	ElectronicNumber string
	Amount           decimal.Decimal
	TransactionType  string
	TransactionDate  string
	Description      string
}

var arabicPrinter = message.NewPrinter(language.Arabic)

// formatAmount presenta el monto con separador de miles en formato árabe.
func formatAmount(amount decimal.Decimal) string {
	f, _ := amount.Float64()
	return arabicPrinter.Sprint(number.Decimal(f, number.MaxFractionDigits(2)))
}

// Render sustituye las variables {placeholder} en content. Las variables no
// reconocidas quedan intactas.
func Render(content string, vars TemplateVars) string {
	label := vars.TransactionType
	for _, t := range entity.TransactionTypes() {
		if t.Value == vars.TransactionType {
			label = t.Label
			break
		}
	}
	r := strings.NewReplacer(
		"{company_name}", vars.CompanyName,
		"{subscriber_name}", vars.SubscriberName,
		"{account_number}", vars.AccountNumber,
		"{electronic_number}", vars.ElectronicNumber,
		"{amount}", formatAmount(vars.Amount),
		"{transaction_type}", label,
		"{transaction_date}", vars.TransactionDate,
		"{description}", vars.Description,
	)
	return r.Replace(content)
}
