// Package notification implementa el envío de avisos (SMS, WhatsApp, email)
// tras registrar transacciones, con plantillas configurables por empresa y
// bitácora de entregas. El despacho es posterior al commit y jamás afecta el
// resultado de la operación que lo originó.
package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tadbeer/tadbeer-api/internal/application/dto"
	"github.com/tadbeer/tadbeer-api/internal/domain"
	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
	"github.com/tadbeer/tadbeer-api/pkg/logger"
)

// Sender entrega un mensaje por un canal concreto. Las implementaciones reales
// (pasarela SMS, WhatsApp Business, SMTP) se conectan aquí; por defecto se usa
// LogSender, que solo registra.
type Sender interface {
	Send(ctx context.Context, recipient, subject, content string) (providerMsgID string, err error)
}

// LogSender es el stub por defecto: registra el envío y lo marca como exitoso.
type LogSender struct {
	Channel string
	Log     *logger.Logger
}

func (s *LogSender) Send(_ context.Context, recipient, _, content string) (string, error) {
	s.Log.Info().
		Str("channel", s.Channel).
		Str("recipient", recipient).
		Int("content_len", len(content)).
		Msg("notificación despachada (stub)")
	return "stub-" + uuid.NewString(), nil
}

// Dispatcher resuelve configuración, plantilla y destinatarios de cada
// transacción registrada y despacha por los canales habilitados.
type Dispatcher struct {
	notifications repository.NotificationRepository
	subscribers   repository.SubscriberRepository
	companies     repository.CompanyRepository
	senders       map[string]Sender
	log           *logger.Logger
	timeout       time.Duration

	wg sync.WaitGroup
}

// NewDispatcher construye el dispatcher. senders puede ser nil: se instalan
// stubs de registro para los tres canales.
func NewDispatcher(
	notifications repository.NotificationRepository,
	subscribers repository.SubscriberRepository,
	companies repository.CompanyRepository,
	senders map[string]Sender,
	log *logger.Logger,
) *Dispatcher {
	if senders == nil {
		senders = map[string]Sender{
			entity.ChannelSMS:      &LogSender{Channel: entity.ChannelSMS, Log: log},
			entity.ChannelWhatsApp: &LogSender{Channel: entity.ChannelWhatsApp, Log: log},
			entity.ChannelEmail:    &LogSender{Channel: entity.ChannelEmail, Log: log},
		}
	}
	return &Dispatcher{
		notifications: notifications,
		subscribers:   subscribers,
		companies:     companies,
		senders:       senders,
		log:           log,
		timeout:       15 * time.Second,
	}
}

// TransactionCreated despacha en segundo plano. Fire-and-forget: el llamador
// nunca espera ni recibe errores de entrega.
func (d *Dispatcher) TransactionCreated(tx *entity.Transaction) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.dispatch(ctx, tx); err != nil {
			d.log.Error().Err(err).
				Int64("company_id", tx.CompanyID).
				Str("electronic_number", tx.ElectronicNumber).
				Msg("fallo al despachar notificaciones")
		}
	}()
}

// Wait bloquea hasta que terminen los despachos en vuelo. Para el shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(ctx context.Context, tx *entity.Transaction) error {
	setting, err := d.notifications.GetSetting(ctx, tx.CompanyID, tx.TransactionType)
	if err != nil {
		return fmt.Errorf("get setting: %w", err)
	}
	if setting == nil || !setting.IsEnabled || !setting.AutoSend {
		return nil
	}

	company, err := d.companies.GetByID(ctx, tx.CompanyID)
	if err != nil {
		return fmt.Errorf("get company: %w", err)
	}
	if company == nil {
		return nil
	}

	vars := TemplateVars{
		CompanyName:      company.Name,
		ElectronicNumber: tx.ElectronicNumber,
		Amount:           tx.Amount,
		TransactionType:  tx.TransactionType,
		TransactionDate:  tx.TransactionDate.Format("2006-01-02"),
		Description:      tx.Description,
	}

	// El número de cuenta del suscriptor viaja en reference_number para los
	// asientos generados por el registro de suscriptores.
	var subscriberPhone string
	if strings.HasPrefix(tx.ReferenceNumber, "COMP") {
		sub, err := d.subscribers.GetByAccountNumber(ctx, tx.CompanyID, tx.ReferenceNumber)
		if err != nil {
			return fmt.Errorf("get subscriber: %w", err)
		}
		if sub != nil {
			vars.SubscriberName = sub.FullName
			vars.AccountNumber = sub.AccountNumber
			subscriberPhone = sub.Phone
		}
	}

	for _, channel := range setting.Channels {
		sender, ok := d.senders[channel]
		if !ok {
			d.log.Warn().Str("channel", channel).Msg("canal de notificación no soportado")
			continue
		}
		tpl, err := d.notifications.GetTemplate(ctx, tx.CompanyID, tx.TransactionType, channel)
		if err != nil {
			return fmt.Errorf("get template: %w", err)
		}
		if tpl == nil {
			def := DefaultTemplate(tx.TransactionType)
			tpl = &def
		}
		subject := Render(tpl.Subject, vars)
		content := Render(tpl.Content, vars)

		var recipients []string
		if setting.SendToSubscriber && subscriberPhone != "" {
			recipients = append(recipients, subscriberPhone)
		}
		if setting.SendToCompany {
			switch channel {
			case entity.ChannelEmail:
				recipients = append(recipients, company.Email)
			default:
				if company.Phone != "" {
					recipients = append(recipients, company.Phone)
				}
			}
		}

		for _, recipient := range recipients {
			d.deliver(ctx, sender, channel, recipient, subject, content, tx)
		}
	}
	return nil
}

// deliver persiste el intento, envía y actualiza el estado. Un fallo de canal
// queda en la bitácora como failed y no interrumpe los demás envíos.
func (d *Dispatcher) deliver(ctx context.Context, sender Sender, channel, recipient, subject, content string, tx *entity.Transaction) {
	entry := &entity.NotificationLog{
		CompanyID:     tx.CompanyID,
		TransactionID: tx.ID,
		Channel:       channel,
		Recipient:     recipient,
		Subject:       subject,
		Content:       content,
		Status:        entity.DeliveryPending,
	}
	if err := d.notifications.SaveLog(ctx, entry); err != nil {
		d.log.Error().Err(err).Str("channel", channel).Msg("no se pudo registrar el intento de envío")
		return
	}

	msgID, err := sender.Send(ctx, recipient, subject, content)
	status := entity.DeliverySent
	errMsg := ""
	if err != nil {
		status = entity.DeliveryFailed
		errMsg = err.Error()
	}
	if err := d.notifications.UpdateLogStatus(ctx, entry.ID, status, msgID, errMsg); err != nil {
		d.log.Error().Err(err).Int64("log_id", entry.ID).Msg("no se pudo actualizar el estado de la entrega")
	}
}

// Service expone la gestión de configuración y la consulta de la bitácora.
type Service struct {
	notifications repository.NotificationRepository
}

// NewService construye el servicio de configuración.
func NewService(notifications repository.NotificationRepository) *Service {
	return &Service{notifications: notifications}
}

// UpsertSetting crea o reemplaza la configuración del tipo dado.
func (s *Service) UpsertSetting(ctx context.Context, companyID int64, in dto.UpsertNotificationSettingRequest) (*entity.NotificationSetting, error) {
	var reasons []string
	if strings.TrimSpace(in.TransactionType) == "" {
		reasons = append(reasons, "نوع المعاملة مطلوب")
	}
	for _, ch := range in.Channels {
		switch ch {
		case entity.ChannelSMS, entity.ChannelWhatsApp, entity.ChannelEmail:
		default:
			reasons = append(reasons, fmt.Sprintf("قناة الإشعار غير مدعومة: %s", ch))
		}
	}
	if len(reasons) > 0 {
		return nil, domain.NewValidationError(reasons)
	}

	setting := &entity.NotificationSetting{
		CompanyID:        companyID,
		TransactionType:  strings.TrimSpace(in.TransactionType),
		Channels:         in.Channels,
		IsEnabled:        in.IsEnabled,
		AutoSend:         in.AutoSend,
		SendToSubscriber: in.SendToSubscriber,
		SendToCompany:    in.SendToCompany,
	}
	if err := s.notifications.UpsertSetting(ctx, setting); err != nil {
		return nil, err
	}
	return setting, nil
}

// ListSettings lista la configuración de la empresa.
func (s *Service) ListSettings(ctx context.Context, companyID int64) ([]*entity.NotificationSetting, error) {
	return s.notifications.ListSettings(ctx, companyID)
}

// ListLogs lista la bitácora de entregas de la empresa, paginada.
func (s *Service) ListLogs(ctx context.Context, companyID int64, page dto.PageRequest) ([]*entity.NotificationLog, error) {
	page.DefaultPage()
	return s.notifications.ListLogsByCompany(ctx, companyID, page.Limit, page.Offset())
}
