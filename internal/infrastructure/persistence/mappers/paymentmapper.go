package mappers

import (
	"fmt"
	"time"

	"mallhub/internal/domain/payment"
	vo "mallhub/internal/domain/payment/valueobjects"
	"mallhub/internal/infrastructure/persistence/models"
)

func IntentToModel(i *payment.PaymentIntent) *models.PaymentIntentModel {
	model := &models.PaymentIntentModel{
		ID:           i.ID(),
		SID:          i.SID(),
		Tenant:       i.Tenant(),
		Provider:     i.Provider().String(),
		ProviderRef:  i.ProviderRef(),
		OrderID:      i.OrderID(),
		Method:       i.Method().String(),
		Amount:       i.Amount(),
		Currency:     i.Currency(),
		Status:       i.Status().String(),
		ClientSecret: i.ClientSecret(),
		HostedURL:    i.HostedURL(),
		UIMode:       i.UIMode().String(),
		Metadata:     toJSON(i.Metadata()),
		CreatedBy:    i.CreatedBy(),
		OpenKey:      i.OpenKey(),
		Version:      i.Version(),
		CreatedAt:    i.CreatedAt(),
		UpdatedAt:    i.UpdatedAt(),
	}
	if !i.ExpiresAt().IsZero() {
		expiresAt := i.ExpiresAt()
		model.ExpiresAt = &expiresAt
	}
	return model
}

func IntentToDomain(model *models.PaymentIntentModel) (*payment.PaymentIntent, error) {
	status := vo.IntentStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid intent status: %s", model.Status)
	}
	metadata, err := jsonToMap(model.Metadata)
	if err != nil {
		return nil, fmt.Errorf("invalid intent metadata: %w", err)
	}

	var expiresAt time.Time
	if model.ExpiresAt != nil {
		expiresAt = *model.ExpiresAt
	}

	return payment.ReconstructPaymentIntent(payment.IntentReconstructParams{
		ID:           model.ID,
		SID:          model.SID,
		Tenant:       model.Tenant,
		Provider:     vo.Provider(model.Provider),
		ProviderRef:  model.ProviderRef,
		OrderID:      model.OrderID,
		Method:       vo.Method(model.Method),
		Amount:       model.Amount,
		Currency:     model.Currency,
		Status:       status,
		ClientSecret: model.ClientSecret,
		HostedURL:    model.HostedURL,
		UIMode:       vo.UIMode(model.UIMode),
		Metadata:     metadata,
		CreatedBy:    model.CreatedBy,
		OpenKey:      model.OpenKey,
		ExpiresAt:    expiresAt,
		Version:      model.Version,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}), nil
}

func PaymentToModel(p *payment.Payment) *models.PaymentModel {
	return &models.PaymentModel{
		ID:             p.ID(),
		SID:            p.SID(),
		Tenant:         p.Tenant(),
		Provider:       p.Provider().String(),
		ProviderRef:    p.ProviderRef(),
		Kind:           p.Kind(),
		IntentID:       p.IntentID(),
		OrderID:        p.OrderID(),
		Gross:          p.Gross(),
		Currency:       p.Currency(),
		Method:         p.Method(),
		InstrumentType: p.InstrumentType(),
		Raw:            toJSON(p.Raw()),
		CreatedAt:      p.CreatedAt(),
	}
}

func PaymentToDomain(model *models.PaymentModel) (*payment.Payment, error) {
	raw, err := jsonToMap(model.Raw)
	if err != nil {
		return nil, fmt.Errorf("invalid payment payload: %w", err)
	}
	return payment.ReconstructPayment(payment.PaymentReconstructParams{
		ID:             model.ID,
		SID:            model.SID,
		Tenant:         model.Tenant,
		Provider:       vo.Provider(model.Provider),
		ProviderRef:    model.ProviderRef,
		Kind:           model.Kind,
		IntentID:       model.IntentID,
		OrderID:        model.OrderID,
		Gross:          model.Gross,
		Currency:       model.Currency,
		Method:         model.Method,
		InstrumentType: model.InstrumentType,
		Raw:            raw,
		CreatedAt:      model.CreatedAt,
	}), nil
}

func RefundToModel(r *payment.Refund) *models.RefundModel {
	return &models.RefundModel{
		ID:                 r.ID(),
		SID:                r.SID(),
		Tenant:             r.Tenant(),
		Provider:           r.Provider().String(),
		PaymentProviderRef: r.PaymentProviderRef(),
		RefundRef:          nullableString(r.RefundRef()),
		OrderID:            r.OrderID(),
		Amount:             r.Amount(),
		Currency:           r.Currency(),
		Reason:             r.Reason(),
		Status:             r.Status().String(),
		Raw:                toJSON(r.Raw()),
		CreatedAt:          r.CreatedAt(),
		UpdatedAt:          r.UpdatedAt(),
	}
}

func RefundToDomain(model *models.RefundModel) (*payment.Refund, error) {
	status := vo.RefundStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid refund status: %s", model.Status)
	}
	raw, err := jsonToMap(model.Raw)
	if err != nil {
		return nil, fmt.Errorf("invalid refund payload: %w", err)
	}
	return payment.ReconstructRefund(payment.RefundReconstructParams{
		ID:                 model.ID,
		SID:                model.SID,
		Tenant:             model.Tenant,
		Provider:           vo.Provider(model.Provider),
		PaymentProviderRef: model.PaymentProviderRef,
		RefundRef:          derefString(model.RefundRef),
		OrderID:            model.OrderID,
		Amount:             model.Amount,
		Currency:           model.Currency,
		Reason:             model.Reason,
		Status:             status,
		Raw:                raw,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}), nil
}

func GatewayConfigToModel(cfg *payment.GatewayConfig) *models.GatewayConfigModel {
	return &models.GatewayConfigModel{
		ID:          cfg.ID(),
		Tenant:      cfg.Tenant(),
		Provider:    cfg.Provider().String(),
		Active:      cfg.IsActive(),
		TestMode:    cfg.TestMode(),
		Credentials: toJSON(cfg.Credentials()),
		CreatedAt:   cfg.CreatedAt(),
		UpdatedAt:   cfg.UpdatedAt(),
	}
}

func GatewayConfigToDomain(model *models.GatewayConfigModel) (*payment.GatewayConfig, error) {
	creds, err := jsonToMap(model.Credentials)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway credentials: %w", err)
	}
	return payment.ReconstructGatewayConfig(payment.GatewayConfigReconstructParams{
		ID:          model.ID,
		Tenant:      model.Tenant,
		Provider:    vo.Provider(model.Provider),
		Active:      model.Active,
		TestMode:    model.TestMode,
		Credentials: creds,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}), nil
}

func EventLogToModel(e *payment.WebhookEventLog) *models.WebhookEventLogModel {
	return &models.WebhookEventLogModel{
		ID:          e.ID,
		Tenant:      e.Tenant,
		Provider:    e.Provider.String(),
		EventType:   e.EventType.String(),
		ProviderRef: e.ProviderRef,
		RefundRef:   e.RefundRef,
		Verified:    e.Verified,
		Raw:         toJSON(e.Raw),
		ReceivedAt:  e.ReceivedAt,
	}
}

// nullableString stores "" as NULL so unique indexes ignore unset references.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
