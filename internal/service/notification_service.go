package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/disuhitarth/EcommerceConcept/internal/config"
	"github.com/disuhitarth/EcommerceConcept/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// EventTypes lists the events that produce notifications.
func (n *NotificationService) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventAccountCreated,
		events.EventProductCreated,
		events.EventCatalogRefreshed,
		events.EventCatalogDegraded,
	}
}

// RegisterHandlers subscribes to events and delivers inline with the publisher.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, et := range n.EventTypes() {
		n.dispatcher.Subscribe(et, n.Handle)
	}
}

// Handle delivers the notification for one event.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventAccountCreated:
		return n.handleAccountCreated(ctx, event)
	case events.EventProductCreated:
		return n.handleProductCreated(ctx, event)
	case events.EventCatalogRefreshed:
		return n.handleCatalogRefreshed(ctx, event)
	case events.EventCatalogDegraded:
		return n.handleCatalogDegraded(ctx, event)
	}
	return nil
}

func (n *NotificationService) handleAccountCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("AccountCreated", zap.String("account_id", event.Subject))
	if payload, ok := event.Payload.(events.AccountCreatedPayload); ok {
		n.sendEmailNotificationStub(ctx, event, payload.Email)
	}
	return nil
}

func (n *NotificationService) handleProductCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ProductCreated", zap.String("product_id", event.Subject), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleCatalogRefreshed(ctx context.Context, event events.Event) error {
	n.logger.Debug("CatalogRefreshed", zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleCatalogDegraded(ctx context.Context, event events.Event) error {
	n.logger.Warn("CatalogDegraded", zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event, to string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || to == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject", event.Subject),
		zap.String("event_type", string(event.Type)))
}
