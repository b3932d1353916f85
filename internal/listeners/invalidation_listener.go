package listeners

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"invoice-system/internal/events"
	"invoice-system/pkg/constants"
	"invoice-system/pkg/eventbus"
	"invoice-system/pkg/websocket"
)

type dashboardHub interface {
	Broadcast(messageType string, payload interface{}) error
	SendMessageToUser(userID uuid.UUID, payload interface{}, messageType string) error
}

// InvalidationListener tells open dashboards to refetch changed invoices.
type InvalidationListener struct {
	hub    dashboardHub
	logger *zap.Logger
}

func NewInvalidationListener(hub dashboardHub, logger *zap.Logger) *InvalidationListener {
	return &InvalidationListener{
		hub:    hub,
		logger: logger,
	}
}

func (l *InvalidationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.InvoiceChangedEventName, l.notifyDashboards)
	bus.Subscribe(events.PartialWriteEventName, l.notifyActor)
	l.logger.Info("invalidation listener subscribed",
		zap.Strings("events", []string{events.InvoiceChangedEventName, events.PartialWriteEventName}),
	)
}

func (l *InvalidationListener) notifyDashboards(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.InvoiceChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	return l.hub.Broadcast(constants.WSMessageInvalidate, websocket.InvalidatePayload{
		InvoiceID: e.InvoiceID.String(),
		Scopes:    []string{"invoice", "status_log"},
		Reason:    e.Reason,
	})
}

func (l *InvalidationListener) notifyActor(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.PartialWriteEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	return l.hub.SendMessageToUser(e.UserID, websocket.PartialWritePayload{
		InvoiceID: e.InvoiceID.String(),
		Status:    e.Status,
		Action:    e.Action,
	}, constants.WSMessagePartialWrite)
}
