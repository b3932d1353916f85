package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"invoice-system/internal/entities"
	"invoice-system/internal/events"
	"invoice-system/internal/repositories"
	"invoice-system/pkg/constants"
	"invoice-system/pkg/eventbus"
)

// invalidateTimeout bounds the cache write made before a mutation returns.
const invalidateTimeout = 2 * time.Second

const (
	ReasonStatusChange = "status_change"
	ReasonRestore      = "restore"
	ReasonEdit         = "edit"
	ReasonCreate       = "create"
	ReasonCancel       = "cancel"
)

// InvalidationScope names the invoice whose cached views are stale.
type InvalidationScope struct {
	InvoiceID uuid.UUID
	Reason    string
	Actor     entities.Actor
}

// InvalidatorInterface never reports failure to the caller. Cached views are
// superseded before Invalidate returns; dashboard notification happens later.
type InvalidatorInterface interface {
	Invalidate(ctx context.Context, scope InvalidationScope)
}

type eventPublisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

type EventBusInvalidator struct {
	bus    eventPublisher
	cache  repositories.CacheRepositoryInterface
	logger *zap.Logger
}

func NewEventBusInvalidator(bus eventPublisher, cache repositories.CacheRepositoryInterface, logger *zap.Logger) InvalidatorInterface {
	return &EventBusInvalidator{bus: bus, cache: cache, logger: logger}
}

// Invalidate bumps the invoice's cache generation, then publishes InvoiceChangedEvent.
func (i *EventBusInvalidator) Invalidate(ctx context.Context, scope InvalidationScope) {
	i.logger.Debug("invalidating invoice views",
		zap.String("invoiceID", scope.InvoiceID.String()),
		zap.String("reason", scope.Reason),
	)

	cacheCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()
	key := fmt.Sprintf(constants.CacheKeyInvoiceGeneration, scope.InvoiceID)
	if _, err := i.cache.Incr(cacheCtx, key); err != nil {
		i.logger.Error("cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
	i.bus.Publish(ctx, events.InvoiceChangedEvent{
		InvoiceID: scope.InvoiceID,
		Reason:    scope.Reason,
		Actor:     scope.Actor.String(),
	})
}
