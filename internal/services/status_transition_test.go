package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"invoice-system/internal/dto"
	"invoice-system/internal/entities"
	"invoice-system/internal/events"
	apperrors "invoice-system/pkg/errors"
)

func change(id uuid.UUID, status string) dto.StatusChangeDTO {
	return dto.StatusChangeDTO{InvoiceID: id, Status: status, Action: "change"}
}

func TestApplyStatusChange_PendingToPaid(t *testing.T) {
	h := newHarness(t, true)
	id := h.seed(entities.InvoiceStatusPending)
	user7 := uuid.New()

	err := h.transitions.ApplyStatusChange(context.Background(), change(id, "paid"), entities.UserActor(user7))
	require.NoError(t, err)

	assert.Equal(t, entities.InvoiceStatusPaid, h.invoices.get(id).Status)
	entries := h.logs.forInvoice(id)
	require.Len(t, entries, 1)
	assert.Equal(t, entities.InvoiceStatusPaid, entries[0].Status)
	assert.Equal(t, entities.StatusActionChange, entries[0].Action)
	assert.Equal(t, uuid.NullUUID{UUID: user7, Valid: true}, entries[0].UserID)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), entries[0].Date)
	assert.Equal(t, 1, h.tx.calls)
}

func TestApplyStatusChange_RejectsUnknownStatus(t *testing.T) {
	for _, status := range []string{"archived", "overdue", ""} {
		t.Run(status, func(t *testing.T) {
			h := newHarness(t, true)
			id := h.seed(entities.InvoiceStatusPending)

			err := h.transitions.ApplyStatusChange(context.Background(), change(id, status), entities.UserActor(uuid.New()))

			var verr *apperrors.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "Missing Fields. Failed to Update Invoice status.", verr.Message)
			assert.Equal(t, []string{"Please select an invoice status."}, verr.Fields["status"])
			assert.Equal(t, entities.InvoiceStatusPending, h.invoices.get(id).Status)
			assert.Zero(t, h.invoices.updates)
			assert.Empty(t, h.logs.forInvoice(id))
			assert.Zero(t, h.tx.calls)
		})
	}
}

func TestApplyStatusChange_RejectsUnknownAction(t *testing.T) {
	h := newHarness(t, true)
	id := h.seed(entities.InvoiceStatusPending)

	err := h.transitions.ApplyStatusChange(context.Background(),
		dto.StatusChangeDTO{InvoiceID: id, Status: "paid", Action: "undo"}, entities.UserActor(uuid.New()))

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "action")
	assert.Zero(t, h.invoices.updates)
}

func TestApplyStatusChange_AppendFailureNonAtomicLeavesPartialWrite(t *testing.T) {
	h := newHarness(t, false)
	id := h.seed(entities.InvoiceStatusPending)
	h.logs.appendErr = errors.New("connection reset by peer")

	err := h.transitions.ApplyStatusChange(context.Background(), change(id, "paid"), entities.UserActor(uuid.New()))

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStorageFailure)
	assert.Equal(t, entities.InvoiceStatusPaid, h.invoices.get(id).Status)
	assert.Empty(t, h.logs.forInvoice(id))
	assert.Zero(t, h.tx.calls)

	partial := h.observed.FilterField(zap.Bool("partial_write", true))
	assert.Equal(t, 1, partial.Len())
	assert.True(t, h.transitions.partialWritePossible(err))
}

func TestApplyStatusChange_PartialWriteNotifiesActingUser(t *testing.T) {
	h := newHarness(t, false)
	id := h.seed(entities.InvoiceStatusPending)
	user := uuid.New()
	h.logs.appendErr = errors.New("connection reset by peer")

	_ = h.transitions.ApplyStatusChange(context.Background(), change(id, "paid"), entities.UserActor(user))
	_ = h.transitions.ApplyStatusChange(context.Background(), change(id, "canceled"), entities.SystemActor())

	require.Len(t, h.publisher.partialWrites(), 1)
	assert.Equal(t, events.PartialWriteEvent{InvoiceID: id, UserID: user, Status: "paid", Action: "change"}, h.publisher.partialWrites()[0])
}

func TestApplyStatusChange_PartialWriteWithoutPublisher(t *testing.T) {
	h := newHarness(t, false)
	h.transitions.publisher = nil
	id := h.seed(entities.InvoiceStatusPending)
	h.logs.appendErr = errors.New("connection reset by peer")

	err := h.transitions.ApplyStatusChange(context.Background(), change(id, "paid"), entities.UserActor(uuid.New()))

	assert.ErrorIs(t, err, apperrors.ErrStorageFailure)
	assert.Equal(t, entities.InvoiceStatusPaid, h.invoices.get(id).Status)
}

func TestApplyStatusChange_AppendFailureAtomicRollsBack(t *testing.T) {
	h := newHarness(t, true)
	id := h.seed(entities.InvoiceStatusPending)
	h.logs.appendErr = errors.New("connection reset by peer")

	err := h.transitions.ApplyStatusChange(context.Background(), change(id, "paid"), entities.UserActor(uuid.New()))

	assert.ErrorIs(t, err, apperrors.ErrStorageFailure)
	assert.Equal(t, entities.InvoiceStatusPending, h.invoices.get(id).Status)
	assert.Empty(t, h.logs.forInvoice(id))
	assert.Zero(t, h.observed.FilterField(zap.Bool("partial_write", true)).Len())
}

func TestApplyStatusChange_UpdateFailureWritesNoEntry(t *testing.T) {
	for _, atomic := range []bool{true, false} {
		h := newHarness(t, atomic)
		id := h.seed(entities.InvoiceStatusPending)
		h.invoices.updateErr = errors.New("disk full")

		err := h.transitions.ApplyStatusChange(context.Background(), change(id, "paid"), entities.UserActor(uuid.New()))

		assert.ErrorIs(t, err, apperrors.ErrStorageFailure)
		assert.Empty(t, h.logs.forInvoice(id))
		assert.Zero(t, h.observed.FilterField(zap.Bool("partial_write", true)).Len())
		assert.False(t, h.transitions.partialWritePossible(err))
	}
}

func TestApplyStatusChange_BeginFailureIsStorageFailure(t *testing.T) {
	h := newHarness(t, true)
	id := h.seed(entities.InvoiceStatusPending)
	h.tx.beginErr = errors.New("too many connections")

	err := h.transitions.ApplyStatusChange(context.Background(), change(id, "paid"), entities.UserActor(uuid.New()))

	assert.ErrorIs(t, err, apperrors.ErrStorageFailure)
	assert.Equal(t, entities.InvoiceStatusPending, h.invoices.get(id).Status)
}

func TestApplyStatusChange_RepeatedCallIsNotDeduplicated(t *testing.T) {
	h := newHarness(t, true)
	id := h.seed(entities.InvoiceStatusPending)
	actor := entities.UserActor(uuid.New())

	require.NoError(t, h.transitions.ApplyStatusChange(context.Background(), change(id, "paid"), actor))
	require.NoError(t, h.transitions.ApplyStatusChange(context.Background(), change(id, "paid"), actor))

	assert.Equal(t, entities.InvoiceStatusPaid, h.invoices.get(id).Status)
	entries := h.logs.forInvoice(id)
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0].Status, entries[1].Status)
	assert.Less(t, entries[0].ID, entries[1].ID)
}

func TestApplyStatusChange_SameStatusStillLogs(t *testing.T) {
	h := newHarness(t, true)
	id := h.seed(entities.InvoiceStatusPending)

	require.NoError(t, h.transitions.ApplyStatusChange(context.Background(), change(id, "pending"), entities.UserActor(uuid.New())))

	assert.Len(t, h.logs.forInvoice(id), 1)
}

func TestApplyStatusChange_HistoryStaysConsistentAndAppendOnly(t *testing.T) {
	h := newHarness(t, false)
	id := h.seed(entities.InvoiceStatusPending)
	actor := entities.UserActor(uuid.New())
	sequence := []struct{ status, action string }{
		{"paid", "change"}, {"pending", "restore"}, {"canceled", "change"},
		{"canceled", "change"}, {"paid", "restore"}, {"pending", "change"},
	}

	before := []entities.StatusLogEntry{}
	for _, step := range sequence {
		err := h.transitions.ApplyStatusChange(context.Background(),
			dto.StatusChangeDTO{InvoiceID: id, Status: step.status, Action: step.action}, actor)
		require.NoError(t, err)

		after := h.logs.forInvoice(id)
		require.Len(t, after, len(before)+1)
		assert.Equal(t, before, after[:len(before)], "existing entries must not change")

		last := after[len(after)-1]
		assert.Equal(t, h.invoices.get(id).Status, last.Status)
		assert.Equal(t, entities.StatusAction(step.action), last.Action)
		before = after
	}

	// the status history can be replayed from the log alone
	replayed := make([]string, 0, len(before))
	for _, e := range before {
		replayed = append(replayed, string(e.Status))
	}
	assert.Equal(t, []string{"paid", "pending", "canceled", "canceled", "paid", "pending"}, replayed)
}

func TestApplyStatusChange_UnresolvedIdentityIsRejected(t *testing.T) {
	h := newHarness(t, true)
	id := h.seed(entities.InvoiceStatusPending)

	err := h.transitions.ApplyStatusChange(context.Background(), change(id, "paid"), entities.Actor{})

	assert.ErrorIs(t, err, apperrors.ErrUnresolvedIdentity)
	assert.Zero(t, h.invoices.updates)
	assert.Empty(t, h.logs.forInvoice(id))
}

func TestApplyStatusChange_SystemActorWritesNullUser(t *testing.T) {
	h := newHarness(t, true)
	id := h.seed(entities.InvoiceStatusPending)

	require.NoError(t, h.transitions.ApplyStatusChange(context.Background(), change(id, "paid"), entities.SystemActor()))

	entries := h.logs.forInvoice(id)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].UserID.Valid)
}

func TestApplyStatusChange_MissingInvoice(t *testing.T) {
	h := newHarness(t, false)
	id := uuid.New()

	err := h.transitions.ApplyStatusChange(context.Background(), change(id, "paid"), entities.UserActor(uuid.New()))

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NotErrorIs(t, err, apperrors.ErrStorageFailure)
	assert.Empty(t, h.logs.forInvoice(id))
}

func TestApplyStatusChange_VersionPrecondition(t *testing.T) {
	h := newHarness(t, true)
	id := h.seed(entities.InvoiceStatusPending)
	actor := entities.UserActor(uuid.New())

	in := change(id, "paid")
	in.ExpectedVersion = null.Int64From(1)
	require.NoError(t, h.transitions.ApplyStatusChange(context.Background(), in, actor))

	// another writer already moved the invoice past version 1
	in = change(id, "canceled")
	in.ExpectedVersion = null.Int64From(1)
	err := h.transitions.ApplyStatusChange(context.Background(), in, actor)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, entities.InvoiceStatusPaid, h.invoices.get(id).Status)
	assert.Len(t, h.logs.forInvoice(id), 1)
}
