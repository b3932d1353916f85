package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"invoice-system/internal/entities"
	"invoice-system/internal/repositories"
	"invoice-system/pkg/config"
	apperrors "invoice-system/pkg/errors"
	"invoice-system/pkg/validation"
)

var fixedNow = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

// ---- invoice store ----

type fakeInvoiceRepo struct {
	mu        sync.Mutex
	invoices  map[uuid.UUID]entities.Invoice
	updateErr error
	updates   int
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[uuid.UUID]entities.Invoice)}
}

func (r *fakeInvoiceRepo) get(id uuid.UUID) entities.Invoice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.invoices[id]
}

func (r *fakeInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &inv, nil
}

func (r *fakeInvoiceRepo) FindForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.Invoice, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeInvoiceRepo) Create(ctx context.Context, invoice entities.Invoice) (*entities.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	invoice.ID = uuid.New()
	invoice.Version = 1
	invoice.CreatedAt = fixedNow
	invoice.UpdatedAt = fixedNow
	r.invoices[invoice.ID] = invoice
	return &invoice, nil
}

func (r *fakeInvoiceRepo) Update(ctx context.Context, tx pgx.Tx, id uuid.UUID, update entities.InvoiceUpdate) (*entities.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	inv, ok := r.invoices[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if update.ExpectedVersion != nil && *update.ExpectedVersion != inv.Version {
		return nil, apperrors.ErrConflict
	}
	if update.CustomerID != nil {
		inv.CustomerID = *update.CustomerID
	}
	if update.Amount != nil {
		inv.Amount = *update.Amount
	}
	if update.Status != nil {
		inv.Status = *update.Status
	}
	inv.Version++
	r.invoices[id] = inv
	r.updates++
	return &inv, nil
}

func (r *fakeInvoiceRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status entities.InvoiceStatus, expectedVersion *int64) (*entities.Invoice, error) {
	return r.Update(ctx, tx, id, entities.InvoiceUpdate{Status: &status, ExpectedVersion: expectedVersion})
}

// ---- audit log store ----

type fakeLogRepo struct {
	mu        sync.Mutex
	entries   []entities.StatusLogEntry
	nextID    uint64
	appendErr error
	listCalls int
	userNames map[uuid.UUID]string
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{userNames: make(map[uuid.UUID]string)}
}

func (r *fakeLogRepo) Append(ctx context.Context, tx pgx.Tx, entry *entities.StatusLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.nextID++
	entry.ID = r.nextID
	entry.CreatedAt = fixedNow
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeLogRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]repositories.StatusLogItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	items := make([]repositories.StatusLogItem, 0)
	for _, e := range r.entries {
		if e.InvoiceID != invoiceID {
			continue
		}
		item := repositories.StatusLogItem{StatusLogEntry: e}
		if name, ok := r.userNames[e.UserID.UUID]; ok && e.UserID.Valid {
			item.UserName.SetValid(name)
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *fakeLogRepo) forInvoice(invoiceID uuid.UUID) []entities.StatusLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.StatusLogEntry
	for _, e := range r.entries {
		if e.InvoiceID == invoiceID {
			out = append(out, e)
		}
	}
	return out
}

// ---- transactions ----

// fakeTx stands in for a live transaction; the fakes never call its methods.
type fakeTx struct{ pgx.Tx }

// fakeTxManager snapshots both stores and restores them when fn fails.
type fakeTxManager struct {
	invoices *fakeInvoiceRepo
	logs     *fakeLogRepo
	calls    int
	beginErr error
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	m.calls++
	if m.beginErr != nil {
		return fmt.Errorf("begin transaction: %w", m.beginErr)
	}

	m.invoices.mu.Lock()
	invoiceSnapshot := make(map[uuid.UUID]entities.Invoice, len(m.invoices.invoices))
	for k, v := range m.invoices.invoices {
		invoiceSnapshot[k] = v
	}
	m.invoices.mu.Unlock()

	m.logs.mu.Lock()
	logLen, nextID := len(m.logs.entries), m.logs.nextID
	m.logs.mu.Unlock()

	if err := fn(fakeTx{}); err != nil {
		m.invoices.mu.Lock()
		m.invoices.invoices = invoiceSnapshot
		m.invoices.mu.Unlock()

		m.logs.mu.Lock()
		m.logs.entries = m.logs.entries[:logLen]
		m.logs.nextID = nextID
		m.logs.mu.Unlock()
		return err
	}
	return nil
}

// ---- invalidation and cache ----

type recordingInvalidator struct {
	mu     sync.Mutex
	scopes []InvalidationScope
}

func (i *recordingInvalidator) Invalidate(ctx context.Context, scope InvalidationScope) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.scopes = append(i.scopes, scope)
}

func (i *recordingInvalidator) count() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.scopes)
}

type memCache struct {
	mu      sync.Mutex
	data    map[string]string
	incrErr error
}

func newMemCache() *memCache { return &memCache{data: make(map[string]string)} }

func (c *memCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	default:
		c.data[key] = fmt.Sprint(v)
	}
	return nil
}

func (c *memCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.incrErr != nil {
		return 0, c.incrErr
	}
	n, _ := strconv.ParseInt(c.data[key], 10, 64)
	n++
	c.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

// ---- harness ----

type harness struct {
	invoices    *fakeInvoiceRepo
	logs        *fakeLogRepo
	tx          *fakeTxManager
	invalidator *recordingInvalidator
	cache       *memCache
	publisher   *recordingPublisher
	observed    *observer.ObservedLogs

	transitions *StatusTransitionService
	edit        InvoiceEditWorkflowInterface
	restore     RestoreWorkflowInterface
	invoiceSvc  InvoiceServiceInterface
}

func newHarness(t *testing.T, atomic bool) *harness {
	t.Helper()

	core, observed := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	v := validation.New()

	h := &harness{
		invoices:    newFakeInvoiceRepo(),
		logs:        newFakeLogRepo(),
		invalidator: &recordingInvalidator{},
		cache:       newMemCache(),
		publisher:   &recordingPublisher{},
		observed:    observed,
	}
	h.tx = &fakeTxManager{invoices: h.invoices, logs: h.logs}

	h.transitions = NewStatusTransitionService(h.tx, h.invoices, h.logs, v, config.AuditConfig{AtomicWrites: atomic}, h.publisher, logger)
	h.transitions.now = func() time.Time { return fixedNow }

	h.edit = NewInvoiceEditWorkflow(h.transitions, h.invalidator, v, logger)
	h.restore = NewRestoreWorkflow(h.transitions, h.invalidator, logger)

	svc := NewInvoiceService(h.invoices, h.logs, h.cache, h.transitions, h.invalidator, v, config.RedisConfig{CacheTTL: time.Minute}, logger)
	svc.(*InvoiceService).now = func() time.Time { return fixedNow }
	h.invoiceSvc = svc

	return h
}

func (h *harness) seed(status entities.InvoiceStatus) uuid.UUID {
	inv, err := h.invoices.Create(context.Background(), entities.Invoice{
		CustomerID: uuid.New(),
		Amount:     1000,
		Status:     status,
		Date:       fixedNow,
	})
	if err != nil {
		panic(err)
	}
	return inv.ID
}

func (h *harness) warnings(message string) int {
	return h.observed.FilterMessage(message).Len()
}
