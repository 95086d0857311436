package payments

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// AuditKind separates outbound payments from card deposits in the trail.
type AuditKind string

const (
	KindPayment AuditKind = "payment"
	KindDeposit AuditKind = "deposit"
)

// AuditRecord is the receipt-grade record of one accepted submission. It retains
// the amount and currency exactly as entered alongside the converted settlement
// values, which the wire request alone would have discarded. Deposits keep only the
// last four card digits; full card data never reaches the trail.
type AuditRecord struct {
	ID                 string
	CustomerID         string
	Kind               AuditKind
	EnteredAmount      decimal.Decimal
	EnteredCurrency    string
	ConvertedAmount    decimal.Decimal
	SettlementCurrency string
	RecipientName      string
	RecipientBank      string
	Provider           string
	PayeeAccountNumber string
	SwiftCode          string
	CardLast4          string
	SubmittedAt        time.Time
}

// AuditRepository persists accepted submissions.
type AuditRepository interface {
	Record(ctx context.Context, rec AuditRecord) error
	ListByCustomer(ctx context.Context, customerID string) ([]AuditRecord, error)
}

type memoryAuditRepository struct {
	mu      sync.RWMutex
	records []AuditRecord
}

// NewMemoryAuditRepository constructs an in-memory audit trail for development and
// tests.
func NewMemoryAuditRepository() AuditRepository {
	return &memoryAuditRepository{}
}

func (r *memoryAuditRepository) Record(_ context.Context, rec AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *memoryAuditRepository) ListByCustomer(_ context.Context, customerID string) ([]AuditRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []AuditRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].CustomerID == customerID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}
