package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fourgetech/payportal/internal/bankapi"
	"github.com/fourgetech/payportal/internal/currency"
	"github.com/fourgetech/payportal/internal/notification"
	"github.com/fourgetech/payportal/internal/session"
)

// API is the slice of the banking API the payment service needs.
type API interface {
	SubmitPayment(ctx context.Context, token string, req bankapi.PaymentRequest) error
	SubmitDeposit(ctx context.Context, token string, req bankapi.DepositRequest) error
	Transactions(ctx context.Context, token, customerID string) ([]bankapi.Transaction, error)
	Dashboard(ctx context.Context, token, customerID string) (bankapi.DashboardSummary, error)
}

// Service builds normalized payment and deposit requests, ships them to the backend
// under the session's bearer credential, and keeps the receipt trail and transaction
// cache honest. Input is assumed field-validated; the handlers run Validate before
// calling in.
type Service struct {
	api      API
	sessions *session.Store
	audit    AuditRepository
	cache    *TransactionCache
	notifier notification.Notifier
	logger   *slog.Logger

	loading  atomic.Bool
	accepted atomic.Bool
}

// NewService wires the payment service.
func NewService(api API, sessions *session.Store, audit AuditRepository, cache *TransactionCache, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{
		api:      api,
		sessions: sessions,
		audit:    audit,
		cache:    cache,
		notifier: notifier,
		logger:   logger,
	}
}

// SubmitPayment converts the entered amount to the settlement currency, attaches
// the customer identity and credential, and posts the payment. On acceptance it
// records a receipt retaining the entered values, flags the pending-confirmation
// notice, and invalidates the customer's transaction cache entry. Failures are
// logged and returned; retrying is the caller's decision. The loading flag clears
// on every path.
func (s *Service) SubmitPayment(ctx context.Context, input PaymentInput) error {
	s.loading.Store(true)
	defer s.loading.Store(false)

	token, ident, err := s.authorized(ctx)
	if err != nil {
		return err
	}

	entered := decimal.NewFromFloat(input.Amount)
	converted, err := currency.Convert(entered, input.Currency, currency.Pivot)
	if err != nil {
		return err
	}

	req := bankapi.PaymentRequest{
		CustomerID:         ident.CustomerID,
		PaymentAmount:      converted.InexactFloat64(),
		Currency:           currency.Pivot,
		RecipientName:      input.RecipientName,
		RecipientBank:      input.RecipientBank,
		Provider:           input.Provider,
		PayeeAccountNumber: input.PayeeAccountNumber,
		SwiftCode:          input.SwiftCode,
	}

	if err := s.api.SubmitPayment(ctx, token, req); err != nil {
		s.logger.Error("payment submission failed", "customer_id", ident.CustomerID, "error", err)
		return err
	}

	s.accepted.Store(true)
	s.record(ctx, AuditRecord{
		ID:                 uuid.NewString(),
		CustomerID:         ident.CustomerID,
		Kind:               KindPayment,
		EnteredAmount:      entered,
		EnteredCurrency:    input.Currency,
		ConvertedAmount:    converted,
		SettlementCurrency: currency.Pivot,
		RecipientName:      input.RecipientName,
		RecipientBank:      input.RecipientBank,
		Provider:           input.Provider,
		PayeeAccountNumber: input.PayeeAccountNumber,
		SwiftCode:          input.SwiftCode,
		SubmittedAt:        time.Now().UTC(),
	})
	s.cache.Invalidate(ident.CustomerID)
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindPaymentSubmitted,
			Destination: ident.CustomerID,
			Body:        fmt.Sprintf("Payment of %s %s to %s submitted for approval", converted.StringFixed(2), currency.Pivot, input.RecipientName),
		})
	}
	return nil
}

// SubmitDeposit posts a card deposit. Deposits are already in settlement currency,
// so no conversion happens; the card fields live only inside this call and never
// reach the receipt trail beyond the last four digits.
func (s *Service) SubmitDeposit(ctx context.Context, input DepositInput) error {
	s.loading.Store(true)
	defer s.loading.Store(false)

	token, ident, err := s.authorized(ctx)
	if err != nil {
		return err
	}

	amount := decimal.NewFromFloat(input.Amount)
	req := bankapi.DepositRequest{
		CustomerID: ident.CustomerID,
		Amount:     input.Amount,
		CardNumber: input.CardNumber,
		ExpiryDate: input.ExpiryDate,
		CVV:        input.CVV,
	}

	if err := s.api.SubmitDeposit(ctx, token, req); err != nil {
		s.logger.Error("deposit submission failed", "customer_id", ident.CustomerID, "error", err)
		return err
	}

	s.accepted.Store(true)
	s.record(ctx, AuditRecord{
		ID:                 uuid.NewString(),
		CustomerID:         ident.CustomerID,
		Kind:               KindDeposit,
		EnteredAmount:      amount,
		EnteredCurrency:    currency.Pivot,
		ConvertedAmount:    amount,
		SettlementCurrency: currency.Pivot,
		CardLast4:          cardLast4(input.CardNumber),
		SubmittedAt:        time.Now().UTC(),
	})
	s.cache.Invalidate(ident.CustomerID)
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindDepositSubmitted,
			Destination: ident.CustomerID,
			Body:        fmt.Sprintf("Deposit of %s %s submitted", amount.StringFixed(2), currency.Pivot),
		})
	}
	return nil
}

// Transactions reads the customer's history through the cache. A miss fetches from
// the backend and fills the entry.
func (s *Service) Transactions(ctx context.Context) ([]bankapi.Transaction, error) {
	token, ident, err := s.authorized(ctx)
	if err != nil {
		return nil, err
	}
	if txs, ok := s.cache.Get(ident.CustomerID); ok {
		return txs, nil
	}
	txs, err := s.api.Transactions(ctx, token, ident.CustomerID)
	if err != nil {
		return nil, err
	}
	s.cache.Put(ident.CustomerID, txs)
	return txs, nil
}

// Dashboard fetches the customer's account summary. Not cached: balances move with
// every approved payment.
func (s *Service) Dashboard(ctx context.Context) (bankapi.DashboardSummary, error) {
	token, ident, err := s.authorized(ctx)
	if err != nil {
		return bankapi.DashboardSummary{}, err
	}
	return s.api.Dashboard(ctx, token, ident.CustomerID)
}

// Receipts lists the customer's audited submissions, newest first.
func (s *Service) Receipts(ctx context.Context) ([]AuditRecord, error) {
	_, ident, err := s.authorized(ctx)
	if err != nil {
		return nil, err
	}
	return s.audit.ListByCustomer(ctx, ident.CustomerID)
}

// Loading reports whether a submission is in flight.
func (s *Service) Loading() bool {
	return s.loading.Load()
}

// Accepted reports whether a submission has been accepted since the last
// acknowledgement; the UI shows it as a pending-confirmation notice, since final
// approval happens asynchronously on the backend.
func (s *Service) Accepted() bool {
	return s.accepted.Load()
}

// AcknowledgeAccepted consumes the pending-confirmation notice.
func (s *Service) AcknowledgeAccepted() {
	s.accepted.Store(false)
}

// authorized checks the session proactively before an authenticated call: an
// expired credential forces a logout here instead of bouncing off the backend.
func (s *Service) authorized(ctx context.Context) (string, session.Identity, error) {
	if err := s.sessions.CheckCredential(time.Now()); err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			return "", session.Identity{}, err
		}
		s.logger.Info("credential expired, forcing logout")
		s.sessions.Logout(ctx)
		return "", session.Identity{}, err
	}
	return s.sessions.Credential(), s.sessions.Identity(), nil
}

// record writes the receipt; a trail failure is logged but never turns an accepted
// submission into a user-facing error.
func (s *Service) record(ctx context.Context, rec AuditRecord) {
	if err := s.audit.Record(ctx, rec); err != nil {
		s.logger.Error("audit record failed", "customer_id", rec.CustomerID, "kind", string(rec.Kind), "error", err)
	}
}

func cardLast4(cardNumber string) string {
	if len(cardNumber) < 4 {
		return ""
	}
	return cardNumber[len(cardNumber)-4:]
}
