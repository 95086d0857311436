package payments

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresAuditRepository stores the audit trail in PostgreSQL.
type PostgresAuditRepository struct {
	db *pgxpool.Pool
}

// NewPostgresAuditRepository builds a Postgres-backed audit trail.
func NewPostgresAuditRepository(db *pgxpool.Pool) *PostgresAuditRepository {
	return &PostgresAuditRepository{db: db}
}

// Record inserts one accepted submission.
func (r *PostgresAuditRepository) Record(ctx context.Context, rec AuditRecord) error {
	_, err := r.db.Exec(ctx, `INSERT INTO submission_audit
        (id, customer_id, kind, entered_amount, entered_currency, converted_amount, settlement_currency,
         recipient_name, recipient_bank, provider, payee_account_number, swift_code, card_last4, submitted_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		rec.ID, rec.CustomerID, string(rec.Kind),
		rec.EnteredAmount.String(), rec.EnteredCurrency,
		rec.ConvertedAmount.String(), rec.SettlementCurrency,
		rec.RecipientName, rec.RecipientBank, rec.Provider,
		rec.PayeeAccountNumber, rec.SwiftCode, rec.CardLast4,
		rec.SubmittedAt.UTC())
	return err
}

// ListByCustomer fetches the customer's receipts, newest first.
func (r *PostgresAuditRepository) ListByCustomer(ctx context.Context, customerID string) ([]AuditRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT id, customer_id, kind, entered_amount, entered_currency,
        converted_amount, settlement_currency, recipient_name, recipient_bank, provider,
        payee_account_number, swift_code, card_last4, submitted_at
        FROM submission_audit WHERE customer_id = $1 ORDER BY submitted_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditRecord
	for rows.Next() {
		var (
			rec         AuditRecord
			kind        string
			entered     string
			converted   string
			submittedAt time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.CustomerID, &kind, &entered, &rec.EnteredCurrency,
			&converted, &rec.SettlementCurrency, &rec.RecipientName, &rec.RecipientBank,
			&rec.Provider, &rec.PayeeAccountNumber, &rec.SwiftCode, &rec.CardLast4, &submittedAt); err != nil {
			return nil, err
		}
		rec.Kind = AuditKind(kind)
		if rec.EnteredAmount, err = decimal.NewFromString(entered); err != nil {
			return nil, err
		}
		if rec.ConvertedAmount, err = decimal.NewFromString(converted); err != nil {
			return nil, err
		}
		rec.SubmittedAt = submittedAt.UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}
