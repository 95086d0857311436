package payments

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fourgetech/payportal/internal/bankapi"
	"github.com/fourgetech/payportal/internal/currency"
	"github.com/fourgetech/payportal/internal/session"
)

// Handler exposes the guarded customer endpoints: payment and deposit submission,
// transaction history, dashboard summary, and receipts.
type Handler struct {
	service *Service
}

// NewHandler constructs a payments handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type paymentRequest struct {
	Amount             float64 `json:"amount"`
	Currency           string  `json:"currency"`
	Provider           string  `json:"provider"`
	RecipientName      string  `json:"recipientName"`
	RecipientBank      string  `json:"recipientBank"`
	PayeeAccountNumber string  `json:"payeeAccountNumber"`
	SwiftCode          string  `json:"swiftCode"`
}

// SubmitPayment validates the entered fields and hands off to the service. A 202
// means the backend accepted the payment for asynchronous approval.
func (h *Handler) SubmitPayment(c *fiber.Ctx) error {
	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	input := PaymentInput{
		Amount:             req.Amount,
		Currency:           req.Currency,
		Provider:           req.Provider,
		RecipientName:      req.RecipientName,
		RecipientBank:      req.RecipientBank,
		PayeeAccountNumber: req.PayeeAccountNumber,
		SwiftCode:          req.SwiftCode,
	}
	if err := input.Validate(); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.SubmitPayment(c.UserContext(), input); err != nil {
		return translatePaymentError(err)
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"status": "pending_confirmation"})
}

type depositRequest struct {
	Amount     float64 `json:"amount"`
	CardNumber string  `json:"cardNumber"`
	ExpiryDate string  `json:"expiryDate"`
	CVV        string  `json:"cvv"`
}

// SubmitDeposit validates and submits a card deposit.
func (h *Handler) SubmitDeposit(c *fiber.Ctx) error {
	var req depositRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	input := DepositInput{
		Amount:     req.Amount,
		CardNumber: req.CardNumber,
		ExpiryDate: req.ExpiryDate,
		CVV:        req.CVV,
	}
	if err := input.Validate(); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.SubmitDeposit(c.UserContext(), input); err != nil {
		return translatePaymentError(err)
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"status": "pending_confirmation"})
}

// Transactions lists the customer's history.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	txs, err := h.service.Transactions(c.UserContext())
	if err != nil {
		return translatePaymentError(err)
	}
	if txs == nil {
		txs = []bankapi.Transaction{}
	}
	return c.Status(http.StatusOK).JSON(txs)
}

// Dashboard returns the account summary with a masked account number, plus the
// pending-confirmation notice. Reading the dashboard consumes the notice.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	summary, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return translatePaymentError(err)
	}
	pending := h.service.Accepted()
	if pending {
		h.service.AcknowledgeAccepted()
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"accountNumber":        maskAccountNumber(summary.AccountNumber),
		"availableBalance":     summary.AvailableBalance,
		"latestBalance":        summary.LatestBalance,
		"totalSent":            summary.TotalSent,
		"totalReceived":        summary.TotalReceived,
		"pending_confirmation": pending,
	})
}

type receiptResponse struct {
	ID                 string `json:"id"`
	Kind               string `json:"kind"`
	EnteredAmount      string `json:"enteredAmount"`
	EnteredCurrency    string `json:"enteredCurrency"`
	ConvertedAmount    string `json:"convertedAmount"`
	SettlementCurrency string `json:"settlementCurrency"`
	RecipientName      string `json:"recipientName,omitempty"`
	RecipientBank      string `json:"recipientBank,omitempty"`
	Provider           string `json:"provider,omitempty"`
	PayeeAccountNumber string `json:"payeeAccountNumber,omitempty"`
	SwiftCode          string `json:"swiftCode,omitempty"`
	CardLast4          string `json:"cardLast4,omitempty"`
	SubmittedAt        string `json:"submittedAt"`
}

// Receipts lists locally audited submissions, entered and converted values side by
// side.
func (h *Handler) Receipts(c *fiber.Ctx) error {
	records, err := h.service.Receipts(c.UserContext())
	if err != nil {
		return translatePaymentError(err)
	}
	out := make([]receiptResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, receiptResponse{
			ID:                 rec.ID,
			Kind:               string(rec.Kind),
			EnteredAmount:      rec.EnteredAmount.StringFixed(2),
			EnteredCurrency:    rec.EnteredCurrency,
			ConvertedAmount:    rec.ConvertedAmount.StringFixed(2),
			SettlementCurrency: rec.SettlementCurrency,
			RecipientName:      rec.RecipientName,
			RecipientBank:      rec.RecipientBank,
			Provider:           rec.Provider,
			PayeeAccountNumber: rec.PayeeAccountNumber,
			SwiftCode:          rec.SwiftCode,
			CardLast4:          rec.CardLast4,
			SubmittedAt:        rec.SubmittedAt.Format(time.RFC3339),
		})
	}
	return c.Status(http.StatusOK).JSON(out)
}

func translatePaymentError(err error) error {
	var apiErr *bankapi.APIError
	var netErr *bankapi.NetworkError
	var valErr *ValidationError
	var curErr *currency.UnknownCurrencyError
	switch {
	case errors.Is(err, session.ErrSessionExpired):
		return fiber.NewError(http.StatusUnauthorized, "session expired, please log in again")
	case errors.Is(err, session.ErrNotAuthenticated):
		return fiber.NewError(http.StatusUnauthorized, "not authenticated")
	case errors.As(err, &valErr):
		return fiber.NewError(http.StatusBadRequest, valErr.Error())
	case errors.As(err, &curErr):
		return fiber.NewError(http.StatusBadRequest, curErr.Error())
	case errors.As(err, &apiErr):
		return fiber.NewError(apiErr.Status, apiErr.Message)
	case errors.As(err, &netErr):
		if netErr.Timeout {
			return fiber.NewError(http.StatusGatewayTimeout, "banking service timed out")
		}
		return fiber.NewError(http.StatusBadGateway, "banking service unreachable")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}

// maskAccountNumber hides the account number for dashboard display.
func maskAccountNumber(accountNumber string) string {
	if accountNumber == "" {
		return ""
	}
	return "•••••••••••"
}
