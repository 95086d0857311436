package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fourgetech/payportal/internal/payments"
)

// RegisterPaymentRoutes wires the guarded customer endpoints.
func RegisterPaymentRoutes(r fiber.Router, h *payments.Handler) {
	r.Get("/dashboard", h.Dashboard)
	r.Get("/transactions", h.Transactions)
	r.Get("/receipts", h.Receipts)
	r.Post("/payments", h.SubmitPayment)
	r.Post("/payments/deposit", h.SubmitDeposit)
}
