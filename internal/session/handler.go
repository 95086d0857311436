package session

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fourgetech/payportal/internal/bankapi"
)

// Handler exposes the session endpoints: login, register, logout.
type Handler struct {
	store *Store
}

// NewHandler constructs a session handler.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

type loginRequest struct {
	Username      string `json:"username"`
	AccountNumber string `json:"accountNumber"`
	Password      string `json:"password"`
}

// Login authenticates the customer and answers with the adopted identity.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Username == "" || req.AccountNumber == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "username, accountNumber and password are required")
	}

	if err := h.store.Login(c.UserContext(), req.Username, req.AccountNumber, req.Password); err != nil {
		return translateSessionError(err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"user": h.store.Identity()})
}

type registerRequest struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	IDNumber      string `json:"IDNumber"`
	AccountNumber string `json:"accountNumber"`
	Password      string `json:"password"`
}

// Register forwards the registration and then sends the caller to login whether or
// not the backend accepted it. The unconditional hand-off mirrors long-standing
// portal behavior; the failure is logged by the store but the navigation wins.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err := h.store.Register(c.UserContext(), bankapi.RegisterRequest{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Username:      req.Username,
		IDNumber:      req.IDNumber,
		AccountNumber: req.AccountNumber,
		Password:      req.Password,
	})
	if errors.Is(err, ErrOperationInFlight) {
		return fiber.NewError(http.StatusConflict, err.Error())
	}

	return c.Redirect("/login", http.StatusSeeOther)
}

// Logout clears the session; safe to call when already anonymous.
func (h *Handler) Logout(c *fiber.Ctx) error {
	h.store.Logout(c.UserContext())
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}

func translateSessionError(err error) error {
	var apiErr *bankapi.APIError
	var netErr *bankapi.NetworkError
	switch {
	case errors.As(err, &apiErr):
		return fiber.NewError(apiErr.Status, apiErr.Message)
	case errors.As(err, &netErr):
		if netErr.Timeout {
			return fiber.NewError(http.StatusGatewayTimeout, "banking service timed out")
		}
		return fiber.NewError(http.StatusBadGateway, "banking service unreachable")
	case errors.Is(err, ErrOperationInFlight):
		return fiber.NewError(http.StatusConflict, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
