package session

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mybank/mybank/internal/account"
	"github.com/mybank/mybank/internal/ledger"
	"github.com/mybank/mybank/internal/verification"
)

// Handler exposes session HTTP endpoints.
type Handler struct {
	manager *Manager
}

// NewHandler builds a session HTTP handler.
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// Start opens a new session.
func (h *Handler) Start(c *fiber.Ctx) error {
	snap := h.manager.Start(c.UserContext())
	return c.Status(http.StatusCreated).JSON(snap)
}

// Get returns the current session snapshot.
func (h *Handler) Get(c *fiber.Ctx) error {
	snap, err := h.manager.Snapshot(c.UserContext(), c.Params("sessionId"))
	if err != nil {
		return statusError(err)
	}
	return c.JSON(snap)
}

type createAccountRequest struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
	Email  string `json:"email"`
}

// CreateAccount handles the setup form submission.
func (h *Handler) CreateAccount(c *fiber.Ctx) error {
	var req createAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	snap, err := h.manager.CreateAccount(c.UserContext(), c.Params("sessionId"), req.Name, req.Mobile, req.Email)
	if err != nil {
		return statusError(err)
	}
	return c.Status(http.StatusCreated).JSON(snap)
}

type chooseMethodRequest struct {
	Method string `json:"method"`
}

// ChooseMethod records the verification method for the session.
func (h *Handler) ChooseMethod(c *fiber.Ctx) error {
	var req chooseMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	snap, err := h.manager.ChooseMethod(c.UserContext(), c.Params("sessionId"), verification.Method(req.Method))
	if err != nil {
		return statusError(err)
	}
	return c.JSON(snap)
}

// IssueCode generates and delivers a one-time code.
func (h *Handler) IssueCode(c *fiber.Ctx) error {
	snap, err := h.manager.IssueCode(c.UserContext(), c.Params("sessionId"))
	if err != nil {
		return statusError(err)
	}
	return c.JSON(snap)
}

type submitCodeRequest struct {
	Code string `json:"code"`
}

// SubmitCode verifies the submitted PIN or OTP.
func (h *Handler) SubmitCode(c *fiber.Ctx) error {
	var req submitCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	snap, err := h.manager.SubmitCode(c.UserContext(), c.Params("sessionId"), req.Code)
	if err != nil {
		return statusError(err)
	}
	return c.JSON(snap)
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

type entryResponse struct {
	TransactionID string `json:"transaction_id"`
	Kind          string `json:"kind"`
	Amount        int64  `json:"amount"`
	Balance       int64  `json:"balance"`
	Timestamp     string `json:"timestamp"`
}

func toEntryResponse(e ledger.Entry) entryResponse {
	return entryResponse{
		TransactionID: e.ID,
		Kind:          e.Kind,
		Amount:        e.Amount,
		Balance:       e.Balance,
		Timestamp:     e.CreatedAt.Format(time.RFC3339Nano),
	}
}

// Deposit credits the session account.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	entry, err := h.manager.Deposit(c.UserContext(), c.Params("sessionId"), req.Amount)
	if err != nil {
		return statusError(err)
	}
	return c.Status(http.StatusCreated).JSON(toEntryResponse(entry))
}

// Withdraw debits the session account.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	entry, err := h.manager.Withdraw(c.UserContext(), c.Params("sessionId"), req.Amount)
	if err != nil {
		return statusError(err)
	}
	return c.Status(http.StatusCreated).JSON(toEntryResponse(entry))
}

// Transactions lists recent ledger entries, most recent first.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fiber.NewError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}

	entries, err := h.manager.Transactions(c.UserContext(), c.Params("sessionId"), limit)
	if err != nil {
		return statusError(err)
	}

	out := make([]entryResponse, 0)
	for entry := range entries {
		out = append(out, toEntryResponse(entry))
	}
	return c.JSON(fiber.Map{"transactions": out})
}

type askRequest struct {
	Text string `json:"text"`
}

// Ask routes a chat question to the assistant.
func (h *Handler) Ask(c *fiber.Ctx) error {
	var req askRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Text == "" {
		return fiber.NewError(http.StatusBadRequest, "please type a message")
	}
	reply, err := h.manager.AskQuestion(c.UserContext(), c.Params("sessionId"), req.Text)
	if err != nil {
		return statusError(err)
	}
	return c.JSON(fiber.Map{"intent": reply.Intent, "reply": reply.Text})
}

// ClearChat empties the chat log.
func (h *Handler) ClearChat(c *fiber.Ctx) error {
	snap, err := h.manager.ClearChat(c.UserContext(), c.Params("sessionId"))
	if err != nil {
		return statusError(err)
	}
	return c.JSON(snap)
}

// Logout resets the session to the setup stage.
func (h *Handler) Logout(c *fiber.Ctx) error {
	snap, err := h.manager.Logout(c.UserContext(), c.Params("sessionId"))
	if err != nil {
		return statusError(err)
	}
	return c.JSON(snap)
}

// statusError maps domain errors onto HTTP statuses. Every kind is
// recoverable; the session stays where it was.
func statusError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrWrongStage):
		return fiber.NewError(http.StatusConflict, err.Error())
	case isValidationError(err):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case verification.IsAuthError(err):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, verification.ErrDeliveryFailed):
		return fiber.NewError(http.StatusBadGateway, err.Error())
	case errors.Is(err, ledger.ErrInvalidAmount):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	default:
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, account.ErrEmptyName) ||
		errors.Is(err, account.ErrInvalidName) ||
		errors.Is(err, account.ErrInvalidMobile) ||
		errors.Is(err, account.ErrInvalidEmail)
}
