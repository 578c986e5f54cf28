package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mybank/mybank/internal/session"
)

// RegisterSessionRoutes wires the session lifecycle endpoints. The
// idempotency handler, when present, guards the money-moving routes only.
func RegisterSessionRoutes(r fiber.Router, h *session.Handler, idem fiber.Handler, issueLimiter fiber.Handler) {
	r.Post("/sessions", h.Start)

	s := r.Group("/sessions/:sessionId")
	s.Get("", h.Get)
	s.Post("/account", h.CreateAccount)
	s.Post("/verification/method", h.ChooseMethod)
	if issueLimiter != nil {
		s.Post("/verification/code", issueLimiter, h.IssueCode)
	} else {
		s.Post("/verification/code", h.IssueCode)
	}
	s.Post("/verification/submit", h.SubmitCode)
	if idem != nil {
		s.Post("/deposit", idem, h.Deposit)
		s.Post("/withdraw", idem, h.Withdraw)
	} else {
		s.Post("/deposit", h.Deposit)
		s.Post("/withdraw", h.Withdraw)
	}
	s.Get("/transactions", h.Transactions)
	s.Post("/chat", h.Ask)
	s.Post("/chat/clear", h.ClearChat)
	s.Post("/logout", h.Logout)
}
