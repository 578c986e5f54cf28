package routes

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mybank/mybank/internal/assistant"
	"github.com/mybank/mybank/internal/completion"
	"github.com/mybank/mybank/internal/config"
	"github.com/mybank/mybank/internal/ledger"
	"github.com/mybank/mybank/internal/middleware"
	"github.com/mybank/mybank/internal/notification"
	"github.com/mybank/mybank/internal/otp"
	"github.com/mybank/mybank/internal/session"
	"github.com/mybank/mybank/internal/verification"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. DB and Cache may
// be nil; the service then runs on the in-memory ledger without idempotency
// or rate limiting.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var ledgerBackend ledger.Ledger
	if d.DB != nil {
		ledgerBackend = ledger.NewPostgres(d.DB)
	} else {
		ledgerBackend = ledger.NewInMemory()
	}

	alphabet := otp.AlphabetDigits
	if d.Cfg.OTPAlphanum {
		alphabet = otp.AlphabetAlphanumeric
	}
	gen, err := otp.NewGenerator(d.Cfg.OTPLength, alphabet)
	if err != nil {
		return err
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	verifier, err := verification.NewService(d.Cfg.StaticPIN, gen, notifier, d.Cfg.OTPTTL, d.Cfg.OTPMaxAttempts)
	if err != nil {
		return err
	}

	var completer completion.Completer
	if d.Cfg.CompletionURL != "" {
		completer = completion.NewHTTPCompleter(d.Cfg.CompletionURL, d.Cfg.CompletionKey, d.Cfg.CompletionModel)
	}
	asst := assistant.NewService(completer, d.Cfg.AssistantMode == config.AssistantCompletion)

	manager := session.NewManager(ledgerBackend, verifier, asst, d.Logger)
	handler := session.NewHandler(manager)

	api := app.Group("/api/v1")

	var idem fiber.Handler
	if d.Cache != nil {
		idem = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	issueLimiter := middleware.OTPIssueRateLimit(d.Cache, 5)

	RegisterSessionRoutes(api, handler, idem, issueLimiter)

	return nil
}
