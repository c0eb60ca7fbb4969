// Package bot wires the command table, handlers and middleware chain into a
// Router that every gateway feeds with normalized events.
package bot

import (
	"log/slog"

	"github.com/Proton-105/econ-bot/internal/bot/handlers"
	"github.com/Proton-105/econ-bot/internal/bot/keyboard"
	"github.com/Proton-105/econ-bot/internal/economy"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
	"github.com/Proton-105/econ-bot/internal/i18n"
	"github.com/Proton-105/econ-bot/internal/idempotency"
	"github.com/Proton-105/econ-bot/internal/middleware"
)

// Deps are the collaborators a Bot needs. Idempotency and RateLimit are optional.
type Deps struct {
	Economy     *economy.Service
	Catalog     *i18n.Manager
	Errors      *apperrors.Handler
	Idempotency idempotency.Manager
	RateLimit   *middleware.RateLimitMiddleware
	Log         *slog.Logger
}

// Bot is the transport-independent command processor.
type Bot struct {
	router   *Router
	keyboard *keyboard.Builder
	log      *slog.Logger
}

// New builds a Bot with every command and callback registered.
func New(d Deps) *Bot {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	b := &Bot{
		router:   NewRouter(log),
		keyboard: keyboard.NewBuilder(log),
		log:      log,
	}
	b.setupRouter(d)
	return b
}

// Handle routes one event. Rejections have already been replied to by the
// time it returns; the error is only for gateway bookkeeping.
func (b *Bot) Handle(e *handlers.Event) error {
	return b.router.Route(e)
}

// Resolve maps a typed command or alias to its canonical name.
func (b *Bot) Resolve(name string) (string, bool) {
	return b.router.Resolve(name)
}

func (b *Bot) setupRouter(d Deps) {
	svc, kb := d.Economy, b.keyboard

	b.router.Use(middleware.Recovery(b.log, d.Errors))
	b.router.Use(middleware.Idempotency(d.Idempotency, b.log))
	b.router.Use(middleware.Locale(d.Catalog, svc, b.log))
	b.router.Use(middleware.ErrorHandling(d.Errors, b.log))
	b.router.Use(middleware.Logging(b.log))
	b.router.Use(middleware.Metrics)
	if d.RateLimit != nil {
		b.router.Use(d.RateLimit.Handle)
	}
	b.router.Use(middleware.ChannelGuard(svc, ChannelKinds(), "help", keyboard.ActionHelp))

	commands := map[string]handlers.Handler{
		"balance":     handlers.NewBalanceHandler(svc),
		"deposit":     handlers.NewDepositHandler(svc),
		"withdraw":    handlers.NewWithdrawHandler(svc),
		"transfer":    handlers.NewTransferHandler(svc),
		"tip":         handlers.NewTipHandler(svc),
		"rob":         handlers.NewRobHandler(svc),
		"crime":       handlers.NewCrimeHandler(svc),
		"coinflip":    handlers.NewCoinflipHandler(svc),
		"dice":        handlers.NewDiceHandler(svc),
		"rps":         handlers.NewRPSHandler(svc),
		"slots":       handlers.NewSlotsHandler(svc),
		"blackjack":   handlers.NewBlackjackHandler(svc, kb),
		"marry":       handlers.NewMarryHandler(svc, kb),
		"divorce":     handlers.NewDivorceHandler(svc),
		"khula":       handlers.NewKhulaHandler(svc, kb),
		"loan":        handlers.NewLoanHandler(svc),
		"repay":       handlers.NewRepayHandler(svc),
		"job":         handlers.NewJobHandler(svc),
		"resign":      handlers.NewResignHandler(svc),
		"salary":      handlers.NewSalaryHandler(svc),
		"daily":       handlers.NewDailyHandler(svc),
		"shop":        handlers.NewShopHandler(svc),
		"buy":         handlers.NewBuyHandler(svc),
		"protection":  handlers.NewProtectionHandler(svc),
		"inventory":   handlers.NewInventoryHandler(svc),
		"leaderboard": handlers.NewLeaderboardHandler(svc, b.log),
		"setup":       handlers.NewSetupHandler(svc),
		"help":        handlers.NewHelpHandler(),
	}

	for _, cmd := range Commands {
		h, ok := commands[cmd.Name]
		if !ok {
			b.log.Error("command has no handler", slog.String("command", cmd.Name))
			continue
		}
		b.router.RegisterCommand(cmd.Name, h, cmd.Aliases...)
	}

	b.router.RegisterCallback(keyboard.ActionBlackjackHit, handlers.NewBlackjackHitHandler(svc, kb))
	b.router.RegisterCallback(keyboard.ActionBlackjackStand, handlers.NewBlackjackStandHandler(svc, kb))
	b.router.RegisterCallback(keyboard.ActionMarryAccept, handlers.NewMarryAcceptHandler(svc))
	b.router.RegisterCallback(keyboard.ActionMarryReject, handlers.NewMarryRejectHandler(svc))
	b.router.RegisterCallback(keyboard.ActionKhulaAccept, handlers.NewKhulaAcceptHandler(svc))
	b.router.RegisterCallback(keyboard.ActionKhulaReject, handlers.NewKhulaRejectHandler(svc))
	b.router.RegisterCallback(keyboard.ActionLeaderboard, commands["leaderboard"])
	b.router.RegisterCallback(keyboard.ActionHelp, commands["help"])
}
