package handlers

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/samber/lo"

	"github.com/Proton-105/econ-bot/internal/bot/keyboard"
	"github.com/Proton-105/econ-bot/internal/domain"
	"github.com/Proton-105/econ-bot/internal/economy"
)

const leaderboardPageSize = 10

// NewBalanceHandler shows the sender's wallet, or that of a mentioned user.
func NewBalanceHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		key := e.Key()
		if target, ok := e.Target(); ok {
			key.UserID = target.UserID
		}

		p, err := svc.Balance(e.Context(), key)
		if err != nil {
			return err
		}

		fields := e.balanceFields(p)
		fields = append(fields, Field{Name: e.T("balance.net_worth"), Value: e.Coins(p.NetWorth()), Inline: true})
		if p.HasActiveLoan() {
			fields = append(fields, Field{Name: e.T("balance.loan"), Value: e.Coins(p.Loan.Amount), Inline: true})
		}
		if p.Job != "" {
			fields = append(fields, Field{Name: e.T("balance.job"), Value: e.T("jobs." + string(p.Job)), Inline: true})
		}
		if p.Married() {
			fields = append(fields, Field{Name: e.T("balance.partner"), Value: e.Mention(p.Marriage.PartnerID), Inline: true})
		}

		return e.info(e.Tf("balance.title", map[string]any{"user": e.Mention(key.UserID)}), "", fields...)
	}
}

// NewDepositHandler moves coins from the wallet into the bank.
func NewDepositHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		res, err := svc.Deposit(e.Context(), e.Key(), e.Arg(0))
		if err != nil {
			return err
		}
		return e.Respond(Response{
			Text:   e.Tf("bank.deposited", map[string]any{"amount": e.Coins(res.Amount)}),
			Fields: e.balanceFields(res.Source),
			Color:  ColorSuccess,
		})
	}
}

// NewWithdrawHandler moves coins from the bank into the wallet.
func NewWithdrawHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		res, err := svc.Withdraw(e.Context(), e.Key(), e.Arg(0))
		if err != nil {
			return err
		}
		return e.Respond(Response{
			Text:   e.Tf("bank.withdrawn", map[string]any{"amount": e.Coins(res.Amount)}),
			Fields: e.balanceFields(res.Source),
			Color:  ColorSuccess,
		})
	}
}

// NewTransferHandler pays a mentioned user from the sender's wallet.
func NewTransferHandler(svc *economy.Service) Handler {
	return newPaymentHandler(svc.Transfer, "bank.transferred")
}

// NewTipHandler is a transfer presented as a gift.
func NewTipHandler(svc *economy.Service) Handler {
	return newPaymentHandler(svc.Tip, "bank.tipped")
}

type paymentFunc func(ctx context.Context, from domain.Key, to economy.Target, raw string) (*economy.TransferResult, error)

func newPaymentHandler(pay paymentFunc, messageKey string) Handler {
	return func(e *Event) error {
		target, _ := e.Target()
		res, err := pay(e.Context(), e.Key(), target, e.Arg(0))
		if err != nil {
			return err
		}
		return e.success("", e.Tf(messageKey, map[string]any{
			"amount": e.Coins(res.Amount),
			"target": e.Mention(target.UserID),
		}))
	}
}

// NewInventoryHandler lists purchased items.
func NewInventoryHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		items, err := svc.Inventory(e.Context(), e.Key())
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return e.info(e.T("inventory.title"), e.T("inventory.empty"))
		}

		fields := lo.Map(items, func(it domain.Item, _ int) Field {
			return Field{Name: it.Name, Value: e.when(it.PurchasedAt), Inline: true}
		})
		return e.info(e.T("inventory.title"), "", fields...)
	}
}

// NewLeaderboardHandler ranks the guild by net worth. It serves both the
// command and the page buttons.
func NewLeaderboardHandler(svc *economy.Service, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(e *Event) error {
		page := 1
		if e.IsCallback() {
			if _, data, err := keyboard.DecodeCallback(e.Callback); err == nil {
				page, _ = strconv.Atoi(data)
			}
		}

		top, err := svc.Leaderboard(e.Context(), e.GuildID, economy.MaxLeaderboard)
		if err != nil {
			return err
		}
		if len(top) == 0 {
			return e.info(e.T("leaderboard.title"), e.T("leaderboard.empty"))
		}

		pg := keyboard.Paginate(len(top), leaderboardPageSize, page)

		fields := make([]Field, 0, pg.End-pg.Start)
		for i, p := range top[pg.Start:pg.End] {
			fields = append(fields, Field{
				Name:  "#" + strconv.Itoa(pg.Start+i+1),
				Value: e.Mention(p.UserID) + " · " + e.Coins(p.NetWorth()),
			})
		}

		resp := Response{Title: e.T("leaderboard.title"), Fields: fields, Color: ColorInfo, Edit: e.IsCallback()}
		if buttons := pg.Buttons(e.Translator, keyboard.ActionLeaderboard); len(buttons) > 0 {
			markup, err := keyboard.NewInlineKeyboard().AddRow(buttons...).Build()
			if err != nil {
				log.Warn("leaderboard pagination failed", slog.Any("error", err))
			} else {
				resp.Buttons = markup
			}
		}
		return e.Respond(resp)
	}
}
