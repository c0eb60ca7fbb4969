package handlers

import (
	"context"

	"github.com/Proton-105/econ-bot/internal/bot/keyboard"
	"github.com/Proton-105/econ-bot/internal/domain"
	"github.com/Proton-105/econ-bot/internal/economy"
)

// NewMarryHandler proposes to a mentioned user and waits for their answer.
func NewMarryHandler(svc *economy.Service, kb *keyboard.Builder) Handler {
	return func(e *Event) error {
		target, _ := e.Target()
		prop, err := svc.Propose(e.Context(), e.Scope(), e.Key(), target)
		if err != nil {
			return err
		}

		return e.Respond(Response{
			Title: e.T("marriage.proposal_title"),
			Text: e.Tf("marriage.proposal", map[string]any{
				"from":    e.Mention(prop.InitiatorID),
				"to":      e.Mention(prop.TargetID),
				"price":   e.Coins(prop.Amount),
				"expires": e.when(prop.Session.ExpiresAt),
			}),
			Color:   ColorInfo,
			Buttons: kb.Proposal(e.Translator, prop.SessionID),
		})
	}
}

// NewMarryAcceptHandler lets the proposed-to user accept.
func NewMarryAcceptHandler(svc *economy.Service) Handler {
	return answer(svc.AcceptProposal, "marriage.accepted", ColorSuccess)
}

// NewMarryRejectHandler lets the proposed-to user decline.
func NewMarryRejectHandler(svc *economy.Service) Handler {
	return answer(svc.RejectProposal, "marriage.rejected", ColorWarning)
}

// NewDivorceHandler ends the sender's marriage unilaterally.
func NewDivorceHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		partnerID, err := svc.Divorce(e.Context(), e.Key())
		if err != nil {
			return err
		}
		return e.Respond(Response{
			Text:  e.Tf("marriage.divorced", map[string]any{"partner": e.Mention(partnerID)}),
			Color: ColorWarning,
		})
	}
}

// NewKhulaHandler asks the sender's partner to agree to a khula.
func NewKhulaHandler(svc *economy.Service, kb *keyboard.Builder) Handler {
	return func(e *Event) error {
		prop, err := svc.RequestKhula(e.Context(), e.Scope(), e.Key())
		if err != nil {
			return err
		}

		return e.Respond(Response{
			Title: e.T("marriage.khula_title"),
			Text: e.Tf("marriage.khula_request", map[string]any{
				"from":         e.Mention(prop.InitiatorID),
				"to":           e.Mention(prop.TargetID),
				"compensation": e.Coins(prop.Amount),
				"expires":      e.when(prop.Session.ExpiresAt),
			}),
			Color:   ColorWarning,
			Buttons: kb.Khula(e.Translator, prop.SessionID),
		})
	}
}

// NewKhulaAcceptHandler lets the partner accept and receive compensation.
func NewKhulaAcceptHandler(svc *economy.Service) Handler {
	return answer(svc.AcceptKhula, "marriage.khula_accepted", ColorSuccess)
}

// NewKhulaRejectHandler lets the partner refuse the khula.
func NewKhulaRejectHandler(svc *economy.Service) Handler {
	return answer(svc.RejectKhula, "marriage.khula_rejected", ColorDanger)
}

type answerFunc func(ctx context.Context, scope economy.Scope, responder domain.Key, sessionID string) (*economy.Proposal, error)

func answer(respond answerFunc, messageKey string, color int) Handler {
	return func(e *Event) error {
		sessionID, err := sessionFromCallback(e)
		if err != nil {
			return err
		}

		prop, err := respond(e.Context(), e.Scope(), e.Key(), sessionID)
		if err != nil {
			return err
		}

		return e.Respond(Response{
			Text: e.Tf(messageKey, map[string]any{
				"from":   e.Mention(prop.InitiatorID),
				"to":     e.Mention(prop.TargetID),
				"amount": e.Coins(prop.Amount),
			}),
			Color: color,
			Edit:  true,
		})
	}
}
