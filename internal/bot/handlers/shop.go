package handlers

import (
	"github.com/samber/lo"

	"github.com/Proton-105/econ-bot/internal/domain"
	"github.com/Proton-105/econ-bot/internal/economy"
)

// NewShopHandler lists the guild catalog.
func NewShopHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		items, err := svc.Shop(e.Context(), e.GuildID)
		if err != nil {
			return err
		}

		fields := lo.Map(items, func(it domain.ShopItem, _ int) Field {
			return Field{Name: it.Name + " (`" + it.ID + "`)", Value: e.Coins(it.Price), Inline: true}
		})
		return e.info(e.T("shop.title"), e.T("shop.hint"), fields...)
	}
}

// NewBuyHandler purchases a catalog item by id or name.
func NewBuyHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		item, p, err := svc.Buy(e.Context(), e.Key(), e.Arg(0))
		if err != nil {
			return err
		}
		return e.success("", e.Tf("shop.bought", map[string]any{
			"item":    item.Name,
			"price":   e.Coins(item.Price),
			"balance": e.Coins(p.Balance),
		}))
	}
}

// NewProtectionHandler buys robbery protection.
func NewProtectionHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		p, err := svc.BuyProtection(e.Context(), e.Key())
		if err != nil {
			return err
		}
		return e.success(e.T("shop.protection_title"), e.Tf("shop.protected", map[string]any{
			"until":   e.when(p.Protection.ExpiresAt),
			"balance": e.Coins(p.Balance),
		}))
	}
}
