package economy

import (
	"context"
	"strings"

	"github.com/Proton-105/econ-bot/internal/domain"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
	"github.com/Proton-105/econ-bot/pkg/metrics"
)

// Shop returns the catalog in force for a guild.
func (s *Service) Shop(ctx context.Context, guildID string) ([]domain.ShopItem, error) {
	guild, err := s.guild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return Catalog(guild), nil
}

// Buy purchases a one-off catalog item.
func (s *Service) Buy(ctx context.Context, key domain.Key, itemID string) (*domain.ShopItem, *domain.Profile, error) {
	guild, err := s.guild(ctx, key.GuildID)
	if err != nil {
		return nil, nil, err
	}

	item, ok := findItem(Catalog(guild), itemID)
	if !ok {
		return nil, nil, apperrors.NewNotFoundError("unknown_item", "That item isn't in the shop.",
			map[string]any{"item": itemID})
	}

	p, err := s.profiles.Update(ctx, key, func(p *domain.Profile) error {
		for _, owned := range p.Items {
			if owned.ID == item.ID {
				return apperrors.NewPreconditionError("already_owned", "You already own that item.",
					map[string]any{"item": item.Name})
			}
		}
		if p.Balance < item.Price {
			return insufficientFunds(p.Balance, item.Price)
		}

		p.Balance -= item.Price
		p.Stats.TotalSpent += item.Price
		p.Items = append(p.Items, domain.Item{ID: item.ID, Name: item.Name, PurchasedAt: s.now()})
		return nil
	})
	if err != nil {
		return nil, nil, s.storeErr("buy", err)
	}

	metrics.RecordLedger("buy", item.Price)
	return &item, p, nil
}

func findItem(catalog []domain.ShopItem, id string) (domain.ShopItem, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, item := range catalog {
		if strings.ToLower(item.ID) == id || strings.ToLower(item.Name) == id {
			return item, true
		}
	}
	return domain.ShopItem{}, false
}

// BuyProtection makes the caller immune to robbery for the guild's term.
func (s *Service) BuyProtection(ctx context.Context, key domain.Key) (*domain.Profile, error) {
	guild, err := s.guild(ctx, key.GuildID)
	if err != nil {
		return nil, err
	}
	price, term := protectionTerms(guild)

	p, err := s.profiles.Update(ctx, key, func(p *domain.Profile) error {
		now := s.now()
		if p.Protected(now) {
			return apperrors.NewPreconditionError("already_protected", "You are already protected.",
				map[string]any{"until": p.Protection.ExpiresAt.Format("2006-01-02 15:04 MST")})
		}
		if p.Balance < price {
			return insufficientFunds(p.Balance, price)
		}

		p.Balance -= price
		p.Stats.TotalSpent += price
		p.Protection = domain.Protection{Active: true, ExpiresAt: now.Add(term)}
		return nil
	})
	if err != nil {
		return nil, s.storeErr("protection", err)
	}

	metrics.RecordLedger("protection", price)
	return p, nil
}
