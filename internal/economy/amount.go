package economy

import (
	"strconv"
	"strings"

	apperrors "github.com/Proton-105/econ-bot/internal/errors"
)

// AllSentinel asks for the entire qualifying pool.
const AllSentinel = "all"

// Amount is a parsed command amount: either a positive value or "all".
type Amount struct {
	All   bool
	Value int64
}

// ParseAmount accepts a positive integer or the "all" sentinel.
func ParseAmount(raw string) (Amount, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == AllSentinel {
		return Amount{All: true}, nil
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return Amount{}, apperrors.NewValidationError("invalid_amount",
			"Amount must be a positive whole number or \"all\".", map[string]any{"input": raw})
	}

	return Amount{Value: value}, nil
}

// Resolve returns the concrete amount given the qualifying pool.
func (a Amount) Resolve(available int64) int64 {
	if a.All {
		return available
	}
	return a.Value
}

// take resolves a against pool and checks it can be covered.
func take(a Amount, pool int64) (int64, error) {
	amount := a.Resolve(pool)
	if amount <= 0 || amount > pool {
		need := amount
		if need <= 0 {
			need = 1
		}
		return 0, insufficientFunds(pool, need)
	}
	return amount, nil
}
