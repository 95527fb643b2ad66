// Package pricing computes reservation amounts with exact decimal arithmetic.
// Intermediate values keep full precision; only the final amounts are rounded
// half-up to whole cents.
package pricing

import (
	"fmt"

	"courtside/pkg/model"

	"github.com/shopspring/decimal"
)

var (
	hundred   = decimal.NewFromInt(100)
	sixty     = decimal.NewFromInt(60)
	zeroCents = decimal.Zero
)

type Breakdown struct {
	BaseCents           int64 `json:"base_cents"`
	TariffDiscountCents int64 `json:"tariff_discount_cents"`
	PromoDiscountCents  int64 `json:"promo_discount_cents"`
	OverrideDeltaCents  int64 `json:"override_delta_cents"`
	TotalCents          int64 `json:"total_cents"`
}

// Price applies, in order, the hourly rate, the tariff discount, the promo and
// the override delta. Neither the promo nor the override can take the amount
// below zero.
func Price(rateCents int64, durationMinutes int, tariffDiscountPercent int, promo *model.PromoCode, overrideDeltaCents int64) (Breakdown, error) {
	if rateCents < 0 {
		return Breakdown{}, fmt.Errorf("rate cannot be negative: %d", rateCents)
	}
	if durationMinutes <= 0 {
		return Breakdown{}, fmt.Errorf("duration must be positive: %d", durationMinutes)
	}
	if tariffDiscountPercent < 0 || tariffDiscountPercent > 100 {
		return Breakdown{}, fmt.Errorf("discount percent out of range: %d", tariffDiscountPercent)
	}

	base := decimal.NewFromInt(rateCents).
		Mul(decimal.NewFromInt(int64(durationMinutes))).
		Div(sixty)

	afterTariff := base.Mul(hundred.Sub(decimal.NewFromInt(int64(tariffDiscountPercent)))).Div(hundred)

	afterPromo := afterTariff
	if promo != nil {
		discount, err := promoDiscount(promo, afterTariff)
		if err != nil {
			return Breakdown{}, err
		}
		afterPromo = decimal.Max(zeroCents, afterTariff.Sub(discount))
	}

	final := decimal.Max(zeroCents, afterPromo.Add(decimal.NewFromInt(overrideDeltaCents)))

	return Breakdown{
		BaseCents:           cents(base),
		TariffDiscountCents: cents(base.Sub(afterTariff)),
		PromoDiscountCents:  cents(afterTariff.Sub(afterPromo)),
		OverrideDeltaCents:  overrideDeltaCents,
		TotalCents:          cents(final),
	}, nil
}

func promoDiscount(promo *model.PromoCode, amount decimal.Decimal) (decimal.Decimal, error) {
	switch promo.Kind {
	case model.PromoFlat:
		if promo.Value < 0 {
			return decimal.Zero, fmt.Errorf("flat promo value cannot be negative: %d", promo.Value)
		}
		return decimal.NewFromInt(promo.Value), nil
	case model.PromoPercent:
		if promo.Value < 0 || promo.Value > 100 {
			return decimal.Zero, fmt.Errorf("percent promo value out of range: %d", promo.Value)
		}
		return amount.Mul(decimal.NewFromInt(promo.Value)).Div(hundred), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown promo kind %q", promo.Kind)
	}
}

// cents rounds half away from zero, which is half-up for the non-negative
// amounts priced here.
func cents(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
