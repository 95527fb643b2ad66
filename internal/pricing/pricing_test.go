package pricing

import (
	"testing"

	"courtside/pkg/model"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		name      string
		rate      int64
		minutes   int
		percent   int
		promo     *model.PromoCode
		delta     int64
		want      int64
		wantBase  int64
		wantPromo int64
	}{
		{name: "20 per hour, 90 minutes, 40 percent", rate: 2000, minutes: 90, percent: 40, want: 1800, wantBase: 3000},
		{name: "no discount", rate: 2000, minutes: 60, want: 2000, wantBase: 2000},
		{name: "half cent rounds up", rate: 1001, minutes: 30, want: 501, wantBase: 501},
		{name: "rounding only at the end", rate: 1001, minutes: 30, percent: 50, want: 250, wantBase: 501},
		{name: "quarter hour of odd rate", rate: 1999, minutes: 45, percent: 10, want: 1349, wantBase: 1499},
		{name: "percent promo applies after tariff", rate: 2000, minutes: 90, percent: 40, promo: &model.PromoCode{Kind: model.PromoPercent, Value: 10}, want: 1620, wantBase: 3000, wantPromo: 180},
		{name: "flat promo", rate: 2000, minutes: 60, promo: &model.PromoCode{Kind: model.PromoFlat, Value: 500}, want: 1500, wantBase: 2000, wantPromo: 500},
		{name: "flat promo floors at zero", rate: 2000, minutes: 60, promo: &model.PromoCode{Kind: model.PromoFlat, Value: 5000}, want: 0, wantBase: 2000, wantPromo: 2000},
		{name: "positive override", rate: 2000, minutes: 60, delta: 350, want: 2350, wantBase: 2000},
		{name: "negative override floors at zero", rate: 2000, minutes: 60, delta: -9000, want: 0, wantBase: 2000},
		{name: "full discount", rate: 2000, minutes: 60, percent: 100, want: 0, wantBase: 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Price(tt.rate, tt.minutes, tt.percent, tt.promo, tt.delta)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.TotalCents != tt.want {
				t.Errorf("total: got %d, want %d", got.TotalCents, tt.want)
			}
			if got.BaseCents != tt.wantBase {
				t.Errorf("base: got %d, want %d", got.BaseCents, tt.wantBase)
			}
			if got.PromoDiscountCents != tt.wantPromo {
				t.Errorf("promo discount: got %d, want %d", got.PromoDiscountCents, tt.wantPromo)
			}
		})
	}
}

func TestPrice_Deterministic(t *testing.T) {
	first, _ := Price(2000, 90, 40, nil, 0)
	for i := 0; i < 100; i++ {
		again, _ := Price(2000, 90, 40, nil, 0)
		if again != first {
			t.Fatalf("price changed between calls: %+v vs %+v", first, again)
		}
	}
}

func TestPrice_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		rate    int64
		minutes int
		percent int
		promo   *model.PromoCode
	}{
		{"negative rate", -1, 60, 0, nil},
		{"zero duration", 2000, 0, 0, nil},
		{"percent over 100", 2000, 60, 101, nil},
		{"unknown promo kind", 2000, 60, 0, &model.PromoCode{Kind: "BOGUS", Value: 1}},
		{"percent promo over 100", 2000, 60, 0, &model.PromoCode{Kind: model.PromoPercent, Value: 101}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Price(tt.rate, tt.minutes, tt.percent, tt.promo, 0); err == nil {
				t.Error("expected error")
			}
		})
	}
}
