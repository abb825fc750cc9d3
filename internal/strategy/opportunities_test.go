package strategy

import (
	"math"
	"testing"

	"github.com/kjannette/tradedesk-backend/internal/models"
)

func mover(symbol string, change float64) models.Mover {
	return models.Mover{Quote: models.Quote{Symbol: symbol, Change: change}}
}

func TestScan(t *testing.T) {
	movers := []models.Mover{
		mover("LT", -8.76),
		mover("ITC", -12.34),
		mover("TCS", 2.21),
		mover("HDFC", -5),
		mover("SBIN", 16.54),
		mover("WIPRO", 13.67),
		mover("INFY", 4.99),
	}

	got, err := Scan(movers, DefaultThreshold)
	if err != nil {
		t.Fatal(err)
	}

	wantBuy := []string{"ITC", "LT", "HDFC"}
	if len(got.Buy) != len(wantBuy) {
		t.Fatalf("buy = %+v", got.Buy)
	}
	for i, s := range wantBuy {
		if got.Buy[i].Symbol != s {
			t.Errorf("buy[%d] = %s, want %s", i, got.Buy[i].Symbol, s)
		}
	}

	wantSell := []string{"SBIN", "WIPRO"}
	if len(got.Sell) != len(wantSell) {
		t.Fatalf("sell = %+v", got.Sell)
	}
	for i, s := range wantSell {
		if got.Sell[i].Symbol != s {
			t.Errorf("sell[%d] = %s, want %s", i, got.Sell[i].Symbol, s)
		}
	}
}

func TestScan_HigherThresholdNarrows(t *testing.T) {
	got, err := Scan([]models.Mover{mover("LT", -8.76), mover("SBIN", 16.54)}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Buy) != 0 || len(got.Sell) != 1 {
		t.Fatalf("got %d buys, %d sells", len(got.Buy), len(got.Sell))
	}
}

func TestScan_EmptyIsNotNil(t *testing.T) {
	got, err := Scan(nil, 5)
	if err != nil {
		t.Fatal(err)
	}
	if got.Buy == nil || got.Sell == nil {
		t.Fatal("expected empty slices so the JSON renders []")
	}
}

func TestScan_RejectsNonPositiveThreshold(t *testing.T) {
	for _, th := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := Scan(nil, th); err == nil {
			t.Errorf("threshold %v: expected error", th)
		}
	}
}
