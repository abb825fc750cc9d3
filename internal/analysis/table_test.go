package analysis

import (
	"errors"
	"testing"
)

func TestSubjectOf(t *testing.T) {
	cases := []struct {
		symbols []string
		want    Subject
	}{
		{[]string{"NIFTY50"}, SubjectNifty50},
		{[]string{"SENSEX"}, SubjectSensex},
		{[]string{"SENSEX", "NIFTY50"}, SubjectNifty50},
		{[]string{"TCS", "SENSEX"}, SubjectSensex},
		{[]string{"NIFTYBANK"}, SubjectSingle},
		{[]string{"nifty50"}, SubjectSingle},
		{[]string{"TCS", "INFY"}, SubjectBasket},
	}
	for _, tc := range cases {
		if got := SubjectOf(tc.symbols); got != tc.want {
			t.Errorf("SubjectOf(%v) = %s, want %s", tc.symbols, got, tc.want)
		}
	}
}

func TestRuleFor_FixedRows(t *testing.T) {
	if r := RuleFor(SubjectNifty50, Month); r.Split != nil || r.Fixed != Hold {
		t.Fatalf("NIFTY50/month should be fixed hold, got %+v", r)
	}
	if r := RuleFor(SubjectNifty50, Week); r.Split != nil || r.Fixed != Buy {
		t.Fatalf("NIFTY50/week should be fixed buy, got %+v", r)
	}
	if r := RuleFor(SubjectSensex, Day); r.Split != nil || r.Fixed != Hold {
		t.Fatalf("SENSEX/day should be fixed hold, got %+v", r)
	}
}

func TestRuleFor_ConfidenceBands(t *testing.T) {
	cases := []struct {
		subject  Subject
		tr       TimeRange
		min, max float64
	}{
		{SubjectNifty50, Day, 0.6, 0.9},
		{SubjectNifty50, Week, 0.7, 0.9},
		{SubjectNifty50, Month, 0.6, 0.9},
		{SubjectNifty50, Year, 0.8, 0.95},
		{SubjectSensex, Year, 0.6, 0.9},
		{SubjectSingle, Day, 0.6, 0.9},
		{SubjectBasket, Month, 0.6, 0.9},
	}
	for _, tc := range cases {
		band := RuleFor(tc.subject, tc.tr).ConfidenceRange()
		if !approx(band.Min, tc.min) || !approx(band.Max(), tc.max) {
			t.Errorf("%s/%s: got [%.2f, %.2f), want [%.2f, %.2f)",
				tc.subject, tc.tr, band.Min, band.Max(), tc.min, tc.max)
		}
	}
}

func TestSplit_PickIsStrict(t *testing.T) {
	s := Split{BuyAbove: 0.6, SellAbove: 0.3}
	cases := map[float64]Recommendation{
		0.0: Hold, 0.3: Hold, 0.31: Sell, 0.6: Sell, 0.61: Buy, 0.999: Buy,
	}
	for r, want := range cases {
		if got := s.Pick(r); got != want {
			t.Errorf("Pick(%.3f) = %s, want %s", r, got, want)
		}
	}
}

func TestSplit_Probabilities(t *testing.T) {
	buy, sell, hold := shortTermSplit.Probabilities()
	if !approx(buy, 0.5) || !approx(sell, 0.25) || !approx(hold, 0.25) {
		t.Fatalf("short-term split: %.2f/%.2f/%.2f", buy, sell, hold)
	}
	buy, sell, hold = longTermSplit.Probabilities()
	if !approx(buy, 0.4) || !approx(sell, 0.3) || !approx(hold, 0.3) {
		t.Fatalf("long-term split: %.2f/%.2f/%.2f", buy, sell, hold)
	}
	buy, sell, hold = buyOrHoldEven.Probabilities()
	if !approx(buy, 0.5) || sell != 0 || !approx(hold, 0.5) {
		t.Fatalf("buy-or-hold split: %.2f/%.2f/%.2f", buy, sell, hold)
	}
}

func TestParseTimeRange(t *testing.T) {
	for _, s := range []string{"day", "Week", " MONTH ", "year"} {
		if _, err := ParseTimeRange(s); err != nil {
			t.Errorf("ParseTimeRange(%q): %v", s, err)
		}
	}
	for _, s := range []string{"", "quarter", "1d"} {
		if _, err := ParseTimeRange(s); !errors.Is(err, ErrInvalidTimeRange) {
			t.Errorf("ParseTimeRange(%q): expected ErrInvalidTimeRange, got %v", s, err)
		}
	}
}
