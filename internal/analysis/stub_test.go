package analysis

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
	"time"
)

// scripted replays a fixed sequence of draws, wrapping around at the end.
type scripted struct {
	draws []float64
	i     int
}

func (s *scripted) Float64() float64 {
	v := s.draws[s.i%len(s.draws)]
	s.i++
	return v
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func analyzeOnce(t *testing.T, stub *Stub, symbols []string, tr TimeRange) *Response {
	t.Helper()
	resp, err := stub.Analyze(context.Background(), Request{Symbols: symbols, TimeRange: tr})
	if err != nil {
		t.Fatalf("Analyze(%v, %s): %v", symbols, tr, err)
	}
	return resp
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAnalyze_Nifty50MonthAlwaysHold(t *testing.T) {
	stub := NewStub(WithDelay(0), WithRandom(seeded(1)))
	for i := 0; i < 500; i++ {
		resp := analyzeOnce(t, stub, []string{"NIFTY50"}, Month)
		if resp.Recommendation != Hold {
			t.Fatalf("trial %d: expected hold, got %s", i, resp.Recommendation)
		}
		if resp.Confidence < 0.6 || resp.Confidence >= 0.9 {
			t.Fatalf("trial %d: confidence %.4f outside [0.6, 0.9)", i, resp.Confidence)
		}
	}
}

func TestAnalyze_Nifty50WeekScenario(t *testing.T) {
	stub := NewStub(WithDelay(0), WithRandom(seeded(2)))
	for i := 0; i < 500; i++ {
		resp := analyzeOnce(t, stub, []string{"NIFTY50"}, Week)
		if resp.Recommendation != Buy {
			t.Fatalf("trial %d: expected buy, got %s", i, resp.Recommendation)
		}
		if resp.Confidence < 0.7 || resp.Confidence >= 0.9 {
			t.Fatalf("trial %d: confidence %.4f outside [0.7, 0.9)", i, resp.Confidence)
		}
		if len(resp.Insights) != 3 {
			t.Fatalf("expected 3 insights, got %d", len(resp.Insights))
		}
		wants := []string{"Weekly momentum", "sectors leading", "Volume pattern confirms"}
		for j, w := range wants {
			if !strings.Contains(resp.Insights[j], w) {
				t.Fatalf("insight %d = %q, want it to mention %q", j, resp.Insights[j], w)
			}
		}
	}
}

func TestAnalyze_Nifty50YearConfidenceBand(t *testing.T) {
	stub := NewStub(WithDelay(0), WithRandom(seeded(3)))
	for i := 0; i < 500; i++ {
		resp := analyzeOnce(t, stub, []string{"RELIANCE", "NIFTY50"}, Year)
		if resp.Recommendation != Buy {
			t.Fatalf("expected buy, got %s", resp.Recommendation)
		}
		if resp.Confidence < 0.8 || resp.Confidence >= 0.95 {
			t.Fatalf("confidence %.4f outside [0.8, 0.95)", resp.Confidence)
		}
	}
}

func TestAnalyze_ScriptedBranches(t *testing.T) {
	cases := []struct {
		name    string
		symbols []string
		tr      TimeRange
		draws   []float64
		want    Recommendation
	}{
		{"nifty day above half", []string{"NIFTY50"}, Day, []float64{0.1, 0.51}, Buy},
		{"nifty day at half", []string{"NIFTY50"}, Day, []float64{0.1, 0.5}, Hold},
		{"sensex day", []string{"SENSEX"}, Day, []float64{0.99}, Hold},
		{"sensex week", []string{"SENSEX"}, Week, []float64{0.0}, Buy},
		{"sensex month tilt buy", []string{"SENSEX"}, Month, []float64{0.1, 0.41}, Buy},
		{"sensex year tilt hold", []string{"SENSEX"}, Year, []float64{0.1, 0.4}, Hold},
		{"nifty beats sensex", []string{"SENSEX", "NIFTY50"}, Month, []float64{0.9}, Hold},
		// single: conf, summary, three insights, split
		{"single day buy", []string{"TCS"}, Day, []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.51}, Buy},
		{"single week sell", []string{"TCS"}, Week, []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.3}, Sell},
		{"single week hold", []string{"TCS"}, Week, []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.25}, Hold},
		{"single month sell", []string{"INFY"}, Month, []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.55}, Sell},
		{"single year buy", []string{"INFY"}, Year, []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.61}, Buy},
		{"single year hold", []string{"INFY"}, Year, []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.3}, Hold},
		// basket: conf, bullish count, rotation, split
		{"basket day uses long split", []string{"TCS", "INFY"}, Day, []float64{0.1, 0.1, 0.1, 0.55}, Sell},
		{"basket year buy", []string{"TCS", "INFY"}, Year, []float64{0.1, 0.1, 0.1, 0.65}, Buy},
		{"other index is generic", []string{"NIFTYBANK"}, Month, []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.2}, Hold},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := NewStub(WithDelay(0), WithRandom(&scripted{draws: tc.draws}))
			resp := analyzeOnce(t, stub, tc.symbols, tc.tr)
			if resp.Recommendation != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, resp.Recommendation)
			}
		})
	}
}

func TestAnalyze_SingleShortNarrative(t *testing.T) {
	src := &scripted{draws: []float64{0.5, 0.9, 0.1, 0.9, 0.1, 0.9}}
	stub := NewStub(WithDelay(0), WithRandom(src))
	resp := analyzeOnce(t, stub, []string{"RELIANCE"}, Day)

	if resp.Summary != "RELIANCE is showing strength in recent day trading." {
		t.Fatalf("summary: %q", resp.Summary)
	}
	want := []string{
		"RELIANCE below key moving averages",
		"Volume analysis suggests accumulation",
		"Relative strength compared to sector is negative",
	}
	for i, w := range want {
		if resp.Insights[i] != w {
			t.Fatalf("insight %d: got %q, want %q", i, resp.Insights[i], w)
		}
	}
	if !approx(resp.Confidence, 0.75) {
		t.Fatalf("confidence: got %f, want 0.75", resp.Confidence)
	}
}

func TestAnalyze_SingleLongNarrative(t *testing.T) {
	src := &scripted{draws: []float64{0.0, 0.6, 0.61, 0.2, 0.8, 0.0}}
	stub := NewStub(WithDelay(0), WithRandom(src))
	resp := analyzeOnce(t, stub, []string{"ITC"}, Month)

	if resp.Summary != "ITC has been in a consolidation phase over the month." {
		t.Fatalf("summary: %q", resp.Summary)
	}
	want := []string{
		"Fundamental metrics are improving",
		"Technical structure remains bearish on month chart",
		"ITC outperforming its sector",
	}
	for i, w := range want {
		if resp.Insights[i] != w {
			t.Fatalf("insight %d: got %q, want %q", i, resp.Insights[i], w)
		}
	}
}

func TestAnalyze_BasketNarrative(t *testing.T) {
	src := &scripted{draws: []float64{0.0, 0.5, 0.9, 0.7}}
	stub := NewStub(WithDelay(0), WithRandom(src))
	resp := analyzeOnce(t, stub, []string{"TCS", "INFY", "WIPRO"}, Week)

	if resp.Summary != "Analysis for TCS, INFY, WIPRO over week time frame shows mixed signals." {
		t.Fatalf("summary: %q", resp.Summary)
	}
	if resp.Insights[0] != "1 out of 3 stocks show bullish patterns" {
		t.Fatalf("insight 0: %q", resp.Insights[0])
	}
	if resp.Insights[1] != "Sector rotation evident with defensive stocks leading" {
		t.Fatalf("insight 1: %q", resp.Insights[1])
	}
	if resp.Recommendation != Buy {
		t.Fatalf("expected buy, got %s", resp.Recommendation)
	}
}

func TestAnalyze_SingleShortDistribution(t *testing.T) {
	const trials = 20000
	stub := NewStub(WithDelay(0), WithRandom(seeded(42)))

	counts := map[Recommendation]int{}
	for i := 0; i < trials; i++ {
		tr := Day
		if i%2 == 1 {
			tr = Week
		}
		resp := analyzeOnce(t, stub, []string{"HDFC"}, tr)
		counts[resp.Recommendation]++
	}

	buy, sell, hold := shortTermSplit.Probabilities()
	check := func(rec Recommendation, want float64) {
		got := float64(counts[rec]) / trials
		if math.Abs(got-want) > 0.02 {
			t.Errorf("%s: empirical %.3f, expected %.3f", rec, got, want)
		}
	}
	check(Buy, buy)
	check(Sell, sell)
	check(Hold, hold)
	t.Logf("distribution: buy=%d sell=%d hold=%d", counts[Buy], counts[Sell], counts[Hold])
}

func TestAnalyze_ContractHoldsForEveryBranch(t *testing.T) {
	subjects := map[Subject][]string{
		SubjectNifty50: {"NIFTY50"},
		SubjectSensex:  {"SENSEX"},
		SubjectSingle:  {"MARUTI"},
		SubjectBasket:  {"LT", "SBIN", "ICICI", "WIPRO"},
	}
	stub := NewStub(WithDelay(0), WithRandom(seeded(7)))

	for subject, symbols := range subjects {
		for _, tr := range TimeRanges {
			band := RuleFor(subject, tr).ConfidenceRange()
			for i := 0; i < 200; i++ {
				resp := analyzeOnce(t, stub, symbols, tr)
				if resp.Summary == "" {
					t.Fatalf("%s/%s: empty summary", subject, tr)
				}
				if len(resp.Insights) == 0 {
					t.Fatalf("%s/%s: no insights", subject, tr)
				}
				for _, in := range resp.Insights {
					if in == "" {
						t.Fatalf("%s/%s: blank insight", subject, tr)
					}
				}
				if !resp.Recommendation.Valid() {
					t.Fatalf("%s/%s: invalid recommendation %q", subject, tr, resp.Recommendation)
				}
				if resp.Confidence < 0 || resp.Confidence > 1 {
					t.Fatalf("%s/%s: confidence %.4f outside [0,1]", subject, tr, resp.Confidence)
				}
				if resp.Confidence < band.Min || resp.Confidence >= band.Max() {
					t.Fatalf("%s/%s: confidence %.4f outside [%.2f, %.2f)",
						subject, tr, resp.Confidence, band.Min, band.Max())
				}
			}
		}
	}
}

func TestAnalyze_RejectsInvalidRequests(t *testing.T) {
	stub := NewStub(WithDelay(0))

	_, err := stub.Analyze(context.Background(), Request{TimeRange: Day})
	if !errors.Is(err, ErrNoSymbols) {
		t.Fatalf("expected ErrNoSymbols, got %v", err)
	}

	_, err = stub.Analyze(context.Background(), Request{Symbols: []string{" "}, TimeRange: Day})
	if !errors.Is(err, ErrNoSymbols) {
		t.Fatalf("expected ErrNoSymbols for blank symbol, got %v", err)
	}

	_, err = stub.Analyze(context.Background(), Request{Symbols: []string{"TCS"}, TimeRange: "quarter"})
	if !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
	}
}

func TestAnalyze_HonoursCancellationDuringDelay(t *testing.T) {
	stub := NewStub(WithDelay(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := stub.Analyze(ctx, Request{Symbols: []string{"TCS"}, TimeRange: Day})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("Analyze did not return promptly after cancellation")
	}
}

func TestAnalyze_WaitsForDelay(t *testing.T) {
	stub := NewStub(WithDelay(30 * time.Millisecond))
	start := time.Now()
	analyzeOnce(t, stub, []string{"TCS"}, Day)
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("returned after %s, expected at least 30ms", elapsed)
	}
}

func TestNewStub_Defaults(t *testing.T) {
	if d := NewStub().Delay(); d != 1500*time.Millisecond {
		t.Fatalf("default delay: got %s", d)
	}
	if d := NewStub(WithDelay(-time.Second)).Delay(); d != 0 {
		t.Fatalf("negative delay should clamp to 0, got %s", d)
	}
}

func TestAnalyze_InsightsAreNotShared(t *testing.T) {
	stub := NewStub(WithDelay(0))
	first := analyzeOnce(t, stub, []string{"NIFTY50"}, Month)
	first.Insights[0] = "mutated"

	second := analyzeOnce(t, stub, []string{"NIFTY50"}, Month)
	if second.Insights[0] == "mutated" {
		t.Fatal("responses share the narrative backing array")
	}
}
