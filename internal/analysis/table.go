package analysis

// Subject identifies which row family of the decision table applies to a
// request.
type Subject string

const (
	SubjectNifty50 Subject = "NIFTY50"
	SubjectSensex  Subject = "SENSEX"
	SubjectSingle  Subject = "single"
	SubjectBasket  Subject = "basket"
)

// Horizon groups time ranges for the generic (non-index) rows.
type Horizon string

const (
	ShortHorizon Horizon = "short" // day, week
	LongHorizon  Horizon = "long"  // month, year
)

func HorizonOf(tr TimeRange) Horizon {
	if tr == Day || tr == Week {
		return ShortHorizon
	}
	return LongHorizon
}

// never is a threshold no draw in [0,1) can exceed.
const never = 1.0

// Split picks a recommendation from a single draw r in [0,1):
// r > BuyAbove => buy, else r > SellAbove => sell, else hold.
type Split struct {
	BuyAbove  float64
	SellAbove float64
}

func (s Split) Pick(r float64) Recommendation {
	switch {
	case r > s.BuyAbove:
		return Buy
	case r > s.SellAbove:
		return Sell
	default:
		return Hold
	}
}

// Probabilities returns the buy/sell/hold mass implied by the thresholds.
func (s Split) Probabilities() (buy, sell, hold float64) {
	buy = 1 - s.BuyAbove
	if s.SellAbove < s.BuyAbove {
		sell = s.BuyAbove - s.SellAbove
	}
	hold = 1 - buy - sell
	return
}

// ConfidenceBand yields Min + r*Width, i.e. a value in [Min, Min+Width).
type ConfidenceBand struct {
	Min   float64
	Width float64
}

func (b ConfidenceBand) At(r float64) float64 { return b.Min + r*b.Width }

func (b ConfidenceBand) Max() float64 { return b.Min + b.Width }

// Rule is one row of the decision table. A nil Split means Fixed is
// returned without a draw; a nil Confidence keeps the baseline draw.
type Rule struct {
	Fixed      Recommendation
	Split      *Split
	Confidence *ConfidenceBand
}

var (
	BaselineConfidence  = ConfidenceBand{Min: 0.6, Width: 0.3}
	strongConfidence    = ConfidenceBand{Min: 0.7, Width: 0.2}
	strongestConfidence = ConfidenceBand{Min: 0.8, Width: 0.15}

	buyOrHoldEven   = Split{BuyAbove: 0.5, SellAbove: never}
	buyOrHoldTilted = Split{BuyAbove: 0.4, SellAbove: never}
	shortTermSplit  = Split{BuyAbove: 0.5, SellAbove: 0.25}
	longTermSplit   = Split{BuyAbove: 0.6, SellAbove: 0.3}
)

// IndexRules holds the two named index special cases, keyed by time range.
var IndexRules = map[Subject]map[TimeRange]Rule{
	SubjectNifty50: {
		Day:   {Split: &buyOrHoldEven},
		Week:  {Fixed: Buy, Confidence: &strongConfidence},
		Month: {Fixed: Hold},
		Year:  {Fixed: Buy, Confidence: &strongestConfidence},
	},
	SubjectSensex: {
		Day:   {Fixed: Hold},
		Week:  {Fixed: Buy},
		Month: {Split: &buyOrHoldTilted},
		Year:  {Split: &buyOrHoldTilted},
	},
}

// GenericRules covers every other request, keyed by horizon class.
var GenericRules = map[Subject]map[Horizon]Rule{
	SubjectSingle: {
		ShortHorizon: {Split: &shortTermSplit},
		LongHorizon:  {Split: &longTermSplit},
	},
	SubjectBasket: {
		ShortHorizon: {Split: &longTermSplit},
		LongHorizon:  {Split: &longTermSplit},
	},
}

// SubjectOf classifies a symbol list. NIFTY50 wins over SENSEX when both
// are present; any other symbol, including other indices, is generic.
func SubjectOf(symbols []string) Subject {
	if contains(symbols, string(SubjectNifty50)) {
		return SubjectNifty50
	}
	if contains(symbols, string(SubjectSensex)) {
		return SubjectSensex
	}
	if len(symbols) == 1 {
		return SubjectSingle
	}
	return SubjectBasket
}

// RuleFor looks up the decision table row for a subject and time range.
func RuleFor(subject Subject, tr TimeRange) Rule {
	if rows, ok := IndexRules[subject]; ok {
		return rows[tr]
	}
	return GenericRules[subject][HorizonOf(tr)]
}

// ConfidenceRange reports the half-open interval a rule's confidence
// falls in.
func (r Rule) ConfidenceRange() ConfidenceBand {
	if r.Confidence != nil {
		return *r.Confidence
	}
	return BaselineConfidence
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
