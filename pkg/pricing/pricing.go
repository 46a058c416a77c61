package pricing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/odds-cache-service/internal/models"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)

	// MinPrice is the shortest price a generated market may offer
	MinPrice = decimal.RequireFromString("1.01")
	// MaxPrice is the longest price a generated market may offer
	MaxPrice = decimal.NewFromInt(10)
	// DefaultMarginFactor is the payout share a bookmaker returns on a fair book.
	// Prices of 0.92/p give implied probabilities summing to 1/0.92 (~8.7% overround).
	DefaultMarginFactor = decimal.RequireFromString("0.92")
)

// ImpliedProbability converts decimal odds to implied probability.
// Example: 2.50 odds = 1/2.50 = 0.40
func ImpliedProbability(price decimal.Decimal) decimal.Decimal {
	if price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return one.Div(price)
}

// PriceFromProbability converts a fair probability to decimal odds shortened
// by marginFactor, clamped to [MinPrice, MaxPrice]. A marginFactor below one
// gives the book a positive overround.
func PriceFromProbability(probability, marginFactor decimal.Decimal) decimal.Decimal {
	if probability.LessThanOrEqual(decimal.Zero) || marginFactor.LessThanOrEqual(decimal.Zero) {
		return MaxPrice
	}

	price := marginFactor.Div(probability).Round(2)
	if price.LessThan(MinPrice) {
		return MinPrice
	}
	if price.GreaterThan(MaxPrice) {
		return MaxPrice
	}
	return price
}

// Overround returns the bookmaker margin of a market: the sum of implied
// probabilities minus one. A fair book has zero overround.
func Overround(outcomes []models.Outcome) decimal.Decimal {
	total := decimal.Zero
	for _, o := range outcomes {
		total = total.Add(ImpliedProbability(o.Price))
	}
	if total.IsZero() {
		return decimal.Zero
	}
	return total.Sub(one)
}

// BestOutcome returns the highest-priced outcome of a bookmaker
func BestOutcome(b models.Bookmaker) (models.Outcome, bool) {
	if len(b.Outcomes) == 0 {
		return models.Outcome{}, false
	}

	best := b.Outcomes[0]
	for _, o := range b.Outcomes[1:] {
		if o.Price.GreaterThan(best.Price) {
			best = o
		}
	}
	return best, true
}

// BestOdds returns the best available price for each outcome across all
// bookmakers of an event. Outcome names are matched case-insensitively and
// the result is sorted by name. Returns nil when the event has no bookmakers.
func BestOdds(event models.OddsEvent) []models.Outcome {
	if len(event.Bookmakers) == 0 {
		return nil
	}

	best := make(map[string]models.Outcome)
	for _, b := range event.Bookmakers {
		for _, o := range b.Outcomes {
			key := strings.ToLower(o.Name)
			if current, ok := best[key]; !ok || o.Price.GreaterThan(current.Price) {
				best[key] = o
			}
		}
	}

	outcomes := make([]models.Outcome, 0, len(best))
	for _, o := range best {
		outcomes = append(outcomes, o)
	}
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].Name < outcomes[j].Name
	})
	return outcomes
}

// BookmakerPrice is one bookmaker's price for an outcome
type BookmakerPrice struct {
	Bookmaker string
	Price     decimal.Decimal
	Best      bool // Matches the best price across bookmakers
}

// ComparePrices lists every bookmaker's price for the named outcome, best
// first. Names match case-insensitively and ties keep bookmaker order.
func ComparePrices(event models.OddsEvent, outcome string) []BookmakerPrice {
	var prices []BookmakerPrice
	best := decimal.Zero
	for _, b := range event.Bookmakers {
		for _, o := range b.Outcomes {
			if !strings.EqualFold(o.Name, outcome) {
				continue
			}
			prices = append(prices, BookmakerPrice{Bookmaker: b.Name, Price: o.Price})
			if o.Price.GreaterThan(best) {
				best = o.Price
			}
			break
		}
	}

	sort.SliceStable(prices, func(i, j int) bool {
		return prices[i].Price.GreaterThan(prices[j].Price)
	})
	for i := range prices {
		prices[i].Best = prices[i].Price.Equal(best)
	}
	return prices
}

// Arbitrage is a set of best prices whose implied probabilities sum below
// one, so staking every outcome returns more than the total stake
type Arbitrage struct {
	TotalImpliedProbability decimal.Decimal
	ProfitMargin            decimal.Decimal // Percent of the total stake
	Outcomes                []models.Outcome
}

// FindArbitrage checks the best prices of event for an arbitrage.
// Markets with fewer than two outcomes or a non-positive price never qualify.
func FindArbitrage(event models.OddsEvent) (Arbitrage, bool) {
	best := BestOdds(event)
	if len(best) < 2 {
		return Arbitrage{}, false
	}

	total := decimal.Zero
	for _, o := range best {
		if o.Price.LessThanOrEqual(decimal.Zero) {
			return Arbitrage{}, false
		}
		total = total.Add(ImpliedProbability(o.Price))
	}
	if total.GreaterThanOrEqual(one) {
		return Arbitrage{}, false
	}

	return Arbitrage{
		TotalImpliedProbability: total,
		ProfitMargin:            one.Sub(total).Mul(hundred),
		Outcomes:                best,
	}, true
}
