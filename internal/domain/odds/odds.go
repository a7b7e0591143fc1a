package odds

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidOdds = errors.New("decimal odds must be greater than 1")

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Price is one bookmaker's decimal price for one outcome.
type Price struct {
	Bookmaker string
	Outcome   string
	Odds      decimal.Decimal
}

type Best struct {
	Outcome   string
	Bookmaker string
	Odds      decimal.Decimal
}

type OutcomeSummary struct {
	Outcome            string
	BestOdds           decimal.Decimal
	BestBookmaker      string
	AverageOdds        decimal.Decimal
	ImpliedProbability decimal.Decimal
	BookmakerCount     int
}

type MarketSummary struct {
	Outcomes []OutcomeSummary
	// Overround is the sum of implied probabilities at the best prices, in
	// percent. Below 100 means an arbitrage exists across bookmakers.
	Overround decimal.Decimal
}

// ImpliedProbability returns 100/odds as a percentage with 2 decimals.
func ImpliedProbability(decimalOdds decimal.Decimal) (decimal.Decimal, error) {
	if decimalOdds.LessThanOrEqual(one) {
		return decimal.Zero, fmt.Errorf("%w: got %s", ErrInvalidOdds, decimalOdds.String())
	}
	return hundred.DivRound(decimalOdds, 8).Round(2), nil
}

// BestOdds picks the highest price per outcome in first-seen outcome order.
// Ties keep the bookmaker seen first.
func BestOdds(prices []Price) ([]Best, error) {
	order, grouped, err := groupByOutcome(prices)
	if err != nil {
		return nil, err
	}

	out := make([]Best, 0, len(order))
	for _, outcome := range order {
		rows := grouped[outcome]
		best := rows[0]
		for _, p := range rows[1:] {
			if p.Odds.GreaterThan(best.Odds) {
				best = p
			}
		}
		out = append(out, Best{Outcome: outcome, Bookmaker: best.Bookmaker, Odds: best.Odds})
	}
	return out, nil
}

// AverageOdds returns the arithmetic mean per outcome rounded to 3 decimals.
func AverageOdds(prices []Price) (map[string]decimal.Decimal, error) {
	order, grouped, err := groupByOutcome(prices)
	if err != nil {
		return nil, err
	}

	out := make(map[string]decimal.Decimal, len(order))
	for _, outcome := range order {
		out[outcome] = average(grouped[outcome])
	}
	return out, nil
}

func Summarize(prices []Price) (MarketSummary, error) {
	order, grouped, err := groupByOutcome(prices)
	if err != nil {
		return MarketSummary{}, err
	}

	best, err := BestOdds(prices)
	if err != nil {
		return MarketSummary{}, err
	}

	summary := MarketSummary{
		Outcomes:  make([]OutcomeSummary, 0, len(order)),
		Overround: decimal.Zero,
	}
	for i, outcome := range order {
		implied, err := ImpliedProbability(best[i].Odds)
		if err != nil {
			return MarketSummary{}, err
		}
		summary.Outcomes = append(summary.Outcomes, OutcomeSummary{
			Outcome:            outcome,
			BestOdds:           best[i].Odds,
			BestBookmaker:      best[i].Bookmaker,
			AverageOdds:        average(grouped[outcome]),
			ImpliedProbability: implied,
			BookmakerCount:     countBookmakers(grouped[outcome]),
		})
		summary.Overround = summary.Overround.Add(implied)
	}
	return summary, nil
}

func groupByOutcome(prices []Price) ([]string, map[string][]Price, error) {
	order := make([]string, 0, 4)
	grouped := make(map[string][]Price, 4)
	for i, p := range prices {
		outcome := strings.TrimSpace(p.Outcome)
		if outcome == "" {
			return nil, nil, fmt.Errorf("price %d: outcome is required", i)
		}
		if p.Odds.LessThanOrEqual(one) {
			return nil, nil, fmt.Errorf("price %d (%s): %w", i, outcome, ErrInvalidOdds)
		}
		if _, ok := grouped[outcome]; !ok {
			order = append(order, outcome)
		}
		p.Outcome = outcome
		grouped[outcome] = append(grouped[outcome], p)
	}
	return order, grouped, nil
}

func average(rows []Price) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range rows {
		sum = sum.Add(p.Odds)
	}
	return sum.DivRound(decimal.NewFromInt(int64(len(rows))), 8).Round(3)
}

func countBookmakers(rows []Price) int {
	seen := make(map[string]struct{}, len(rows))
	for _, p := range rows {
		seen[strings.ToLower(strings.TrimSpace(p.Bookmaker))] = struct{}{}
	}
	return len(seen)
}
