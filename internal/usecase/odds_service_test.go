package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/livescore/internal/domain/odds"
	"github.com/shopspring/decimal"
)

func TestOddsService_Summarize(t *testing.T) {
	t.Parallel()

	svc := NewOddsService()
	summary, err := svc.Summarize(context.Background(), []odds.Price{
		{Bookmaker: "pinnacle", Outcome: "home", Odds: decimal.RequireFromString("2.10")},
		{Bookmaker: "bet365", Outcome: "home", Odds: decimal.RequireFromString("2.25")},
		{Bookmaker: "pinnacle", Outcome: "away", Odds: decimal.RequireFromString("1.80")},
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(summary.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(summary.Outcomes))
	}
	if summary.Outcomes[0].BestBookmaker != "bet365" {
		t.Fatalf("unexpected best bookmaker: %s", summary.Outcomes[0].BestBookmaker)
	}
}

func TestOddsService_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	svc := NewOddsService()
	if _, err := svc.Summarize(context.Background(), nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty prices, got %v", err)
	}

	_, err := svc.Summarize(context.Background(), []odds.Price{
		{Bookmaker: "pinnacle", Outcome: "draw", Odds: decimal.NewFromInt(1)},
	})
	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, odds.ErrInvalidOdds) {
		t.Fatalf("expected invalid odds error, got %v", err)
	}

	if _, err := svc.ImpliedProbability(context.Background(), decimal.RequireFromString("0.5")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestOddsService_ImpliedProbability(t *testing.T) {
	t.Parallel()

	got, err := NewOddsService().ImpliedProbability(context.Background(), decimal.RequireFromString("4"))
	if err != nil {
		t.Fatalf("implied probability: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("25")) {
		t.Fatalf("unexpected probability: %s", got)
	}
}
