package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/livescore/internal/domain/odds"
	"github.com/shopspring/decimal"
)

type OddsService struct{}

func NewOddsService() *OddsService {
	return &OddsService{}
}

func (s *OddsService) Summarize(ctx context.Context, prices []odds.Price) (odds.MarketSummary, error) {
	_, span := startUsecaseSpan(ctx, "usecase.OddsService.Summarize")
	defer span.End()

	if len(prices) == 0 {
		return odds.MarketSummary{}, fmt.Errorf("%w: at least one price is required", ErrInvalidInput)
	}

	summary, err := odds.Summarize(prices)
	if err != nil {
		return odds.MarketSummary{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return summary, nil
}

func (s *OddsService) ImpliedProbability(ctx context.Context, decimalOdds decimal.Decimal) (decimal.Decimal, error) {
	_, span := startUsecaseSpan(ctx, "usecase.OddsService.ImpliedProbability")
	defer span.End()

	probability, err := odds.ImpliedProbability(decimalOdds)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return probability, nil
}
