package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/livescore/internal/domain/odds"
	"github.com/riskibarqy/livescore/internal/usecase"
	"github.com/shopspring/decimal"
)

// maxOddsBody bounds the summary request; a market rarely has more than a
// few hundred prices.
const maxOddsBody = 1 << 20

type oddsSummaryRequest struct {
	Prices []oddsPriceRequest `json:"prices" validate:"required,min=1,max=1000,dive"`
}

type oddsPriceRequest struct {
	Bookmaker string          `json:"bookmaker" validate:"required,max=100"`
	Outcome   string          `json:"outcome" validate:"required,max=100"`
	Odds      decimal.Decimal `json:"odds" validate:"gt=1"`
}

func (h *Handler) SummarizeOdds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SummarizeOdds")
	defer span.End()

	var req oddsSummaryRequest
	decoder := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(w, r.Body, maxOddsBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	prices := make([]odds.Price, 0, len(req.Prices))
	for _, item := range req.Prices {
		prices = append(prices, odds.Price{
			Bookmaker: strings.TrimSpace(item.Bookmaker),
			Outcome:   strings.TrimSpace(item.Outcome),
			Odds:      item.Odds,
		})
	}

	summary, err := h.oddsService.Summarize(ctx, prices)
	if err != nil {
		h.logger.WarnContext(ctx, "summarize odds failed", "prices", len(prices), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, marketSummaryToDTO(summary))
}

func (h *Handler) GetImpliedProbability(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetImpliedProbability")
	defer span.End()

	raw := strings.TrimSpace(r.URL.Query().Get("odds"))
	if raw == "" {
		writeError(ctx, w, fmt.Errorf("%w: odds query parameter is required", usecase.ErrInvalidInput))
		return
	}
	decimalOdds, err := decimal.NewFromString(raw)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: odds must be a decimal number: %v", usecase.ErrInvalidInput, err))
		return
	}

	probability, err := h.oddsService.ImpliedProbability(ctx, decimalOdds)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, impliedProbabilityDTO{
		Odds:               decimalOdds.String(),
		ImpliedProbability: probability.StringFixed(2),
	})
}
