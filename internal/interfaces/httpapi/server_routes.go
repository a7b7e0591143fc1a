package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metricsHandler http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
}

func registerLiveRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/live/{sport}", handler.ListLiveMatches)
	mux.HandleFunc("GET /v1/live/{sport}/stream", handler.StreamLiveMatches)
	mux.HandleFunc("GET /v1/live/nba/leagues", handler.ListNBALeagues)
}

func registerOddsRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/odds/summary", handler.SummarizeOdds)
	mux.HandleFunc("GET /v1/odds/implied-probability", handler.GetImpliedProbability)
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/live/cache/clear", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ClearLiveCache)))
}
