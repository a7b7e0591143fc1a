package httpapi

import (
	"net/http"

	"github.com/riskibarqy/livescore/internal/platform/id"
	"github.com/riskibarqy/livescore/internal/platform/logging"
)

type RouterConfig struct {
	CORSAllowedOrigins []string
	InternalJobToken   string
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
	Metrics        HTTPMetrics
	IDGenerator    id.Generator
}

func NewRouter(handler *Handler, logger *logging.Logger, cfg RouterConfig) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg.MetricsHandler)
	registerLiveRoutes(mux, handler)
	registerOddsRoutes(mux, handler)
	registerInternalRoutes(mux, handler, cfg.InternalJobToken)

	return RequestTracing(
		RequestID(cfg.IDGenerator,
			RequestLogging(logger, cfg.Metrics, mux,
				CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, mux)))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
