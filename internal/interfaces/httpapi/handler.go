package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/livescore/internal/platform/logging"
	"github.com/riskibarqy/livescore/internal/usecase"
	"github.com/shopspring/decimal"
)

const defaultStreamInterval = 15 * time.Second

// StreamMetrics tracks open live websocket connections.
type StreamMetrics interface {
	StreamClientConnected()
	StreamClientDisconnected()
}

type HandlerConfig struct {
	StreamInterval time.Duration
	// AllowedOrigins gates websocket upgrades the same way CORS gates
	// plain requests.
	AllowedOrigins []string
	StreamMetrics  StreamMetrics
}

type Handler struct {
	liveService    *usecase.LiveMatchService
	oddsService    *usecase.OddsService
	logger         *logging.Logger
	validator      *validator.Validate
	upgrader       websocket.Upgrader
	streamInterval time.Duration
	streamMetrics  StreamMetrics
	streamsDone    chan struct{}
	closeStreams   sync.Once
}

func NewHandler(
	liveService *usecase.LiveMatchService,
	oddsService *usecase.OddsService,
	logger *logging.Logger,
	cfg HandlerConfig,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	interval := cfg.StreamInterval
	if interval <= 0 {
		interval = defaultStreamInterval
	}

	origins := newOriginPolicy(cfg.AllowedOrigins)
	return &Handler{
		liveService: liveService,
		oddsService: oddsService,
		logger:      logger,
		validator:   newValidator(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins.allows(origin)
			},
		},
		streamInterval: interval,
		streamMetrics:  cfg.StreamMetrics,
		streamsDone:    make(chan struct{}),
	}
}

// CloseStreams ends every open live stream. http.Server.Shutdown does not
// track hijacked connections, so it is registered with RegisterOnShutdown.
func (h *Handler) CloseStreams() {
	h.closeStreams.Do(func() {
		close(h.streamsDone)
	})
}

// newValidator lets numeric tags (gt, lte, ...) apply to decimal fields.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if value, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := value.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}
