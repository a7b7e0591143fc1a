package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/livescore/internal/domain/livematch"
	"github.com/riskibarqy/livescore/internal/usecase"
)

const (
	streamWriteWait = 10 * time.Second
	streamPongWait  = 60 * time.Second
)

func (h *Handler) ListLiveMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLiveMatches")
	defer span.End()

	sport, err := parseSportPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	payload, err := h.liveMatchesPayload(ctx, sport, teamFilterFromQuery(r.URL.Query()))
	if err != nil {
		h.logger.WarnContext(ctx, "list live matches failed", "sport", sport, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, payload)
}

// StreamLiveMatches upgrades to a websocket and pushes the live payload for
// the sport on every tick until the client goes away. Each frame is a full
// response envelope; a failed fetch sends an error frame and keeps the
// connection open.
func (h *Handler) StreamLiveMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StreamLiveMatches")
	defer span.End()

	sport, err := parseSportPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	filter := teamFilterFromQuery(r.URL.Query())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.WarnContext(ctx, "live stream upgrade failed", "sport", sport, "error", err)
		return
	}
	defer conn.Close()

	if h.streamMetrics != nil {
		h.streamMetrics.StreamClientConnected()
		defer h.streamMetrics.StreamClientDisconnected()
	}
	h.logger.InfoContext(ctx, "live stream opened", "sport", sport, "interval", h.streamInterval.String())

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()

	for {
		if err := h.pushLiveFrame(ctx, conn, sport, filter); err != nil {
			h.logger.InfoContext(ctx, "live stream closed", "sport", sport, "reason", err)
			return
		}

		select {
		case <-closed:
			h.logger.InfoContext(ctx, "live stream closed by client", "sport", sport)
			return
		case <-h.streamsDone:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(streamWriteWait))
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *Handler) pushLiveFrame(ctx context.Context, conn *websocket.Conn, sport livematch.Sport, filter livematch.TeamFilter) error {
	var frame googleResponseEnvelope
	payload, err := h.liveMatchesPayload(ctx, sport, filter)
	if err != nil {
		h.logger.WarnContext(ctx, "live stream fetch failed", "sport", sport, "error", err)
		_, frame = errorEnvelope(ctx, err)
	} else {
		frame = successEnvelope(payload)
	}

	raw, err := sonic.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encode live frame: %w", err)
	}
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, raw)
}

func (h *Handler) liveMatchesPayload(ctx context.Context, sport livematch.Sport, filter livematch.TeamFilter) (liveMatchesDTO, error) {
	result, err := h.liveService.GetLiveMatches(ctx, sport, filter)
	if err != nil {
		return liveMatchesDTO{}, err
	}
	result.Matches = livematch.SortByStartTime(result.Matches)
	return liveMatchesToDTO(result), nil
}

func (h *Handler) ListNBALeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListNBALeagues")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, nbaLeaguesDTO{LeagueIDs: h.liveService.NBALeagueIDs()})
}

func (h *Handler) ClearLiveCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearLiveCache")
	defer span.End()

	cleared := h.liveService.Clear()
	h.logger.InfoContext(ctx, "live cache cleared", "entries", cleared)
	writeSuccess(ctx, w, http.StatusOK, clearCacheDTO{Cleared: cleared})
}

func parseSportPath(r *http.Request) (livematch.Sport, error) {
	sport, err := livematch.ParseSport(r.PathValue("sport"))
	if err != nil {
		return "", fmt.Errorf("%w: %w", usecase.ErrInvalidInput, err)
	}
	return sport, nil
}

// teamFilterFromQuery reads team1/team2 first, then the comma separated
// teams list. The filter keeps at most two names.
func teamFilterFromQuery(query url.Values) livematch.TeamFilter {
	names := []string{query.Get("team1"), query.Get("team2")}
	if teams := query.Get("teams"); teams != "" {
		names = append(names, strings.Split(teams, ",")...)
	}
	return livematch.NewTeamFilter(names...)
}
