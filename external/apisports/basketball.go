package apisports

import (
	"context"
	"net/url"
	"strconv"

	"github.com/riskibarqy/livescore/internal/domain/livematch"
	"github.com/riskibarqy/livescore/internal/domain/rawdata"
)

const basketballGamesPath = "/games"

type BasketballClient struct {
	client *Client
}

func NewBasketballClient(cfg ClientConfig) *BasketballClient {
	if cfg.Provider == "" {
		cfg.Provider = rawdata.SourceAPIBasketball
	}
	return &BasketballClient{client: NewClient(cfg)}
}

func (c *BasketballClient) Transport() *Client {
	return c.client
}

// FetchLiveGames returns live games, limited to leagueID when it is non-zero.
// Every returned match is tagged with sport.
func (c *BasketballClient) FetchLiveGames(ctx context.Context, sport livematch.Sport, leagueID int64) ([]livematch.Match, []rawdata.Payload, error) {
	query := url.Values{}
	query.Set("live", "all")
	if leagueID > 0 {
		query.Set("league", strconv.FormatInt(leagueID, 10))
	}

	var items []basketballGame
	raw, err := getEnvelope(ctx, c.client, basketballGamesPath, query, &items)
	if err != nil {
		return nil, nil, err
	}

	matches := make([]livematch.Match, 0, len(items))
	for _, item := range items {
		matches = append(matches, mapBasketballGame(item, sport))
	}

	payload := c.client.payload(rawdata.EntityLiveGames, basketballGamesPath, query, string(sport), leagueID, raw)
	return matches, []rawdata.Payload{payload}, nil
}
