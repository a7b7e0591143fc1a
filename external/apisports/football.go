package apisports

import (
	"context"
	"net/url"

	"github.com/riskibarqy/livescore/internal/domain/livematch"
	"github.com/riskibarqy/livescore/internal/domain/rawdata"
)

const footballFixturesPath = "/fixtures"

type FootballClient struct {
	client *Client
}

func NewFootballClient(cfg ClientConfig) *FootballClient {
	if cfg.Provider == "" {
		cfg.Provider = rawdata.SourceAPIFootball
	}
	return &FootballClient{client: NewClient(cfg)}
}

func (c *FootballClient) Transport() *Client {
	return c.client
}

// FetchLiveFixtures returns every in-play soccer fixture in provider order.
func (c *FootballClient) FetchLiveFixtures(ctx context.Context) ([]livematch.Match, []rawdata.Payload, error) {
	query := url.Values{}
	query.Set("live", "all")

	var items []footballFixture
	raw, err := getEnvelope(ctx, c.client, footballFixturesPath, query, &items)
	if err != nil {
		return nil, nil, err
	}

	matches := make([]livematch.Match, 0, len(items))
	for _, item := range items {
		matches = append(matches, mapFootballFixture(item))
	}

	payload := c.client.payload(rawdata.EntityLiveFixtures, footballFixturesPath, query, string(livematch.SportSoccer), 0, raw)
	return matches, []rawdata.Payload{payload}, nil
}
