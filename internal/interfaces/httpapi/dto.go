package httpapi

import (
	"time"

	"github.com/riskibarqy/livescore/internal/domain/livematch"
	"github.com/riskibarqy/livescore/internal/domain/odds"
	"github.com/riskibarqy/livescore/internal/usecase"
)

type liveMatchesDTO struct {
	Sport           string         `json:"sport"`
	FetchedAt       string         `json:"fetchedAt"`
	Cached          bool           `json:"cached"`
	Partial         bool           `json:"partial"`
	FailedLeagueIDs []int64        `json:"failedLeagueIds"`
	Count           int            `json:"count"`
	Matches         []liveMatchDTO `json:"matches"`
}

type liveMatchDTO struct {
	ID         int64                 `json:"id"`
	Sport      string                `json:"sport"`
	League     liveLeagueDTO         `json:"league"`
	HomeTeam   liveTeamDTO           `json:"homeTeam"`
	AwayTeam   liveTeamDTO           `json:"awayTeam"`
	Score      liveScoreDTO          `json:"score"`
	Status     liveStatusDTO         `json:"status"`
	Venue      string                `json:"venue,omitempty"`
	StartTime  string                `json:"startTime"`
	Events     []liveEventDTO        `json:"events"`
	Basketball *basketballDetailsDTO `json:"basketball,omitempty"`
}

type liveLeagueDTO struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
	Logo    string `json:"logo,omitempty"`
}

type liveTeamDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

type liveScoreDTO struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type liveStatusDTO struct {
	Short   string `json:"short"`
	Long    string `json:"long"`
	Elapsed *int   `json:"elapsed"`
}

type liveEventDTO struct {
	Type        string `json:"type"`
	Minute      int    `json:"minute"`
	ExtraMinute *int   `json:"extraMinute,omitempty"`
	Team        string `json:"team"`
	Player      string `json:"player,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

type basketballDetailsDTO struct {
	Quarter      int   `json:"quarter"`
	HomeQuarters []int `json:"homeQuarters"`
	AwayQuarters []int `json:"awayQuarters"`
}

type nbaLeaguesDTO struct {
	LeagueIDs []int64 `json:"leagueIds"`
}

type clearCacheDTO struct {
	Cleared int `json:"cleared"`
}

type marketSummaryDTO struct {
	Outcomes  []outcomeSummaryDTO `json:"outcomes"`
	Overround string              `json:"overround"`
}

type outcomeSummaryDTO struct {
	Outcome            string `json:"outcome"`
	BestOdds           string `json:"bestOdds"`
	BestBookmaker      string `json:"bestBookmaker"`
	AverageOdds        string `json:"averageOdds"`
	ImpliedProbability string `json:"impliedProbability"`
	BookmakerCount     int    `json:"bookmakerCount"`
}

type impliedProbabilityDTO struct {
	Odds               string `json:"odds"`
	ImpliedProbability string `json:"impliedProbability"`
}

func liveMatchesToDTO(v usecase.LiveMatches) liveMatchesDTO {
	matches := make([]liveMatchDTO, 0, len(v.Matches))
	for _, m := range v.Matches {
		matches = append(matches, liveMatchToDTO(m))
	}
	failed := v.FailedLeagueIDs
	if failed == nil {
		failed = []int64{}
	}

	return liveMatchesDTO{
		Sport:           v.Sport.String(),
		FetchedAt:       formatTime(v.FetchedAt),
		Cached:          v.Cached,
		Partial:         v.Partial,
		FailedLeagueIDs: failed,
		Count:           len(matches),
		Matches:         matches,
	}
}

func liveMatchToDTO(m livematch.Match) liveMatchDTO {
	events := make([]liveEventDTO, 0, len(m.Events))
	for _, e := range m.Events {
		events = append(events, liveEventDTO{
			Type:        string(e.Type),
			Minute:      e.Minute,
			ExtraMinute: e.ExtraMinute,
			Team:        string(e.Side),
			Player:      e.Player,
			Detail:      e.Detail,
		})
	}

	out := liveMatchDTO{
		ID:    m.ID,
		Sport: m.Sport.String(),
		League: liveLeagueDTO{
			ID:      m.League.ID,
			Name:    m.League.Name,
			Country: m.League.Country,
			Logo:    m.League.Logo,
		},
		HomeTeam: liveTeamDTO{ID: m.Home.ID, Name: m.Home.Name, Logo: m.Home.Logo},
		AwayTeam: liveTeamDTO{ID: m.Away.ID, Name: m.Away.Name, Logo: m.Away.Logo},
		Score:    liveScoreDTO{Home: m.Score.Home, Away: m.Score.Away},
		Status: liveStatusDTO{
			Short:   m.Status.Short,
			Long:    m.Status.Long,
			Elapsed: m.Status.Elapsed,
		},
		Venue:     m.Venue,
		StartTime: formatTime(m.StartTime),
		Events:    events,
	}
	if m.Basketball != nil {
		out.Basketball = &basketballDetailsDTO{
			Quarter:      m.Basketball.Quarter,
			HomeQuarters: nonNilInts(m.Basketball.QuarterScores.Home),
			AwayQuarters: nonNilInts(m.Basketball.QuarterScores.Away),
		}
	}
	return out
}

func marketSummaryToDTO(v odds.MarketSummary) marketSummaryDTO {
	outcomes := make([]outcomeSummaryDTO, 0, len(v.Outcomes))
	for _, item := range v.Outcomes {
		outcomes = append(outcomes, outcomeSummaryDTO{
			Outcome:            item.Outcome,
			BestOdds:           item.BestOdds.String(),
			BestBookmaker:      item.BestBookmaker,
			AverageOdds:        item.AverageOdds.String(),
			ImpliedProbability: item.ImpliedProbability.StringFixed(2),
			BookmakerCount:     item.BookmakerCount,
		})
	}
	return marketSummaryDTO{
		Outcomes:  outcomes,
		Overround: v.Overround.StringFixed(2),
	}
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
