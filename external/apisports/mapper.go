package apisports

import (
	"strings"
	"time"

	"github.com/riskibarqy/livescore/internal/domain/livematch"
)

var footballEventTypes = map[string]livematch.EventType{
	"goal":  livematch.EventGoal,
	"card":  livematch.EventCard,
	"subst": livematch.EventSubstitution,
	"var":   livematch.EventVAR,
}

// Football statuses where the elapsed clock carries no meaning.
var footballClocklessStatuses = map[string]struct{}{
	"TBD": {}, "NS": {}, "FT": {}, "AET": {}, "PEN": {},
	"PST": {}, "CANC": {}, "ABD": {}, "AWD": {}, "WO": {},
}

func mapFootballFixture(src footballFixture) livematch.Match {
	homeID := src.Teams.Home.ID

	match := livematch.Match{
		ID:    src.Fixture.ID,
		Sport: livematch.SportSoccer,
		Home:  mapTeam(src.Teams.Home),
		Away:  mapTeam(src.Teams.Away),
		Score: livematch.Score{
			Home: src.Goals.Home.OrZero(),
			Away: src.Goals.Away.OrZero(),
		},
		Status: livematch.Status{
			Short: strings.TrimSpace(src.Fixture.Status.Short),
			Long:  strings.TrimSpace(src.Fixture.Status.Long),
		},
		League:    mapLeague(src.League),
		Venue:     joinVenue(src.Fixture.Venue.Name, src.Fixture.Venue.City),
		StartTime: parseStartTime(src.Fixture.Date, src.Fixture.Timestamp),
		Events:    make([]livematch.Event, 0, len(src.Events)),
	}
	if _, clockless := footballClocklessStatuses[strings.ToUpper(match.Status.Short)]; !clockless {
		match.Status.Elapsed = src.Fixture.Status.Elapsed.Ptr()
	}

	for _, ev := range src.Events {
		eventType, ok := footballEventTypes[strings.ToLower(strings.TrimSpace(ev.Type))]
		if !ok {
			continue
		}
		side := livematch.SideAway
		if ev.Team.ID == homeID {
			side = livematch.SideHome
		}
		match.Events = append(match.Events, livematch.Event{
			Type:        eventType,
			Minute:      ev.Time.Elapsed.OrZero(),
			ExtraMinute: ev.Time.Extra.Ptr(),
			Side:        side,
			Player:      strings.TrimSpace(ev.Player.Name),
			Detail:      strings.TrimSpace(ev.Detail),
		})
	}

	return match
}

// Basketball statuses that pin the current quarter directly.
var basketballQuarterByStatus = map[string]int{
	"Q1": 1, "Q2": 2, "Q3": 3, "Q4": 4,
	"HT": 2, "OT": 5, "AOT": 5,
}

// Basketball statuses where the game timer carries no meaning.
var basketballClocklessStatuses = map[string]struct{}{
	"NS": {}, "FT": {}, "AOT": {}, "POST": {},
	"CANC": {}, "SUSP": {}, "AWD": {}, "ABD": {},
}

func mapBasketballGame(src basketballGame, sport livematch.Sport) livematch.Match {
	if sport == "" {
		sport = livematch.SportBasketball
	}

	home, away := quarterScores(src.Scores.Home), quarterScores(src.Scores.Away)
	short := strings.TrimSpace(src.Status.Short)

	match := livematch.Match{
		ID:    src.ID,
		Sport: sport,
		Home:  mapTeam(src.Teams.Home),
		Away:  mapTeam(src.Teams.Away),
		Score: livematch.Score{
			Home: basketballTotal(src.Scores.Home),
			Away: basketballTotal(src.Scores.Away),
		},
		Status: livematch.Status{
			Short: short,
			Long:  strings.TrimSpace(src.Status.Long),
		},
		League:    mapLeague(src.League),
		Venue:     strings.TrimSpace(src.Venue),
		StartTime: parseStartTime(src.Date, src.Timestamp),
		Events:    []livematch.Event{},
		Basketball: &livematch.BasketballDetails{
			Quarter: currentQuarter(short, len(home), len(away)),
			QuarterScores: livematch.QuarterScores{
				Home: home,
				Away: away,
			},
		},
	}
	if _, clockless := basketballClocklessStatuses[strings.ToUpper(short)]; !clockless {
		match.Status.Elapsed = src.Status.Timer.Ptr()
	}
	if match.League.Country == "" {
		match.League.Country = strings.TrimSpace(src.Country.Name)
	}

	return match
}

func currentQuarter(short string, homePlayed, awayPlayed int) int {
	if q, ok := basketballQuarterByStatus[strings.ToUpper(short)]; ok {
		return q
	}
	played := homePlayed
	if awayPlayed > played {
		played = awayPlayed
	}
	return played
}

// quarterScores lists played periods only; overtime is appended when the
// provider reports it.
func quarterScores(s basketballScore) []int {
	out := make([]int, 0, 5)
	for _, q := range []flexInt{s.Quarter1, s.Quarter2, s.Quarter3, s.Quarter4} {
		if !q.Set {
			break
		}
		out = append(out, q.Value)
	}
	if s.OverTime.Set && len(out) == 4 {
		out = append(out, s.OverTime.Value)
	}
	return out
}

func basketballTotal(s basketballScore) int {
	if s.Total.Set {
		return s.Total.Value
	}
	sum := 0
	for _, q := range quarterScores(s) {
		sum += q
	}
	return sum
}

func mapTeam(src apiTeam) livematch.Team {
	return livematch.Team{
		ID:   src.ID,
		Name: strings.TrimSpace(src.Name),
		Logo: strings.TrimSpace(src.Logo),
	}
}

func mapLeague(src apiLeague) livematch.League {
	return livematch.League{
		ID:      src.ID,
		Name:    strings.TrimSpace(src.Name),
		Country: strings.TrimSpace(src.Country),
		Logo:    strings.TrimSpace(src.Logo),
	}
}

func joinVenue(name, city string) string {
	name, city = strings.TrimSpace(name), strings.TrimSpace(city)
	switch {
	case name == "":
		return city
	case city == "":
		return name
	default:
		return name + ", " + city
	}
}

func parseStartTime(raw string, unix int64) time.Time {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			return parsed.UTC()
		}
	}
	if unix > 0 {
		return time.Unix(unix, 0).UTC()
	}
	return time.Time{}
}
