package livematch

import "time"

type EventType string

const (
	EventGoal         EventType = "Goal"
	EventCard         EventType = "Card"
	EventSubstitution EventType = "Substitution"
	EventVAR          EventType = "VAR"
	EventScoreUpdate  EventType = "ScoreUpdate"
)

type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Match is the provider-independent shape of one live match or game.
type Match struct {
	ID         int64
	Sport      Sport
	Home       Team
	Away       Team
	Score      Score
	Status     Status
	League     League
	Venue      string
	StartTime  time.Time
	Events     []Event
	Basketball *BasketballDetails
}

type Team struct {
	ID   int64
	Name string
	Logo string
}

type Score struct {
	Home int
	Away int
}

// Status keeps the provider's own vocabulary (1H, HT, Q3, FT, ...).
// Elapsed is nil before kickoff, after the final whistle, or when the
// provider reports no clock.
type Status struct {
	Short   string
	Long    string
	Elapsed *int
}

type League struct {
	ID      int64
	Name    string
	Country string
	Logo    string
}

// Event is one in-match incident in provider order.
type Event struct {
	Type        EventType
	Minute      int
	ExtraMinute *int
	Side        Side
	Player      string
	Detail      string
}

// BasketballDetails is set only for the basketball family.
type BasketballDetails struct {
	Quarter       int
	QuarterScores QuarterScores
}

// QuarterScores holds per-period points, Q1..Q4 then overtime when played.
type QuarterScores struct {
	Home []int
	Away []int
}

// Snapshot is the pre-filter result of one upstream resolution for a sport.
type Snapshot struct {
	Sport           Sport
	Matches         []Match
	FetchedAt       time.Time
	Partial         bool
	FailedLeagueIDs []int64
	AllFailed       bool
}

func (m Match) IsBasketball() bool {
	return m.Basketball != nil
}
