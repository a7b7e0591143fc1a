package livematch

import (
	"errors"
	"fmt"
	"strings"
)

type Sport string

const (
	SportSoccer     Sport = "soccer"
	SportBasketball Sport = "basketball"
	SportNBA        Sport = "nba"
)

// Family groups sports that share one upstream provider.
type Family string

const (
	FamilyFootball   Family = "football"
	FamilyBasketball Family = "basketball"
)

var ErrUnknownSport = errors.New("unknown sport")

var sportAliases = map[string]Sport{
	"soccer":     SportSoccer,
	"football":   SportSoccer,
	"basketball": SportBasketball,
	"nba":        SportNBA,
}

func ParseSport(raw string) (Sport, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if sport, ok := sportAliases[value]; ok {
		return sport, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSport, raw)
}

func (s Sport) Family() Family {
	switch s {
	case SportBasketball, SportNBA:
		return FamilyBasketball
	default:
		return FamilyFootball
	}
}

// CacheKey is the snapshot key for a sport. Team filters never take part.
func (s Sport) CacheKey() string {
	return "live:" + string(s)
}

func (s Sport) String() string {
	return string(s)
}

func Sports() []Sport {
	return []Sport{SportSoccer, SportBasketball, SportNBA}
}
