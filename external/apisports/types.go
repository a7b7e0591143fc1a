package apisports

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

// envelope is the wrapper every API-Sports product returns. errors is an
// empty array on success and an object keyed by field on failure.
type envelope[T any] struct {
	Get      string `json:"get"`
	Errors   any    `json:"errors"`
	Results  int    `json:"results"`
	Response []T    `json:"response"`
}

func (e envelope[T]) errorMessage() string {
	switch typed := e.Errors.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			if text := strings.TrimSpace(fmt.Sprint(item)); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, key+": "+fmt.Sprint(typed[key]))
		}
		return strings.Join(parts, "; ")
	case string:
		return strings.TrimSpace(typed)
	default:
		return fmt.Sprint(typed)
	}
}

// flexInt accepts a JSON number, a numeric string or null.
type flexInt struct {
	Value int
	Set   bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = flexInt{}
		return nil
	}

	if trimmed[0] == '"' {
		var text string
		if err := sonic.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			*f = flexInt{}
			return nil
		}
		value, err := strconv.Atoi(text)
		if err != nil {
			// Clocks like "12:31" are not numeric minutes.
			*f = flexInt{}
			return nil
		}
		*f = flexInt{Value: value, Set: true}
		return nil
	}

	var number float64
	if err := sonic.Unmarshal(trimmed, &number); err != nil {
		return err
	}
	*f = flexInt{Value: int(number), Set: true}
	return nil
}

func (f flexInt) Ptr() *int {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}

func (f flexInt) OrZero() int {
	return f.Value
}

type apiTeam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

type apiLeague struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Logo    string `json:"logo"`
}

type footballFixture struct {
	Fixture struct {
		ID        int64  `json:"id"`
		Date      string `json:"date"`
		Timestamp int64  `json:"timestamp"`
		Venue     struct {
			Name string `json:"name"`
			City string `json:"city"`
		} `json:"venue"`
		Status struct {
			Long    string  `json:"long"`
			Short   string  `json:"short"`
			Elapsed flexInt `json:"elapsed"`
		} `json:"status"`
	} `json:"fixture"`
	League apiLeague `json:"league"`
	Teams  struct {
		Home apiTeam `json:"home"`
		Away apiTeam `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home flexInt `json:"home"`
		Away flexInt `json:"away"`
	} `json:"goals"`
	Events []footballEvent `json:"events"`
}

type footballEvent struct {
	Time struct {
		Elapsed flexInt `json:"elapsed"`
		Extra   flexInt `json:"extra"`
	} `json:"time"`
	Team   apiTeam `json:"team"`
	Player struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"player"`
	Type     string `json:"type"`
	Detail   string `json:"detail"`
	Comments string `json:"comments"`
}

type basketballGame struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	Timestamp int64  `json:"timestamp"`
	Venue     string `json:"venue"`
	Status    struct {
		Long  string  `json:"long"`
		Short string  `json:"short"`
		Timer flexInt `json:"timer"`
	} `json:"status"`
	League  apiLeague `json:"league"`
	Country struct {
		Name string `json:"name"`
	} `json:"country"`
	Teams struct {
		Home apiTeam `json:"home"`
		Away apiTeam `json:"away"`
	} `json:"teams"`
	Scores struct {
		Home basketballScore `json:"home"`
		Away basketballScore `json:"away"`
	} `json:"scores"`
}

type basketballScore struct {
	Quarter1 flexInt `json:"quarter_1"`
	Quarter2 flexInt `json:"quarter_2"`
	Quarter3 flexInt `json:"quarter_3"`
	Quarter4 flexInt `json:"quarter_4"`
	OverTime flexInt `json:"over_time"`
	Total    flexInt `json:"total"`
}
