package domain

import (
	"strings"
	"time"
	"unicode"
)

// Term is one of the listening-history ranges accepted by the profile
// endpoints.
type Term string

const (
	TermShort  Term = "short_term"
	TermMedium Term = "medium_term"
	TermLong   Term = "long_term"
)

func (t Term) Valid() bool {
	switch t {
	case TermShort, TermMedium, TermLong:
		return true
	}
	return false
}

// Label returns the term with the underscore spelled out ("short term").
func (t Term) Label() string {
	return strings.ReplaceAll(string(t), "_", " ")
}

// Title returns the label with only its first letter upper-cased
// ("Short term"), the form used in generated playlist names.
func (t Term) Title() string {
	return capitalize(t.Label())
}

// TimeWindow restricts a playlist to the songs added within a trailing
// period, used by the trending tables and the playlist recommendation seeds.
type TimeWindow string

const (
	WindowAllTime   TimeWindow = "all_time"
	WindowMonth     TimeWindow = "month"
	WindowTrimester TimeWindow = "trimester"
	WindowSemester  TimeWindow = "semester"
	WindowYear      TimeWindow = "year"
)

func (w TimeWindow) Valid() bool {
	switch w {
	case WindowAllTime, WindowMonth, WindowTrimester, WindowSemester, WindowYear:
		return true
	}
	return false
}

// Cutoff returns the earliest AddedAt still inside the window. ok is false
// for the all-time window, which never filters.
func (w TimeWindow) Cutoff(now time.Time) (cutoff time.Time, ok bool) {
	var days int
	switch w {
	case WindowMonth:
		days = 30
	case WindowTrimester:
		days = 90
	case WindowSemester:
		days = 180
	case WindowYear:
		days = 365
	default:
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -days), true
}

// Label renders the window the way generated playlist names spell it.
func (w TimeWindow) Label() string {
	if w == WindowAllTime {
		return "for all_time"
	}
	return "for the last " + string(w)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
