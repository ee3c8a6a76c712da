package app

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Limits bounds every client-supplied value before it reaches session state.
type Limits struct {
	MaxNameLen      int
	MaxTextLen      int
	MaxOptions      int
	MaxOptionLen    int
	MaxChatLen      int
	MinDuration     time.Duration
	MaxDuration     time.Duration
	DefaultDuration time.Duration
	HistoryLimit    int
}

func DefaultLimits() Limits {
	return Limits{
		MaxNameLen:      50,
		MaxTextLen:      200,
		MaxOptions:      6,
		MaxOptionLen:    100,
		MaxChatLen:      300,
		MinDuration:     5 * time.Second,
		MaxDuration:     600 * time.Second,
		DefaultDuration: 60 * time.Second,
		HistoryLimit:    50,
	}
}

const anonymousName = "Anonymous"

func (l Limits) name(raw string) string {
	name := truncate(strings.TrimSpace(raw), l.MaxNameLen)
	if name == "" {
		return anonymousName
	}
	return name
}

func (l Limits) options(raw []string) []string {
	n := len(raw)
	if n > l.MaxOptions {
		n = l.MaxOptions
	}
	out := make([]string, 0, n)
	for _, opt := range raw[:n] {
		out = append(out, truncate(opt, l.MaxOptionLen))
	}
	return out
}

// duration clamps seconds into [MinDuration, MaxDuration]; zero or NaN means the default.
func (l Limits) duration(seconds float64) time.Duration {
	if seconds == 0 || math.IsNaN(seconds) {
		return l.DefaultDuration
	}
	lo, hi := l.MinDuration.Seconds(), l.MaxDuration.Seconds()
	seconds = math.Max(lo, math.Min(hi, seconds))
	return time.Duration(seconds * float64(time.Second))
}

func truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
