package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var (
	ErrInvalidTime = errors.New("time must be HH:MM in 24-hour form")
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

	timePattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)
)

// Slot is the (date, time) pair that at most one active appointment may hold.
type Slot struct {
	Date time.Time
	Time string
}

func (s Slot) Key() string {
	return s.Date.Format(DateLayout) + "T" + s.Time
}

func (s Slot) String() string {
	return s.Date.Format(DateLayout) + " " + s.Time
}

// ParseTime accepts H:MM or HH:MM and returns the zero-padded HH:MM form.
func ParseTime(raw string) (string, error) {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	return fmt.Sprintf("%02d:%s", hour, m[2]), nil
}

func ParseDate(raw string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return d, nil
}

// DateOf drops the time-of-day, keeping the wall-clock calendar day of t.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
