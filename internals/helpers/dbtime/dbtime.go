// file: internals/helpers/dbtime/dbtime.go
package dbtime

import (
	"strings"
	"sync"
	"time"

	"standbill_backend/internals/configs"
)

const DefaultTimezone = "Asia/Jakarta"

var (
	locOnce sync.Once
	loc     *time.Location
)

// Location mengembalikan timezone bisnis:
// APP_TIMEZONE → Asia/Jakarta → UTC.
func Location() *time.Location {
	locOnce.Do(func() {
		loc = LoadLocation(configs.GetEnv("APP_TIMEZONE", DefaultTimezone))
	})
	return loc
}

func LoadLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name != "" {
		if l, err := time.LoadLocation(name); err == nil {
			return l
		}
	}
	if l, err := time.LoadLocation(DefaultTimezone); err == nil {
		return l
	}
	return time.UTC
}

// ParseDate menerima YYYY-MM-DD (tengah malam di loc) atau RFC3339.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// EndOfDayExclusive: awal hari berikutnya, dipakai untuk filter "to" yang inklusif.
func EndOfDayExclusive(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
