package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// Date accepts RFC 3339 timestamps as well as plain calendar dates in JSON.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time)
}

// NullableDate tells an absent JSON field apart from an explicit null.
type NullableDate struct {
	Present bool
	Valid   bool
	Time    time.Time
}

func (d *NullableDate) UnmarshalJSON(b []byte) error {
	d.Present = true
	if bytes.Equal(b, []byte("null")) {
		d.Valid = false
		d.Time = time.Time{}
		return nil
	}
	var date Date
	if err := date.UnmarshalJSON(b); err != nil {
		return err
	}
	d.Valid = true
	d.Time = date.Time
	return nil
}

// Null reports whether the field was sent as null.
func (d NullableDate) Null() bool { return d.Present && !d.Valid }

// ParseDate parses s with the accepted layouts and returns it in UTC.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
