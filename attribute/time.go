package attribute

import (
	"fmt"
	"time"

	"github.com/syssam/dynamix"
)

// DefaultDatetimeLayout is the layout used by UnicodeDatetime when none is
// set. It keeps microseconds and a numeric zone offset.
const DefaultDatetimeLayout = "2006-01-02T15:04:05.000000-0700"

// UnicodeDatetime stores a time as formatted text.
type UnicodeDatetime struct {
	Layout   string // Defaults to DefaultDatetimeLayout
	ForceUTC bool   // Convert to UTC before formatting
}

func (c UnicodeDatetime) layout() string {
	if c.Layout == "" {
		return DefaultDatetimeLayout
	}
	return c.Layout
}

// Kind implements dynamix.Codec.
func (UnicodeDatetime) Kind() dynamix.Kind { return dynamix.KindString }

// Serialize implements dynamix.Codec.
func (c UnicodeDatetime) Serialize(v time.Time) (string, error) {
	if c.ForceUTC {
		v = v.UTC()
	}
	return v.Format(c.layout()), nil
}

// Deserialize implements dynamix.Codec. Layouts without a zone parse as UTC.
func (c UnicodeDatetime) Deserialize(s string) (time.Time, error) {
	v, err := time.Parse(c.layout(), s)
	if err != nil {
		return time.Time{}, dynamix.NewDecodeError(dynamix.KindString, s, err)
	}
	if c.ForceUTC {
		v = v.UTC()
	}
	return v, nil
}

// Timestamp stores a time as a unix timestamp number. Unit selects the
// resolution and defaults to time.Second; precision below the unit is
// truncated.
type Timestamp struct {
	Unit time.Duration
}

func (c Timestamp) unit() time.Duration {
	if c.Unit <= 0 {
		return time.Second
	}
	return c.Unit
}

// Kind implements dynamix.Codec.
func (Timestamp) Kind() dynamix.Kind { return dynamix.KindNumber }

// Serialize implements dynamix.Codec.
func (c Timestamp) Serialize(v time.Time) (string, error) {
	switch u := c.unit(); u {
	case time.Second:
		return formatInt(v.Unix()), nil
	case time.Millisecond:
		return formatInt(v.UnixMilli()), nil
	case time.Microsecond:
		return formatInt(v.UnixMicro()), nil
	default:
		return formatInt(v.UnixNano() / int64(u)), nil
	}
}

// Deserialize implements dynamix.Codec. Times decode in UTC.
func (c Timestamp) Deserialize(s string) (time.Time, error) {
	n, err := parseInt(s)
	if err != nil {
		return time.Time{}, err
	}
	switch u := c.unit(); u {
	case time.Second:
		return time.Unix(n, 0).UTC(), nil
	case time.Millisecond:
		return time.UnixMilli(n).UTC(), nil
	case time.Microsecond:
		return time.UnixMicro(n).UTC(), nil
	default:
		return time.Unix(0, n*int64(u)).UTC(), nil
	}
}

// Timedelta stores a duration as a number of Unit, which defaults to
// time.Second. Precision below the unit is truncated.
type Timedelta struct {
	Unit time.Duration
}

func (c Timedelta) unit() time.Duration {
	if c.Unit <= 0 {
		return time.Second
	}
	return c.Unit
}

// Kind implements dynamix.Codec.
func (Timedelta) Kind() dynamix.Kind { return dynamix.KindNumber }

// Serialize implements dynamix.Codec.
func (c Timedelta) Serialize(v time.Duration) (string, error) {
	return formatInt(int64(v / c.unit())), nil
}

// Deserialize implements dynamix.Codec.
func (c Timedelta) Deserialize(s string) (time.Duration, error) {
	n, err := parseInt(s)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * c.unit(), nil
}

// IntegerDate stores the calendar date of a time as the number yyyymmdd.
// The time of day is dropped and dates decode at midnight UTC.
type IntegerDate struct{}

// Kind implements dynamix.Codec.
func (IntegerDate) Kind() dynamix.Kind { return dynamix.KindNumber }

// Serialize implements dynamix.Codec.
func (IntegerDate) Serialize(v time.Time) (string, error) {
	y, m, d := v.Date()
	return formatInt(int64(y)*10000 + int64(m)*100 + int64(d)), nil
}

// Deserialize implements dynamix.Codec.
func (IntegerDate) Deserialize(s string) (time.Time, error) {
	n, err := parseInt(s)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := int(n/10000), time.Month(n/100%100), int(n%100)
	v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if vy, vm, vd := v.Date(); vy != y || vm != m || vd != d {
		return time.Time{}, dynamix.NewDecodeError(dynamix.KindNumber, s, fmt.Errorf("invalid calendar date"))
	}
	return v, nil
}

var (
	_ dynamix.Codec[time.Time]     = UnicodeDatetime{}
	_ dynamix.Codec[time.Time]     = Timestamp{}
	_ dynamix.Codec[time.Duration] = Timedelta{}
	_ dynamix.Codec[time.Time]     = IntegerDate{}
)
