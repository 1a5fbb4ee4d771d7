package schema

import (
	"errors"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// dateTimeLayouts cover the ISO-8601 extended forms, basic offsets,
// minute precision and a bare calendar date (midnight).
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	dateLayout,
}

var errNotText = errors.New("value is not text")

// Date is a calendar date, held as midnight UTC. It renders as 2006-01-02
// in JSON, text and CSV output.
type Date struct {
	time.Time
}

// NewDate returns the date of t in t's location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	t, err := time.Parse(dateLayout, strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	return d.UnmarshalText([]byte(strings.Trim(string(b), `"`)))
}

// ApplyFormat refines an already coerced value according to format.
// date yields a Date; date-time yields a time.Time, in UTC when the text
// carries no offset.
//
// On failure the original value is returned together with a *FormatError, so
// callers can keep it. Unknown formats and nil values pass through.
func ApplyFormat(value any, format string) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch format {
	case FormatDate:
		return parseTime(value, format, []string{dateLayout})
	case FormatDateTime:
		return parseTime(value, format, dateTimeLayouts)
	case FormatEmail, FormatUUID:
		return strings.ToLower(strings.TrimSpace(toString(value))), nil
	case FormatURI:
		return strings.TrimSpace(toString(value)), nil
	default:
		return value, nil
	}
}

func parseTime(value any, format string, layouts []string) (any, error) {
	switch v := value.(type) {
	case time.Time:
		if format == FormatDate {
			return NewDate(v), nil
		}
		return v, nil
	case Date:
		if format == FormatDate {
			return v, nil
		}
		return v.Time, nil
	case string:
		s := strings.TrimSpace(v)
		var err error
		for _, layout := range layouts {
			var t time.Time
			if t, err = time.Parse(layout, s); err == nil {
				if format == FormatDate {
					return Date{t}, nil
				}
				return t, nil
			}
		}
		return value, &FormatError{Format: format, Value: value, Err: err}
	default:
		return value, &FormatError{Format: format, Value: value, Err: errNotText}
	}
}
