package placeholder

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

func registerTemporalModifiers() {
	registry["format"] = modFormat
	registry["shift"] = modShift
	registry["to_date"] = truncateModifier("date")
	registry["to_hour"] = truncateModifier("hour")
	registry["to_minute"] = truncateModifier("minute")
	registry["to_second"] = truncateModifier("second")
	registry["to_week"] = truncateModifier("week")
	registry["to_month"] = truncateModifier("month")
	registry["to_year"] = truncateModifier("year")
}

var dateLayouts = []struct {
	layout  string
	hasTime bool
}{
	{"2006-01-02 15:04:05", true},
	{"2006-01-02", false},
	{"02.01.2006 15:04:05", true},
	{"02.01.2006 15:04", true},
	{"02.01.2006", false},
	{time.RFC3339, true},
}

// parseDateTime accepts a unix timestamp (numeric or digit-string), one
// of the layouts this system writes dates in, or -- as a last resort --
// anything dateparse can make sense of. The bool reports whether the
// source carried a time-of-day component, the ok whether it parsed at
// all.
func parseDateTime(v any) (time.Time, bool, bool) {
	switch t := v.(type) {
	case int:
		return time.Unix(int64(t), 0).UTC(), true, true
	case int64:
		return time.Unix(t, 0).UTC(), true, true
	case float64:
		return time.Unix(int64(t), 0).UTC(), true, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false, false
		}
		if isAllDigits(s) {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return time.Unix(n, 0).UTC(), true, true
			}
		}
		for _, l := range dateLayouts {
			if pt, err := time.Parse(l.layout, s); err == nil {
				return pt, l.hasTime, true
			}
		}
		if pt, err := dateparse.ParseAny(s); err == nil {
			return pt, true, true
		}
		return time.Time{}, false, false
	default:
		return time.Time{}, false, false
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// truncateModifier builds a to_date/to_hour/... modifier. An empty or
// unparseable string passes through unchanged; a nil/Missing value never
// reaches this function at all (the eval loop short-circuits it to
// Missing first), which is what makes "{none|to_date}" render as the
// unresolved literal.
func truncateModifier(kind string) modifierFunc {
	return func(value any, _ string, _ any) any {
		s, isStr := value.(string)
		if isStr && s == "" {
			return s
		}
		t, _, ok := parseDateTime(value)
		if !ok {
			if isStr {
				return s
			}
			return value
		}
		return truncateTime(t, kind).Format("2006-01-02 15:04:05")
	}
}

func truncateTime(t time.Time, kind string) time.Time {
	switch kind {
	case "second":
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, t.Location())
	case "minute":
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
	case "hour":
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	case "date":
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	case "week":
		wd := int(t.Weekday())
		if wd == 0 {
			wd = 7
		}
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return d.AddDate(0, 0, -(wd - 1))
	case "month":
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case "year":
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
	}
	return t
}

func modFormat(value any, arg string, _ any) any {
	switch strings.TrimSpace(arg) {
	case "number":
		return formatDecimal(value, 2, "")
	case "currency":
		return formatDecimal(value, 2, " ₽")
	case "percent":
		return formatDecimal(value, 1, "%")
	default:
		return formatDateKind(value, strings.TrimSpace(arg))
	}
}

func formatDateKind(value any, kind string) any {
	t, _, ok := parseDateTime(value)
	if !ok {
		return value
	}
	switch kind {
	case "date":
		return t.Format("02.01.2006")
	case "time":
		return t.Format("15:04")
	case "time_full":
		return t.Format("15:04:05")
	case "datetime":
		return t.Format("02.01.2006 15:04")
	case "datetime_full":
		return t.Format("02.01.2006 15:04:05")
	case "pg_date":
		return t.Format("2006-01-02")
	case "pg_datetime":
		return t.Format("2006-01-02 15:04:05")
	case "timestamp":
		return strconv.FormatInt(t.Unix(), 10)
	}
	return value
}

func formatDecimal(value any, places int32, suffix string) any {
	d, ok := toDecimal(value)
	if !ok {
		return value
	}
	return d.StringFixed(places) + suffix
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case float64:
		return decimal.NewFromFloat(t), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

type shiftStep struct {
	n    int
	unit string
}

var shiftUnits = map[string]string{
	"year": "year", "years": "year", "y": "year",
	"month": "month", "months": "month", "mon": "month", "mons": "month",
	"week": "week", "weeks": "week", "w": "week",
	"day": "day", "days": "day", "d": "day",
	"hour": "hour", "hours": "hour", "h": "hour",
	"minute": "minute", "minutes": "minute", "min": "minute", "mins": "minute",
	"second": "second", "seconds": "second", "sec": "second", "secs": "second",
}

// parseShiftArg requires the first token to carry an explicit sign; a
// later token with no sign of its own inherits the first token's sign
// (so "-1 day 12 hours" subtracts both the day and the 12 hours).
func parseShiftArg(arg string) ([]shiftStep, bool) {
	fields := strings.Fields(strings.TrimSpace(arg))
	if len(fields) < 2 || len(fields)%2 != 0 {
		return nil, false
	}
	first := fields[0]
	if first == "" || (first[0] != '+' && first[0] != '-') {
		return nil, false
	}
	defaultSign := 1
	if first[0] == '-' {
		defaultSign = -1
	}

	steps := make([]shiftStep, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		numTok := fields[i]
		unitName, ok := shiftUnits[strings.ToLower(fields[i+1])]
		if !ok {
			return nil, false
		}
		sign := defaultSign
		numStr := numTok
		if numTok[0] == '+' || numTok[0] == '-' {
			if numTok[0] == '-' {
				sign = -1
			} else {
				sign = 1
			}
			numStr = numTok[1:]
		}
		n, err := strconv.Atoi(numStr)
		if err != nil {
			return nil, false
		}
		steps = append(steps, shiftStep{n: n * sign, unit: unitName})
	}
	return steps, true
}

func modShift(value any, arg string, _ any) any {
	s, isStr := value.(string)
	if !isStr {
		return value
	}
	t, hasTime, ok := parseDateTime(s)
	if !ok {
		return value
	}
	steps, ok := parseShiftArg(arg)
	if !ok {
		return value
	}
	for _, st := range steps {
		switch st.unit {
		case "year":
			t = addMonths(t, st.n*12)
		case "month":
			t = addMonths(t, st.n)
		case "week":
			t = t.AddDate(0, 0, 7*st.n)
		case "day":
			t = t.AddDate(0, 0, st.n)
		case "hour":
			t = t.Add(time.Duration(st.n) * time.Hour)
		case "minute":
			t = t.Add(time.Duration(st.n) * time.Minute)
		case "second":
			t = t.Add(time.Duration(st.n) * time.Second)
		}
	}
	if hasTime {
		return t.Format("2006-01-02 15:04:05")
	}
	return t.Format("2006-01-02")
}

// addMonths shifts t by n calendar months, clamping the day of month
// like dateutil.relativedelta rather than overflowing into the next
// month the way time.AddDate does (Jan 31 + 1 month lands on Feb 29 in
// a leap year, not Mar 2/3).
func addMonths(t time.Time, n int) time.Time {
	total := int(t.Month()) - 1 + n
	y := t.Year() + floorDiv(total, 12)
	m := floorMod(total, 12) + 1
	d := t.Day()
	if dim := daysInMonth(y, m); d > dim {
		d = dim
	}
	return time.Date(y, time.Month(m), d, t.Hour(), t.Minute(), t.Second(), 0, t.Location())
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month+1), 0, 0, 0, 0, 0, time.UTC).Day()
}
