package rtc

// Field is a date or time field in the order the editor visits them.
type Field int

// Editable fields.
const (
	FieldYear Field = iota
	FieldMonth
	FieldDay
	FieldHour
	FieldMinute
	FieldSecond
)

// Fields lists all fields in editing order.
var Fields = []Field{FieldYear, FieldMonth, FieldDay, FieldHour, FieldMinute, FieldSecond}

var fieldNames = [...]string{"Year", "Month", "Day", "Hours", "Minutes", "Seconds"}

func (f Field) String() string {
	return fieldNames[f]
}

// Get returns the value of a field.
func (d *DateTime) Get(f Field) int {
	return *d.field(f)
}

func (d *DateTime) field(f Field) *int {
	switch f {
	case FieldYear:
		return &d.Year
	case FieldMonth:
		return &d.Month
	case FieldDay:
		return &d.Day
	case FieldHour:
		return &d.Hour
	case FieldMinute:
		return &d.Minute
	default:
		return &d.Second
	}
}

// BumpUnits increments a field by one, wrapping around at its maximum.
func (d *DateTime) BumpUnits(f Field) {
	switch f {
	case FieldYear:
		d.Year = wrapUnits(d.Year, 0, 99)
	case FieldMonth:
		d.Month = wrapUnits(d.Month, 1, 12)
	case FieldDay:
		d.Day = wrapUnits(d.Day, 1, daysInMonth(d.Month, d.Year))
	case FieldHour:
		d.Hour = wrapUnits(d.Hour, 0, 23)
	case FieldMinute:
		d.Minute = wrapUnits(d.Minute, 0, 59)
	case FieldSecond:
		d.Second = wrapUnits(d.Second, 0, 59)
	}
	d.clampDay()
}

// BumpTens increments a field by ten. A result above the field maximum keeps only
// the units digit. Months toggle between 1..2 and 11..12, the other months are not changed.
func (d *DateTime) BumpTens(f Field) {
	switch f {
	case FieldYear:
		d.Year = wrapTens(d.Year, 99)
	case FieldMonth:
		switch {
		case d.Month > 10:
			d.Month -= 10
		case d.Month < 3:
			d.Month += 10
		}
	case FieldDay:
		d.Day = max(wrapTens(d.Day, daysInMonth(d.Month, d.Year)), 1)
	case FieldHour:
		d.Hour = wrapTens(d.Hour, 23)
	case FieldMinute:
		d.Minute = wrapTens(d.Minute, 59)
	case FieldSecond:
		d.Second = wrapTens(d.Second, 59)
	}
	d.clampDay()
}

// clampDay limits the day to the length of the month after a month or year change.
func (d *DateTime) clampDay() {
	if d.Month >= 1 && d.Month <= 12 {
		d.Day = min(d.Day, daysInMonth(d.Month, d.Year))
	}
}

func wrapUnits(v, lowest, highest int) int {
	if v >= highest {
		return lowest
	}
	return v + 1
}

func wrapTens(v, highest int) int {
	v += 10
	if v > highest {
		v %= 10
	}
	return v
}
