package resource

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
)

// ID identifies a resource (a datapoint) on the controller. Valid IDs are positive.
type ID int64

// Valid reports whether the ID can be sent to the controller.
func (id ID) Valid() bool {
	return id > 0
}

// IDSet is a sorted, duplicate-free list of valid resource IDs.
// The same IDSet is sent to enable and later to disable notifications.
type IDSet []ID

// NewIDSet validates ids, drops duplicates and sorts the result.
// It fails for an empty input or any ID <= 0.
func NewIDSet(ids ...ID) (IDSet, error) {
	if len(ids) == 0 {
		return nil, errors.New("at least one resource ID is required")
	}

	set := make(IDSet, 0, len(ids))
	for _, id := range ids {
		if !id.Valid() {
			return nil, errors.Newf("invalid resource ID %d: must be positive", id)
		}
		set = append(set, id)
	}

	slices.Sort(set)
	return slices.Compact(set), nil
}

// Contains reports whether id is part of the set.
func (s IDSet) Contains(id ID) bool {
	_, found := slices.BinarySearch(s, id)
	return found
}

// Kind selects which variant of a Value is meaningful.
type Kind int

const (
	KindBool Kind = iota + 1
	KindInt
	KindDouble
	KindEnum
	KindDate
	KindTime
	KindTimer
	KindWeekday
)

var kindNames = map[Kind]string{
	KindBool:    "bool",
	KindInt:     "int",
	KindDouble:  "double",
	KindEnum:    "enum",
	KindDate:    "date",
	KindTime:    "time",
	KindTimer:   "timer",
	KindWeekday: "weekday",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind maps a wire name back to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, errors.Newf("unknown value kind %q", name)
}

const (
	dateLayout = "2006-01-02"
	day        = 24 * time.Hour
)

// Value is the current or changed value of one resource. It is immutable:
// build it with one of the kind constructors and read it with the accessor
// matching Kind.
type Value struct {
	id         ID
	kind       Kind
	runtime    bool
	typeString string

	b   bool
	i   int64
	f   float64
	t   time.Time
	d   time.Duration
	day time.Weekday
}

// BoolValue creates a KindBool value.
func BoolValue(id ID, v bool) Value {
	return Value{id: id, kind: KindBool, b: v}
}

// IntValue creates a KindInt value.
func IntValue(id ID, v int64) Value {
	return Value{id: id, kind: KindInt, i: v}
}

// DoubleValue creates a KindDouble value.
func DoubleValue(id ID, v float64) Value {
	return Value{id: id, kind: KindDouble, f: v}
}

// EnumValue creates a KindEnum value holding the ordinal of an enumeration member.
func EnumValue(id ID, ordinal int64) Value {
	return Value{id: id, kind: KindEnum, i: ordinal}
}

// DateValue creates a KindDate value. Only the calendar date of v is kept.
func DateValue(id ID, v time.Time) Value {
	return Value{id: id, kind: KindDate, t: time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)}
}

// TimeValue creates a KindTime value: a time of day given as the offset from
// midnight, truncated to whole seconds and wrapped into [0, 24h).
func TimeValue(id ID, sinceMidnight time.Duration) Value {
	d := sinceMidnight.Truncate(time.Second) % day
	if d < 0 {
		d += day
	}
	return Value{id: id, kind: KindTime, d: d}
}

// TimerValue creates a KindTimer value, truncated to whole seconds.
func TimerValue(id ID, v time.Duration) Value {
	return Value{id: id, kind: KindTimer, d: v.Truncate(time.Second)}
}

// WeekdayValue creates a KindWeekday value.
func WeekdayValue(id ID, v time.Weekday) Value {
	return Value{id: id, kind: KindWeekday, day: v}
}

// WithRuntime returns a copy of v with the runtime flag set. Runtime values
// are live reads, as opposed to the initial snapshot returned at subscription.
func (v Value) WithRuntime(runtime bool) Value {
	v.runtime = runtime
	return v
}

// WithTypeString returns a copy of v carrying the controller's type hint.
func (v Value) WithTypeString(typeString string) Value {
	v.typeString = typeString
	return v
}

// ID returns the resource the value belongs to.
func (v Value) ID() ID { return v.id }

// Kind reports which payload accessor is meaningful.
func (v Value) Kind() Kind { return v.kind }

// Runtime reports whether the value is a live read rather than a snapshot.
func (v Value) Runtime() bool { return v.runtime }

// TypeString returns the controller's type hint, empty when none was sent.
func (v Value) TypeString() string { return v.typeString }

// Bool returns the payload of a KindBool value.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Int returns the payload of a KindInt value.
func (v Value) Int() (int64, bool) {
	return v.i, v.kind == KindInt
}

// Double returns the payload of a KindDouble value.
func (v Value) Double() (float64, bool) {
	return v.f, v.kind == KindDouble
}

// Enum returns the ordinal of a KindEnum value.
func (v Value) Enum() (int64, bool) {
	return v.i, v.kind == KindEnum
}

// Date returns the payload of a KindDate value as midnight UTC.
func (v Value) Date() (time.Time, bool) {
	return v.t, v.kind == KindDate
}

// TimeOfDay returns the payload of a KindTime value as offset from midnight.
func (v Value) TimeOfDay() (time.Duration, bool) {
	return v.d, v.kind == KindTime
}

// Timer returns the payload of a KindTimer value.
func (v Value) Timer() (time.Duration, bool) {
	return v.d, v.kind == KindTimer
}

// Weekday returns the payload of a KindWeekday value.
func (v Value) Weekday() (time.Weekday, bool) {
	return v.day, v.kind == KindWeekday
}

// String formats the value as "101 bool(true)".
func (v Value) String() string {
	data, err := v.data()
	if err != nil {
		data = "?"
	}
	return fmt.Sprintf("%d %s(%s)", v.id, v.kind, data)
}

// data renders the payload in its wire text form.
func (v Value) data() (string, error) {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b), nil
	case KindInt, KindEnum:
		return strconv.FormatInt(v.i, 10), nil
	case KindDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64), nil
	case KindDate:
		return v.t.Format(dateLayout), nil
	case KindTime:
		s := int64(v.d / time.Second)
		return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60), nil
	case KindTimer:
		return strconv.FormatInt(int64(v.d/time.Second), 10), nil
	case KindWeekday:
		return strconv.Itoa(int(v.day)), nil
	default:
		return "", errors.Newf("resource %d: unsupported value kind %s", v.id, v.kind)
	}
}

// parseValue builds a Value of kind from its wire text form.
func parseValue(id ID, kind Kind, data string) (Value, error) {
	switch kind {
	case KindBool:
		b, err := strconv.ParseBool(data)
		if err != nil {
			return Value{}, errors.Wrapf(err, "resource %d: invalid bool", id)
		}
		return BoolValue(id, b), nil
	case KindInt, KindEnum:
		i, err := strconv.ParseInt(data, 10, 64)
		if err != nil {
			return Value{}, errors.Wrapf(err, "resource %d: invalid %s", id, kind)
		}
		if kind == KindEnum {
			return EnumValue(id, i), nil
		}
		return IntValue(id, i), nil
	case KindDouble:
		f, err := strconv.ParseFloat(data, 64)
		if err != nil {
			return Value{}, errors.Wrapf(err, "resource %d: invalid double", id)
		}
		return DoubleValue(id, f), nil
	case KindDate:
		t, err := time.Parse(dateLayout, data)
		if err != nil {
			return Value{}, errors.Wrapf(err, "resource %d: invalid date", id)
		}
		return DateValue(id, t), nil
	case KindTime:
		t, err := time.Parse(time.TimeOnly, data)
		if err != nil {
			return Value{}, errors.Wrapf(err, "resource %d: invalid time", id)
		}
		return TimeValue(id, time.Duration(t.Hour())*time.Hour+
			time.Duration(t.Minute())*time.Minute+
			time.Duration(t.Second())*time.Second), nil
	case KindTimer:
		s, err := strconv.ParseInt(data, 10, 64)
		if err != nil {
			return Value{}, errors.Wrapf(err, "resource %d: invalid timer", id)
		}
		return TimerValue(id, time.Duration(s)*time.Second), nil
	case KindWeekday:
		d, err := strconv.Atoi(data)
		if err != nil || d < int(time.Sunday) || d > int(time.Saturday) {
			return Value{}, errors.Newf("resource %d: invalid weekday %q", id, data)
		}
		return WeekdayValue(id, time.Weekday(d)), nil
	default:
		return Value{}, errors.Newf("resource %d: unsupported value kind %s", id, kind)
	}
}
