package resource_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-homectl/api/resource"
)

func TestNewIDSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ids     []resource.ID
		want    resource.IDSet
		wantErr bool
	}{
		{name: "sorted unique", ids: []resource.ID{101, 102}, want: resource.IDSet{101, 102}},
		{name: "unsorted with duplicates", ids: []resource.ID{102, 101, 102, 7}, want: resource.IDSet{7, 101, 102}},
		{name: "empty", ids: nil, wantErr: true},
		{name: "zero", ids: []resource.ID{101, 0}, wantErr: true},
		{name: "negative", ids: []resource.ID{-5}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resource.NewIDSet(tt.ids...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIDSetContains(t *testing.T) {
	t.Parallel()

	set, err := resource.NewIDSet(3, 1, 2)
	require.NoError(t, err)

	assert.True(t, set.Contains(2))
	assert.False(t, set.Contains(4))
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, kind := range []resource.Kind{
		resource.KindBool, resource.KindInt, resource.KindDouble, resource.KindEnum,
		resource.KindDate, resource.KindTime, resource.KindTimer, resource.KindWeekday,
	} {
		got, err := resource.ParseKind(kind.String())
		require.NoError(t, err, kind.String())
		assert.Equal(t, kind, got)
	}

	_, err := resource.ParseKind("color")
	require.Error(t, err)
	assert.Equal(t, "Kind(42)", resource.Kind(42).String())
}

func TestValueAccessors(t *testing.T) {
	t.Parallel()

	t.Run("bool", func(t *testing.T) {
		t.Parallel()

		v := resource.BoolValue(101, true)
		assert.Equal(t, resource.ID(101), v.ID())
		assert.Equal(t, resource.KindBool, v.Kind())

		b, ok := v.Bool()
		assert.True(t, ok)
		assert.True(t, b)

		_, ok = v.Int()
		assert.False(t, ok, "only the accessor matching the kind reports ok")
	})

	t.Run("int and enum are distinct", func(t *testing.T) {
		t.Parallel()

		i, ok := resource.IntValue(1, 5).Int()
		assert.True(t, ok)
		assert.Equal(t, int64(5), i)

		_, ok = resource.EnumValue(1, 5).Int()
		assert.False(t, ok)

		e, ok := resource.EnumValue(1, 5).Enum()
		assert.True(t, ok)
		assert.Equal(t, int64(5), e)
	})

	t.Run("date drops the clock", func(t *testing.T) {
		t.Parallel()

		in := time.Date(2024, time.April, 16, 13, 45, 0, 0, time.FixedZone("CEST", 2*3600))
		d, ok := resource.DateValue(1, in).Date()
		assert.True(t, ok)
		assert.Equal(t, time.Date(2024, time.April, 16, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("time of day wraps", func(t *testing.T) {
		t.Parallel()

		d, ok := resource.TimeValue(1, 25*time.Hour+1500*time.Millisecond).TimeOfDay()
		assert.True(t, ok)
		assert.Equal(t, time.Hour+time.Second, d)

		d, _ = resource.TimeValue(1, -time.Hour).TimeOfDay()
		assert.Equal(t, 23*time.Hour, d)
	})

	t.Run("timer and weekday", func(t *testing.T) {
		t.Parallel()

		d, ok := resource.TimerValue(1, 90*time.Second+300*time.Millisecond).Timer()
		assert.True(t, ok)
		assert.Equal(t, 90*time.Second, d)

		w, ok := resource.WeekdayValue(1, time.Sunday).Weekday()
		assert.True(t, ok)
		assert.Equal(t, time.Sunday, w)
	})
}

func TestValueIsImmutable(t *testing.T) {
	t.Parallel()

	base := resource.DoubleValue(3, 21.5)
	changed := base.WithRuntime(true).WithTypeString("Temperature")

	assert.False(t, base.Runtime())
	assert.Empty(t, base.TypeString())
	assert.True(t, changed.Runtime())
	assert.Equal(t, "Temperature", changed.TypeString())
}

func TestValueString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value resource.Value
		want  string
	}{
		{resource.BoolValue(101, false), "101 bool(false)"},
		{resource.IntValue(102, 5), "102 int(5)"},
		{resource.DoubleValue(3, 21.5), "3 double(21.5)"},
		{resource.DateValue(5, time.Date(2024, time.April, 16, 0, 0, 0, 0, time.UTC)), "5 date(2024-04-16)"},
		{resource.TimeValue(6, 6*time.Hour+30*time.Minute+15*time.Second), "6 time(06:30:15)"},
		{resource.TimerValue(7, 90*time.Second), "7 timer(90)"},
		{resource.WeekdayValue(8, time.Saturday), "8 weekday(6)"},
		{resource.Value{}, "0 Kind(0)(?)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.value.String())
		})
	}
}
