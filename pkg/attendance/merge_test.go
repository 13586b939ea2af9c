package attendance

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paris = mustLoadLocation("Europe/Paris")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, paris)
	require.NoError(t, err)
	return ts
}

func entry(t *testing.T, begin, end, source string) RawEntry {
	t.Helper()
	return NewRawEntry(at(t, begin), at(t, end), source, 1)
}

// remerge повторно сливает уже слитые интервалы
func remerge(intervals []MergedInterval) []MergedInterval {
	entries := make([]RawEntry, len(intervals))
	for i, interval := range intervals {
		entries[i] = RawEntry{Begin: interval.Begin, End: interval.End, DurationHours: interval.DurationHours}
	}
	return Merge(entries)
}

func TestMerge_Empty(t *testing.T) {
	merged := Merge(nil)
	assert.NotNil(t, merged)
	assert.Empty(t, merged)
}

func TestMerge_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		entries  []RawEntry
		expected [][2]string
		hours    float64
	}{
		{
			name: "overlapping",
			entries: []RawEntry{
				entry(t, "2024-03-04 09:00", "2024-03-04 12:00", "badge"),
				entry(t, "2024-03-04 11:00", "2024-03-04 13:00", "login"),
			},
			expected: [][2]string{{"2024-03-04 09:00", "2024-03-04 13:00"}},
			hours:    4,
		},
		{
			name: "touching",
			entries: []RawEntry{
				entry(t, "2024-03-04 09:00", "2024-03-04 10:00", "badge"),
				entry(t, "2024-03-04 10:00", "2024-03-04 11:00", "badge"),
			},
			expected: [][2]string{{"2024-03-04 09:00", "2024-03-04 11:00"}},
			hours:    2,
		},
		{
			name: "disjoint",
			entries: []RawEntry{
				entry(t, "2024-03-04 14:00", "2024-03-04 15:00", "badge"),
				entry(t, "2024-03-04 09:00", "2024-03-04 10:00", "badge"),
			},
			expected: [][2]string{
				{"2024-03-04 09:00", "2024-03-04 10:00"},
				{"2024-03-04 14:00", "2024-03-04 15:00"},
			},
			hours: 2,
		},
		{
			name: "contained does not shrink",
			entries: []RawEntry{
				entry(t, "2024-03-04 09:00", "2024-03-04 18:00", "login"),
				entry(t, "2024-03-04 10:00", "2024-03-04 11:00", "badge"),
			},
			expected: [][2]string{{"2024-03-04 09:00", "2024-03-04 18:00"}},
			hours:    9,
		},
		{
			name: "zero duration kept",
			entries: []RawEntry{
				entry(t, "2024-03-04 08:00", "2024-03-04 08:00", "badge"),
				entry(t, "2024-03-04 09:00", "2024-03-04 10:00", "badge"),
			},
			expected: [][2]string{
				{"2024-03-04 08:00", "2024-03-04 08:00"},
				{"2024-03-04 09:00", "2024-03-04 10:00"},
			},
			hours: 1,
		},
		{
			name: "zero duration inside interval absorbed",
			entries: []RawEntry{
				entry(t, "2024-03-04 09:00", "2024-03-04 10:00", "badge"),
				entry(t, "2024-03-04 10:00", "2024-03-04 10:00", "badge"),
			},
			expected: [][2]string{{"2024-03-04 09:00", "2024-03-04 10:00"}},
			hours:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := Merge(tt.entries)
			require.Len(t, merged, len(tt.expected))

			total := 0.0
			for i, exp := range tt.expected {
				assert.True(t, at(t, exp[0]).Equal(merged[i].Begin), "begin %d", i)
				assert.True(t, at(t, exp[1]).Equal(merged[i].End), "end %d", i)
				total += merged[i].DurationHours
			}
			assert.InDelta(t, tt.hours, total, 1e-9)
		})
	}
}

func TestMerge_DoesNotModifyInput(t *testing.T) {
	entries := []RawEntry{
		entry(t, "2024-03-04 14:00", "2024-03-04 15:00", "b"),
		entry(t, "2024-03-04 09:00", "2024-03-04 10:00", "a"),
	}
	Merge(entries)
	assert.Equal(t, "b", entries[0].Source)
	assert.Equal(t, "a", entries[1].Source)
}

func TestMerge_Idempotent(t *testing.T) {
	entries := []RawEntry{
		entry(t, "2024-03-04 09:00", "2024-03-04 12:00", "a"),
		entry(t, "2024-03-04 11:30", "2024-03-04 12:30", "b"),
		entry(t, "2024-03-04 12:30", "2024-03-04 13:00", "c"),
		entry(t, "2024-03-04 15:00", "2024-03-04 16:00", "a"),
		entry(t, "2024-03-04 15:10", "2024-03-04 15:20", "b"),
		entry(t, "2024-03-04 20:00", "2024-03-04 20:45", "a"),
	}

	once := Merge(entries)
	twice := remerge(once)

	require.Len(t, twice, len(once))
	for i := range once {
		assert.True(t, once[i].Begin.Equal(twice[i].Begin))
		assert.True(t, once[i].End.Equal(twice[i].End))
		assert.InDelta(t, once[i].DurationHours, twice[i].DurationHours, 1e-9)
	}
}

func TestMerge_StrictlySeparated(t *testing.T) {
	entries := []RawEntry{
		entry(t, "2024-03-04 09:00", "2024-03-04 09:30", "a"),
		entry(t, "2024-03-04 09:30", "2024-03-04 10:00", "b"),
		entry(t, "2024-03-04 08:00", "2024-03-04 08:10", "a"),
		entry(t, "2024-03-04 10:01", "2024-03-04 11:00", "a"),
		entry(t, "2024-03-04 10:30", "2024-03-04 10:45", "c"),
	}

	merged := Merge(entries)
	require.Len(t, merged, 3)
	for i := 1; i < len(merged); i++ {
		assert.True(t, merged[i-1].End.Before(merged[i].Begin))
	}
}

func TestMerge_CoverageConservation(t *testing.T) {
	overlapping := []RawEntry{
		entry(t, "2024-03-04 09:00", "2024-03-04 12:00", "a"),
		entry(t, "2024-03-04 11:00", "2024-03-04 13:00", "b"),
	}
	disjoint := []RawEntry{
		entry(t, "2024-03-04 09:00", "2024-03-04 10:00", "a"),
		entry(t, "2024-03-04 11:00", "2024-03-04 13:00", "b"),
	}

	sum := func(entries []RawEntry) (raw, merged float64) {
		for _, e := range entries {
			raw += e.DurationHours
		}
		for _, m := range Merge(entries) {
			merged += m.DurationHours
		}
		return raw, merged
	}

	raw, merged := sum(overlapping)
	assert.Less(t, merged, raw)

	raw, merged = sum(disjoint)
	assert.InDelta(t, raw, merged, 1e-9)
}

func TestMerge_SecondPrecision(t *testing.T) {
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, paris)
	sec := func(n int) time.Time { return base.Add(time.Duration(n) * time.Second) }

	// Через NewRawEntry секунды отбрасываются: 09:00-09:00 и 09:00-09:01
	built := []RawEntry{
		NewRawEntry(sec(0), sec(50), "badge", 1),
		NewRawEntry(sec(50), sec(100), "badge", 1),
	}
	assert.True(t, built[1].Begin.Equal(base))
	assert.True(t, built[1].End.Equal(base.Add(time.Minute)))

	raw := built[0].DurationHours + built[1].DurationHours
	merged := Merge(built)
	require.Len(t, merged, 1)
	assert.Equal(t, 1.0/60, raw)
	assert.Equal(t, raw, merged[0].DurationHours)

	// Записи с секундами напрямую: объединение не длиннее суммы
	exact := []RawEntry{
		{Begin: sec(0), End: sec(50), Source: "badge"},
		{Begin: sec(50), End: sec(100), Source: "badge"},
		{Begin: sec(70), End: sec(95), Source: "login"},
	}
	merged = Merge(exact)
	require.Len(t, merged, 1)
	assert.True(t, merged[0].End.Equal(sec(100)))
	assert.Equal(t, hours(100*time.Second), merged[0].DurationHours)

	years := Aggregate(exact)
	day := years[0].Months[0].Day("2024-03-04")
	assert.Equal(t, hours(125*time.Second), day.TotalRawHours)
	assert.Equal(t, hours(100*time.Second), day.TotalMergedHours)
	assert.LessOrEqual(t, day.TotalMergedHours, day.TotalRawHours)
}

func TestMergedInterval_Span(t *testing.T) {
	m := MergedInterval{Begin: at(t, "2024-03-04 09:05"), End: at(t, "2024-03-04 13:40")}
	assert.Equal(t, "09:05 - 13:40", m.Span())
}

func TestMergedSources(t *testing.T) {
	day := &Day{RawEntries: []RawEntry{
		entry(t, "2024-03-04 09:00", "2024-03-04 12:00", "badge"),
		entry(t, "2024-03-04 11:00", "2024-03-04 13:00", "login"),
		entry(t, "2024-03-04 10:00", "2024-03-04 10:30", "badge"),
		entry(t, "2024-03-04 15:00", "2024-03-04 16:00", "vpn"),
	}}
	day.MergedEntries = Merge(day.RawEntries)
	require.Len(t, day.MergedEntries, 2)

	assert.Equal(t, []string{"badge", "login"}, MergedSources(day, 0))
	assert.Equal(t, []string{"vpn"}, MergedSources(day, 1))
	assert.Nil(t, MergedSources(day, 2))
	assert.Nil(t, MergedSources(nil, 0))
}
