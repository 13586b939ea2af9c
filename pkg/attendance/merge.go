package attendance

import "sort"

// Merge сливает пересекающиеся и соприкасающиеся записи одного дня.
// Результат упорядочен по началу, соседние интервалы строго разделены.
func Merge(entries []RawEntry) []MergedInterval {
	if len(entries) == 0 {
		return []MergedInterval{}
	}

	sorted := make([]RawEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Begin.Before(sorted[j].Begin)
	})

	merged := make([]MergedInterval, 0, len(sorted))
	current := MergedInterval{Begin: sorted[0].Begin, End: sorted[0].End}

	for _, entry := range sorted[1:] {
		// Касание концов тоже считается пересечением
		if !entry.Begin.After(current.End) {
			if entry.End.After(current.End) {
				current.End = entry.End
			}
			continue
		}

		current.DurationHours = durationHours(current.Begin, current.End)
		merged = append(merged, current)
		current = MergedInterval{Begin: entry.Begin, End: entry.End}
	}

	current.DurationHours = durationHours(current.Begin, current.End)
	merged = append(merged, current)

	return merged
}

// MergedSources возвращает источники сырых записей, пересекающих i-й слитый интервал
func MergedSources(day *Day, i int) []string {
	if day == nil || i < 0 || i >= len(day.MergedEntries) {
		return nil
	}

	merged := day.MergedEntries[i]
	seen := make(map[string]bool)
	var sources []string
	for _, raw := range day.RawEntries {
		if raw.Begin.After(merged.End) || raw.End.Before(merged.Begin) {
			continue
		}
		if !seen[raw.Source] {
			seen[raw.Source] = true
			sources = append(sources, raw.Source)
		}
	}
	return sources
}
