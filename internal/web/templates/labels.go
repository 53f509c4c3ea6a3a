package templates

import (
	"sort"

	"github.com/JonMunkholm/feedmap/internal/mapping"
)

func sortedLabels(fields map[string]any) []string {
	labels := make([]string, 0, len(fields))
	for label := range fields {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// recordLabels is the sorted union of output labels across records.
func recordLabels(records []mapping.ResolvedRecord) []string {
	seen := make(map[string]any)
	for _, rec := range records {
		for label := range rec.Fields {
			seen[label] = nil
		}
	}
	return sortedLabels(seen)
}
