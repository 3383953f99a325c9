package model

import (
	"slices"
	"strings"
	"time"
)

type Room struct {
	ID        string
	Name      string
	Capacity  int
	Location  string
	Amenities []string
	IsActive  bool
	IsPremium bool
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeAmenities trims, drops empties, de-duplicates case-insensitively and sorts.
func NormalizeAmenities(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		key := strings.ToLower(a)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return out
}
