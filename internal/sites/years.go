package sites

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/franz/dive-gallery/internal/dive"
)

// Years returns the distinct dive years of images in ascending order
func Years(images []*dive.Image) []int {
	seen := make(map[int]bool)
	var out []int
	for _, img := range images {
		y := img.Dive().Year()
		if y == 0 || seen[y] {
			continue
		}
		seen[y] = true
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// FormatYears renders contiguous runs as "start-end" and separates runs
// with commas: 2020, 2022, 2023, 2024 becomes "2020, 2022-2024"
func FormatYears(years []int) string {
	if len(years) == 0 {
		return ""
	}

	sorted := make([]int, len(years))
	copy(sorted, years)
	sort.Ints(sorted)

	var parts []string
	start, prev := sorted[0], sorted[0]
	flush := func() {
		if start == prev {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
		}
	}
	for _, y := range sorted[1:] {
		switch {
		case y == prev:
			continue
		case y == prev+1:
			prev = y
		default:
			flush()
			start, prev = y, y
		}
	}
	flush()

	return strings.Join(parts, ", ")
}

// YearRanges maps every location path, joined with "/", to the formatted
// years of the dives beneath it. Keys are the region, region/subregion and
// the site below them, so a region answers even when its tree node was
// merged into a single site. Unconfigured sites are keyed by name alone.
func YearRanges(images []*dive.Image, locator *Locator) map[string]string {
	byPath := make(map[string][]*dive.Image)
	for _, img := range images {
		ctx, _ := locator.Resolve(img.Dive().Site)
		path := append(ctx.Path(), ctx.Site)
		for i := 1; i <= len(path); i++ {
			key := strings.Join(path[:i], "/")
			byPath[key] = append(byPath[key], img)
		}
	}

	out := make(map[string]string, len(byPath))
	for key, group := range byPath {
		out[key] = FormatYears(Years(group))
	}
	return out
}

func sortStrings(items []string) []string {
	sort.Strings(items)
	return items
}
