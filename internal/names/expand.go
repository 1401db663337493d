package names

import (
	"regexp"
	"strings"

	"github.com/franz/dive-gallery/internal/dive"
)

var (
	// "eggs of a lingcod", "Eggs of Sea Lemon"
	eggsOfPattern = regexp.MustCompile(`(?i)^eggs? of (?:an? |the )?(.+)$`)
	// "octopus with eggs", "sea lemon laying eggs"
	withEggsPattern = regexp.MustCompile(`(?i)^(.+?) (?:with|and|laying|guarding) eggs?$`)
	// first conjunction joining two subjects
	conjunctionPattern = regexp.MustCompile(`(?i) (?:and|with) `)
)

// ExpandSubject splits a raw subject naming several things into one
// subject per thing. Egg phrasings are reordered so the species comes
// first: "eggs of sea lemon" yields "sea lemon eggs", and "octopus with
// eggs" yields both "octopus" and "octopus eggs". Subjects without a
// conjunction are returned unchanged as a single element.
func ExpandSubject(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{raw}
	}

	if m := eggsOfPattern.FindStringSubmatch(raw); m != nil {
		var out []string
		for _, species := range ExpandSubject(m[1]) {
			if species != "" {
				out = append(out, species+" eggs")
			}
		}
		return out
	}

	if m := withEggsPattern.FindStringSubmatch(raw); m != nil {
		var out []string
		for _, species := range ExpandSubject(m[1]) {
			if species != "" {
				out = append(out, species, species+" eggs")
			}
		}
		return out
	}

	loc := conjunctionPattern.FindStringIndex(raw)
	if loc == nil {
		return []string{raw}
	}

	var out []string
	for _, part := range []string{raw[:loc[0]], raw[loc[1]:]} {
		for _, subject := range ExpandSubject(part) {
			if subject != "" {
				out = append(out, subject)
			}
		}
	}
	if len(out) == 0 {
		return []string{raw}
	}
	return out
}

// ExpandImages applies ExpandSubject to every image. Records whose subject
// does not expand are passed through as the same pointer; expanded records
// share the original's sequence, dive and position. The second result is
// the number of extra records produced.
func ExpandImages(images []*dive.Image) ([]*dive.Image, int) {
	out := make([]*dive.Image, 0, len(images))
	for _, img := range images {
		subjects := ExpandSubject(img.RawSubject)
		if len(subjects) == 1 && subjects[0] == img.RawSubject {
			out = append(out, img)
			continue
		}
		for _, s := range subjects {
			out = append(out, img.WithSubject(s))
		}
	}
	return out, len(out) - len(images)
}
