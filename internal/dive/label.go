package dive

import (
	"path/filepath"
	"sort"
	"strings"
)

// Separator splits a filename into sequence and subject
const Separator = " - "

// MediaExtensions maps accepted file extensions to their media kind
var MediaExtensions = map[string]MediaKind{
	".jpg": Still,
	".mov": Video,
	".mp4": Video,
}

// SkipReason explains why a directory entry produced no image
type SkipReason string

const (
	SkipNone      SkipReason = ""
	SkipHidden    SkipReason = "hidden"
	SkipNoDash    SkipReason = "no_separator"
	SkipExtension SkipReason = "unsupported_extension"
)

// Label is the parsed form of a single filename
type Label struct {
	Sequence string
	Subject  string
	Kind     MediaKind
}

// ParseLabel parses "NNN - Subject.ext". Names that do not fit are reported
// through the SkipReason rather than an error.
func ParseLabel(filename string) (Label, SkipReason) {
	if strings.HasPrefix(filename, ".") {
		return Label{}, SkipHidden
	}

	ext := filepath.Ext(filename)
	kind, ok := MediaExtensions[strings.ToLower(ext)]
	if !ok {
		return Label{}, SkipExtension
	}

	name := strings.TrimSuffix(filename, ext)
	sequence, subject, found := strings.Cut(name, Separator)
	if !found {
		return Label{}, SkipNoDash
	}

	return Label{
		Sequence: strings.TrimSpace(sequence),
		Subject:  strings.TrimSpace(subject),
		Kind:     kind,
	}, SkipNone
}

// ParseResult is the outcome of parsing one dive directory listing
type ParseResult struct {
	Images   []*Image
	Skipped  map[SkipReason]int
	Rejected []Rejection
}

// Rejection is one filename the label parser refused
type Rejection struct {
	Filename string
	Reason   SkipReason
}

// ParseDir turns the listing of a dive directory into image records. The
// listing is sorted first so positions are deterministic.
func ParseDir(diveID string, filenames []string) *ParseResult {
	names := append([]string(nil), filenames...)
	sort.Strings(names)

	result := &ParseResult{
		Skipped: make(map[SkipReason]int),
	}

	labels := make([]Label, 0, len(names))
	accepted := make([]string, 0, len(names))
	for _, name := range names {
		label, reason := ParseLabel(name)
		if reason != SkipNone {
			result.Skipped[reason]++
			result.Rejected = append(result.Rejected, Rejection{Filename: name, Reason: reason})
			continue
		}
		labels = append(labels, label)
		accepted = append(accepted, name)
	}

	result.Images = make([]*Image, len(labels))
	for i, label := range labels {
		result.Images[i] = &Image{
			Sequence:   label.Sequence,
			RawSubject: label.Subject,
			Kind:       label.Kind,
			DiveID:     diveID,
			Filename:   accepted[i],
			Index:      i,
			Total:      len(labels),
		}
	}

	return result
}

// SkippedTotal returns the number of entries rejected for any reason
func (r *ParseResult) SkippedTotal() int {
	total := 0
	for _, n := range r.Skipped {
		total += n
	}
	return total
}
