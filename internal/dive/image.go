// Package dive models the photo collection: dive directories and the
// labeled image records parsed out of them.
package dive

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// MediaKind distinguishes stills from video clips
type MediaKind int

const (
	Still MediaKind = iota
	Video
)

func (k MediaKind) String() string {
	if k == Video {
		return "video"
	}
	return "still"
}

// Image is one labeled file from a dive directory. Records are shared by
// reference between the gallery, taxonomy and sites trees and are never
// modified after construction; conjunction expansion produces new records.
type Image struct {
	Sequence   string    // leading "NNN" of the filename, orderable within a dive
	RawSubject string    // label after the first " - ", extension removed; may be empty
	Kind       MediaKind // still or video
	DiveID     string    // directory basename, "YYYY-MM-DD [N ]SiteName"
	Filename   string    // original basename
	Index      int       // position of the file within the dive's sorted listing
	Total      int       // number of labeled files in the dive
}

// Position returns Index/Total, the intra-dive order in [0, 1)
func (i *Image) Position() float64 {
	if i.Total == 0 {
		return 0
	}
	return float64(i.Index) / float64(i.Total)
}

// Key is the stable identifier "dive_id:sequence", unique across the collection
func (i *Image) Key() string {
	return i.DiveID + ":" + i.Sequence
}

// WithSubject returns a copy of the image carrying a different raw subject
func (i *Image) WithSubject(subject string) *Image {
	c := *i
	c.RawSubject = subject
	return &c
}

// Dive returns the parsed dive directory name. Malformed ids yield a Dive
// whose Site is the whole id and whose Date is empty.
func (i *Image) Dive() Dive {
	d, err := ParseDiveID(i.DiveID)
	if err != nil {
		return Dive{ID: i.DiveID, Site: i.DiveID}
	}
	return d
}

func (i *Image) String() string {
	return fmt.Sprintf("%s - %s", i.Key(), i.RawSubject)
}

// Dive is a parsed dive directory name
type Dive struct {
	ID     string
	Date   string // YYYY-MM-DD
	Number int    // Nth dive of the day, 0 when absent
	Site   string
}

// Year returns the dive's year, or 0 when the date is missing
func (d Dive) Year() int {
	if len(d.Date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(d.Date[:4])
	if err != nil {
		return 0
	}
	return y
}

var diveIDPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})(?: (\d+))? (.+)$`)

// ParseDiveID splits "2021-01-02 2 Fort Ward" into its date, dive number and site
func ParseDiveID(id string) (Dive, error) {
	m := diveIDPattern.FindStringSubmatch(id)
	if m == nil {
		return Dive{}, fmt.Errorf("dive directory %q does not match YYYY-MM-DD[ N] Site", id)
	}

	d := Dive{ID: id, Date: m[1], Site: m[3]}
	if m[2] != "" {
		d.Number, _ = strconv.Atoi(m[2])
	}
	return d, nil
}

// Less orders images newest dive first, then by sequence, then by position
func Less(a, b *Image) bool {
	if a.DiveID != b.DiveID {
		return a.DiveID > b.DiveID
	}
	if a.Sequence != b.Sequence {
		return a.Sequence < b.Sequence
	}
	// Compare Index/Total without floating point
	return a.Index*b.Total < b.Index*a.Total
}

// SortImages sorts in place using Less. The sort is stable so expanded
// records that compare equal keep their expansion order.
func SortImages(images []*Image) {
	sort.SliceStable(images, func(i, j int) bool {
		return Less(images[i], images[j])
	})
}
