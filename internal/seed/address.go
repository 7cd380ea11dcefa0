package seed

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Address segmentation errors. The source field is free text; these are the
// only two ways the heuristic can fail.
var (
	ErrInvalidAddressFormat  = errors.New("invalid address format")
	ErrInvalidStateZipFormat = errors.New("invalid state/zip format")
)

// stateZipRegexp matches a two-letter state code followed by a five-digit
// zip anywhere in the final address segment.
var stateZipRegexp = regexp.MustCompile(`([A-Z]{2})\s+(\d{5})`)

// Address is the segmented form of a free-text US postal address.
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

// SegmentAddress decomposes a single free-text address string into its
// parts. The input is known to be US-only and comma-segmented:
//
//	"123 Main St, Apt 4, Springfield, IL 62704"
//
// The last segment must carry state and zip, the second-to-last is the
// city, and everything before that is the street (rejoined, since street
// lines may themselves contain commas). Country is always "USA".
func SegmentAddress(raw string) (Address, error) {
	parts := strings.Split(raw, ", ")
	if len(parts) < 2 {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddressFormat, raw)
	}

	last := parts[len(parts)-1]
	m := stateZipRegexp.FindStringSubmatch(last)
	if m == nil {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidStateZipFormat, last)
	}

	return Address{
		Street:  strings.Join(parts[:len(parts)-2], ", "),
		City:    parts[len(parts)-2],
		State:   m[1],
		ZipCode: m[2],
		Country: "USA",
	}, nil
}
