package keautil

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

var semanticVersionPattern = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)

// Version number of a daemon in the major.minor.patch form.
type SemanticVersion struct {
	Major int
	Minor int
	Patch int
}

func NewSemanticVersion(major, minor, patch int) SemanticVersion {
	return SemanticVersion{Major: major, Minor: minor, Patch: patch}
}

func (v SemanticVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Returns -1, 0 or +1 when the version is respectively lower, equal or
// higher than the other one.
func (v SemanticVersion) Compare(other SemanticVersion) int {
	if c := cmp.Compare(v.Major, other.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, other.Minor); c != 0 {
		return c
	}
	return cmp.Compare(v.Patch, other.Patch)
}

func (v SemanticVersion) LessThan(other SemanticVersion) bool {
	return v.Compare(other) < 0
}

func (v SemanticVersion) GreaterThanOrEqual(other SemanticVersion) bool {
	return v.Compare(other) >= 0
}

// Extracts the first major.minor.patch triple from the text. Kea reports
// versions like 2.6.1 or 3.0.0-isc20250522, so the suffix is dropped.
func ParseSemanticVersion(text string) (SemanticVersion, error) {
	match := semanticVersionPattern.FindStringSubmatch(text)
	if match == nil {
		return SemanticVersion{}, errors.Errorf("invalid semantic version: %s", text)
	}
	numbers := [3]int{}
	for i := range numbers {
		number, err := strconv.Atoi(match[i+1])
		if err != nil {
			return SemanticVersion{}, errors.Wrapf(err, "invalid semantic version: %s", text)
		}
		numbers[i] = number
	}
	return NewSemanticVersion(numbers[0], numbers[1], numbers[2]), nil
}
