package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// leadingNumberRegexp matches the number at the start of a dimension token
// such as "10ft".
var leadingNumberRegexp = regexp.MustCompile(`^\d*\.?\d+`)

// AllUnitSizes is the fixed universe of unit sizes a user can filter on.
var AllUnitSizes = []string{
	"5x5", "5x10", "5x15", "10x10", "10x15", "10x20",
	"10x25", "10x30", "15x15", "15x20", "20x20", "20x30",
}

// DefaultSelectedSizes is the initial size filter.
var DefaultSelectedSizes = []string{
	"5x5", "5x10", "10x10", "10x15", "10x20", "10x25", "10x30",
}

// NormalizeSize lower-cases a size label and strips whitespace and
// apostrophes, so "10X10 '" and "10x10" compare equal.
func NormalizeSize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) || isApostrophe(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '‘' || r == '’' || r == '`'
}

// SizeArea parses a label such as "10x10" or "5ft x 10ft" into its area. A
// single number parses to itself and an unparseable label yields 0.
func SizeArea(s string) float64 {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "x", " ")
	s = strings.Map(func(r rune) rune {
		if isApostrophe(r) {
			return -1
		}
		return r
	}, s)

	var nums []float64
	for _, tok := range strings.Fields(s) {
		f, err := strconv.ParseFloat(leadingNumberRegexp.FindString(tok), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		nums = append(nums, f)
		if len(nums) == 2 {
			break
		}
	}

	switch len(nums) {
	case 0:
		return 0
	case 1:
		return nums[0]
	default:
		return nums[0] * nums[1]
	}
}

// SizeSet is a membership set over normalized size labels.
type SizeSet map[string]struct{}

// NewSizeSet builds a set from the selected labels. A nil selection means
// DefaultSelectedSizes.
func NewSizeSet(selected []string) SizeSet {
	if selected == nil {
		selected = DefaultSelectedSizes
	}
	set := make(SizeSet, len(selected))
	for _, s := range selected {
		set[NormalizeSize(s)] = struct{}{}
	}
	return set
}

// Contains reports whether the label matches a selected size.
func (s SizeSet) Contains(label string) bool {
	_, ok := s[NormalizeSize(label)]
	return ok
}

// ToggleSize returns a new selection with size added or removed, keeping
// the order of AllUnitSizes for known sizes.
func ToggleSize(selected []string, size string) []string {
	if selected == nil {
		selected = DefaultSelectedSizes
	}
	set := NewSizeSet(selected)
	key := NormalizeSize(size)
	if _, ok := set[key]; ok {
		delete(set, key)
	} else {
		set[key] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for _, s := range AllUnitSizes {
		if _, ok := set[NormalizeSize(s)]; ok {
			out = append(out, s)
			delete(set, NormalizeSize(s))
		}
	}
	for _, s := range selected {
		if _, ok := set[NormalizeSize(s)]; ok {
			out = append(out, s)
			delete(set, NormalizeSize(s))
		}
	}
	if _, ok := set[key]; ok {
		out = append(out, size)
	}
	return out
}
